// Package strategy routes classified learner prompts to pedagogical response
// strategies. Tutor mode dispatches over the learner's cognitive phase
// (socratic, explicative, guided-hint, metacognitive); simulator and
// evaluator modes map to dedicated strategies. The router optionally serves
// repeated prompts from a response cache.
package strategy
