// Package classifier detects request type, cognitive state, and delegation
// intent from free-text learner prompts.
//
// Classification is layered: a configurable list of canonical delegation
// phrasings is matched first (case- and diacritic-insensitive); everything
// else goes to the language backend with a constrained prompt and a bounded
// timeout; backend failures degrade to a conservative heuristic rather than
// failing the request.
package classifier
