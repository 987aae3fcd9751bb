// Minerva is an AI-tutoring interaction gateway.
//
// It sits between learners and a generative language backend, providing:
//   - Cognitive classification of every learner prompt
//   - Policy-gated generation with pedagogical redirection on blocks
//   - Strategy routing (socratic, explicative, guided hints, metacognitive,
//     role simulation, process evaluation)
//   - Immutable cognitive trace capture with retention enforcement
//   - Asynchronous five-dimension risk analysis
//
// Usage:
//
//	# Start the gateway with default configuration
//	minerva run
//
//	# Start with a custom configuration file
//	minerva run --config /path/to/config.yaml
//
//	# Process a single prompt from the command line
//	minerva ask --session demo --learner l1 --activity a1 "What is a goroutine?"
//
//	# Show version information
//	minerva version
package main

func main() {
	Execute()
}
