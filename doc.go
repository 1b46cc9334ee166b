// Package parley is a declarative conversation engine for voice AI calls.
//
// A workflow is defined in two YAML documents: a definition (states,
// transition policy, data schema) and a prompt document (templated prompt
// text). Parley loads and validates them once, then interprets turns for any
// number of concurrent call sessions: it consumes assistant output and user
// utterances, decides state transitions, renders minimized per-state prompts
// and emits directives (switch model, swap tools, replace history, end the
// call) for the hosting voice runtime to apply.
//
// The engine is a pure interpreter. It never calls a model, speaks, or
// invokes a tool; hosts integrate it by feeding turns in and applying
// directives out.
package parley
