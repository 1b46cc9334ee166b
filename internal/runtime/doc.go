// Package runtime implements the per-call state machine interpreter: it
// consumes assistant output and user utterances, applies the workflow's
// transition policy and emits directives for the hosting voice runtime.
package runtime
