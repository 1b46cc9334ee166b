// Package prompt renders per-state prompts from a loaded workflow schema.
//
// Every template referenced by the schema is compiled exactly once, at
// renderer construction. Render calls execute precompiled templates against
// a restricted context, so they are sub-millisecond and byte-deterministic
// regardless of template complexity.
package prompt
