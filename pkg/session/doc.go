/*
Package session holds per-call state.

Context is the unit of mutable state for one active call: the current
conversation state plus the session's data, formatted for speech exactly once
at call start. The Manager orchestrates concurrent access to persisted call
snapshots across replicas, combining per-call local locks with an optional
distributed locker.
*/
package session
