// Package schema models a conversation workflow: its states, transition
// rules, voice persona, data-formatting rules and prompt text.
//
// A Schema is loaded once per workflow from two YAML documents (the
// definition and the prompt text), validated eagerly, and then shared
// read-only across every concurrent call. Referential problems (a transition
// to an unknown state, a dangling prompt reference) are load-time fatal: an
// inconsistent schema must never start serving calls.
package schema
