// Package domain contains the core types shared across the Parley engine:
// directives emitted to the voice runtime, conversation messages, session
// snapshots, lifecycle hooks and the error taxonomy.
//
// Everything in this package is plain data. The engine communicates with the
// hosting runtime exclusively through these values; it never calls into the
// model or audio layer directly.
package domain
