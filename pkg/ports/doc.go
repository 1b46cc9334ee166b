// Package ports defines the narrow interfaces between the Parley engine and
// its surroundings: where workflow documents come from, where call snapshots
// are persisted, and how replicas coordinate access to one call.
//
// The engine itself performs no I/O; adapters implement these interfaces.
package ports
