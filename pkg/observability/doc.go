/*
Package observability turns engine lifecycle events into Prometheus metrics.

Metrics attach through domain.LifecycleHooks, so the engine core stays free
of any metrics dependency; hosts that want both metrics and their own hooks
combine them with Chain.
*/
package observability
