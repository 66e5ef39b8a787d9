// Package bus provides a cluster-wide event bus: named events published by
// one instance and observed by every instance subscribed to that name.
//
// Delivery is best-effort. Publishers never block on slow consumers; a
// subscriber whose buffer is full misses the event. WaitFor turns the bus
// into a one-shot signal with a deadline, which is how acknowledgment waits
// are built: the acknowledging side publishes a deterministically named event
// (see AckEvent) and the waiting side bounds its wait with a timeout.
//
// RedisBus maps event names to redis pub/sub channels under a configurable
// prefix. MemoryBus implements the same contract in-process for tests and
// single-instance deployments.
package bus
