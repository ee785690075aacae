// Package serialization reconstitutes typed values from stored payloads.
//
// Deserialize overlaps reading payloads from a slow source with decoding
// them. One background goroutine enumerates the source into a FIFO queue;
// the caller drains the queue and decodes each payload in turn, so output
// order always equals source order. Payloads are never decoded in
// parallel.
//
// The queue is unbounded by default, so a fast source can run arbitrarily
// far ahead of a slow consumer. WithQueueCapacity bounds it and makes the
// source block until the consumer catches up.
//
// A payload that cannot be decoded yields a nil item at its position.
// An error returned by the source is reported by Batch.Err only after
// every payload produced before it has been yielded.
package serialization
