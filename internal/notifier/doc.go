// Package notifier delivers the messages produced for a report channel.
//
// A Dispatcher sends the chunks of one report sequentially through a
// transport.Sender. Every send waits on a shared token bucket, failed sends
// are retried with exponential backoff and jitter, and the outcome of each
// chunk is published on the event bus.
//
// # History
//
// For debugging, the dispatcher keeps a small in-memory history of recently
// delivered chunks.
package notifier
