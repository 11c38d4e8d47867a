// Package service owns the event store, the single write entry point of
// the trading log, and the read-only query facade built on top of it.
//
// The store assigns sequence numbers, appends to the in-memory log and
// updates every registered index as one unit under its write lock.
// Consumers get a Reader, never the Store itself.
package service
