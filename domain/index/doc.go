// Package index implements the secondary indexes of the trading log: a
// grow-only B-Tree mapping a key (symbol, trader, amount) to the ascending
// sequence numbers of the events that share it.
//
// An Index is owned and mutated only by the event store under its write
// lock. Every read returns copies, so callers never hold a reference into
// the tree.
package index
