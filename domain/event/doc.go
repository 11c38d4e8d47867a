// Package event defines the immutable facts recorded by the trading log:
// trades and price updates. Events are plain values; once the store has
// stamped a sequence number on one, nothing in the system changes it.
package event
