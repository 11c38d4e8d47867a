// Package journal exports the event log to segmented, CRC-framed files.
//
// A journal is an archive for offline tooling. The store never reads one
// back: sequence numbers restart with every process.
//
// Frame layout, big endian:
//
//	[kind:1][seq:8][time:8][len:4][payload][crc:4]
//
// The payload is the codec encoding of the event; the CRC covers header and
// payload.
package journal
