// Package vectorindex persists and scans vector records as plain objects.
//
// The "index" is deliberately not an index at all: one object per
// VectorRecord in a vector bucket, enumerated in full at query time. This
// keeps the pipeline database-less at the cost of a linear scan, which is
// the intended tradeoff for low-volume corpora.
//
// Writes commit by writing a manifest object last. A document whose record
// set has no manifest is invisible to Scan, so a crash between chunk writes
// can never surface a partially-indexed document. Reprocessing a document
// overwrites its record set and manifest in place; records are never
// mutated, only replaced wholesale.
package vectorindex
