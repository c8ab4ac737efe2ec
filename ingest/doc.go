// Package ingest turns uploaded documents into committed vector record sets.
//
// The Worker type consumes the ingestion queue: for each message it loads
// the document from the object store, extracts and chunks its text,
// generates embeddings, and writes the chunks to the vector index before
// acknowledging. The queue is acked only after the index commit, so a crash
// mid-processing leaves the message to be redelivered or dead-lettered by
// the queue's lease machinery.
//
// Embedding is globally serialized: a single-slot worker pool admits one
// message at a time regardless of how often the loop polls.
package ingest
