// Package reindex re-embeds every committed document with the current
// embedding model.
//
// Changing embedding models invalidates every stored vector: old and new
// vectors are not comparable, so the whole index must be rebuilt. The
// Reindexer walks the committed documents, re-embeds each document's chunk
// texts, and rewrites the record set in place. Documents commit one at a
// time through the usual manifest-last write, so readers always see either
// the old vectors or the new ones, never a mix within one document.
//
// Embedding calls retry with exponential backoff; progress is reported to
// a configurable writer for long-running migrations.
package reindex
