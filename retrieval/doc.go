// Package retrieval answers questions from the committed vector index.
//
// The Answerer embeds the question, linearly scores every indexed chunk by
// cosine similarity, and conditions a generative model on the top matches.
// Ranking is fully deterministic: equal scores break by document key and
// then chunk index, so the same corpus and question always produce the
// same references.
//
// Answer never returns an error. Every failure mode collapses into a
// well-formed answer envelope whose result describes the failure and whose
// reference list is empty; callers can rely on the envelope shape
// unconditionally.
package retrieval
