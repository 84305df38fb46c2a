// Package search implements the hybrid retrieval engine.
//
// One logical query fans out to two backends over the same corpus: a
// vector similarity search over chunk embeddings and a graph traversal
// over case entities. The two calls run concurrently under a shared
// deadline; their answers are reconciled into one ranked, deduplicated
// result set keyed by case number.
//
// The engine tolerates a single backend failure by returning the
// surviving backend's results marked partial. Only when both backends
// fail does a query fail outright.
package search
