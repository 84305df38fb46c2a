// Package lexquery is a hybrid legal-case retrieval engine.
//
// It answers one logical query with two complementary strategies over
// the same corpus: semantic similarity search over chunk embeddings
// and relationship search over a graph of cases, courts, judges,
// parties, and legal issues. The two backends run concurrently under a
// shared deadline and their answers are reconciled into one ranked,
// deduplicated result set. A single failing backend degrades the
// response to partial instead of failing the query.
//
// The Client in this package wires the whole system together from
// configuration; the building blocks live under pkg/.
package lexquery
