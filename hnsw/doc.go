// Package hnsw implements a Hierarchical Navigable Small World graph for
// approximate nearest-neighbor search over a column of float32 vectors.
//
// The graph is a stack of layers. Layer 0 holds every node; each higher
// layer holds an exponentially sparser subset, chosen per node by drawing
// floor(-ln(U) * ML) from a seeded generator. Searches and insertions enter
// at the topmost layer and descend greedily, then run a bounded best-first
// expansion on the target layer.
//
// Concurrency follows a single-writer/multiple-reader discipline: Insert is
// serialized by an internal mutex, while any number of Search calls may run
// concurrently with each other and with an in-flight Insert. Adjacency lists
// are immutable once published and replaced wholesale through atomic
// pointers, so a concurrent reader observes either the pre- or post-insert
// neighborhood, never a torn list.
//
// The structure is insert-only: nodes are never removed, and a node's
// adjacency may only shrink when a later insertion prunes an overflowing
// neighbor list back under the per-layer degree cap.
package hnsw
