// Package core centralizes the domain contracts of RagMesh: conversation
// turns, embedded records, retrieval matches, prompt messages, the
// VectorStore interface and the typed error kinds shared by every pipeline
// stage.
//
// Rationale: keeping contracts in one dependency-free package lets provider
// packages (embedder, vectorstore, model) and the chat engine evolve
// independently without import cycles. Concrete implementations live in
// sibling packages and are selected at wiring time.
package core
