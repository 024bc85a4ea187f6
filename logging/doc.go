// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug
// any structured logger. It also offers a richer RagMeshLogger with
// contextual helpers (session, invocation, component) and domain specific
// helpers for embedding, retrieval, completion and ingestion calls.
package logging
