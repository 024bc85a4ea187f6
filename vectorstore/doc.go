// Package vectorstore contains concrete core.VectorStore implementations.
// The store interface and the Record/Match types reside in the core package;
// depend on core.VectorStore in your code and select an implementation
// (in-memory, Supabase PostgREST or pgvector/Postgres) at wiring time.
//
// Rationale: keeps domain contracts centralized while allowing pluggable
// backends to be added without introducing dependency cycles.
package vectorstore
