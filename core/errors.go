package core

import "fmt"

// EmbeddingError wraps a failed or timed-out embedding call. The pipeline
// treats it as non-fatal for the user's turn: retrieval is skipped and the
// turn proceeds without context.
type EmbeddingError struct {
	Err error
}

// Error implements the error interface.
func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding failed: %v", e.Err) }

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *EmbeddingError) Unwrap() error { return e.Err }

// RetrievalError wraps a failed, timed-out or malformed vector-store query
// (wrong dimensionality, invalid k or similarity floor, connectivity).
type RetrievalError struct {
	Err error
}

// Error implements the error interface.
func (e *RetrievalError) Error() string { return fmt.Sprintf("retrieval failed: %v", e.Err) }

// Unwrap exposes the underlying cause.
func (e *RetrievalError) Unwrap() error { return e.Err }

// CompletionError wraps a failed or timed-out language-model call. The turn
// fails visibly; conversation history up to that point is preserved.
type CompletionError struct {
	Err error
}

// Error implements the error interface.
func (e *CompletionError) Error() string { return fmt.Sprintf("completion failed: %v", e.Err) }

// Unwrap exposes the underlying cause.
func (e *CompletionError) Unwrap() error { return e.Err }

// RowError reports a single row's failure during bulk ingestion. Rows fail
// independently; the batch continues and the pipeline aggregates these into
// its report instead of aborting.
type RowError struct {
	RowID int64
	Err   error
}

// Error implements the error interface.
func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.RowID, e.Err) }

// Unwrap exposes the underlying cause.
func (e *RowError) Unwrap() error { return e.Err }
