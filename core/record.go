package core

// EmbeddingDim is the fixed dimensionality of every embedding vector in the
// system. It matches text-embedding-3-small and the vector(1536) column of
// the record store; vectors of any other length are rejected before they
// reach a store.
const EmbeddingDim = 1536

// Record is an embedded row stored durably in the vector store. RowID is the
// primary key: re-ingesting the same RowID replaces content, metadata and
// embedding (upsert semantics).
type Record struct {
	RowID     int64          `json:"row_id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
}

// Match is a retrieval result: a record reference plus its similarity to the
// query in [0,1]. Matches are ephemeral, produced per query and ordered by
// descending similarity.
type Match struct {
	Record     Record  `json:"record"`
	Similarity float64 `json:"similarity"`
}
