package testutil

import (
	"fmt"

	"github.com/hupe1980/ragmesh/core"
)

// AxisVector returns a core.EmbeddingDim unit vector pointing along the
// given axis. Cosine similarity between AxisVector(i) and AxisVector(j) is
// exactly 1 for i == j and 0 otherwise, which makes ranking assertions
// trivial.
func AxisVector(axis int) []float32 {
	vec := make([]float32, core.EmbeddingDim)
	vec[axis%core.EmbeddingDim] = 1
	return vec
}

// BlendVector returns a unit-direction vector mixing two axes. weight in
// [0,1] controls the pull toward the primary axis, so similarity against
// AxisVector(primary) decreases as weight does.
func BlendVector(primary, secondary int, weight float32) []float32 {
	vec := make([]float32, core.EmbeddingDim)
	vec[primary%core.EmbeddingDim] = weight
	vec[secondary%core.EmbeddingDim] = 1 - weight
	return vec
}

// Record builds an embedded record on the given axis with generated content.
func Record(rowID int64, axis int) core.Record {
	return core.Record{
		RowID:     rowID,
		Content:   fmt.Sprintf("Unidade U%d, Bloco %d, Tipologia T1", rowID, axis),
		Metadata:  map[string]any{"unidade": fmt.Sprintf("U%d", rowID)},
		Embedding: AxisVector(axis),
	}
}

// Turns builds a sequenced alternating user/assistant history of n turns.
func Turns(n int) []core.Turn {
	turns := make([]core.Turn, n)
	for i := range turns {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		turns[i] = core.Turn{Role: role, Text: fmt.Sprintf("turn %d", i), Seq: i}
	}
	return turns
}
