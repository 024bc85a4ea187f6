// Package prompt assembles the message sequence sent to a completion model:
// a fixed system preamble, a rendered block of retrieved records in ranking
// order and the full conversation history as role-tagged messages.
//
// Assembly is pure: no I/O, and identical inputs always produce byte
// identical output. When a token budget is set, the assembler drops the
// lowest-ranked matches first, then the oldest history turns; the system
// preamble and the most recent turn always survive.
package prompt

import (
	"fmt"
	"strings"

	"github.com/hupe1980/ragmesh/core"
)

// contextHeader introduces the retrieved block so the model can tell
// grounding data from conversation.
const contextHeader = "Relevant records:"

// metadataLabelKeys are rendered, in this order, into each match's
// identifying label. The fixed order keeps output deterministic regardless
// of map iteration.
var metadataLabelKeys = []string{"bloco", "unidade", "tipologia"}

// Options configure prompt assembly.
type Options struct {
	// Budget is the approximate token budget for the whole prompt.
	// 0 disables truncation.
	Budget int
}

// Build assembles the prompt from history, matches and the system preamble.
func Build(history []core.Turn, matches []core.Match, preamble string, optFns ...func(o *Options)) []core.Message {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Budget > 0 {
		matches, history = fitBudget(history, matches, preamble, opts.Budget)
	}

	msgs := make([]core.Message, 0, len(history)+2)
	msgs = append(msgs, core.SystemMessage(preamble))
	if block := RenderMatches(matches); block != "" {
		msgs = append(msgs, core.SystemMessage(contextHeader+"\n"+block))
	}
	for _, turn := range history {
		msgs = append(msgs, core.Message{Role: turn.Role, Content: turn.Text})
	}
	return msgs
}

// RenderMatches renders retrieved records, one line per match in ranking
// order, each prefixed by an identifying label built from the row id and a
// fixed subset of metadata keys. Empty input renders to the empty string.
func RenderMatches(matches []core.Match) string {
	if len(matches) == 0 {
		return ""
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, "- "+matchLabel(m)+strings.TrimSpace(m.Record.Content))
	}
	return strings.Join(lines, "\n")
}

func matchLabel(m core.Match) string {
	parts := []string{fmt.Sprintf("row_id=%d", m.Record.RowID)}
	for _, key := range metadataLabelKeys {
		if v, ok := m.Record.Metadata[key]; ok && v != nil && v != "" {
			parts = append(parts, fmt.Sprintf("%s=%v", key, v))
		}
	}
	return "[" + strings.Join(parts, " ") + "] "
}

// fitBudget trims matches (lowest rank first) and then history (oldest
// first) until the estimated prompt size fits. The preamble and the most
// recent turn are never dropped, even when they alone exceed the budget.
func fitBudget(history []core.Turn, matches []core.Match, preamble string, budget int) ([]core.Match, []core.Turn) {
	cost := func(ms []core.Match, hs []core.Turn) int {
		total := approxTokens(preamble)
		if len(ms) > 0 {
			total += approxTokens(contextHeader + "\n" + RenderMatches(ms))
		}
		for _, turn := range hs {
			total += approxTokens(turn.Text)
		}
		return total
	}

	for len(matches) > 0 && cost(matches, history) > budget {
		matches = matches[:len(matches)-1]
	}
	for len(history) > 1 && cost(matches, history) > budget {
		history = history[1:]
	}
	return matches, history
}

// approxTokens estimates token counts with the usual ~4 chars/token
// heuristic, plus a small per-message overhead for role tagging.
func approxTokens(s string) int {
	return (len(s)+3)/4 + 4
}
