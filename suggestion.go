package dispatch

import (
	"context"
	"sort"
	"strings"
)

// Suggestion is one candidate completion (spec §4.B: "a suggestion record
// carries a required suggestion... and optional description"). Modeled on
// the teacher's Suggestion (suggestions.go), trimmed of the Range/Tooltip
// fields that exist there only to support brigodier's Redirect/Fork
// mechanism, which this repo does not carry (see DESIGN.md).
type Suggestion struct {
	Text        string
	Description string
}

// SuggestionSource is the async (context, current-prefix) -> suggestions
// contract a Component exposes (spec §4.B). An external collaborator: the
// tree only ever filters and merges what this returns.
type SuggestionSource[C any] interface {
	Suggestions(ctx context.Context, tc *TreeContext[C], prefix string) *Future[[]Suggestion]
}

// SuggestionSourceFunc adapts a plain function to SuggestionSource,
// running it on its own goroutine via Go so synchronous sources
// still participate in the cooperative-async contract uniformly.
type SuggestionSourceFunc[C any] func(ctx context.Context, tc *TreeContext[C], prefix string) ([]Suggestion, error)

func (f SuggestionSourceFunc[C]) Suggestions(ctx context.Context, tc *TreeContext[C], prefix string) *Future[[]Suggestion] {
	return Go(ctx, func(ctx context.Context) ([]Suggestion, error) { return f(ctx, tc, prefix) })
}

// NoSuggestions is a SuggestionSource that never proposes anything, the
// zero-value default for components that don't participate in
// completion (e.g. a flag argument type with no enumerable values).
func NoSuggestions[C any]() SuggestionSource[C] {
	return SuggestionSourceFunc[C](func(context.Context, *TreeContext[C], string) ([]Suggestion, error) {
		return nil, nil
	})
}

// filterSuggestions keeps candidates that start with prefix and differ
// from it (spec §4.B: "the tree filters by candidate.starts_with(prefix)
// AND candidate != prefix").
func filterSuggestions(candidates []Suggestion, prefix string) []Suggestion {
	out := make([]Suggestion, 0, len(candidates))
	for _, s := range candidates {
		if s.Text != prefix && strings.HasPrefix(s.Text, prefix) {
			out = append(out, s)
		}
	}
	return out
}

// mergeSuggestions dedups by text (keeping first occurrence), placing
// literal-sourced suggestions (sorted lexicographically) ahead of
// variable-sourced ones (left in the insertion order their suggestion
// source produced them in) — spec §9's Open Question on suggestion
// ordering, resolved per DESIGN.md.
func mergeSuggestions(literalGroups, dynamicGroups [][]Suggestion) []Suggestion {
	var literals []Suggestion
	for _, g := range literalGroups {
		literals = append(literals, g...)
	}
	sort.Slice(literals, func(i, j int) bool {
		return strings.ToLower(literals[i].Text) < strings.ToLower(literals[j].Text)
	})

	var dynamic []Suggestion
	for _, g := range dynamicGroups {
		dynamic = append(dynamic, g...)
	}

	seen := make(map[string]struct{})
	var out []Suggestion
	for _, s := range append(literals, dynamic...) {
		if _, ok := seen[s.Text]; ok {
			continue
		}
		seen[s.Text] = struct{}{}
		out = append(out, s)
	}
	return out
}
