package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"codeberg.org/snonux/babelcast/internal/languages"
	"codeberg.org/snonux/babelcast/internal/translation"
)

// ModelStore loads translation models
type ModelStore interface {
	GetOrLoad(ctx context.Context, modelID string) (*translation.LoadedModel, error)
}

// Lister handles listing the translation models
type Lister struct {
	store ModelStore
	out   io.Writer
}

// NewLister creates a new model lister. store may be nil when no check is
// requested.
func NewLister(store ModelStore, out io.Writer) *Lister {
	return &Lister{
		store: store,
		out:   out,
	}
}

// ModelIDs returns the distinct model ids of the pair table, sorted
func ModelIDs() []string {
	seen := map[string]bool{}
	var ids []string
	for _, p := range languages.Pairs() {
		if !seen[p.ModelID] {
			seen[p.ModelID] = true
			ids = append(ids, p.ModelID)
		}
	}
	sort.Strings(ids)
	return ids
}

// ListModels prints every model with the pairs it serves. With check set,
// each model is loaded through the store and the outcome is printed. The
// returned error counts the models that failed to load.
func (l *Lister) ListModels(ctx context.Context, check bool) error {
	if check && l.store == nil {
		return fmt.Errorf("no model backend configured for --check")
	}

	byModel := map[string][]string{}
	for _, p := range languages.Pairs() {
		byModel[p.ModelID] = append(byModel[p.ModelID], p.Key())
	}

	fmt.Fprintln(l.out, "Translation models:")

	failed := 0
	for _, id := range ModelIDs() {
		fmt.Fprintf(l.out, "  %s\n", id)
		for _, key := range byModel[id] {
			fmt.Fprintf(l.out, "      %s\n", key)
		}
		if !check {
			continue
		}

		start := time.Now()
		if _, err := l.store.GetOrLoad(ctx, id); err != nil {
			failed++
			fmt.Fprintf(l.out, "    ✗ %v\n", err)
			continue
		}
		fmt.Fprintf(l.out, "    ✓ loaded in %s\n", time.Since(start).Round(time.Millisecond))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d models failed to load", failed, len(byModel))
	}
	return nil
}

// ListPairs prints the supported language pairs
func ListPairs(out io.Writer) {
	fmt.Fprintln(out, "Supported language pairs:")
	for _, p := range languages.Pairs() {
		fmt.Fprintf(out, "  %-20s %-32s speech: %s\n", p.Key(), p.ModelID, p.OutputLang)
	}
}
