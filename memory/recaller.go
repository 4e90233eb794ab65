package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chronosynth/chronosynth/model"
)

// DefaultEmbedTimeout bounds each embedding call made by a Recaller.
const DefaultEmbedTimeout = 10 * time.Second

// RecallerOptions configures a Recaller instance.
type RecallerOptions struct {
	EmbedTimeout time.Duration
}

// Recaller pairs a Store with an optional embedder and exposes the two
// operations the pipeline needs: Recall pulls prior summaries similar to
// a new entry, Remember persists a finished run. With a nil embedder,
// Recall falls back to the user's most recent entries and Remember stores
// entries without a vector.
type Recaller struct {
	store        Store
	embedder     model.Embedder
	embedTimeout time.Duration
}

// NewRecaller composes a store and an embedder. The embedder may be nil.
func NewRecaller(store Store, embedder model.Embedder, optFns ...func(o *RecallerOptions)) *Recaller {
	opts := RecallerOptions{EmbedTimeout: DefaultEmbedTimeout}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Recaller{
		store:        store,
		embedder:     embedder,
		embedTimeout: opts.EmbedTimeout,
	}
}

// Recall returns up to limit prior summaries for the user, most relevant
// first. Blank summaries are dropped.
func (r *Recaller) Recall(ctx context.Context, userID, text string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	var (
		entries []Entry
		err     error
	)
	if r.embedder == nil {
		entries, err = r.store.Recent(ctx, userID, limit)
	} else {
		vec, embedErr := r.embed(ctx, text)
		if embedErr != nil {
			return nil, fmt.Errorf("embed query: %w", embedErr)
		}
		entries, err = r.store.Search(ctx, userID, vec, limit)
	}
	if err != nil {
		return nil, err
	}

	summaries := make([]string, 0, len(entries))
	for _, e := range entries {
		if s := strings.TrimSpace(e.Summary); s != "" {
			summaries = append(summaries, s)
		}
	}

	return summaries, nil
}

// Remember persists one finished run as a future recall candidate.
func (r *Recaller) Remember(ctx context.Context, userID, text, summary string) error {
	entry := Entry{
		UserID:  userID,
		Text:    text,
		Summary: summary,
		At:      time.Now().UTC(),
	}

	if r.embedder != nil {
		vec, err := r.embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embed entry: %w", err)
		}
		entry.Embedding = vec
	}

	if _, err := r.store.Save(ctx, entry); err != nil {
		return fmt.Errorf("save memory: %w", err)
	}

	return nil
}

func (r *Recaller) embed(ctx context.Context, text string) ([]float32, error) {
	embedCtx, cancel := context.WithTimeout(ctx, r.embedTimeout)
	defer cancel()

	return r.embedder.Embed(embedCtx, text)
}
