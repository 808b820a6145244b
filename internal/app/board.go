package app

import (
	"context"
	"fmt"
	"io"
	"log"

	"projectboard/internal/config"
	"projectboard/internal/domain"
	"projectboard/internal/journal"
	"projectboard/internal/store"
	"projectboard/internal/views"
)

// Board is one store with its form, lists and journal attached.
type Board struct {
	Store    *store.Store
	Config   *config.Config
	Input    *views.Input
	Active   *views.List
	Finished *views.List
	Journal  *journal.Journal
	Logger   *log.Logger
}

type Options struct {
	Logger *log.Logger
	// JournalName overrides cfg.Journal.Name, mostly so tests get their own database.
	JournalName string
}

// New wires the views onto s. The journal subscribes last so it observes the
// same snapshots the lists render.
func New(ctx context.Context, s *store.Store, cfg *config.Config, opts Options) (*Board, error) {
	if s == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	b := &Board{
		Store:    s,
		Config:   cfg,
		Input:    views.NewInput(s, cfg.Validation),
		Active:   views.NewList(s, domain.Active, cfg.Lists.Active),
		Finished: views.NewList(s, domain.Finished, cfg.Lists.Finished),
		Logger:   logger,
	}
	b.Active.Sync()
	b.Finished.Sync()
	if cfg.Journal.Enabled {
		name := opts.JournalName
		if name == "" {
			name = cfg.Journal.Name
		}
		j, err := journal.Open(ctx, name, logger)
		if err != nil {
			return nil, err
		}
		if existing := s.Records(); len(existing) > 0 {
			if err := j.Record(ctx, s.Version(), existing); err != nil {
				j.Close()
				return nil, fmt.Errorf("seed journal: %w", err)
			}
		}
		s.SubscribeVersioned(j.Listen)
		b.Journal = j
	}
	logger.Printf("board ready: %d records, journal=%t", s.Len(), b.Journal != nil)
	return b, nil
}

// List returns the list that holds records of the given status.
func (b *Board) List(status domain.Status) *views.List {
	for _, l := range []*views.List{b.Active, b.Finished} {
		if l.Status() == status {
			return l
		}
	}
	return b.Active
}

// Resolve maps "#n" (1-based insertion position) or a literal id to a record id.
func (b *Board) Resolve(ref string) (string, bool) {
	if n, ok := parseRef(ref); ok {
		records := b.Store.Records()
		if n < 1 || n > len(records) {
			return "", false
		}
		return records[n-1].ID, true
	}
	_, ok := b.Store.Get(ref)
	return ref, ok
}

// Render prints both lists, under the board title in text mode.
func (b *Board) Render(w io.Writer, asJSON bool) error {
	if title := b.Config.Board.Title; title != "" && !asJSON {
		fmt.Fprintf(w, "%s\n\n", title)
	}
	for i, l := range []*views.List{b.Active, b.Finished} {
		if asJSON {
			if err := l.RenderJSON(w); err != nil {
				return err
			}
			continue
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		l.Render(w)
	}
	return nil
}

func (b *Board) Close() error {
	if b.Journal == nil {
		return nil
	}
	return b.Journal.Close()
}
