// Package store holds the board's records in memory and notifies listeners
// synchronously after every committed mutation.
//
// A Store is driven from a single goroutine. Listeners may call back into the
// store; such calls are not guarded and run to completion before the outer
// fan-out resumes.
package store

import (
	"io"
	"log"
	"sync"

	"github.com/google/uuid"

	"projectboard/internal/domain"
)

// Listener receives a private copy of every record after each mutation.
type Listener func(records []domain.Record)

// VersionedListener also receives the version of the mutation the snapshot
// was taken at. Versions start at 1 and increase by one per committed
// mutation, so a listener can tell a resumed outer fan-out from a newer one.
type VersionedListener func(version uint64, records []domain.Record)

type Store struct {
	records   []domain.Record
	listeners []VersionedListener
	version   uint64
	newID     func() string
	logger    *log.Logger
}

type Option func(*Store)

// WithIDFunc replaces the record id generator. The function must not repeat ids.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		newID:  uuid.NewString,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	instanceOnce sync.Once
	instance     *Store
)

// Instance returns the process-wide store, building it on first use.
func Instance() *Store {
	instanceOnce.Do(func() {
		instance = New()
	})
	return instance
}

// AddRecord appends a new active record and notifies listeners. Input is not
// validated here; callers are expected to have done so.
func (s *Store) AddRecord(title, description string, assignees int) string {
	r := domain.Record{
		ID:          s.newID(),
		Title:       title,
		Description: description,
		Assignees:   assignees,
		Status:      domain.Active,
	}
	s.records = append(s.records, r)
	s.logger.Printf("store: added %s %q", r.ID, r.Title)
	s.notify()
	return r.ID
}

// MoveRecord sets the status of the record with the given id. Unknown ids and
// moves to the current status are ignored and do not notify.
func (s *Store) MoveRecord(id string, status domain.Status) {
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		if s.records[i].Status == status {
			return
		}
		s.logger.Printf("store: moved %s %s -> %s", id, s.records[i].Status, status)
		s.records[i].Status = status
		s.notify()
		return
	}
}

// Subscribe registers l for future mutations. Current state is not replayed.
func (s *Store) Subscribe(l Listener) {
	s.SubscribeVersioned(func(_ uint64, records []domain.Record) { l(records) })
}

// SubscribeVersioned is Subscribe for listeners that track mutation versions.
// Both kinds share one list and are called in subscription order.
func (s *Store) SubscribeVersioned(l VersionedListener) {
	s.listeners = append(s.listeners, l)
}

// Version returns the version of the last committed mutation, 0 before any.
func (s *Store) Version() uint64 { return s.version }

// Records returns a copy of all records in insertion order.
func (s *Store) Records() []domain.Record {
	return clone(s.records)
}

func (s *Store) Get(id string) (domain.Record, bool) {
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Record{}, false
}

func (s *Store) Len() int { return len(s.records) }

// notify fans out the state as of this call. Listeners added, or records
// changed, by a listener during the loop do not affect the remaining calls.
func (s *Store) notify() {
	s.version++
	version := s.version
	snap := clone(s.records)
	listeners := append([]VersionedListener(nil), s.listeners...)
	for _, l := range listeners {
		l(version, clone(snap))
	}
}

func clone(in []domain.Record) []domain.Record {
	out := make([]domain.Record, len(in))
	copy(out, in)
	return out
}
