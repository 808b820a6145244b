package views

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"projectboard/internal/domain"
	"projectboard/internal/store"
)

// List shows the records of one status and accepts records dropped onto it.
type List struct {
	store   *store.Store
	status  domain.Status
	heading string
	records []domain.Record
	version uint64
	renders int
}

// NewList subscribes the list to s. It starts empty and fills on the next
// mutation; call Sync to pick up records added earlier.
func NewList(s *store.Store, status domain.Status, heading string) *List {
	l := &List{store: s, status: status, heading: heading}
	s.SubscribeVersioned(l.update)
	return l
}

// update keeps the records of the list's status. Snapshots older than the one
// already shown are skipped.
func (l *List) update(version uint64, records []domain.Record) {
	if version < l.version {
		return
	}
	l.version = version
	relevant := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if r.Status == l.status {
			relevant = append(relevant, r)
		}
	}
	l.records = relevant
	l.renders++
}

// Sync loads the store's current records without waiting for a mutation.
func (l *List) Sync() {
	l.update(l.store.Version(), l.store.Records())
}

func (l *List) Status() domain.Status { return l.status }

// Updates counts how many snapshots the list has received.
func (l *List) Updates() int { return l.renders }

func (l *List) Records() []domain.Record {
	out := make([]domain.Record, len(l.records))
	copy(out, l.records)
	return out
}

// Drop moves the record with the given id onto this list.
func (l *List) Drop(id string) {
	l.store.MoveRecord(id, l.status)
}

func (l *List) Render(w io.Writer) {
	fmt.Fprintln(w, l.heading)
	if len(l.records) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "ID", "Title", "People", "Description"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, WidthMax: 48},
	})
	for i, r := range l.records {
		tw.AppendRow(table.Row{i + 1, r.ID, r.Title, assignedLabel(r.Assignees), r.Description})
	}
	tw.Render()
}

func (l *List) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Heading string          `json:"heading"`
		Status  domain.Status   `json:"status"`
		Records []domain.Record `json:"records"`
	}{l.heading, l.status, nonNil(l.records)})
}

func assignedLabel(n int) string {
	if n == 1 {
		return "1 person"
	}
	return fmt.Sprintf("%d persons", n)
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
