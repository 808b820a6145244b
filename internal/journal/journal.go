// Package journal keeps an activity log of board changes. It subscribes to a
// store like any other view and derives entries by comparing each snapshot
// with the one it saw before.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"projectboard/internal/db"
	"projectboard/internal/domain"
	"projectboard/internal/migrate"
)

var ErrClosed = errors.New("journal closed")

type Journal struct {
	DB     *sql.DB
	Now    func() time.Time
	Logger *log.Logger

	seen    map[string]domain.Status
	version uint64
	closed  bool
}

// Open creates an in-memory journal database and applies the schema.
func Open(ctx context.Context, name string, logger *log.Logger) (*Journal, error) {
	conn, err := db.Open(db.Config{Name: name})
	if err != nil {
		return nil, err
	}
	if _, err := migrate.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return New(conn, logger), nil
}

func New(conn *sql.DB, logger *log.Logger) *Journal {
	return &Journal{
		DB:     conn,
		Now:    time.Now,
		Logger: logger,
		seen:   make(map[string]domain.Status),
	}
}

func (j *Journal) logger() *log.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return log.Default()
}

func (j *Journal) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

// Listen is a versioned store listener. Failures are logged, never returned
// to the store.
func (j *Journal) Listen(version uint64, records []domain.Record) {
	if err := j.Record(context.Background(), version, records); err != nil {
		j.logger().Printf("journal: %v", err)
	}
}

// Record writes one entry per record that is new or whose status changed
// since the previous snapshot. Records absent from the snapshot are ignored,
// and so is a snapshot whose version is not newer than the last one recorded:
// an outer fan-out resuming after a re-entrant mutation carries older state.
func (j *Journal) Record(ctx context.Context, version uint64, records []domain.Record) error {
	if j.closed {
		return ErrClosed
	}
	if version <= j.version {
		return nil
	}
	var pending []domain.Entry
	for _, r := range records {
		prev, ok := j.seen[r.ID]
		switch {
		case !ok:
			pending = append(pending, domain.Entry{Kind: domain.EntryAdded, RecordID: r.ID, Title: r.Title, ToStatus: r.Status.String()})
		case prev != r.Status:
			pending = append(pending, domain.Entry{Kind: domain.EntryMoved, RecordID: r.ID, Title: r.Title, FromStatus: prev.String(), ToStatus: r.Status.String()})
		}
	}
	if len(pending) == 0 {
		j.version = version
		return nil
	}
	tx, err := j.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	ts := j.now().UTC().Format(time.RFC3339)
	for _, e := range pending {
		if err := appendEntry(ctx, tx, ts, e); err != nil {
			return fmt.Errorf("append %s %s: %w", e.Kind, e.RecordID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	for _, r := range records {
		j.seen[r.ID] = r.Status
	}
	j.version = version
	return nil
}

func appendEntry(ctx context.Context, tx *sql.Tx, ts string, e domain.Entry) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO entries(ts,kind,record_id,title,from_status,to_status) VALUES (?,?,?,?,?,?)`,
		ts, e.Kind, e.RecordID, e.Title, nullable(e.FromStatus), e.ToStatus)
	return err
}

// Tail returns up to limit of the newest entries, oldest first.
func (j *Journal) Tail(ctx context.Context, limit int) ([]domain.Entry, error) {
	if j.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.DB.QueryContext(ctx, `SELECT id,ts,kind,record_id,title,COALESCE(from_status,''),to_status FROM entries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	res, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	for i, k := 0, len(res)-1; i < k; i, k = i+1, k-1 {
		res[i], res[k] = res[k], res[i]
	}
	return res, nil
}

// ForRecord returns every entry about one record, oldest first.
func (j *Journal) ForRecord(ctx context.Context, recordID string) ([]domain.Entry, error) {
	if j.closed {
		return nil, ErrClosed
	}
	rows, err := j.DB.QueryContext(ctx, `SELECT id,ts,kind,record_id,title,COALESCE(from_status,''),to_status FROM entries WHERE record_id=? ORDER BY id`, recordID)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func (j *Journal) Count(ctx context.Context) (int, error) {
	if j.closed {
		return 0, ErrClosed
	}
	var n int
	err := j.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n)
	return n, err
}

func (j *Journal) Close() error {
	if j.closed {
		return nil
	}
	j.closed = true
	return j.DB.Close()
}

func scanEntries(rows *sql.Rows) ([]domain.Entry, error) {
	defer rows.Close()
	var res []domain.Entry
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.TS, &e.Kind, &e.RecordID, &e.Title, &e.FromStatus, &e.ToStatus); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
