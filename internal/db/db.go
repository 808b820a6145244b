package db

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

const defaultName = "board-journal"

type Config struct {
	// Name identifies the in-memory database. Handles opened with the same
	// name share one database for as long as any of them stays open.
	Name string
}

func dsn(name string) string {
	if name == "" {
		name = defaultName
	}
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", url.PathEscape(name))
}

// Open opens an in-memory SQLite database. Nothing is written to disk.
func Open(cfg Config) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dsn(cfg.Name))
	if err != nil {
		return nil, err
	}
	// a memory database lives only as long as a connection to it does
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	return conn, nil
}
