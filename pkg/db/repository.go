package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS homologies (
	homology_id      TEXT PRIMARY KEY,
	name             TEXT NOT NULL DEFAULT '',
	members          INTEGER NOT NULL DEFAULT 0,
	alignment_length INTEGER NOT NULL DEFAULT 0,
	metadata         TEXT
);
-- auxiliary trees are stored with an empty homology_id
CREATE TABLE IF NOT EXISTS trees (
	homology_id TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL,
	newick      TEXT NOT NULL,
	PRIMARY KEY (homology_id, name)
);
CREATE TABLE IF NOT EXISTS alignments (
	homology_id TEXT NOT NULL,
	mrna_id     TEXT NOT NULL,
	genome_nr   INTEGER NOT NULL,
	position    INTEGER NOT NULL,
	nucleotide  TEXT NOT NULL,
	metadata    TEXT,
	PRIMARY KEY (homology_id, mrna_id, position)
);
CREATE TABLE IF NOT EXISTS sequences (
	homology_id TEXT NOT NULL,
	mrna_id     TEXT NOT NULL,
	metadata    TEXT,
	PRIMARY KEY (homology_id, mrna_id)
);
CREATE TABLE IF NOT EXISTS variable_positions (
	homology_id TEXT NOT NULL,
	position    INTEGER NOT NULL,
	a           INTEGER NOT NULL DEFAULT 0,
	c           INTEGER NOT NULL DEFAULT 0,
	g           INTEGER NOT NULL DEFAULT 0,
	t           INTEGER NOT NULL DEFAULT 0,
	gap         INTEGER NOT NULL DEFAULT 0,
	metadata    TEXT,
	PRIMARY KEY (homology_id, position)
);
CREATE TABLE IF NOT EXISTS annotations (
	homology_id TEXT NOT NULL,
	mrna_id     TEXT NOT NULL,
	position    INTEGER NOT NULL,
	flags       TEXT NOT NULL,
	PRIMARY KEY (homology_id, mrna_id, position)
);
`

// Repository serves homology group datasets from a SQLite database.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Open opens (or creates) the database file at path and makes sure the schema exists.
func Open(ctx context.Context, path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	repo := NewRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}
