package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/yumyai/panva/pkg/model"
	"github.com/yumyai/panva/pkg/tree"
)

func encodeMetadata(md model.Metadata) (any, error) {
	if len(md) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(md)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return string(raw), nil
}

// insertAll runs one prepared statement per item inside a transaction.
func insertAll[T any](ctx context.Context, db *sql.DB, query string, items []T, args func(T) ([]any, error)) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fail to begin tx %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		a, err := args(item)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, a...); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
	}
	return tx.Commit()
}

func (r *Repository) PutHomologies(ctx context.Context, homologies []*model.Homology) error {
	const query = `
		INSERT OR REPLACE INTO homologies (homology_id, name, members, alignment_length, metadata)
		VALUES (?, ?, ?, ?, ?);`
	return insertAll(ctx, r.db, query, homologies, func(h *model.Homology) ([]any, error) {
		md, err := encodeMetadata(h.Metadata)
		return []any{h.ID, h.Name, h.Members, h.AlignmentLength, md}, err
	})
}

// PutTree stores a tree of a homology group. An empty homologyID stores an auxiliary tree.
func (r *Repository) PutTree(ctx context.Context, homologyID, name string, root *tree.Node) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO trees (homology_id, name, newick) VALUES (?, ?, ?)`,
		homologyID, name, root.String())
	if err != nil {
		return fmt.Errorf("insert tree %s: %w", name, err)
	}
	return nil
}

func (r *Repository) PutAlignment(ctx context.Context, homologyID string, records []model.AlignmentRecord) error {
	const query = `
		INSERT OR REPLACE INTO alignments (homology_id, mrna_id, genome_nr, position, nucleotide, metadata)
		VALUES (?, ?, ?, ?, ?, ?);`
	return insertAll(ctx, r.db, query, records, func(rec model.AlignmentRecord) ([]any, error) {
		md, err := encodeMetadata(rec.Metadata)
		return []any{homologyID, rec.MRNAID, rec.GenomeNr, rec.Position, rec.Nucleotide, md}, err
	})
}

func (r *Repository) PutSequences(ctx context.Context, homologyID string, records []model.SequenceRecord) error {
	const query = `INSERT OR REPLACE INTO sequences (homology_id, mrna_id, metadata) VALUES (?, ?, ?);`
	return insertAll(ctx, r.db, query, records, func(rec model.SequenceRecord) ([]any, error) {
		md, err := encodeMetadata(rec.Metadata)
		return []any{homologyID, rec.MRNAID, md}, err
	})
}

func (r *Repository) PutVariablePositions(ctx context.Context, homologyID string, records []model.VariablePositionRecord) error {
	const query = `
		INSERT OR REPLACE INTO variable_positions (homology_id, position, a, c, g, t, gap, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
	return insertAll(ctx, r.db, query, records, func(rec model.VariablePositionRecord) ([]any, error) {
		md, err := encodeMetadata(rec.Metadata)
		return []any{homologyID, rec.Position, rec.A, rec.C, rec.G, rec.T, rec.Gap, md}, err
	})
}

func (r *Repository) PutAnnotations(ctx context.Context, homologyID string, records []model.AnnotationRecord) error {
	const query = `INSERT OR REPLACE INTO annotations (homology_id, mrna_id, position, flags) VALUES (?, ?, ?, ?);`
	return insertAll(ctx, r.db, query, records, func(rec model.AnnotationRecord) ([]any, error) {
		flags, err := json.Marshal(rec.Flags)
		if err != nil {
			return nil, fmt.Errorf("encode flags: %w", err)
		}
		return []any{homologyID, rec.MRNAID, rec.Position, string(flags)}, nil
	})
}
