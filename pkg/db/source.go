package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/yumyai/panva/pkg/model"
	"github.com/yumyai/panva/pkg/tree"
)

var _ model.Source = (*Repository)(nil)

func decodeMetadata(raw sql.NullString) (model.Metadata, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var md model.Metadata
	if err := json.Unmarshal([]byte(raw.String), &md); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return md, nil
}

func (r *Repository) Homologies(ctx context.Context) ([]*model.Homology, error) {
	const query = `
		SELECT homology_id, name, members, alignment_length, metadata
		FROM homologies
		ORDER BY homology_id;`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query homologies: %w", err)
	}
	defer rows.Close()

	var res []*model.Homology
	for rows.Next() {
		var (
			h   model.Homology
			raw sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.Name, &h.Members, &h.AlignmentLength, &raw); err != nil {
			return nil, fmt.Errorf("scan homology: %w", err)
		}
		if h.Metadata, err = decodeMetadata(raw); err != nil {
			return nil, err
		}
		res = append(res, &h)
	}
	return res, rows.Err()
}

func (r *Repository) tree(ctx context.Context, homologyID, name string) (*tree.Node, error) {
	var newick string
	err := r.db.QueryRowContext(ctx,
		`SELECT newick FROM trees WHERE homology_id = ? AND name = ?`, homologyID, name).Scan(&newick)
	if err != nil {
		return nil, err
	}
	root, err := tree.ParseNewick(newick)
	if err != nil {
		return nil, fmt.Errorf("tree %s: %w", name, err)
	}
	return root, nil
}

func (r *Repository) DefaultTree(ctx context.Context, homologyID string) (*tree.Node, error) {
	root, err := r.tree(ctx, homologyID, model.DendroDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: homology %s", model.ErrNoDefaultTree, homologyID)
	}
	return root, err
}

func (r *Repository) AuxiliaryTree(ctx context.Context, name string) (*tree.Node, error) {
	root, err := r.tree(ctx, "", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownTree, name)
	}
	return root, err
}

func (r *Repository) Alignment(ctx context.Context, homologyID string) ([]model.AlignmentRecord, error) {
	const query = `
		SELECT mrna_id, genome_nr, position, nucleotide, metadata
		FROM alignments
		WHERE homology_id = ?
		ORDER BY mrna_id, position;`

	rows, err := r.db.QueryContext(ctx, query, homologyID)
	if err != nil {
		return nil, fmt.Errorf("query alignment: %w", err)
	}
	defer rows.Close()

	var res []model.AlignmentRecord
	for rows.Next() {
		var (
			rec model.AlignmentRecord
			raw sql.NullString
		)
		if err := rows.Scan(&rec.MRNAID, &rec.GenomeNr, &rec.Position, &rec.Nucleotide, &raw); err != nil {
			return nil, fmt.Errorf("scan alignment row: %w", err)
		}
		if rec.Metadata, err = decodeMetadata(raw); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

func (r *Repository) SequenceMetadata(ctx context.Context, homologyID string) ([]model.SequenceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT mrna_id, metadata FROM sequences WHERE homology_id = ? ORDER BY mrna_id`, homologyID)
	if err != nil {
		return nil, fmt.Errorf("query sequences: %w", err)
	}
	defer rows.Close()

	var res []model.SequenceRecord
	for rows.Next() {
		var (
			rec model.SequenceRecord
			raw sql.NullString
		)
		if err := rows.Scan(&rec.MRNAID, &raw); err != nil {
			return nil, fmt.Errorf("scan sequence row: %w", err)
		}
		if rec.Metadata, err = decodeMetadata(raw); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

func (r *Repository) VariablePositions(ctx context.Context, homologyID string) ([]model.VariablePositionRecord, error) {
	const query = `
		SELECT position, a, c, g, t, gap, metadata
		FROM variable_positions
		WHERE homology_id = ?
		ORDER BY position;`

	rows, err := r.db.QueryContext(ctx, query, homologyID)
	if err != nil {
		return nil, fmt.Errorf("query variable positions: %w", err)
	}
	defer rows.Close()

	var res []model.VariablePositionRecord
	for rows.Next() {
		var (
			rec model.VariablePositionRecord
			raw sql.NullString
		)
		if err := rows.Scan(&rec.Position, &rec.A, &rec.C, &rec.G, &rec.T, &rec.Gap, &raw); err != nil {
			return nil, fmt.Errorf("scan variable position: %w", err)
		}
		if rec.Metadata, err = decodeMetadata(raw); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

func (r *Repository) Annotations(ctx context.Context, homologyID string) ([]model.AnnotationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT mrna_id, position, flags FROM annotations WHERE homology_id = ? ORDER BY mrna_id, position`, homologyID)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var res []model.AnnotationRecord
	for rows.Next() {
		var (
			rec   model.AnnotationRecord
			flags string
		)
		if err := rows.Scan(&rec.MRNAID, &rec.Position, &flags); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		if err := json.Unmarshal([]byte(flags), &rec.Flags); err != nil {
			return nil, fmt.Errorf("decode annotation flags: %w", err)
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// CustomDendrogram clusters the sequences of a homology group with UPGMA over the
// Hamming distance of their symbols at positions. Leaves are labelled by mRNA id.
func (r *Repository) CustomDendrogram(ctx context.Context, homologyID string, positions []int) (*tree.Node, error) {
	records, err := r.Alignment(ctx, homologyID)
	if err != nil {
		return nil, err
	}

	positions = slices.Clone(positions)
	slices.Sort(positions)
	positions = slices.Compact(positions)

	column := make(map[int]int, len(positions))
	for i, p := range positions {
		column[p] = i
	}

	var (
		labels []string
		rows   [][]byte
		index  = make(map[string]int)
	)
	for _, rec := range records {
		i, ok := index[rec.MRNAID]
		if !ok {
			i = len(labels)
			index[rec.MRNAID] = i
			labels = append(labels, rec.MRNAID)
			row := make([]byte, len(positions))
			for j := range row {
				row[j] = model.Gap
			}
			rows = append(rows, row)
		}
		if j, ok := column[rec.Position]; ok {
			c := model.NormalizeNucleotide(rec.Nucleotide)
			if c >= 'a' && c <= 'z' {
				c -= 'a' - 'A'
			}
			rows[i][j] = c
		}
	}

	root, err := tree.UPGMA(labels, tree.HammingMatrix(rows))
	if err != nil {
		return nil, fmt.Errorf("custom dendrogram for %s: %w", homologyID, err)
	}
	return root, nil
}
