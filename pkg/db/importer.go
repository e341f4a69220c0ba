package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/yumyai/panva/logger"
	"github.com/yumyai/panva/pkg/model"
	"github.com/yumyai/panva/pkg/tree"
	"go.uber.org/zap"
)

// Folder layout read by ImportDir. Every file may also be given gzipped with a .gz suffix.
//
//	homologies.csv                 id,name,members,alignment_length,<metadata...>
//	trees/<name>.newick            auxiliary trees, leaves are genome numbers
//	<homology_id>/tree.newick      default dendrogram, leaves are mRNA ids
//	<homology_id>/alignment.csv    mRNA_id,genome_nr,position,nucleotide,<metadata...>
//	<homology_id>/sequences.csv    mRNA_id,<metadata...>
//	<homology_id>/variable.csv     position,A,C,G,T,gap,<metadata...>
//	<homology_id>/annotations.csv  mRNA_id,position,<flag columns...>
const (
	homologiesFile  = "homologies.csv"
	treesDir        = "trees"
	defaultTreeFile = "tree.newick"
	alignmentFile   = "alignment.csv"
	sequencesFile   = "sequences.csv"
	variableFile    = "variable.csv"
	annotationsFile = "annotations.csv"
)

type ImportDir struct {
	Dir string
}

type ImportStats struct {
	Homologies     int
	AuxiliaryTrees int
	Skipped        []string
}

func NewImportDir(dir string) (*ImportDir, error) {
	required := []string{dir, filepath.Join(dir, homologiesFile)}

	var errs error
	for _, p := range required {
		if _, err := findInput(p); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		return nil, errs
	}
	return &ImportDir{Dir: dir}, nil
}

// findInput resolves path or its gzipped sibling.
func findInput(path string) (string, error) {
	for _, p := range []string{path, path + ".gz"} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", os.ErrNotExist, path)
}

type gzipFile struct {
	*pgzip.Reader
	f *os.File
}

func (g gzipFile) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

// openInput opens path, or path.gz decompressed with pgzip.
func openInput(path string) (io.ReadCloser, error) {
	p, err := findInput(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(p, ".gz") {
		return f, nil
	}
	zr, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return gzipFile{Reader: zr, f: f}, nil
}

// table is a CSV file with a header row.
type table struct {
	header []string
	rows   [][]string
}

func readTable(path string) (*table, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	r := csv.NewReader(in)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", path)
	}
	return &table{header: records[0], rows: records[1:]}, nil
}

func readNewick(path string) (*tree.Node, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	raw, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	root, err := tree.ParseNewick(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// ParseValue converts a CSV cell to a metadata value: numbers become float64,
// true/false become bool, an empty cell is nil and anything else stays a string.
func ParseValue(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

// fields binds the fixed leading columns of a table; the rest is metadata.
func (t *table) fields(path string, fixed ...string) (map[string]int, []int, error) {
	idx := make(map[string]int, len(t.header))
	for i, h := range t.header {
		idx[h] = i
	}
	isFixed := make(map[int]bool, len(fixed))
	for _, f := range fixed {
		i, ok := idx[f]
		if !ok {
			return nil, nil, fmt.Errorf("%s: missing column %q", path, f)
		}
		isFixed[i] = true
	}
	var rest []int
	for i := range t.header {
		if !isFixed[i] {
			rest = append(rest, i)
		}
	}
	return idx, rest, nil
}

func (t *table) metadata(row []string, columns []int) model.Metadata {
	var md model.Metadata
	for _, i := range columns {
		if i >= len(row) {
			continue
		}
		if v := ParseValue(row[i]); v != nil {
			if md == nil {
				md = make(model.Metadata)
			}
			md[t.header[i]] = v
		}
	}
	return md
}

func atoi(path, column, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: column %s: %w", path, column, err)
	}
	return n, nil
}

func readHomologies(path string) ([]*model.Homology, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	idx, rest, err := t.fields(path, "id")
	if err != nil {
		return nil, err
	}
	optional := map[string]bool{"name": true, "members": true, "alignment_length": true}
	rest = filterColumns(t, rest, optional)

	res := make([]*model.Homology, 0, len(t.rows))
	for _, row := range t.rows {
		h := &model.Homology{ID: row[idx["id"]], Metadata: t.metadata(row, rest)}
		if i, ok := idx["name"]; ok {
			h.Name = row[i]
		}
		if i, ok := idx["members"]; ok && row[i] != "" {
			if h.Members, err = atoi(path, "members", row[i]); err != nil {
				return nil, err
			}
		}
		if i, ok := idx["alignment_length"]; ok && row[i] != "" {
			if h.AlignmentLength, err = atoi(path, "alignment_length", row[i]); err != nil {
				return nil, err
			}
		}
		res = append(res, h)
	}
	return res, nil
}

func filterColumns(t *table, columns []int, drop map[string]bool) []int {
	res := columns[:0]
	for _, i := range columns {
		if !drop[t.header[i]] {
			res = append(res, i)
		}
	}
	return res
}

func readAlignment(path string) ([]model.AlignmentRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	idx, rest, err := t.fields(path, "mRNA_id", "genome_nr", "position", "nucleotide")
	if err != nil {
		return nil, err
	}
	res := make([]model.AlignmentRecord, 0, len(t.rows))
	for _, row := range t.rows {
		rec := model.AlignmentRecord{
			MRNAID:     row[idx["mRNA_id"]],
			Nucleotide: row[idx["nucleotide"]],
			Metadata:   t.metadata(row, rest),
		}
		if rec.GenomeNr, err = atoi(path, "genome_nr", row[idx["genome_nr"]]); err != nil {
			return nil, err
		}
		if rec.Position, err = atoi(path, "position", row[idx["position"]]); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, nil
}

func readSequences(path string) ([]model.SequenceRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	idx, rest, err := t.fields(path, "mRNA_id")
	if err != nil {
		return nil, err
	}
	res := make([]model.SequenceRecord, 0, len(t.rows))
	for _, row := range t.rows {
		res = append(res, model.SequenceRecord{MRNAID: row[idx["mRNA_id"]], Metadata: t.metadata(row, rest)})
	}
	return res, nil
}

func readVariablePositions(path string) ([]model.VariablePositionRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	counts := []string{"position", "A", "C", "G", "T", "gap"}
	idx, rest, err := t.fields(path, counts...)
	if err != nil {
		return nil, err
	}
	res := make([]model.VariablePositionRecord, 0, len(t.rows))
	for _, row := range t.rows {
		var n [6]int
		for i, c := range counts {
			if n[i], err = atoi(path, c, row[idx[c]]); err != nil {
				return nil, err
			}
		}
		res = append(res, model.VariablePositionRecord{
			Position: n[0], A: n[1], C: n[2], G: n[3], T: n[4], Gap: n[5],
			Metadata: t.metadata(row, rest),
		})
	}
	return res, nil
}

func readAnnotations(path string) ([]model.AnnotationRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	idx, rest, err := t.fields(path, "mRNA_id", "position")
	if err != nil {
		return nil, err
	}
	res := make([]model.AnnotationRecord, 0, len(t.rows))
	for _, row := range t.rows {
		rec := model.AnnotationRecord{MRNAID: row[idx["mRNA_id"]], Flags: make(map[string]bool, len(rest))}
		if rec.Position, err = atoi(path, "position", row[idx["position"]]); err != nil {
			return nil, err
		}
		for _, i := range rest {
			v, _ := strconv.ParseBool(strings.TrimSpace(row[i]))
			rec.Flags[t.header[i]] = v
		}
		res = append(res, rec)
	}
	return res, nil
}

// Run imports the folder into repo. A homology group without a default dendrogram
// is skipped; its optional datasets may be missing.
func (d *ImportDir) Run(ctx context.Context, repo *Repository) (*ImportStats, error) {
	stats := &ImportStats{}

	homologies, err := readHomologies(filepath.Join(d.Dir, homologiesFile))
	if err != nil {
		return nil, err
	}

	if err := d.importAuxiliaryTrees(ctx, repo, stats); err != nil {
		return nil, err
	}

	var imported []*model.Homology
	for _, h := range homologies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := filepath.Join(d.Dir, h.ID)
		root, err := readNewick(filepath.Join(dir, defaultTreeFile))
		if err != nil {
			logger.Warn("Skipping homology group without default dendrogram", zap.String("homology_id", h.ID), zap.Error(err))
			stats.Skipped = append(stats.Skipped, h.ID)
			continue
		}
		if err := repo.PutTree(ctx, h.ID, model.DendroDefault, root); err != nil {
			return nil, err
		}
		if err := d.importDatasets(ctx, repo, h, dir); err != nil {
			return nil, fmt.Errorf("homology %s: %w", h.ID, err)
		}
		imported = append(imported, h)
	}

	if err := repo.PutHomologies(ctx, imported); err != nil {
		return nil, err
	}
	stats.Homologies = len(imported)
	return stats, nil
}

func (d *ImportDir) importAuxiliaryTrees(ctx context.Context, repo *Repository, stats *ImportStats) error {
	entries, err := os.ReadDir(filepath.Join(d.Dir, treesDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".gz")
		if e.IsDir() || !strings.HasSuffix(name, ".newick") {
			continue
		}
		root, err := readNewick(filepath.Join(d.Dir, treesDir, name))
		if err != nil {
			return err
		}
		if err := repo.PutTree(ctx, "", strings.TrimSuffix(name, ".newick"), root); err != nil {
			return err
		}
		stats.AuxiliaryTrees++
	}
	return nil
}

func (d *ImportDir) importDatasets(ctx context.Context, repo *Repository, h *model.Homology, dir string) error {
	alignment, err := readAlignment(filepath.Join(dir, alignmentFile))
	if err != nil {
		return err
	}
	if err := repo.PutAlignment(ctx, h.ID, alignment); err != nil {
		return err
	}
	if h.AlignmentLength == 0 {
		for _, rec := range alignment {
			h.AlignmentLength = max(h.AlignmentLength, rec.Position)
		}
	}

	optional := []struct {
		file string
		put  func(path string) error
	}{
		{sequencesFile, func(path string) error {
			records, err := readSequences(path)
			if err != nil {
				return err
			}
			if h.Members == 0 {
				h.Members = len(records)
			}
			return repo.PutSequences(ctx, h.ID, records)
		}},
		{variableFile, func(path string) error {
			records, err := readVariablePositions(path)
			if err != nil {
				return err
			}
			return repo.PutVariablePositions(ctx, h.ID, records)
		}},
		{annotationsFile, func(path string) error {
			records, err := readAnnotations(path)
			if err != nil {
				return err
			}
			return repo.PutAnnotations(ctx, h.ID, records)
		}},
	}
	for _, o := range optional {
		path := filepath.Join(dir, o.file)
		if _, err := findInput(path); err != nil {
			logger.Debug("Optional dataset missing", zap.String("homology_id", h.ID), zap.String("file", o.file))
			continue
		}
		if err := o.put(path); err != nil {
			return err
		}
	}
	return nil
}
