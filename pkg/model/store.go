package model

import (
	"context"
	"errors"
	"sync"

	"github.com/yumyai/panva/logger"
	"github.com/yumyai/panva/pkg/tree"
	"go.uber.org/zap"
)

// Options carries the dataset configuration the store needs.
type Options struct {
	AnnotationColumns   []string
	AuxiliaryTrees      []string
	QuantitativeColumns []string
}

type LoadStatus int

const (
	LoadCommitted LoadStatus = iota
	// LoadDiscarded means a newer load was issued before this one finished.
	LoadDiscarded
)

func (s LoadStatus) String() string {
	if s == LoadDiscarded {
		return "discarded"
	}
	return "committed"
}

// Store owns the one live Session. Operations run one at a time under mu; only
// fetching happens outside the lock.
type Store struct {
	mu      sync.Mutex
	source  Source
	opts    Options
	session *Session

	// latestLoad is stamped at the start of every homology group load.
	latestLoad uint64
	lastError  *LoadError
}

func NewStore(source Source, opts Options) *Store {
	return &Store{
		source:  source,
		opts:    opts,
		session: NewSession(opts.QuantitativeColumns),
	}
}

// Do runs fn with exclusive access to the session.
func (st *Store) Do(fn func(s *Session) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return fn(st.session)
}

func (st *Store) View() *View {
	st.mu.Lock()
	defer st.mu.Unlock()
	v := st.session.View()
	v.Error = st.lastError
	return v
}

func (st *Store) LastError() *LoadError {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lastError
}

// recordError keeps the most severe error; callers hold mu.
func (st *Store) recordError(e *LoadError) {
	if supersedes(e, st.lastError) {
		st.lastError = e
	}
	if e.Fatal() {
		logger.Error("Homology load failed", zap.String("homology_id", e.HomologyID),
			zap.String("dataset", e.Dataset), zap.Error(e.Err))
	} else {
		logger.Warn("Dataset unavailable, continuing without it", zap.String("homology_id", e.HomologyID),
			zap.String("dataset", e.Dataset), zap.Error(e.Err))
	}
}

// LoadHomologies fetches the homology catalog.
func (st *Store) LoadHomologies(ctx context.Context) error {
	homologies, err := st.source.Homologies(ctx)
	if err != nil {
		return err
	}
	st.mu.Lock()
	st.session.SetHomologies(homologies)
	st.mu.Unlock()
	return nil
}

// HomologiesFiltered returns the catalog entries passing the homology filters.
func (st *Store) HomologiesFiltered() []*Homology {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.session.HomologiesFiltered()
}

func (st *Store) homology(id string) *Homology {
	for _, h := range st.session.homologies {
		if h.ID == id {
			return h
		}
	}
	return &Homology{ID: id}
}

type fetchResult struct {
	defaultTree *tree.Node
	alignment   []AlignmentRecord
	sequences   []SequenceRecord
	variable    []VariablePositionRecord
	annotations []AnnotationRecord
	auxiliary   map[string]*tree.Node

	fatal    *LoadError
	degraded []*LoadError
}

// LoadHomologyGroup fetches all datasets of a homology group concurrently, merges
// them and replaces the current group. Results of a load overtaken by a newer one
// are dropped without error.
func (st *Store) LoadHomologyGroup(ctx context.Context, homologyID string) (LoadStatus, error) {
	st.mu.Lock()
	st.latestLoad++
	loadID := st.latestLoad
	homology := st.homology(homologyID)
	st.mu.Unlock()

	logger.Info("Loading homology group", zap.String("homology_id", homologyID), zap.Uint64("load_id", loadID))

	res := st.fetchAll(ctx, homologyID)

	if !st.isLatest(loadID) {
		return LoadDiscarded, nil
	}

	var data *HomologyData
	if res.fatal == nil {
		merged, err := Merge(MergeInput{
			Homology:          homology,
			DefaultTree:       res.defaultTree,
			Alignment:         res.alignment,
			Sequences:         res.sequences,
			VariablePositions: res.variable,
			Annotations:       res.annotations,
			AnnotationColumns: st.opts.AnnotationColumns,
			AuxiliaryTrees:    res.auxiliary,
		})
		if err != nil {
			res.fatal = &LoadError{Severity: SeverityFatal, HomologyID: homologyID, Dataset: "merge", Err: err}
		}
		data = merged
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if loadID != st.latestLoad {
		return LoadDiscarded, nil
	}

	if res.fatal != nil {
		for _, e := range res.degraded {
			st.recordError(e)
		}
		st.recordError(res.fatal)
		return LoadCommitted, res.fatal
	}

	// A committed load starts with a clean error state.
	st.lastError = nil
	for _, e := range res.degraded {
		st.recordError(e)
	}
	st.session.Install(data)
	logger.Info("Homology group loaded", zap.String("homology_id", homologyID),
		zap.Int("sequences", data.SequenceCount()), zap.Int("gene_length", data.GeneLength))
	return LoadCommitted, nil
}

func (st *Store) isLatest(loadID uint64) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return loadID == st.latestLoad
}

func (st *Store) fetchAll(ctx context.Context, homologyID string) *fetchResult {
	res := &fetchResult{auxiliary: make(map[string]*tree.Node)}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	fail := func(dataset string, severity Severity, err error) {
		mu.Lock()
		defer mu.Unlock()
		e := &LoadError{Severity: severity, HomologyID: homologyID, Dataset: dataset, Err: err}
		if severity == SeverityFatal {
			if res.fatal == nil {
				res.fatal = e
			}
			return
		}
		res.degraded = append(res.degraded, e)
	}
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() {
		t, err := st.source.DefaultTree(ctx, homologyID)
		if err == nil && t == nil {
			err = ErrNoDefaultTree
		}
		if err != nil {
			fail("default dendrogram", SeverityFatal, err)
			return
		}
		res.defaultTree = t
	})
	run(func() {
		records, err := st.source.Alignment(ctx, homologyID)
		if err != nil {
			fail("alignment", SeverityFatal, err)
			return
		}
		res.alignment = records
	})
	run(func() {
		records, err := st.source.SequenceMetadata(ctx, homologyID)
		if err != nil {
			fail("sequence metadata", SeverityWarning, err)
			return
		}
		res.sequences = records
	})
	run(func() {
		records, err := st.source.VariablePositions(ctx, homologyID)
		if err != nil {
			fail("variable positions", SeverityWarning, err)
			return
		}
		res.variable = records
	})
	if len(st.opts.AnnotationColumns) > 0 {
		run(func() {
			records, err := st.source.Annotations(ctx, homologyID)
			if err != nil {
				fail("annotations", SeverityWarning, err)
				return
			}
			res.annotations = records
		})
	}
	for _, name := range st.opts.AuxiliaryTrees {
		run(func() {
			t, err := st.source.AuxiliaryTree(ctx, name)
			if err == nil && t == nil {
				err = ErrUnknownTree
			}
			if err != nil {
				fail("tree "+name, SeverityWarning, err)
				return
			}
			mu.Lock()
			res.auxiliary[name] = t
			mu.Unlock()
		})
	}

	wg.Wait()
	return res
}

// LoadCustomDendrogram asks the source for a dendrogram over the given positions and
// sorts by it. The result is dropped if another homology group load started meanwhile.
func (st *Store) LoadCustomDendrogram(ctx context.Context, positions []int) (LoadStatus, error) {
	st.mu.Lock()
	if !st.session.IsInitialized() {
		st.mu.Unlock()
		return LoadCommitted, ErrNotInitialized
	}
	loadID := st.latestLoad
	homologyID := st.session.data.HomologyID
	if len(positions) == 0 {
		positions = append([]int(nil), st.session.PositionsFiltered()...)
	}
	st.mu.Unlock()

	root, err := st.source.CustomDendrogram(ctx, homologyID, positions)

	st.mu.Lock()
	defer st.mu.Unlock()

	if loadID != st.latestLoad {
		return LoadDiscarded, nil
	}
	if err == nil && root == nil {
		err = errors.New("empty dendrogram")
	}
	if err != nil {
		e := &LoadError{Severity: SeverityWarning, HomologyID: homologyID, Dataset: "custom dendrogram", Err: err}
		st.recordError(e)
		return LoadCommitted, e
	}
	return LoadCommitted, st.session.InstallCustomDendrogram(root)
}
