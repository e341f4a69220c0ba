package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/yumyai/panva/logger"
	"github.com/yumyai/panva/pkg/model"
	"go.uber.org/zap"
)

// LoadJobStatus represents the lifecycle of a background load.
type LoadJobStatus string

const (
	LoadJobQueued    LoadJobStatus = "queued"
	LoadJobRunning   LoadJobStatus = "running"
	LoadJobCompleted LoadJobStatus = "completed"
	LoadJobFailed    LoadJobStatus = "failed"
	// LoadJobDiscarded means a newer homology group load overtook this one.
	LoadJobDiscarded LoadJobStatus = "discarded"
)

const (
	JobHomologyGroup    = "homology_group"
	JobCustomDendrogram = "custom_dendrogram"
)

// loadTimeout bounds a single background load.
const loadTimeout = 5 * time.Minute

var loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "panva_loads_total",
	Help: "Background loads by kind and final status.",
}, []string{"kind", "status"})

var loadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "panva_load_duration_seconds",
	Help:    "Duration of background loads.",
	Buckets: prometheus.DefBuckets,
}, []string{"kind"})

// LoadJob keeps track of a load while it runs.
type LoadJob struct {
	ID        string        `json:"id"`
	Kind      string        `json:"kind"`
	Target    string        `json:"target"`
	Status    LoadJobStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	done chan struct{}
}

// Finished reports whether the job reached a final status.
func (j LoadJob) Finished() bool {
	switch j.Status {
	case LoadJobCompleted, LoadJobFailed, LoadJobDiscarded:
		return true
	}
	return false
}

// LoadFunc performs the load; the store decides whether the result was committed.
type LoadFunc func(ctx context.Context) (model.LoadStatus, error)

// LoadJobManager stores load job states indexed by job ID.
type LoadJobManager struct {
	mu   sync.RWMutex
	jobs map[string]*LoadJob
}

// NewLoadJobManager constructs a job manager with no jobs.
func NewLoadJobManager() *LoadJobManager {
	return &LoadJobManager{
		jobs: make(map[string]*LoadJob),
	}
}

// Start registers a queued job and runs load in the background.
func (m *LoadJobManager) Start(kind, target string, load LoadFunc) LoadJob {
	now := time.Now()
	job := &LoadJob{
		ID:        uuid.NewString(),
		Kind:      kind,
		Target:    target,
		Status:    LoadJobQueued,
		CreatedAt: now,
		UpdatedAt: now,
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	snapshot := *job
	m.mu.Unlock()

	go m.run(job.ID, kind, load)
	return snapshot
}

func (m *LoadJobManager) run(jobID, kind string, load LoadFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	m.updateJob(jobID, func(job *LoadJob) {
		job.Status = LoadJobRunning
	})

	start := time.Now()
	status, err := load(ctx)
	loadDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	m.updateJob(jobID, func(job *LoadJob) {
		switch {
		case status == model.LoadDiscarded:
			job.Status = LoadJobDiscarded
		case err == nil:
			job.Status = LoadJobCompleted
		default:
			job.Status = LoadJobFailed
			job.Error = err.Error()
		}
		loadsTotal.WithLabelValues(kind, string(job.Status)).Inc()
		logger.Info("Load job finished", zap.String("job_id", jobID), zap.String("kind", kind),
			zap.String("status", string(job.Status)))
		close(job.done)
	})
}

// GetJob fetches a copy of a job by ID.
func (m *LoadJobManager) GetJob(jobID string) (LoadJob, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return LoadJob{}, false
	}
	return *job, true
}

// Wait blocks until the job finishes or ctx is done and returns its latest state.
func (m *LoadJobManager) Wait(ctx context.Context, jobID string) (LoadJob, bool) {
	m.mu.RLock()
	job, ok := m.jobs[jobID]
	m.mu.RUnlock()
	if !ok {
		return LoadJob{}, false
	}
	select {
	case <-job.done:
	case <-ctx.Done():
	}
	return m.GetJob(jobID)
}

func (m *LoadJobManager) updateJob(jobID string, update func(job *LoadJob)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}

	update(job)
	job.UpdatedAt = time.Now()
}
