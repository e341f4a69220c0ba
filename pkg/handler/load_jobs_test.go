package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yumyai/panva/pkg/model"
)

func TestLoadJobStatuses(t *testing.T) {
	m := NewLoadJobManager()
	cases := []struct {
		name   string
		status model.LoadStatus
		err    error
		want   LoadJobStatus
	}{
		{"committed", model.LoadCommitted, nil, LoadJobCompleted},
		{"discarded", model.LoadDiscarded, nil, LoadJobDiscarded},
		{"failed", model.LoadCommitted, errors.New("alignment missing"), LoadJobFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			job := m.Start(JobHomologyGroup, "h1", func(ctx context.Context) (model.LoadStatus, error) {
				return tc.status, tc.err
			})
			if job.Finished() {
				t.Fatalf("expected a pending job, got %s", job.Status)
			}

			got, ok := m.Wait(context.Background(), job.ID)
			if !ok {
				t.Fatal("job disappeared")
			}
			if got.Status != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got.Status)
			}
			if tc.err != nil && got.Error != tc.err.Error() {
				t.Errorf("expected error %q, got %q", tc.err, got.Error)
			}
		})
	}
}

func TestLoadJobWaitHonoursContext(t *testing.T) {
	m := NewLoadJobManager()
	release := make(chan struct{})
	defer close(release)

	job := m.Start(JobCustomDendrogram, "h1", func(ctx context.Context) (model.LoadStatus, error) {
		<-release
		return model.LoadCommitted, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	got, ok := m.Wait(ctx, job.ID)
	if !ok {
		t.Fatal("job disappeared")
	}
	if got.Finished() {
		t.Errorf("expected unfinished job, got %s", got.Status)
	}

	if _, ok := m.Wait(context.Background(), "missing"); ok {
		t.Error("expected unknown job")
	}
}
