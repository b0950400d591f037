package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndGetReturnCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	job := &jobs.AnalysisJob{JobID: "a", Status: jobs.JobStatusPending}
	require.NoError(t, s.SaveJob(ctx, job))

	job.Status = jobs.JobStatusFailed
	got, err := s.GetJob(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusPending, got.Status)

	got.Status = jobs.JobStatusCompleted
	again, _ := s.GetJob(ctx, "a")
	assert.Equal(t, jobs.JobStatusPending, again.Status)
}

func TestStore_Errors(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	assert.Error(t, s.SaveJob(ctx, &jobs.AnalysisJob{}))

	_, err := s.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)

	err = s.UpdateJobStatus(ctx, "missing", jobs.JobStatusFailed, "x")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
}

func TestStore_ListJobs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"c", "a", "b", "d"} {
		status := jobs.JobStatusCompleted
		if id == "d" {
			status = jobs.JobStatusFailed
		}
		require.NoError(t, s.SaveJob(ctx, &jobs.AnalysisJob{JobID: id, Status: status, CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	all, err := s.ListJobs(ctx, jobs.JobFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(all))

	completed, _ := s.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	assert.Equal(t, []string{"c", "a", "b"}, ids(completed))

	page, _ := s.ListJobs(ctx, jobs.JobFilter{Offset: 1, Limit: 2})
	assert.Equal(t, []string{"a", "b"}, ids(page))

	empty, _ := s.ListJobs(ctx, jobs.JobFilter{Offset: 10})
	assert.Empty(t, empty)
}

func TestStore_UpdateJobStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.SaveJob(ctx, &jobs.AnalysisJob{JobID: "x", Status: jobs.JobStatusRunning}))

	require.NoError(t, s.UpdateJobStatus(ctx, "x", jobs.JobStatusFailed, "boom"))
	got, _ := s.GetJob(ctx, "x")
	assert.Equal(t, jobs.JobStatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)
}

func ids(js []*jobs.AnalysisJob) []string {
	out := make([]string, 0, len(js))
	for _, j := range js {
		out = append(out, j.JobID)
	}
	return out
}
