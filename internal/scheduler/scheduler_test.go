package scheduler_test

import (
	"testing"

	"fieldmatch-backend/internal/config"
	"fieldmatch-backend/internal/jobs"
	"fieldmatch-backend/internal/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.ExpireRequests = "0 */5 * * * *"
	cfg.Scheduler.SyncBookings = "30 */10 * * * *"

	s, err := scheduler.NewScheduler(jobs.NewJobRunner(nil, cfg))
	require.NoError(t, err)
	assert.Equal(t, 2, s.EntryCount())

	s.Start()
	s.Stop()
}

func TestNewScheduler_InvalidExpression(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.ExpireRequests = "every five minutes"
	cfg.Scheduler.SyncBookings = "30 */10 * * * *"

	_, err := scheduler.NewScheduler(jobs.NewJobRunner(nil, cfg))
	assert.ErrorContains(t, err, "ExpireMatchRequests")

	cfg.Scheduler.ExpireRequests = "0 */5 * * *"
	_, err = scheduler.NewScheduler(jobs.NewJobRunner(nil, cfg))
	assert.Error(t, err, "five fields is not valid with seconds precision")
}
