package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type staticConstraint bool

func (c staticConstraint) Satisfied() (bool, string) {
	return bool(c), "static"
}

func testScheduler(t *testing.T, opts SchedulerOptions) (*Scheduler, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(ctx, opts, zaptest.NewLogger(t))
	t.Cleanup(func() {
		cancel()
		s.Wait()
	})
	return s, cancel
}

func TestScheduler_KeepsExistingSchedule(t *testing.T) {
	s, _ := testScheduler(t, SchedulerOptions{MinInterval: time.Hour})

	var first, second atomic.Int32
	assert.True(t, s.SchedulePeriodic(LeaseName, time.Hour, func(context.Context) error {
		first.Add(1)
		return nil
	}))
	assert.False(t, s.SchedulePeriodic(LeaseName, time.Hour, func(context.Context) error {
		second.Add(1)
		return nil
	}))

	require.Eventually(t, func() bool { return first.Load() == 1 }, time.Second, time.Millisecond)
	assert.Zero(t, second.Load())
	assert.True(t, s.Scheduled(LeaseName))
}

func TestScheduler_RunsPeriodically(t *testing.T) {
	s, _ := testScheduler(t, SchedulerOptions{MinInterval: time.Millisecond})

	var runs atomic.Int32
	s.SchedulePeriodic("job", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestScheduler_ClampsInterval(t *testing.T) {
	s, _ := testScheduler(t, SchedulerOptions{MinInterval: time.Hour})

	var runs atomic.Int32
	s.SchedulePeriodic("job", time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_RetriesWithBackoff(t *testing.T) {
	s, _ := testScheduler(t, SchedulerOptions{MinInterval: time.Millisecond, RetryDelay: time.Millisecond})

	var runs atomic.Int32
	s.SchedulePeriodic("job", time.Hour, func(context.Context) error {
		if runs.Add(1) < 3 {
			return retryLater("flaky", errors.New("timeout"))
		}
		return nil
	})

	require.Eventually(t, func() bool { return runs.Load() == 3 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(3), runs.Load())
}

func TestScheduler_PermanentErrorIsNotRetried(t *testing.T) {
	s, _ := testScheduler(t, SchedulerOptions{MinInterval: time.Millisecond, RetryDelay: time.Millisecond})

	var runs atomic.Int32
	s.SchedulePeriodic("job", time.Hour, func(context.Context) error {
		runs.Add(1)
		return errors.New("bad configuration")
	})

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_ConstraintDefersRun(t *testing.T) {
	s, _ := testScheduler(t, SchedulerOptions{
		MinInterval: time.Millisecond,
		Constraints: []Constraint{staticConstraint(false)},
	})

	var runs atomic.Int32
	s.SchedulePeriodic("job", 2*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, runs.Load())
}

func TestScheduler_Cancel(t *testing.T) {
	s, _ := testScheduler(t, SchedulerOptions{MinInterval: time.Hour})

	s.SchedulePeriodic("job", time.Hour, func(context.Context) error { return nil })
	assert.True(t, s.Cancel("job"))
	assert.False(t, s.Scheduled("job"))
	assert.False(t, s.Cancel("job"))

	// the name is free again
	assert.True(t, s.SchedulePeriodic("job", time.Hour, func(context.Context) error { return nil }))
}

func writeSupply(t *testing.T, dir, name, kind, status, capacity string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "type"), []byte(kind+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(path, "status"), []byte(status+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(path, "capacity"), []byte(capacity+"\n"), 0o644))
}

func TestBatteryConstraint(t *testing.T) {
	t.Run("no power supply directory", func(t *testing.T) {
		c := &BatteryConstraint{MinPercent: 15, Dir: filepath.Join(t.TempDir(), "missing")}
		ok, _ := c.Satisfied()
		assert.True(t, ok)
	})

	t.Run("mains only", func(t *testing.T) {
		dir := t.TempDir()
		writeSupply(t, dir, "AC", "Mains", "", "")
		ok, _ := (&BatteryConstraint{MinPercent: 15, Dir: dir}).Satisfied()
		assert.True(t, ok)
	})

	t.Run("low battery discharging", func(t *testing.T) {
		dir := t.TempDir()
		writeSupply(t, dir, "BAT0", "Battery", "Discharging", "9")
		ok, reason := (&BatteryConstraint{MinPercent: 15, Dir: dir}).Satisfied()
		assert.False(t, ok)
		assert.Contains(t, reason, "BAT0")
	})

	t.Run("low battery charging", func(t *testing.T) {
		dir := t.TempDir()
		writeSupply(t, dir, "BAT0", "Battery", "Charging", "9")
		ok, _ := (&BatteryConstraint{MinPercent: 15, Dir: dir}).Satisfied()
		assert.True(t, ok)
	})

	t.Run("healthy battery", func(t *testing.T) {
		dir := t.TempDir()
		writeSupply(t, dir, "BAT0", "Battery", "Discharging", "80")
		ok, _ := (&BatteryConstraint{MinPercent: 15, Dir: dir}).Satisfied()
		assert.True(t, ok)
	})
}
