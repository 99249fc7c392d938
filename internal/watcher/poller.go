// Package watcher checks the current user's favorite foods for status changes
// and notifies the user when one starts being prepared or served.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bradykim7/menza/internal/lease"
	"github.com/bradykim7/menza/internal/models"
	"github.com/bradykim7/menza/internal/notify"
	"github.com/bradykim7/menza/internal/snapshot"
	"github.com/bradykim7/menza/internal/storage"
	"go.uber.org/zap"
)

const (
	// LeaseName is the unique name of the periodic status check
	LeaseName = "food-status-worker"

	// MaxBatchSize is the largest number of ids fetched in one remote query
	MaxBatchSize = storage.MaxBatchSize

	defaultLeaseTTL = 10 * time.Minute
)

// Reasons a run did no work
const (
	ReasonLeaseHeld    = "lease held"
	ReasonNoUser       = "no signed-in user"
	ReasonUserNotFound = "user not found"
	ReasonNoFavorites  = "no favorites"
)

// ErrRetryLater marks a run that failed unexpectedly and should be retried
var ErrRetryLater = errors.New("status check failed, retry later")

// Session resolves the signed-in user
type Session interface {
	CurrentUserID(ctx context.Context) (uid string, ok bool, err error)
}

// UserSource reads user documents
type UserSource interface {
	GetByID(ctx context.Context, uid string) (*models.User, error)
}

// FoodSource reads foods by id. Missing ids are silently absent from the result.
type FoodSource interface {
	GetByIDs(ctx context.Context, ids []string) ([]models.Food, error)
}

// RestaurantSource reads restaurants
type RestaurantSource interface {
	GetByID(ctx context.Context, id string) (*models.Restaurant, error)
}

// Dependencies are the collaborators of a Poller. Leases and Metrics are optional.
type Dependencies struct {
	Session     Session
	Users       UserSource
	Foods       FoodSource
	Restaurants RestaurantSource
	Snapshots   snapshot.Store
	Notifier    notify.Notifier
	Leases      lease.Manager
	Metrics     *Metrics
}

// Options tune a Poller
type Options struct {
	// NotifyOnFirstSight notifies for foods without a snapshot. When false the
	// first observed status only becomes the baseline.
	NotifyOnFirstSight bool

	// PruneSnapshots removes snapshots of foods that are no longer favorites
	PruneSnapshots bool

	LeaseTTL time.Duration

	// RunTimeout bounds a whole run and is always shorter than LeaseTTL
	RunTimeout time.Duration
}

// DefaultOptions returns the options used by the status watcher daemon
func DefaultOptions() Options {
	return Options{
		NotifyOnFirstSight: true,
		PruneSnapshots:     true,
		LeaseTTL:           defaultLeaseTTL,
	}
}

// RunResult describes a single activation
type RunResult struct {
	UserID       string        `json:"user_id,omitempty"`
	Favorites    int           `json:"favorites"`
	Batches      int           `json:"batches"`
	Checked      int           `json:"checked"`
	Notified     int           `json:"notified"`
	NotifyFailed int           `json:"notify_failed"`
	Unchanged    int           `json:"unchanged"`
	Baselined    int           `json:"baselined"`
	Pruned       int           `json:"pruned"`
	Skipped      bool          `json:"skipped"`
	Reason       string        `json:"reason,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// Stats tracks statistics about watcher operation
type Stats struct {
	RunCount      int       `json:"run_count"`
	SkippedRuns   int       `json:"skipped_runs"`
	FailedRuns    int       `json:"failed_runs"`
	TotalChecked  int       `json:"total_checked"`
	TotalNotified int       `json:"total_notified"`
	TotalFailed   int       `json:"total_failed_notifications"`
	LastRun       time.Time `json:"last_run"`
	LastSuccess   time.Time `json:"last_success"`
	LastError     string    `json:"last_error,omitempty"`
}

// Poller compares the current user's favorite foods against their snapshots
type Poller struct {
	deps       Dependencies
	opts       Options
	log        *zap.Logger
	stats      Stats
	statsMutex sync.RWMutex
}

// NewPoller creates a new poller
func NewPoller(deps Dependencies, opts Options, log *zap.Logger) *Poller {
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = defaultLeaseTTL
	}
	if opts.RunTimeout <= 0 || opts.RunTimeout >= opts.LeaseTTL {
		opts.RunTimeout = opts.LeaseTTL - opts.LeaseTTL/10
	}

	return &Poller{
		deps: deps,
		opts: opts,
		log:  log.Named("status-poller"),
	}
}

// Activate runs one check and reports only its error, for use as a scheduled Job
func (p *Poller) Activate(ctx context.Context) error {
	_, err := p.Run(ctx)
	return err
}

// Run executes a single status check. A failure wraps ErrRetryLater; work done
// before the failure stays in effect.
func (p *Poller) Run(ctx context.Context) (RunResult, error) {
	startTime := time.Now()

	if p.deps.Leases != nil {
		l, err := p.deps.Leases.TryAcquire(ctx, LeaseName, p.opts.LeaseTTL)
		if errors.Is(err, lease.ErrHeld) {
			p.log.Info("Status check already in progress, skipping run")
			result := RunResult{Skipped: true, Reason: ReasonLeaseHeld, Duration: time.Since(startTime)}
			p.record(result, nil)
			return result, nil
		}
		if err != nil {
			err = retryLater("failed to acquire run lease", err)
			p.record(RunResult{Duration: time.Since(startTime)}, err)
			return RunResult{}, err
		}
		defer func() {
			if err := l.Release(context.WithoutCancel(ctx)); err != nil {
				p.log.Warn("Failed to release run lease", zap.Error(err))
			}
		}()
	}

	runCtx, cancel := context.WithTimeout(ctx, p.opts.RunTimeout)
	defer cancel()

	result, err := p.check(runCtx)
	result.Duration = time.Since(startTime)
	p.record(result, err)

	if err != nil {
		p.log.Error("Status check failed", zap.Error(err), zap.Int("checked", result.Checked))
		return result, err
	}

	p.log.Info("Status check completed",
		zap.String("user_id", result.UserID),
		zap.Int("favorites", result.Favorites),
		zap.Int("checked", result.Checked),
		zap.Int("notified", result.Notified),
		zap.Int("notify_failed", result.NotifyFailed),
		zap.Duration("duration", result.Duration))

	return result, nil
}

func (p *Poller) check(ctx context.Context) (RunResult, error) {
	var result RunResult

	uid, ok, err := p.deps.Session.CurrentUserID(ctx)
	if err != nil {
		return result, retryLater("failed to resolve current user", err)
	}
	if !ok {
		result.Skipped = true
		result.Reason = ReasonNoUser
		return result, nil
	}
	result.UserID = uid

	user, err := p.deps.Users.GetByID(ctx, uid)
	if errors.Is(err, storage.ErrNotFound) {
		p.log.Warn("Signed-in user no longer exists", zap.String("user_id", uid))
		result.Skipped = true
		result.Reason = ReasonUserNotFound
		return result, nil
	}
	if err != nil {
		return result, retryLater("failed to load user", err)
	}

	favorites := uniqueIDs(user.Favorites)
	result.Favorites = len(favorites)
	if len(favorites) == 0 {
		result.Skipped = true
		result.Reason = ReasonNoFavorites
		return result, nil
	}

	for start := 0; start < len(favorites); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(favorites) {
			end = len(favorites)
		}

		fetchStart := time.Now()
		foods, err := p.deps.Foods.GetByIDs(ctx, favorites[start:end])
		p.deps.Metrics.ObserveBatchFetch(time.Since(fetchStart), err)
		if err != nil {
			return result, retryLater(fmt.Sprintf("failed to fetch favorites batch %d", result.Batches+1), err)
		}
		result.Batches++

		for _, food := range foods {
			if err := p.checkFood(ctx, user, food, &result); err != nil {
				return result, err
			}
		}
	}

	if p.opts.PruneSnapshots {
		pruned, err := p.deps.Snapshots.Prune(ctx, uid, favorites)
		if err != nil {
			p.log.Warn("Failed to prune snapshots", zap.Error(err), zap.String("user_id", uid))
		}
		result.Pruned = pruned
	}

	return result, nil
}

// checkFood compares one fresh food against its snapshot and notifies on a notifiable change
func (p *Poller) checkFood(ctx context.Context, user *models.User, food models.Food, result *RunResult) error {
	result.Checked++

	key := snapshot.Key{UserID: user.UID, FoodID: food.ID}
	last, found, err := p.deps.Snapshots.Get(ctx, key)
	if err != nil {
		return retryLater("failed to read snapshot", err)
	}

	if found && last == food.Status {
		result.Unchanged++
		return nil
	}

	if !food.Status.Notifiable() {
		// UNAVAILABLE and unknown statuses leave the snapshot untouched
		if !food.Status.Valid() {
			p.log.Warn("Ignoring food with unknown status",
				zap.String("food_id", food.ID),
				zap.String("status", string(food.Status)))
		}
		result.Unchanged++
		return nil
	}

	if !found && !p.opts.NotifyOnFirstSight {
		if err := p.deps.Snapshots.Set(ctx, key, food.Status); err != nil {
			return retryLater("failed to write snapshot", err)
		}
		result.Baselined++
		return nil
	}

	restaurantName := p.restaurantName(ctx, food.RestaurantID)
	if err := p.deps.Notifier.Notify(ctx, user, food, restaurantName); err != nil {
		p.log.Warn("Failed to notify about status change",
			zap.Error(err),
			zap.String("food_id", food.ID),
			zap.String("status", string(food.Status)))
		result.NotifyFailed++
		p.deps.Metrics.IncNotification(resultFailed)
	} else {
		result.Notified++
		p.deps.Metrics.IncNotification(resultSent)
	}

	if err := p.deps.Snapshots.Set(ctx, key, food.Status); err != nil {
		return retryLater("failed to write snapshot", err)
	}
	return nil
}

// restaurantName looks up the name of a restaurant, returning "" when it cannot be found
func (p *Poller) restaurantName(ctx context.Context, id string) string {
	if p.deps.Restaurants == nil || id == "" {
		return ""
	}

	restaurant, err := p.deps.Restaurants.GetByID(ctx, id)
	if err != nil {
		p.log.Debug("Restaurant lookup failed", zap.Error(err), zap.String("restaurant_id", id))
		return ""
	}
	return restaurant.Name
}

func (p *Poller) record(result RunResult, err error) {
	p.statsMutex.Lock()
	defer p.statsMutex.Unlock()

	now := time.Now()
	p.stats.RunCount++
	p.stats.LastRun = now
	p.stats.TotalChecked += result.Checked
	p.stats.TotalNotified += result.Notified
	p.stats.TotalFailed += result.NotifyFailed

	p.deps.Metrics.AddChecked(result.Checked)

	switch {
	case err != nil:
		p.stats.FailedRuns++
		p.stats.LastError = err.Error()
		p.deps.Metrics.IncRun(resultRetry)
	case result.Skipped && result.Reason == ReasonLeaseHeld:
		p.stats.SkippedRuns++
		p.deps.Metrics.IncRun(resultSkipped)
	case result.Skipped:
		p.stats.LastSuccess = now
		p.stats.LastError = ""
		p.deps.Metrics.IncRun(resultNoop)
	default:
		p.stats.LastSuccess = now
		p.stats.LastError = ""
		p.deps.Metrics.IncRun(resultSuccess)
	}
}

// GetStats returns a copy of the cumulative statistics
func (p *Poller) GetStats() Stats {
	p.statsMutex.RLock()
	defer p.statsMutex.RUnlock()
	return p.stats
}

func retryLater(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRetryLater, msg, err)
}

// uniqueIDs drops empty and repeated ids, keeping the first occurrence
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
