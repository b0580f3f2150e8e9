package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/foodtracker/internal/adapters/providers"
	appsync "github.com/eshaffer321/foodtracker/internal/application/sync"
	"github.com/eshaffer321/foodtracker/internal/domain/history"
	"github.com/eshaffer321/foodtracker/internal/domain/order"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/metrics"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/storage"
)

var (
	// ErrSyncInProgress is returned when the platform already has a sync running.
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrJobNotFound    = errors.New("job not found")
	// ErrJobNotCancellable is returned for jobs that already finished.
	ErrJobNotCancellable = errors.New("job cannot be cancelled")
)

// SyncStatus represents the current state of a sync job.
type SyncStatus string

const (
	StatusPending   SyncStatus = "pending"
	StatusRunning   SyncStatus = "running"
	StatusCompleted SyncStatus = "completed"
	StatusFailed    SyncStatus = "failed"
	StatusCancelled SyncStatus = "cancelled"
)

// Job staleness thresholds
const (
	// DefaultJobStaleThreshold is how long a job can go without progress updates
	// before being considered stale.
	DefaultJobStaleThreshold = 10 * time.Minute

	// DefaultJobMaxDuration is the maximum time a job can run before being
	// forcefully marked as failed.
	DefaultJobMaxDuration = time.Hour

	// DefaultJobRetention is how long finished jobs stay listable.
	DefaultJobRetention = 24 * time.Hour
)

// SyncRequest holds parameters for starting a sync.
type SyncRequest struct {
	Platform string // "zomato", "swiggy"
	// Incremental stops the session at the first page with nothing new
	// compared to the stored history.
	Incremental bool
	// MaxPages overrides the platform ceiling when positive.
	MaxPages int
}

// SyncOutcome is what a finished sync reports back to the trigger.
type SyncOutcome struct {
	Platform    string
	DisplayName string
	Count       int // orders collected by this session
	Added       int // orders that were not stored before
	Total       int // stored orders after the merge
	Pages       int
	State       appsync.State
	// Err is a page failure the engine absorbed; the outcome is still a
	// success and holds whatever was fetched before it.
	Err error
}

// SyncProgress holds real-time progress information.
type SyncProgress struct {
	Phase      string // "pending", "fetching", "completed", "failed", "cancelled"
	Message    string
	Page       int
	Count      int
	Percent    int
	LastUpdate time.Time
}

// SyncJob represents a running or completed sync job.
type SyncJob struct {
	ID          string
	Platform    string
	Status      SyncStatus
	Request     SyncRequest
	StartedAt   time.Time
	CompletedAt *time.Time
	Progress    SyncProgress
	Outcome     *SyncOutcome
	Error       error
	cancelFunc  context.CancelFunc
}

// SyncService runs syncs against the registered platforms and persists the
// results. At most one sync per platform runs at a time.
type SyncService struct {
	registry *providers.Registry
	store    *storage.OrderStore
	metrics  *metrics.Registry
	logger   *slog.Logger
	pacer    appsync.Pacer

	// Job management
	jobs      map[string]*SyncJob
	jobsMutex sync.RWMutex

	// platform -> owner id (job or run id) of the sync holding it
	running    map[string]string
	locksMutex sync.Mutex

	// Background cleanup
	cleanupStop chan struct{}
	cleanupDone chan struct{}
}

// NewSyncService creates a new sync service. reg may be nil.
func NewSyncService(
	registry *providers.Registry,
	store *storage.OrderStore,
	reg *metrics.Registry,
	logger *slog.Logger,
) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{
		registry: registry,
		store:    store,
		metrics:  reg,
		logger:   logger,
		jobs:     make(map[string]*SyncJob),
		running:  make(map[string]string),
	}
}

// WithPacer overrides every platform's courtesy delay.
func (s *SyncService) WithPacer(p appsync.Pacer) *SyncService {
	s.pacer = p
	return s
}

// Sync runs a full sync for platform and waits for it.
func (s *SyncService) Sync(ctx context.Context, platform string) (*SyncOutcome, error) {
	return s.SyncWith(ctx, SyncRequest{Platform: platform})
}

// SyncWith runs a sync and waits for it. The outcome is non-nil whenever
// anything was fetched, including alongside an auth error.
func (s *SyncService) SyncWith(ctx context.Context, req SyncRequest) (*SyncOutcome, error) {
	if _, err := s.registry.Get(req.Platform); err != nil {
		return nil, err
	}
	owner := uuid.NewString()
	if !s.acquire(req.Platform, owner) {
		return nil, fmt.Errorf("%w: %s", ErrSyncInProgress, req.Platform)
	}
	defer s.release(req.Platform, owner)

	return s.execute(ctx, owner, req, nil)
}

// execute runs the engine and merges whatever it collected into the store.
func (s *SyncService) execute(ctx context.Context, runID string, req SyncRequest, n appsync.Notifier) (*SyncOutcome, error) {
	adapter, err := s.registry.Get(req.Platform)
	if err != nil {
		return nil, err
	}
	platform := adapter.Platform()
	part := PartitionFor(platform)
	runLogger := s.logger.With("run_id", runID)
	logger := runLogger.With("platform", platform.Name)

	existing, err := s.store.Orders(ctx, part)
	if err != nil {
		return nil, fmt.Errorf("load %s history: %w", platform.DisplayName, err)
	}
	existing, repaired := history.Dedupe(existing)
	if repaired {
		logger.Warn("dropped duplicate stored orders")
	}

	opts := appsync.Options{
		MaxPages: req.MaxPages,
		Notifier: n,
		Pacer:    s.pacer,
	}
	if req.Incremental {
		opts.KnownIDs = order.IDs(existing)
	}

	engine := appsync.NewEngine(adapter, s.metrics, runLogger)
	result, runErr := engine.Run(ctx, opts)

	// Persist even when the caller has gone away; the orders were fetched.
	persistCtx := context.WithoutCancel(ctx)
	merged := history.Merge(existing, result.Orders)
	added := len(merged) - len(existing)
	if added > 0 || repaired {
		if err := s.store.SaveOrders(persistCtx, part, merged); err != nil {
			return nil, fmt.Errorf("save %s orders: %w", platform.DisplayName, err)
		}
	}

	now := time.Now()
	if runErr == nil && ctx.Err() == nil {
		if err := s.store.SetLastSync(persistCtx, part, now); err != nil {
			logger.Warn("failed to record last sync", "error", err)
		}
		s.metrics.RecordStored(platform.Name, added, now)
	}

	outcome := &SyncOutcome{
		Platform:    platform.Name,
		DisplayName: platform.DisplayName,
		Count:       len(result.Orders),
		Added:       added,
		Total:       len(merged),
		Pages:       result.Pages,
		State:       result.State,
		Err:         result.Err,
	}
	s.recordRun(persistCtx, logger, part, runID, result, outcome, runErr)

	logger.Info("sync stored",
		"fetched", outcome.Count,
		"added", outcome.Added,
		"total", outcome.Total,
		"pages", outcome.Pages,
		"state", outcome.State,
	)
	return outcome, runErr
}

func (s *SyncService) recordRun(ctx context.Context, logger *slog.Logger, part storage.Partition, runID string, result *appsync.Result, outcome *SyncOutcome, runErr error) {
	finished := result.FinishedAt
	run := storage.SyncRun{
		ID:          runID,
		Platform:    part.Platform,
		StartedAt:   result.StartedAt,
		CompletedAt: &finished,
		State:       string(result.State),
		Pages:       outcome.Pages,
		Fetched:     outcome.Count,
		Added:       outcome.Added,
		Total:       outcome.Total,
	}
	switch {
	case runErr != nil:
		run.Error = runErr.Error()
	case result.Err != nil:
		run.Error = result.Err.Error()
	}
	if err := s.store.RecordRun(ctx, part, run); err != nil {
		logger.Warn("failed to record sync run", "error", err)
	}
}

// Runs returns the stored sync history for platform, newest first.
func (s *SyncService) Runs(ctx context.Context, platform string) ([]storage.SyncRun, error) {
	p, err := s.registry.Platform(platform)
	if err != nil {
		return nil, err
	}
	return s.store.Runs(ctx, PartitionFor(p))
}

// StartSync starts a new sync job asynchronously.
// Note: The passed context is NOT used as the parent for the background job.
// Background sync jobs use context.Background() so they outlive the HTTP
// request. Use CancelSync() to cancel a running job.
func (s *SyncService) StartSync(_ context.Context, req SyncRequest) (string, error) {
	if _, err := s.registry.Get(req.Platform); err != nil {
		return "", err
	}

	jobID := uuid.NewString()
	if !s.acquire(req.Platform, jobID) {
		return "", fmt.Errorf("%w: %s", ErrSyncInProgress, req.Platform)
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	job := &SyncJob{
		ID:         jobID,
		Platform:   req.Platform,
		Status:     StatusPending,
		Request:    req,
		StartedAt:  now,
		cancelFunc: cancel,
		Progress:   SyncProgress{Phase: "pending", LastUpdate: now},
	}

	s.jobsMutex.Lock()
	s.jobs[jobID] = job
	s.jobsMutex.Unlock()

	go s.runSyncJob(jobCtx, job.ID, req)

	s.logger.Info("sync job started",
		"job_id", jobID,
		"platform", req.Platform,
		"incremental", req.Incremental,
	)
	return jobID, nil
}

// runSyncJob executes the sync job in a background goroutine.
func (s *SyncService) runSyncJob(ctx context.Context, jobID string, req SyncRequest) {
	defer s.release(req.Platform, jobID)

	s.updateJob(jobID, func(job *SyncJob) {
		job.Status = StatusRunning
		job.Progress = SyncProgress{Phase: "fetching", LastUpdate: time.Now()}
	})

	notifier := appsync.NotifierFunc(func(p appsync.Progress) {
		s.updateJob(jobID, func(job *SyncJob) {
			job.Progress.Message = p.Message
			job.Progress.Page = p.Page
			job.Progress.Count = p.Count
			job.Progress.Percent = p.Percent
			job.Progress.LastUpdate = time.Now()
		})
	})

	outcome, err := s.execute(ctx, jobID, req, notifier)

	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return
	}
	job.Outcome = outcome
	if job.Status != StatusRunning {
		// Cancelled or marked stale while running; keep that verdict.
		return
	}

	now := time.Now()
	job.CompletedAt = &now
	job.Progress.LastUpdate = now
	if err != nil {
		job.Status = StatusFailed
		job.Error = err
		job.Progress.Phase = "failed"
		s.logger.Error("sync job failed", "job_id", jobID, "error", err)
		return
	}
	job.Status = StatusCompleted
	job.Progress.Phase = "completed"
	job.Progress.Percent = 100
	job.Progress.Count = outcome.Count
	s.logger.Info("sync job completed",
		"job_id", jobID,
		"fetched", outcome.Count,
		"added", outcome.Added,
		"pages", outcome.Pages,
	)
}

// updateJob applies fn to a job under the jobs lock.
func (s *SyncService) updateJob(jobID string, fn func(*SyncJob)) {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	if job, exists := s.jobs[jobID]; exists && job.active() {
		fn(job)
	}
}

// GetSyncJob returns a snapshot of a sync job.
func (s *SyncService) GetSyncJob(jobID string) (*SyncJob, error) {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return job.snapshot(), nil
}

// ListActiveSyncJobs returns all running or pending jobs, oldest first.
func (s *SyncService) ListActiveSyncJobs() []*SyncJob {
	return s.listJobs(func(job *SyncJob) bool { return job.active() })
}

// ListAllSyncJobs returns all retained jobs, oldest first.
func (s *SyncService) ListAllSyncJobs() []*SyncJob {
	return s.listJobs(func(*SyncJob) bool { return true })
}

func (s *SyncService) listJobs(keep func(*SyncJob) bool) []*SyncJob {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	jobs := make([]*SyncJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if keep(job) {
			jobs = append(jobs, job.snapshot())
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].StartedAt.Before(jobs[j].StartedAt) })
	return jobs
}

// CancelSync cancels a running sync job. Orders fetched before the cancel
// are still stored.
func (s *SyncService) CancelSync(jobID string) error {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if !job.active() {
		return fmt.Errorf("%w: status=%s", ErrJobNotCancellable, job.Status)
	}

	job.cancelFunc()
	now := time.Now()
	job.Status = StatusCancelled
	job.CompletedAt = &now
	job.Progress.Phase = "cancelled"
	job.Progress.LastUpdate = now

	s.logger.Info("sync job cancelled", "job_id", jobID)
	return nil
}

// acquire takes the platform slot for owner.
func (s *SyncService) acquire(platform, owner string) bool {
	s.locksMutex.Lock()
	defer s.locksMutex.Unlock()

	if _, held := s.running[platform]; held {
		return false
	}
	s.running[platform] = owner
	return true
}

// release frees the platform slot if owner still holds it.
func (s *SyncService) release(platform, owner string) {
	s.locksMutex.Lock()
	defer s.locksMutex.Unlock()

	if s.running[platform] == owner {
		delete(s.running, platform)
	}
}

// IsRunning reports whether a sync holds the platform slot.
func (s *SyncService) IsRunning(platform string) bool {
	s.locksMutex.Lock()
	defer s.locksMutex.Unlock()
	_, held := s.running[platform]
	return held
}

// CleanupOldJobs removes finished jobs older than maxAge.
func (s *SyncService) CleanupOldJobs(maxAge time.Duration) int {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, job := range s.jobs {
		if job.active() {
			continue
		}
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("cleaned up old sync jobs", "removed", removed)
	}
	return removed
}

// MarkStaleJobsAsFailed finds jobs that appear to be stuck and marks them as failed.
// A job is considered stale if:
// 1. It has been running longer than maxDuration, OR
// 2. Its Progress.LastUpdate is older than staleThreshold
//
// The job's context is cancelled. Its platform slot stays held until the
// job's goroutine has stored what it collected.
func (s *SyncService) MarkStaleJobsAsFailed(staleThreshold, maxDuration time.Duration) int {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	now := time.Now()
	marked := 0
	for id, job := range s.jobs {
		reason, stale := job.staleness(now, staleThreshold, maxDuration)
		if !stale {
			continue
		}

		if job.cancelFunc != nil {
			job.cancelFunc()
		}
		job.Status = StatusFailed
		job.CompletedAt = &now
		job.Error = fmt.Errorf("job marked as stale: %s", reason)
		job.Progress.Phase = "failed"
		job.Progress.LastUpdate = now

		s.logger.Warn("marked stale job as failed",
			"job_id", id,
			"platform", job.Platform,
			"reason", reason,
			"started_at", job.StartedAt,
		)
		marked++
	}
	return marked
}

// IsJobStale checks if a specific job is considered stale.
func (s *SyncService) IsJobStale(jobID string, staleThreshold, maxDuration time.Duration) bool {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return false
	}
	_, stale := job.staleness(time.Now(), staleThreshold, maxDuration)
	return stale
}

// StartBackgroundCleanup starts a goroutine that periodically marks stale
// jobs as failed and drops old finished ones. Call StopBackgroundCleanup to
// stop it.
func (s *SyncService) StartBackgroundCleanup(checkInterval time.Duration) {
	s.cleanupStop = make(chan struct{})
	s.cleanupDone = make(chan struct{})

	go func() {
		defer close(s.cleanupDone)

		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()

		s.logger.Info("background job cleanup started",
			"check_interval", checkInterval,
			"stale_threshold", DefaultJobStaleThreshold,
			"max_duration", DefaultJobMaxDuration,
		)

		for {
			select {
			case <-s.cleanupStop:
				s.logger.Info("background job cleanup stopped")
				return
			case <-ticker.C:
				if n := s.MarkStaleJobsAsFailed(DefaultJobStaleThreshold, DefaultJobMaxDuration); n > 0 {
					s.logger.Info("marked stale jobs as failed", "count", n)
				}
				s.CleanupOldJobs(DefaultJobRetention)
			}
		}
	}()
}

// StopBackgroundCleanup stops the cleanup goroutine and waits for it.
func (s *SyncService) StopBackgroundCleanup() {
	if s.cleanupStop == nil {
		return
	}
	close(s.cleanupStop)
	<-s.cleanupDone
	s.cleanupStop = nil
}

func (j *SyncJob) active() bool {
	return j.Status == StatusPending || j.Status == StatusRunning
}

func (j *SyncJob) staleness(now time.Time, staleThreshold, maxDuration time.Duration) (string, bool) {
	if !j.active() {
		return "", false
	}
	if age := now.Sub(j.StartedAt); age > maxDuration {
		return fmt.Sprintf("exceeded max duration of %v (started %v ago)", maxDuration, age.Round(time.Second)), true
	}
	if idle := now.Sub(j.Progress.LastUpdate); idle > staleThreshold {
		return fmt.Sprintf("no progress update for %v (threshold: %v)", idle.Round(time.Second), staleThreshold), true
	}
	return "", false
}

func (j *SyncJob) snapshot() *SyncJob {
	c := *j
	c.cancelFunc = nil
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	if j.Outcome != nil {
		o := *j.Outcome
		c.Outcome = &o
	}
	return &c
}

// PartitionFor maps a platform descriptor to its storage keys.
func PartitionFor(p providers.Platform) storage.Partition {
	return storage.Partition{
		Platform:      p.Name,
		DataKey:       p.DataKey,
		LastSyncKey:   p.LastSyncKey,
		LegacyDataKey: p.LegacyDataKey,
		LegacySyncKey: p.LegacySyncKey,
	}
}
