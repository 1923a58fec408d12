package workshop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"workshopdl/internal/config"
	"workshopdl/internal/logging"
	"workshopdl/internal/services"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
	defaultMaxDelay    = 30 * time.Second
	// LockFileName is created under the steamapps root for the duration of a run.
	LockFileName = ".workshopdl.lock"
)

// ErrLocked reports that another run holds the steamapps lock.
var ErrLocked = errors.New("another workshopdl run is using this steamapps root")

// Fetcher downloads a single item into destDir and returns the final path.
type Fetcher interface {
	DownloadItem(ctx context.Context, gameID, itemID, destDir string) (string, error)
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithMaxAttempts sets the total number of attempts per item, including the first.
func WithMaxAttempts(attempts int) Option {
	return func(d *Downloader) {
		if attempts > 0 {
			d.maxAttempts = attempts
		}
	}
}

// WithBackoff overrides the delay before the second attempt and the cap for later ones.
func WithBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(d *Downloader) {
		d.baseDelay = baseDelay
		d.maxDelay = maxDelay
	}
}

// WithSleeper overrides how backoff sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(d *Downloader) {
		d.sleeper = sleeper
	}
}

// WithLogger sets the logger for batch progress.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithLock makes Run hold an exclusive lock on path while it works.
func WithLock(path string) Option {
	return func(d *Downloader) {
		d.lockPath = path
	}
}

// WithObserver registers a callback invoked after each item settles.
func WithObserver(observer func(index, total int, outcome Outcome)) Option {
	return func(d *Downloader) {
		d.observer = observer
	}
}

// Downloader drives a sequential, retrying batch of item downloads.
type Downloader struct {
	fetcher     Fetcher
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleeper     func(time.Duration)
	logger      *slog.Logger
	lockPath    string
	observer    func(index, total int, outcome Outcome)
	now         func() time.Time
}

// NewDownloader constructs a Downloader around fetcher.
func NewDownloader(fetcher Fetcher, opts ...Option) *Downloader {
	d := &Downloader{
		fetcher:     fetcher,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.NewComponentLogger(d.logger, "workshop")
	return d
}

// Run downloads items in order into <outputDir>/<itemID>. Item failures are
// recorded in the report and never abort the batch. The returned error is
// non-nil only when the run could not start (lock held or unusable).
func (d *Downloader) Run(ctx context.Context, gameID string, items []string, outputDir string) (Report, error) {
	report := Report{GameID: gameID, Outcomes: make([]Outcome, 0, len(items)), Started: d.now()}

	if d.lockPath != "" {
		unlock, err := acquireLock(d.lockPath)
		if err != nil {
			return report, err
		}
		defer unlock()
	}

	logger := logging.WithContext(ctx, d.logger)
	logger.Info("batch started",
		logging.String(logging.FieldGameID, gameID),
		logging.Int("item_count", len(items)),
		logging.Int("max_attempts", d.maxAttempts),
		logging.String("output_dir", outputDir),
	)

	for idx, itemID := range items {
		var outcome Outcome
		idErr := config.ValidateNumericID("item id", itemID)
		switch {
		case ctx.Err() != nil:
			outcome = Outcome{ItemID: itemID, Status: StatusSkipped, Err: ctx.Err()}
		case idErr != nil:
			// A malformed ID would resolve to outputDir itself or escape it.
			outcome = Outcome{ItemID: itemID, Status: StatusFailed,
				Err: services.Wrap(services.ErrConfiguration, "workshop", "download", "", idErr)}
			logging.WarnWithContext(logger, "item rejected", "item_rejected",
				logging.String(logging.FieldItemID, itemID),
				logging.Error(idErr),
				logging.String(logging.FieldErrorHint, "workshop item IDs must be numeric"),
				logging.String(logging.FieldImpact, "item left out of this run"),
			)
		default:
			outcome = d.downloadWithRetry(ctx, gameID, itemID, filepath.Join(outputDir, itemID), idx, len(items))
		}
		report.Outcomes = append(report.Outcomes, outcome)
		if d.observer != nil {
			d.observer(idx, len(items), outcome)
		}
	}

	report.Finished = d.now()
	logger.Info("batch finished",
		logging.Int("succeeded", len(report.Succeeded())),
		logging.Int("failed", len(report.Failed())),
		logging.Int("skipped", len(report.Skipped())),
		logging.Duration("elapsed", report.Elapsed()),
	)
	return report, nil
}

func (d *Downloader) downloadWithRetry(ctx context.Context, gameID, itemID, destDir string, index, total int) Outcome {
	itemCtx := services.WithItemID(ctx, itemID)
	logger := logging.WithContext(itemCtx, d.logger)
	logger.Info("item started",
		logging.Int("position", index+1),
		logging.Int("total", total),
	)

	started := d.now()
	outcome := Outcome{ItemID: itemID}
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		outcome.Attempts = attempt
		path, err := d.fetcher.DownloadItem(services.WithAttempt(itemCtx, attempt), gameID, itemID, destDir)
		if err == nil {
			outcome.Status = StatusSucceeded
			outcome.Path = path
			outcome.Err = nil
			break
		}
		outcome.Err = err

		if ctx.Err() != nil {
			// The attempt was interrupted, so the item never got a fair run.
			outcome.Status = StatusSkipped
			break
		}
		outcome.Status = StatusFailed
		if !services.Retryable(err) {
			logging.WarnWithContext(logger, "item attempt failed; not retrying", "item_attempt_failed",
				logging.Int(logging.FieldAttempt, attempt),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check steamapps and output directory permissions"),
				logging.String(logging.FieldImpact, "item left out of this run"),
			)
			break
		}
		if attempt == d.maxAttempts {
			break
		}
		delay := d.backoffDelay(attempt)
		logging.WarnWithContext(logger, "item attempt failed; retrying", "item_attempt_failed",
			logging.Int(logging.FieldAttempt, attempt),
			logging.Duration("retry_in", delay),
			logging.Error(err),
			logging.String(logging.FieldImpact, "item will be retried"),
		)
		if err := d.sleep(ctx, delay); err != nil {
			break
		}
	}
	outcome.Duration = d.now().Sub(started)

	switch outcome.Status {
	case StatusSucceeded:
		logger.Info("item succeeded",
			logging.Int("attempts", outcome.Attempts),
			logging.String("path", outcome.Path),
			logging.Duration("elapsed", outcome.Duration),
		)
	case StatusFailed:
		logging.ErrorWithContext(logger, "item failed", "item_failed",
			logging.Int("attempts", outcome.Attempts),
			logging.Error(outcome.Err),
			logging.String(logging.FieldErrorHint, "rerun the collection download to retry this item"),
		)
	case StatusSkipped:
		logger.Warn("item interrupted", logging.Int("attempts", outcome.Attempts))
	}
	return outcome
}

// backoffDelay returns the wait after the given 1-based attempt: base,
// base*2, base*4, ... capped at maxDelay.
func (d *Downloader) backoffDelay(attempt int) time.Duration {
	if d.baseDelay <= 0 {
		return 0
	}
	delay := d.baseDelay
	for i := 1; i < attempt; i++ {
		if d.maxDelay > 0 && delay > d.maxDelay/2 {
			delay = d.maxDelay
			break
		}
		delay *= 2
	}
	if d.maxDelay > 0 && delay > d.maxDelay {
		delay = d.maxDelay
	}
	return delay
}

func (d *Downloader) sleep(ctx context.Context, delay time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if delay <= 0 {
		return nil
	}
	if d.sleeper != nil {
		d.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func acquireLock(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "workshop", "lock", "create lock directory", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "workshop", "lock", "acquire "+path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, path)
	}
	return func() { _ = lock.Unlock() }, nil
}
