package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/joelkehle/transformation-dashboard/internal/analysis"
	"github.com/joelkehle/transformation-dashboard/internal/backend"
	"github.com/joelkehle/transformation-dashboard/internal/jsonfile"
	"github.com/joelkehle/transformation-dashboard/internal/logging"
	"github.com/joelkehle/transformation-dashboard/internal/metrics"
)

const DefaultAnalyzeTimeout = 15 * time.Minute

var (
	ErrCompanyNameRequired = errors.New("company name is required")
	ErrCompanyURLRequired  = errors.New("company URL is required for new analysis generation")
)

// Analyzer is the part of the backend the tracker drives.
type Analyzer interface {
	CacheStatus(ctx context.Context, company string) (analysis.CacheStatus, error)
	ClearCache(ctx context.Context, company, newName string) (bool, error)
	GenerateAnalysis(ctx context.Context, companyURL, companyName string) (json.RawMessage, error)
}

type SubmitRequest struct {
	CompanyURL  string `json:"companyUrl"`
	CompanyName string `json:"companyName"`
	Replace     bool   `json:"replace,omitempty"`
}

// Tracker starts backend analyses and polls the backend until each one has
// written its final proposal.
type Tracker struct {
	analyzer       Analyzer
	store          *JobStore
	interval       time.Duration
	analyzeTimeout time.Duration
	statePath      string
	logger         *zap.Logger
	metrics        *metrics.Metrics

	saveMu sync.Mutex
	wg     sync.WaitGroup
}

type TrackerOption func(*Tracker)

func WithPollInterval(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

func WithAnalyzeTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.analyzeTimeout = d
		}
	}
}

// WithStatePath persists jobs to path after every change. Empty disables it.
func WithStatePath(path string) TrackerOption {
	return func(t *Tracker) { t.statePath = path }
}

func WithTrackerLogger(l *zap.Logger) TrackerOption {
	return func(t *Tracker) { t.logger = logging.OrNop(l) }
}

func WithTrackerMetrics(m *metrics.Metrics) TrackerOption {
	return func(t *Tracker) { t.metrics = m }
}

func NewTracker(analyzer Analyzer, store *JobStore, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		analyzer:       analyzer,
		store:          store,
		interval:       backend.DefaultPollInterval,
		analyzeTimeout: DefaultAnalyzeTimeout,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Store() *JobStore {
	return t.store
}

// Load restores persisted jobs. Executing jobs resume polling.
func (t *Tracker) Load() error {
	if t.statePath == "" {
		return nil
	}
	state, err := LoadState(t.statePath)
	if err != nil {
		return fmt.Errorf("load job state %s: %w", t.statePath, err)
	}
	t.store.Restore(state.Jobs)
	t.metrics.SetActiveJobs(len(t.store.Executing()))
	return nil
}

func (t *Tracker) persist() {
	if t.statePath == "" {
		return
	}
	t.saveMu.Lock()
	defer t.saveMu.Unlock()
	if err := SaveState(t.statePath, PersistedState{Jobs: t.store.Snapshot()}); err != nil {
		t.logger.Warn("persist job state failed", zap.String("path", t.statePath), zap.Error(err))
	}
}

// PersistedState is the job state file written after every job transition.
type PersistedState struct {
	Jobs map[string]*Job `json:"jobs"`
}

// LoadState reads the job state file. A missing file is an empty state.
func LoadState(path string) (PersistedState, error) {
	var state PersistedState
	if _, err := jsonfile.Read(path, &state); err != nil {
		return PersistedState{}, err
	}
	if state.Jobs == nil {
		state.Jobs = map[string]*Job{}
	}
	return state, nil
}

func SaveState(path string, state PersistedState) error {
	return jsonfile.Write(path, state)
}

// Submit creates a job for an analysis request. A company whose analysis is
// already finished gets a completed job unless Replace is set; otherwise the
// backend analysis is triggered in the background and the job is polled.
func (t *Tracker) Submit(ctx context.Context, req SubmitRequest) (Job, error) {
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return Job{}, ErrCompanyNameRequired
	}
	companyURL := strings.TrimSpace(req.CompanyURL)
	log := t.logger.With(zap.String("company", name))

	if !req.Replace {
		status, err := t.analyzer.CacheStatus(ctx, name)
		if err != nil {
			return Job{}, err
		}
		if status.Exists && status.HasFinalProposal() {
			job := t.store.Create(name, companyURL, analysis.CompanyID(name))
			t.store.Complete(job.Token)
			t.persist()
			log.Info("analysis already cached", zap.String("token", job.Token))
			job, _ = t.store.Get(job.Token)
			return job, nil
		}
	}
	if companyURL == "" {
		return Job{}, ErrCompanyURLRequired
	}

	if req.Replace {
		ok, err := t.analyzer.ClearCache(ctx, name, name)
		if err != nil || !ok {
			log.Warn("clear cache before regeneration failed", zap.Bool("success", ok), zap.Error(err))
		}
	}

	job := t.store.Create(name, companyURL, analysis.CompanyID(name))
	t.store.Start(job.Token)
	t.persist()
	t.metrics.SetActiveJobs(len(t.store.Executing()))
	log.Info("analysis submitted", zap.String("token", job.Token), zap.String("url", companyURL))

	t.wg.Add(1)
	go t.analyze(context.WithoutCancel(ctx), job)

	job, _ = t.store.Get(job.Token)
	return job, nil
}

// analyze triggers the backend analysis. The backend keeps working after a
// dropped connection, so only an explicit rejection fails the job.
func (t *Tracker) analyze(ctx context.Context, job Job) {
	defer t.wg.Done()
	ctx, cancel := context.WithTimeout(ctx, t.analyzeTimeout)
	defer cancel()

	_, err := t.analyzer.GenerateAnalysis(ctx, job.CompanyURL, job.CompanyName)
	if err == nil {
		return
	}
	log := t.logger.With(zap.String("token", job.Token), zap.String("company", job.CompanyName))
	if status := backend.StatusCode(err); status != 0 {
		log.Error("backend rejected analysis", zap.Int("status", status), zap.Error(err))
		if t.store.Fail(job.Token, fmt.Sprintf("Error starting analysis (status %d)", status)) {
			t.metrics.SetActiveJobs(len(t.store.Executing()))
			t.persist()
		}
		return
	}
	log.Warn("analysis request ended without a response, polling continues", zap.Error(err))
}

// Wait blocks until every background analysis request has returned.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Run polls executing jobs every interval. It blocks until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Poll(ctx)
		}
	}
}

// Poll checks every executing job once. Status check failures are logged and
// retried on the next tick.
func (t *Tracker) Poll(ctx context.Context) {
	changed := false
	for _, job := range t.store.Executing() {
		if ctx.Err() != nil {
			return
		}
		status, err := t.analyzer.CacheStatus(ctx, job.CompanyName)
		if err != nil {
			t.logger.Warn("job status check failed", zap.String("token", job.Token), zap.String("company", job.CompanyName), zap.Error(err))
			continue
		}
		if status.Exists && status.HasFinalProposal() {
			if t.store.Complete(job.Token) {
				t.logger.Info("analysis complete", zap.String("token", job.Token), zap.String("company", job.CompanyName))
				changed = true
			}
			continue
		}
		if t.store.Advance(job.Token, backend.NextProgress(job.Progress)) {
			changed = true
		}
	}
	t.metrics.SetActiveJobs(len(t.store.Executing()))
	if changed {
		t.persist()
	}
}
