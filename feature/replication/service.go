package replication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bucket-diff/core/diff"
	"bucket-diff/core/listing"
	"bucket-diff/core/metrics"
	"bucket-diff/core/retry"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrPairFailed is returned for a pair whose last round failed fatally. Reset the
// checkpoint after fixing the cause to start over.
var ErrPairFailed = errors.New("replication pair stopped after a fatal error")

// Service runs diff rounds for one bucket pair and keeps its checkpoint.
type Service struct {
	first  Endpoint
	second Endpoint
	config Config
	store  Checkpoints
	logger *zap.Logger

	sf    singleflight.Group
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a replication service.
func NewService(first, second Endpoint, cfg Config, store Checkpoints, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		first:  first,
		second: second,
		config: cfg,
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// PairKey identifies the pair and prefix in checkpoints and metrics.
func (s *Service) PairKey() string {
	return s.first.String() + "|" + s.second.String() + "|" + s.config.Prefix
}

// lock serializes rounds of one pair.
func (s *Service) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// SideStatus reports whether one bucket is reachable.
type SideStatus struct {
	Backend string `json:"backend"`
	Bucket  string `json:"bucket"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// PreflightReport is the result of Preflight.
type PreflightReport struct {
	PairKey string     `json:"pair_key"`
	First   SideStatus `json:"first"`
	Second  SideStatus `json:"second"`

	// MissingColumns lists checkpoint columns absent from the database.
	MissingColumns []string `json:"missing_columns,omitempty"`

	OK bool `json:"ok"`
}

// Preflight checks that both buckets exist and the checkpoint table is usable.
func (s *Service) Preflight(ctx context.Context) (*PreflightReport, error) {
	report := &PreflightReport{
		PairKey: s.PairKey(),
		First:   s.checkSide(ctx, s.first),
		Second:  s.checkSide(ctx, s.second),
	}

	if v, ok := s.store.(interface{ Verify() ([]string, error) }); ok {
		missing, err := v.Verify()
		if err != nil {
			return nil, fmt.Errorf("failed to inspect checkpoint table: %w", err)
		}
		report.MissingColumns = missing
	}

	report.OK = report.First.OK && report.Second.OK && len(report.MissingColumns) == 0
	return report, nil
}

func (s *Service) checkSide(ctx context.Context, ep Endpoint) SideStatus {
	status := SideStatus{Backend: ep.Backend, Bucket: ep.Bucket}

	if ep.Client != nil {
		exists, err := ep.Client.BucketExists(ctx, ep.Bucket)
		switch {
		case err != nil:
			status.Error = fmt.Sprintf("failed to check bucket existence: %v", err)
		case !exists:
			status.Error = fmt.Sprintf("bucket %s does not exist", ep.Bucket)
		default:
			status.OK = true
		}
		return status
	}

	// List-only backends are probed with a single-key page.
	_, err := ep.Source.List(ctx, listing.Request{Bucket: ep.Bucket, Prefix: s.config.Prefix, MaxKeys: 1})
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.OK = true
	return status
}

// Status describes the progress of the pair.
type Status struct {
	PairKey   string      `json:"pair_key"`
	Round     int         `json:"round"`
	Done      bool        `json:"done"`
	Failed    bool        `json:"failed"`
	LastError string      `json:"last_error,omitempty"`
	Leftover  int         `json:"leftover"`
	Cursor    diff.Cursor `json:"cursor"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

// Status loads the checkpoint of the pair.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	key := s.PairKey()
	cp, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	state, err := cp.DiffState()
	if err != nil {
		return nil, err
	}

	st := &Status{
		PairKey:  key,
		Round:    state.Round,
		Done:     state.Done(),
		Leftover: state.Leftover(),
		Cursor:   state.Cursor,
	}
	if cp != nil {
		st.Failed = cp.Failed
		st.LastError = cp.LastError
		updated := cp.UpdatedAt
		st.UpdatedAt = &updated
	}
	return st, nil
}

// RoundResult is the result of one round.
type RoundResult struct {
	PairKey  string     `json:"pair_key"`
	Round    int        `json:"round"`
	Done     bool       `json:"done"`
	Fetched  diff.Fetch `json:"fetched"`
	Leftover int        `json:"leftover"`
	Plan     *Plan      `json:"plan"`
	Executed int        `json:"executed"`
	Warnings []string   `json:"warnings,omitempty"`
}

// Round runs the next round for the pair, applies its plan when requested, and saves the
// new state. Concurrent calls with the same options share one round.
func (s *Service) Round(ctx context.Context, opts ApplyOptions) (*RoundResult, error) {
	key := s.PairKey()
	v, err, _ := s.sf.Do(fmt.Sprintf("%s|%t|%t", key, opts.Confirmed, opts.DryRun), func() (any, error) {
		unlock := s.lock(key)
		defer unlock()
		return s.round(ctx, key, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.(*RoundResult), nil
}

func (s *Service) round(ctx context.Context, key string, opts ApplyOptions) (*RoundResult, error) {
	cp, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if cp != nil && cp.Failed {
		return nil, fmt.Errorf("%w: %s", ErrPairFailed, cp.LastError)
	}
	state, err := cp.DiffState()
	if err != nil {
		return nil, err
	}
	if state.Done() {
		return &RoundResult{PairKey: key, Round: state.Round, Done: true, Plan: &Plan{}}, nil
	}

	sides := diff.Sides{First: s.first.Side(), Second: s.second.Side()}
	rcfg := s.config.RetryConfig()
	rcfg.Retryable = isBoundaryError
	rcfg.OnRetry = func(attempt int, wait time.Duration, err error) {
		s.logger.Warn("Round failed at a page boundary, retrying",
			zap.String("pair", key), zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(err))
	}

	start := time.Now()
	out, err := retry.Do(ctx, rcfg, func() (*diff.Outcome, error) {
		return diff.RunRound(ctx, sides, s.config.DiffOptions(), state)
	})
	if err != nil {
		metrics.RecordRound(key, "error", time.Since(start))
		s.fail(ctx, key, err)
		return nil, err
	}

	plan := BuildPlan(out, s.config.Policy())
	executed, err := Apply(ctx, plan, s.first, s.second, opts)
	if err != nil {
		metrics.RecordRound(key, "error", time.Since(start))
		s.fail(ctx, key, err)
		return nil, fmt.Errorf("failed to apply round %d: %w", out.Next.Round, err)
	}

	if err := s.store.Save(ctx, key, out.Next); err != nil {
		metrics.RecordRound(key, "error", time.Since(start))
		return nil, err
	}

	metrics.RecordRound(key, "success", time.Since(start))
	metrics.RecordClassified(key, "only_in_first", len(out.OnlyInFirst))
	metrics.RecordClassified(key, "only_in_second", len(out.OnlyInSecond))
	metrics.RecordClassified(key, "differing", len(out.Differing))
	metrics.RecordClassified(key, "equal", len(out.Equal))
	metrics.SetLeftover(key, out.Next.Leftover())

	for _, w := range out.Warnings {
		s.logger.Warn("Diff warning", zap.String("pair", key), zap.String("warning", w))
	}
	s.logger.Info("Round completed",
		zap.String("pair", key),
		zap.Int("round", out.Next.Round),
		zap.Bool("fetched_first", out.Fetched.First),
		zap.Bool("fetched_second", out.Fetched.Second),
		zap.Int("only_in_first", plan.Summary.OnlyInFirst),
		zap.Int("only_in_second", plan.Summary.OnlyInSecond),
		zap.Int("differing", plan.Summary.Differing),
		zap.Int("equal", plan.Summary.Equal),
		zap.Int("leftover", out.Next.Leftover()),
		zap.Int("executed", executed),
		zap.Bool("done", out.Done()))

	return &RoundResult{
		PairKey:  key,
		Round:    out.Next.Round,
		Done:     out.Done(),
		Fetched:  out.Fetched,
		Leftover: out.Next.Leftover(),
		Plan:     plan,
		Executed: executed,
		Warnings: out.Warnings,
	}, nil
}

// fail records a round error. Errors caused by cancellation are not recorded.
func (s *Service) fail(ctx context.Context, key string, roundErr error) {
	if errors.Is(roundErr, context.Canceled) {
		return
	}
	fatal := diff.IsFatal(roundErr)
	s.logger.Error("Round failed", zap.String("pair", key), zap.Bool("fatal", fatal), zap.Error(roundErr))
	if err := s.store.RecordError(context.WithoutCancel(ctx), key, roundErr, fatal); err != nil {
		s.logger.Error("Failed to record round error", zap.String("pair", key), zap.Error(err))
	}
}

func isBoundaryError(err error) bool {
	var malformed *diff.MalformedEntryError
	return errors.As(err, &malformed)
}

// RunReport summarizes RunToCompletion.
type RunReport struct {
	PairKey  string      `json:"pair_key"`
	Rounds   int         `json:"rounds"`
	Done     bool        `json:"done"`
	Executed int         `json:"executed"`
	Summary  PlanSummary `json:"summary"`
	Actions  []Action    `json:"actions,omitempty"`
}

// RunToCompletion runs rounds until the diff is done or maxRounds rounds ran (0 = no limit).
// When keepActions is set, the planned actions of every round are returned.
func (s *Service) RunToCompletion(ctx context.Context, maxRounds int, opts ApplyOptions, keepActions bool) (*RunReport, error) {
	key := s.PairKey()
	unlock := s.lock(key)
	defer unlock()

	report := &RunReport{PairKey: key}
	for maxRounds <= 0 || report.Rounds < maxRounds {
		res, err := s.round(ctx, key, opts)
		if err != nil {
			return report, err
		}
		if res.Done && res.Fetched == (diff.Fetch{}) {
			report.Done = true
			break
		}
		report.Rounds++
		report.Executed += res.Executed
		report.Summary.Add(res.Plan.Summary)
		if keepActions {
			report.Actions = append(report.Actions, res.Plan.Actions...)
		}
		if res.Done {
			report.Done = true
			break
		}
	}
	return report, nil
}

// Reset deletes the checkpoint of the pair.
func (s *Service) Reset(ctx context.Context) error {
	key := s.PairKey()
	unlock := s.lock(key)
	defer unlock()

	if err := s.store.Reset(ctx, key); err != nil {
		return err
	}
	s.logger.Info("Checkpoint reset", zap.String("pair", key))
	return nil
}
