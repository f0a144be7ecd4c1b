// Package service runs calculations for in-process callers (HTTP, CLI): it
// adds request ids, logging, metrics, path policy and batching on top of the
// boundary calculator.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/refxpp/internal/boundary"
	"github.com/okian/refxpp/internal/domain/model"
	"github.com/okian/refxpp/internal/domain/scoring"
	"github.com/okian/refxpp/pkg/logger"
	"github.com/okian/refxpp/pkg/metrics"
)

const (
	entryPath  = "path"
	entryBytes = "bytes"
)

// Request is one calculation. Exactly one of BeatmapPath and Beatmap is set.
type Request struct {
	BeatmapPath string
	Beatmap     []byte
	Score       model.Score
}

// BatchResult is the outcome of one batch item.
type BatchResult struct {
	Result model.Result
	Err    error
}

// Service implements the calculation dependencies of the HTTP API and CLI.
type Service struct {
	mu sync.Mutex

	calc *boundary.Calculator

	// Configuration
	accuracyScale    scoring.AccuracyScale
	allowPaths       bool
	beatmapDir       string
	maxBeatmapBytes  int64
	batchConcurrency int
	maxBatchSize     int

	// State
	started bool
	cancel  context.CancelFunc
	served  atomic.Int64
	failed  atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAccuracyScale sets how request accuracy is read.
func WithAccuracyScale(scale scoring.AccuracyScale) Option {
	return func(s *Service) {
		s.accuracyScale = scale
	}
}

// WithBeatmapDir allows path requests, resolved inside dir. Paths must be
// relative and may not leave dir. An empty dir keeps path requests disabled.
func WithBeatmapDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.allowPaths = true
			s.beatmapDir = dir
		}
	}
}

// WithUnrestrictedPaths allows path requests for any path.
func WithUnrestrictedPaths() Option {
	return func(s *Service) {
		s.allowPaths = true
		s.beatmapDir = ""
	}
}

// WithMaxBeatmapBytes caps in-memory beatmaps.
func WithMaxBeatmapBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBeatmapBytes = n
		}
	}
}

// WithBatchConcurrency bounds concurrent calculations within one batch.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithMaxBatchSize caps the number of items in one batch.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		accuracyScale:    scoring.ScalePercent,
		maxBeatmapBytes:  8 << 20,
		batchConcurrency: runtime.NumCPU(),
		maxBatchSize:     100,
		logger:           logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.calc = boundary.NewCalculator(scoring.NewBuilder(scoring.WithAccuracyScale(s.accuracyScale)))
	return s
}

// Start begins sampling system metrics. It is safe to call more than once.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	ctx, s.cancel = context.WithCancel(ctx)
	metrics.StartSystemSampler(ctx)
	s.started = true

	s.logger.Info(ctx, "calculator service started",
		logger.Bool("pathRequests", s.allowPaths),
		logger.String("beatmapDir", s.beatmapDir),
		logger.String("accuracyScale", string(s.accuracyScale)),
		logger.Int("batchConcurrency", s.batchConcurrency),
	)
	return nil
}

// Stop ends background sampling.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	s.started = false
	s.logger.Info(context.Background(), "calculator service stopped")
}

// Calculate runs one calculation.
func (s *Service) Calculate(ctx context.Context, req Request) (model.Result, error) {
	id := uuid.NewString()
	log := s.logger.With(logger.String("request_id", id))
	start := time.Now()

	entry := entryPath
	if req.BeatmapPath == "" {
		entry = entryBytes
	}

	res, v, err := s.calculate(req)
	elapsed := time.Since(start)
	metrics.RecordCalculationLatency(entry, float64(elapsed.Microseconds())/1000)

	if err != nil {
		s.failed.Add(1)
		kind := boundary.StatusOf(err).String()
		metrics.RecordCalculationError(kind, entry)
		log.Warn(ctx, "calculation failed",
			logger.String("entry", entry),
			logger.String("kind", kind),
			logger.Error(err),
		)
		return model.Result{}, err
	}

	s.served.Add(1)
	metrics.RecordCalculation(v, entry)
	log.Debug(ctx, "calculated",
		logger.String("entry", entry),
		logger.String("variant", v),
		logger.Uint32("mods", uint32(req.Score.Mods)),
		logger.Float64("pp", res.PP),
		logger.Float64("stars", res.Stars),
		logger.Duration("elapsed", elapsed),
	)
	return res, nil
}

func (s *Service) calculate(req Request) (model.Result, string, error) {
	const op = "service.Calculate"

	hasPath, hasBytes := req.BeatmapPath != "", len(req.Beatmap) > 0
	if hasPath == hasBytes {
		return model.Result{}, "", invalid(op, ErrNoBeatmap)
	}

	v, err := s.calc.Select(req.Score)
	if err != nil {
		return model.Result{}, "", err
	}

	if hasBytes {
		if int64(len(req.Beatmap)) > s.maxBeatmapBytes {
			return model.Result{}, "", invalid(op, fmt.Errorf("%w: %d > %d", ErrBeatmapTooLarge, len(req.Beatmap), s.maxBeatmapBytes))
		}
		metrics.RecordBeatmapSize(len(req.Beatmap))
		res, err := s.calc.CalculateScoreBytes(boundary.BytesRequest{Data: req.Beatmap, Score: req.Score})
		return res, v.String(), err
	}

	path, err := s.resolve(req.BeatmapPath)
	if err != nil {
		return model.Result{}, "", invalid(op, err)
	}
	res, err := s.calc.CalculateScore(boundary.PathRequest{Path: path, Score: req.Score})
	return res, v.String(), err
}

// resolve applies the path policy.
func (s *Service) resolve(p string) (string, error) {
	if !s.allowPaths {
		return "", ErrPathsDisabled
	}
	if s.beatmapDir == "" {
		return p, nil
	}
	if !filepath.IsLocal(p) {
		return "", fmt.Errorf("%w: %q", ErrPathOutsideDir, p)
	}
	return filepath.Join(s.beatmapDir, p), nil
}

// CalculateBatch runs independent calculations concurrently. Item failures
// are reported per item; the returned error is only set when the batch
// itself is rejected or ctx ends.
func (s *Service) CalculateBatch(ctx context.Context, reqs []Request) ([]BatchResult, error) {
	if len(reqs) > s.maxBatchSize {
		return nil, invalid("service.CalculateBatch", fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(reqs), s.maxBatchSize))
	}
	metrics.RecordBatchSize(len(reqs))

	out := make([]BatchResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.Calculate(gctx, req)
			out[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	return out, nil
}

// Stats returns service counters for monitoring.
func (s *Service) Stats() map[string]any {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	return map[string]any{
		"started":          started,
		"served":           s.served.Load(),
		"failed":           s.failed.Load(),
		"pathRequests":     s.allowPaths,
		"batchConcurrency": s.batchConcurrency,
	}
}

// IsInputError reports whether err is caused by the request rather than the
// calculation.
func IsInputError(err error) bool {
	return errors.Is(err, boundary.ErrInvalidInput)
}

func invalid(op string, err error) error {
	return &boundary.Error{Op: op, Kind: boundary.ErrInvalidInput, Err: err}
}
