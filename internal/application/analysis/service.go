package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gitworth/gitworth/internal/application"
	domain "github.com/gitworth/gitworth/internal/domain/analysis"
	"github.com/gitworth/gitworth/internal/domain/valuation"
	"github.com/gitworth/gitworth/internal/metrics"
)

// Service implements the analysis use-cases: start a pipeline run, fetch
// its record, and recalculate the market/valuation models from edited
// hypotheses. Safe for concurrent use.
type Service struct {
	store    domain.Store
	analyzer domain.Analyzer
	archive  domain.ReportArchive  // optional
	failures domain.FailureJournal // optional
	clock    application.Clock
	logger   *zap.Logger

	mu      sync.Mutex
	running map[domain.AnalysisID]struct{}
	locks   map[domain.AnalysisID]*sync.Mutex
}

// NewService wires the service. archive and failures may be nil; clock
// and logger fall back to system defaults.
func NewService(store domain.Store, analyzer domain.Analyzer, archive domain.ReportArchive, failures domain.FailureJournal, clock application.Clock, logger *zap.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		analyzer: analyzer,
		archive:  archive,
		failures: failures,
		clock:    clock,
		logger:   logger,
		running:  make(map[domain.AnalysisID]struct{}),
		locks:    make(map[domain.AnalysisID]*sync.Mutex),
	}
}

// StartAnalysis validates the repository URL, creates the pending record
// and launches the pipeline run detached from the caller. The returned
// record is the pending snapshot; progress is observed via Get.
func (s *Service) StartAnalysis(ctx context.Context, repositoryURL string) (*domain.Analysis, error) {
	if err := domain.ValidateRepositoryURL(repositoryURL); err != nil {
		return nil, err
	}

	id := domain.AnalysisID("analysis_" + uuid.New().String())
	rec := domain.NewAnalysis(id, repositoryURL, s.clock.Now())
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	if !s.beginRun(id) {
		// Unreachable with fresh ids, but kept as the at-most-one-run
		// guarantee for any future resume path.
		return nil, fmt.Errorf("start %s: %w", id, domain.ErrRunInFlight)
	}

	// The run outlives the request; its only channel back to the rest
	// of the system is writes to the store.
	go s.runPipeline(context.Background(), id)

	return rec, nil
}

// Get returns the current record verbatim.
func (s *Service) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	return s.store.Get(ctx, id)
}

// Latest returns the most recent records, newest first.
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	return s.store.Latest(ctx, limit)
}

// LatestFailures returns the most recent stage failures, newest first.
func (s *Service) LatestFailures(ctx context.Context, limit int) ([]domain.StageFailure, error) {
	if s.failures == nil {
		return []domain.StageFailure{}, nil
	}
	return s.failures.Latest(ctx, limit)
}

// Recalculate maps the submitted hypothesis set onto new market-sizing
// and valuation models for a completed record and writes the updated
// record back. Bounds are validated here; the engine itself does not
// clamp or reject.
func (s *Service) Recalculate(ctx context.Context, id domain.AnalysisID, hypotheses []domain.Hypothesis) (*domain.Analysis, error) {
	for _, h := range hypotheses {
		if h.Value < h.Min || h.Value > h.Max {
			return nil, fmt.Errorf("hypothesis %q: value %v outside [%v, %v]: %w",
				h.Key, h.Value, h.Min, h.Max, domain.ErrHypothesisOutOfRange)
		}
	}

	// Per-id lock closes the read-modify-write race against concurrent
	// recalculations for the same record.
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != domain.StatusCompleted {
		return nil, fmt.Errorf("recalculate %s: status %s: %w", id, rec.Status, domain.ErrAnalysisNotCompleted)
	}

	rec.Market, rec.Valuation = valuation.Recalculate(hypotheses, rec.Market, rec.Valuation)
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

type stage struct {
	name  string
	apply func(context.Context, *domain.Analysis) error
}

// stages is the fixed data-dependency chain: each stage reads exactly
// the sections earlier stages populated, never the raw URL past stage 2.
func (s *Service) stages() []stage {
	return []stage{
		{"technical-assessment", func(ctx context.Context, a *domain.Analysis) error {
			tech, err := s.analyzer.AnalyzeTechnical(ctx, a.RepositoryURL)
			if err != nil {
				return err
			}
			a.Technical = tech
			return nil
		}},
		{"product-function", func(ctx context.Context, a *domain.Analysis) error {
			product, err := s.analyzer.AnalyzeProduct(ctx, a.RepositoryURL, a.Technical)
			if err != nil {
				return err
			}
			a.Product = product
			return nil
		}},
		{"comparable-entities", func(ctx context.Context, a *domain.Analysis) error {
			comparables, err := s.analyzer.FindComparables(ctx, a.Product)
			if err != nil {
				return err
			}
			a.Comparables = comparables
			return nil
		}},
		{"market-sizing", func(ctx context.Context, a *domain.Analysis) error {
			market, err := s.analyzer.SizeMarket(ctx, a.Product, a.Comparables)
			if err != nil {
				return err
			}
			a.Market = market
			return nil
		}},
		{"valuation", func(ctx context.Context, a *domain.Analysis) error {
			val, err := s.analyzer.EstimateValuation(ctx, a.Market, a.Comparables)
			if err != nil {
				return err
			}
			a.Valuation = val
			return nil
		}},
	}
}

// runPipeline drives one record through the stages in order, writing the
// record back after every stage so readers see results in strict stage
// order. Any stage failure is terminal for the run; there is no retry.
func (s *Service) runPipeline(ctx context.Context, id domain.AnalysisID) {
	defer s.endRun(id)

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		s.logger.Error("pipeline record fetch failed", zap.String("id", string(id)), zap.Error(err))
		return
	}

	s.logger.Info("pipeline started",
		zap.String("id", string(id)),
		zap.String("repository", rec.RepositoryURL))

	rec.Status = domain.StatusInProgress
	if err := s.writeBack(ctx, rec); err != nil {
		return
	}

	for i, st := range s.stages() {
		started := time.Now()
		stageErr := st.apply(ctx, rec)
		metrics.ObserveStage(st.name, time.Since(started))

		if stageErr != nil {
			// CurrentStep stays at the last completed stage; sections
			// beyond it keep their empty defaults.
			s.logger.Error("stage failed",
				zap.String("id", string(id)),
				zap.String("stage", st.name),
				zap.Int("completed", rec.CurrentStep),
				zap.Error(stageErr))
			s.recordFailure(ctx, id, i+1, st.name, stageErr)
			metrics.ObserveRun(metrics.OutcomeError)

			rec.Status = domain.StatusError
			_ = s.writeBack(ctx, rec)
			return
		}

		rec.CurrentStep = i + 1
		if err := s.writeBack(ctx, rec); err != nil {
			return
		}
	}

	// The sixth stage is the completion transition itself.
	rec.CurrentStep = domain.NumStages
	rec.Status = domain.StatusCompleted
	if err := s.writeBack(ctx, rec); err != nil {
		return
	}
	metrics.ObserveRun(metrics.OutcomeCompleted)

	s.logger.Info("pipeline completed", zap.String("id", string(id)))

	if s.archive != nil {
		if url, err := s.archive.Store(ctx, rec); err != nil {
			s.logger.Warn("report archive failed", zap.String("id", string(id)), zap.Error(err))
		} else {
			s.logger.Info("report archived", zap.String("id", string(id)), zap.String("url", url))
		}
	}
}

func (s *Service) writeBack(ctx context.Context, rec *domain.Analysis) error {
	lock := s.lockFor(rec.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.Put(ctx, rec); err != nil {
		s.logger.Error("record write-back failed", zap.String("id", string(rec.ID)), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) recordFailure(ctx context.Context, id domain.AnalysisID, stageNum int, stageName string, err error) {
	if s.failures == nil {
		return
	}
	journalErr := s.failures.Record(ctx, domain.StageFailure{
		AnalysisID: id,
		Stage:      stageNum,
		StageName:  stageName,
		Message:    err.Error(),
		OccurredAt: s.clock.Now(),
	})
	if journalErr != nil {
		s.logger.Warn("failure journal write failed", zap.Error(journalErr))
	}
}

func (s *Service) beginRun(id domain.AnalysisID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.running[id]; ok {
		return false
	}
	s.running[id] = struct{}{}
	return true
}

func (s *Service) endRun(id domain.AnalysisID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, id)
}

// RunningCount reports how many pipeline runs are currently in flight.
func (s *Service) RunningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.running)
}

func (s *Service) lockFor(id domain.AnalysisID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
