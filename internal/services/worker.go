package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/research-advisor/internal/logger"
	"alfredoptarigan/research-advisor/internal/models"
	"alfredoptarigan/research-advisor/internal/repositories"
)

var (
	ErrQueueFull     = errors.New("analysis queue is full")
	ErrWorkerStopped = errors.New("analysis worker is stopped")
)

// AnalysisJob is one queued submission.
type AnalysisJob struct {
	File      *models.CVFile
	Interests []models.Interest
	Locale    string
}

// Worker runs analyses in the background and tracks them as RunState values.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	Submit(job AnalysisJob) (models.RunState, error)
	Get(id string) (models.RunState, error)
	Cancel(id string) (models.RunState, error)
}

type WorkerOptions struct {
	Concurrency int
	QueueSize   int
	Retention   time.Duration
}

type queuedRun struct {
	id  string
	ctx context.Context
	job AnalysisJob
}

type activeRun struct {
	cancel context.CancelFunc
	locale string
}

type worker struct {
	runRepo      repositories.RunRepository
	orchestrator AnalysisOrchestrator
	jobQueue     chan queuedRun
	concurrency  int
	retention    time.Duration
	log          *logger.Logger

	baseCtx  context.Context
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once

	mu     sync.Mutex
	active map[string]activeRun
}

func NewWorker(
	runRepo repositories.RunRepository,
	orchestrator AnalysisOrchestrator,
	opts WorkerOptions,
	log *logger.Logger,
) Worker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}

	return &worker{
		runRepo:      runRepo,
		orchestrator: orchestrator,
		jobQueue:     make(chan queuedRun, opts.QueueSize),
		concurrency:  opts.Concurrency,
		retention:    opts.Retention,
		log:          log.WithComponent("worker"),
		baseCtx:      context.Background(),
		stopChan:     make(chan struct{}),
		active:       make(map[string]activeRun),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info().Int("concurrency", w.concurrency).Msg("starting analysis worker")

	w.mu.Lock()
	w.baseCtx = ctx
	w.mu.Unlock()

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(i + 1)
	}

	if w.retention > 0 {
		w.wg.Add(1)
		go w.evictFinishedRuns()
	}
}

// Stop implements Worker. In-flight runs are cancelled and queued runs are
// marked cancelled.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info().Msg("stopping analysis worker")

		// Closed under mu so no Submit can enqueue after the drain below.
		w.mu.Lock()
		close(w.stopChan)
		for _, run := range w.active {
			run.cancel()
		}
		w.mu.Unlock()

		w.wg.Wait()

		w.mu.Lock()
		var pending []queuedRun
	drain:
		for {
			select {
			case run := <-w.jobQueue:
				pending = append(pending, run)
			default:
				break drain
			}
		}
		w.mu.Unlock()

		for _, run := range pending {
			w.finishCancelled(run.id, run.job.Locale)
			w.release(run.id)
		}
		w.log.Info().Int("cancelled_queued", len(pending)).Msg("analysis worker stopped")
	})
}

// Submit implements Worker. The returned state is Idle; the run starts once
// a worker picks it up.
func (w *worker) Submit(job AnalysisJob) (models.RunState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.stopChan:
		return models.RunState{}, ErrWorkerStopped
	default:
	}

	state := models.IdleState(uuid.NewString(), time.Now())
	if err := w.runRepo.Create(state); err != nil {
		return models.RunState{}, err
	}

	ctx, cancel := context.WithCancel(w.baseCtx)
	select {
	case w.jobQueue <- queuedRun{id: state.ID, ctx: ctx, job: job}:
		w.active[state.ID] = activeRun{cancel: cancel, locale: job.Locale}
	default:
		cancel()
		w.runRepo.Delete(state.ID)
		return models.RunState{}, ErrQueueFull
	}

	w.log.Debug().Str("run_id", state.ID).Msg("run enqueued")
	return state, nil
}

// Get implements Worker.
func (w *worker) Get(id string) (models.RunState, error) {
	return w.runRepo.FindByID(id)
}

// Cancel implements Worker. Cancelling a finished run is a no-op that
// returns its final state.
func (w *worker) Cancel(id string) (models.RunState, error) {
	state, err := w.runRepo.FindByID(id)
	if err != nil {
		return models.RunState{}, err
	}
	if state.Terminal() {
		return state, nil
	}

	w.mu.Lock()
	run, ok := w.active[id]
	w.mu.Unlock()
	if !ok {
		return state, nil
	}

	run.cancel()
	w.log.Info().Str("run_id", id).Str("status", string(state.Status)).Msg("run cancellation requested")

	// Still queued: nothing is in flight, so the run can be closed now.
	if state.Status == models.RunIdle {
		return w.finishCancelled(id, run.locale), nil
	}
	return w.runRepo.FindByID(id)
}

func (w *worker) processJobs(workerID int) {
	defer w.wg.Done()
	w.log.Debug().Int("worker_id", workerID).Msg("worker started processing jobs")

	for {
		select {
		case <-w.stopChan:
			w.log.Debug().Int("worker_id", workerID).Msg("worker stopped")
			return
		case run := <-w.jobQueue:
			w.execute(workerID, run)
		}
	}
}

func (w *worker) execute(workerID int, run queuedRun) {
	defer w.release(run.id)

	if run.ctx.Err() != nil {
		w.finishCancelled(run.id, run.job.Locale)
		return
	}

	log := w.log.WithRequestID(run.id)
	log.Info().Int("worker_id", workerID).Msg("processing analysis run")

	observer := func(stage models.PipelineStage) {
		if stage == models.StageSucceeded || stage == models.StageFailed {
			return
		}
		_, _ = w.runRepo.Update(run.id, func(s models.RunState) models.RunState {
			return s.Running(stage, time.Now())
		})
	}

	report, err := w.orchestrator.RunAnalysis(
		run.ctx,
		run.job.File,
		run.job.Interests,
		WithStageObserver(observer),
		WithRequestID(run.id),
	)

	if err != nil {
		if run.ctx.Err() != nil {
			w.finishCancelled(run.id, run.job.Locale)
			log.Info().Msg("analysis run cancelled")
			return
		}

		kind, message := string(KindAnalysisServiceFailed), fallbackMessage
		if pe, ok := AsPipelineError(err); ok {
			kind, message = string(pe.Kind), pe.Localize(run.job.Locale)
		}
		_, _ = w.runRepo.Update(run.id, func(s models.RunState) models.RunState {
			return s.Failed(kind, message, time.Now())
		})
		log.Warn().Err(err).Msg("analysis run failed")
		return
	}

	_, _ = w.runRepo.Update(run.id, func(s models.RunState) models.RunState {
		return s.Succeeded(report, time.Now())
	})
	log.Info().Msg("analysis run completed")
}

func (w *worker) finishCancelled(id, locale string) models.RunState {
	state, _ := w.runRepo.Update(id, func(s models.RunState) models.RunState {
		return s.Failed(RunKindCancelled, CancelledMessage(locale), time.Now())
	})
	return state
}

func (w *worker) release(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if run, ok := w.active[id]; ok {
		run.cancel()
		delete(w.active, id)
	}
}

func (w *worker) evictFinishedRuns() {
	defer w.wg.Done()

	interval := w.retention / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			if n := w.runRepo.DeleteFinishedBefore(time.Now().Add(-w.retention)); n > 0 {
				w.log.Debug().Int("evicted", n).Msg("finished runs evicted")
			}
		}
	}
}
