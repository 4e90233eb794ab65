package journey

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chronosynth/chronosynth/core"
	"github.com/chronosynth/chronosynth/logging"
	"github.com/chronosynth/chronosynth/model"
	"github.com/chronosynth/chronosynth/prompt"
)

const (
	// DefaultStageTimeout bounds the guidance call made for each stage.
	DefaultStageTimeout = 15 * time.Second

	// DefaultPauseInterval is how often a suspended walk rechecks the
	// session's pause flag.
	DefaultPauseInterval = 250 * time.Millisecond
)

// Options holds configuration overrides passed to NewRunner.
type Options struct {
	// StageTimeout is the deadline for each stage's guidance call.
	StageTimeout time.Duration
	// PauseInterval is the poll cadence while the walk is suspended.
	PauseInterval time.Duration
	// Logger receives journey progress logs.
	Logger logging.Logger
}

// Runner walks sessions through the healing journey stages. Public methods
// are safe for concurrent use.
type Runner struct {
	invoker  model.Invoker
	sessions core.SessionStore

	stageTimeout  time.Duration
	pauseInterval time.Duration
	logger        logging.Logger

	activeJobs map[string]context.CancelFunc
	mu         sync.Mutex
}

// NewRunner constructs a Runner over the session store. A nil invoker
// disables guidance calls; stages then checkpoint with a fixed note.
func NewRunner(invoker model.Invoker, sessions core.SessionStore, optFns ...func(o *Options)) *Runner {
	opts := Options{
		StageTimeout:  DefaultStageTimeout,
		PauseInterval: DefaultPauseInterval,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		invoker:       invoker,
		sessions:      sessions,
		stageTimeout:  opts.StageTimeout,
		pauseInterval: opts.PauseInterval,
		logger:        logging.OrDefault(opts.Logger),
	}
}

// Run walks the session through every unvisited stage and marks the journey
// done. Pauses suspend the walk between stages until the flag clears or ctx
// is cancelled; stages completed by an earlier walk are not repeated.
func (r *Runner) Run(ctx context.Context, sessionID string) error {
	sess, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	start := time.Now()

	// Checkpoints must land even when the walk is cancelled mid-stage.
	persistCtx := context.WithoutCancel(ctx)

	visited := visitedStages(sess)
	for _, stage := range Stages() {
		if visited[stage] {
			continue
		}

		if err := r.waitWhilePaused(ctx, sessionID, stage); err != nil {
			return err
		}

		note, err := r.stageNote(ctx, sessionID, stage, sess.Input)
		if err != nil {
			return err
		}

		cp := core.Checkpoint{Stage: stage, Note: note, At: time.Now().UTC()}
		if err := r.sessions.AddCheckpoint(persistCtx, sessionID, cp); err != nil {
			return fmt.Errorf("checkpoint %s stage: %w", stage, err)
		}
		r.logger.Debug("Journey stage completed", "session_id", sessionID, "stage", stage)
	}

	updated, err := r.sessions.Get(persistCtx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	updated.FinishJourney()
	if err := r.sessions.Put(persistCtx, updated); err != nil {
		return fmt.Errorf("persist finished journey: %w", err)
	}

	r.logger.Info("Journey finished",
		"session_id", sessionID,
		"stages", len(Stages()),
		"elapsed", time.Since(start).String(),
	)

	return nil
}

// Start begins a walk in the background and returns its job id. The walk
// keeps going after the caller's context is released; use Cancel to stop
// it early.
func (r *Runner) Start(ctx context.Context, sessionID string) (string, error) {
	if _, err := r.sessions.Get(ctx, sessionID); err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}

	jobID := uuid.NewString()
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	r.mu.Lock()
	if r.activeJobs == nil {
		r.activeJobs = make(map[string]context.CancelFunc)
	}
	r.activeJobs[jobID] = cancel
	r.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			r.mu.Lock()
			delete(r.activeJobs, jobID)
			r.mu.Unlock()
		}()

		if err := r.Run(runCtx, sessionID); err != nil {
			r.logger.Error("Background journey stopped", "session_id", sessionID, "job_id", jobID, "error", err.Error())
		}
	}()

	return jobID, nil
}

// Cancel stops an active background walk. Stages already checkpointed stay
// checkpointed; a later Run resumes after them.
func (r *Runner) Cancel(jobID string) error {
	r.mu.Lock()
	cancel, exists := r.activeJobs[jobID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("no active journey job %s", jobID)
	}

	cancel()

	return nil
}

// waitWhilePaused blocks until the session's pause flag clears, polling the
// store so pauses and resumes from other processes are honored.
func (r *Runner) waitWhilePaused(ctx context.Context, sessionID, stage string) error {
	suspended := false
	for {
		sess, err := r.sessions.Get(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if !sess.IsPaused() {
			if suspended {
				r.logger.Info("Journey resumed", "session_id", sessionID, "next_stage", stage)
			}
			return nil
		}

		if !suspended {
			suspended = true
			r.logger.Info("Journey suspended", "session_id", sessionID, "next_stage", stage)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w before %s stage", core.ErrJourneyPaused, stage)
		case <-time.After(r.pauseInterval):
		}
	}
}

// stageNote produces the checkpoint note for one stage. Guidance call
// failures degrade to the fixed note; only cancellation of the walk itself
// aborts.
func (r *Runner) stageNote(ctx context.Context, sessionID, stage, entry string) (string, error) {
	if r.invoker == nil {
		return fallbackNote(stage), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, r.stageTimeout)
	defer cancel()

	resp, err := r.invoker.Invoke(callCtx, prompt.BuildJourneyStage(stage, entry))
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("journey stopped at %s stage: %w", stage, ctx.Err())
		}
		r.logger.Warn("Journey guidance call failed", "session_id", sessionID, "stage", stage, "error", err.Error())
		return fallbackNote(stage), nil
	}

	note := strings.TrimSpace(resp.Text)
	if note == "" {
		return fallbackNote(stage), nil
	}
	return note, nil
}

// visitedStages collects the stages already checkpointed on the session.
func visitedStages(sess *core.Session) map[string]bool {
	visited := make(map[string]bool)
	if sess.Journey == nil {
		return visited
	}
	for _, cp := range sess.Journey.Checkpoints {
		visited[cp.Stage] = true
	}
	return visited
}
