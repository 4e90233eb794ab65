package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/chronosynth/chronosynth/agent"
	"github.com/chronosynth/chronosynth/core"
	"github.com/chronosynth/chronosynth/logging"
	"github.com/chronosynth/chronosynth/model"
)

// SchedulerOptions configures the fan-out stage.
type SchedulerOptions struct {
	// Timeout is the soft deadline applied to every role without an
	// entry in Timeouts.
	Timeout time.Duration

	// Timeouts overrides the soft deadline for individual roles.
	Timeouts map[core.Role]time.Duration

	// Observer receives one observation per model call.
	Observer core.Observer

	// Logger receives fan-out progress logs.
	Logger logging.Logger
}

// Scheduler runs the three perspective agents concurrently and joins
// their results into a complete bundle.
//
// The join is wait-for-all: every task runs to a terminal state no matter
// how its siblings fare. A timeout or failure in one role neither cancels
// the others nor surfaces as an error; it is recorded as that role's
// terminal result.
type Scheduler struct {
	tasks  [core.FanOutWidth]*agent.Task
	logger logging.Logger
}

// NewScheduler builds one task per fan-out role over a shared invoker.
func NewScheduler(invoker model.Invoker, optFns ...func(o *SchedulerOptions)) *Scheduler {
	opts := SchedulerOptions{
		Timeout:  agent.DefaultTaskTimeout,
		Observer: core.NoOpObserver{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := logging.OrDefault(opts.Logger)

	var tasks [core.FanOutWidth]*agent.Task
	for i, role := range core.FanOutRoles() {
		timeout := opts.Timeout
		if override, ok := opts.Timeouts[role]; ok {
			timeout = override
		}

		tasks[i] = agent.NewTask(role, invoker, func(o *agent.TaskOptions) {
			o.Timeout = timeout
			o.Observer = opts.Observer
			o.Logger = logger
		})
	}

	return &Scheduler{tasks: tasks, logger: logger}
}

// FanOut launches every role task at the same logical instant and waits
// for all of them to finish. Each task writes its own bundle slot exactly
// once, so the returned bundle always holds three terminal results and
// the elapsed time is bounded by the slowest role, not the sum.
func (s *Scheduler) FanOut(ctx context.Context, sessionID, entry string, recalled []string) core.Bundle {
	var (
		wg    sync.WaitGroup
		slots [core.FanOutWidth]core.AgentResult
	)

	start := time.Now()

	for i, task := range s.tasks {
		wg.Add(1)
		go func(slot *core.AgentResult, tk *agent.Task) {
			defer wg.Done()
			*slot = tk.Execute(ctx, sessionID, entry, recalled)
		}(&slots[i], task)
	}

	wg.Wait()

	var bundle core.Bundle
	for _, result := range slots {
		if err := bundle.Set(result); err != nil {
			s.logger.Error("Dropped fan-out result", "session_id", sessionID, "role", result.Role.String(), "error", err.Error())
		}
	}

	s.logger.Info("Fan-out joined",
		"session_id", sessionID,
		"successes", len(bundle.Successes()),
		"elapsed", time.Since(start).String(),
	)

	return bundle
}
