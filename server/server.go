package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/chronosynth/chronosynth/core"
	"github.com/chronosynth/chronosynth/evaluation"
	"github.com/chronosynth/chronosynth/journey"
	"github.com/chronosynth/chronosynth/logging"
	"github.com/chronosynth/chronosynth/memory"
	"github.com/chronosynth/chronosynth/orchestrator"
	"github.com/chronosynth/chronosynth/trace"
)

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// Memories backs the purge endpoint; defaults to an in-memory store.
	Memories memory.Store
	// Evals backs the feedback and consent endpoints; defaults to an
	// in-memory store.
	Evals evaluation.Store
	// Recorder serves the trace endpoint; defaults to a no-op recorder.
	Recorder trace.Recorder
	// AllowedOrigins configures CORS; defaults to every origin.
	AllowedOrigins []string
	// Logger receives request handling logs.
	Logger logging.Logger
}

// Server wires the HTTP surface to the pipeline, journey runner and stores.
type Server struct {
	pipeline *orchestrator.Pipeline
	journeys *journey.Runner
	sessions core.SessionStore

	memories memory.Store
	evals    evaluation.Store
	recorder trace.Recorder

	allowedOrigins []string
	logger         logging.Logger
}

// New assembles a Server. The session store must be the same one the
// pipeline and journey runner write to, so result and pause endpoints see
// their updates.
func New(pipeline *orchestrator.Pipeline, journeys *journey.Runner, sessions core.SessionStore, optFns ...func(o *Options)) *Server {
	opts := Options{
		Memories:       memory.NewInMemoryStore(),
		Evals:          evaluation.NewInMemoryStore(),
		Recorder:       trace.NoOpRecorder{},
		AllowedOrigins: []string{"*"},
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Server{
		pipeline:       pipeline,
		journeys:       journeys,
		sessions:       sessions,
		memories:       opts.Memories,
		evals:          opts.Evals,
		recorder:       opts.Recorder,
		allowedOrigins: opts.AllowedOrigins,
		logger:         logging.OrDefault(opts.Logger),
	}
}

// Router builds the chi router with the full endpoint surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Heartbeat("/ping"))
	r.Use(corsMiddleware(s.allowedOrigins))

	r.Get("/", s.handleHealth)
	r.Get("/health", s.handleHealth)

	r.Post("/ingest", s.handleIngest)
	r.Get("/result/{traceID}", s.handleResult)

	r.Post("/session", s.handleCreateSession)
	r.Post("/session/{sessionID}/pause", s.handlePause)
	r.Post("/session/{sessionID}/resume", s.handleResume)
	r.Post("/tasks/journey/{sessionID}", s.handleStartJourney)

	r.Post("/eval", s.handleSubmitEval)
	r.Get("/eval/summary/{userID}", s.handleEvalSummary)

	r.Post("/user/{userID}/consent", s.handleSetConsent)
	r.Delete("/user/{userID}/data", s.handlePurgeUser)

	r.Get("/trace/{sessionID}", s.handleTrace)

	return r
}
