package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chronosynth/chronosynth/core"
	"github.com/chronosynth/chronosynth/evaluation"
	"github.com/chronosynth/chronosynth/orchestrator"
	"github.com/chronosynth/chronosynth/trace"
)

type ingestRequest struct {
	Text      string `json:"text"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
}

type createSessionRequest struct {
	UserID string `json:"user_id"`
}

type evalRequest struct {
	TraceID  string `json:"trace_id"`
	UserID   string `json:"user_id"`
	Rating   int    `json:"rating"`
	Comments string `json:"comments,omitempty"`
}

type consentRequest struct {
	Consent *bool `json:"consent"`
}

type evalSummaryResponse struct {
	UserID                   string   `json:"user_id"`
	Count                    int      `json:"count"`
	SatisfactionAvg          float64  `json:"satisfaction_avg"`
	FuturePredictionAccuracy *float64 `json:"future_prediction_accuracy"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIngest accepts an entry, starts the run in the background and
// returns the trace id the caller polls for results.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "text and user_id are required")
		return
	}

	traceID, err := s.pipeline.Start(r.Context(), orchestrator.RunRequest{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Entry:     req.Text,
	})
	if err != nil {
		s.logger.Error("Ingest failed to start run", "user_id", req.UserID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"trace_id": traceID,
		"status":   "processing",
	})
}

// handleResult returns the session in its current state: pending or partial
// while the run is in flight, the plan or the failure once it finished.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	traceID := chi.URLParam(r, "traceID")

	sess, err := s.sessions.Get(r.Context(), traceID)
	if err != nil {
		s.storeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	sess := core.NewSession(uuid.NewString(), req.UserID)
	if err := s.sessions.Put(r.Context(), sess); err != nil {
		s.storeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"session_id": sess.ID})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.setPaused(w, r, true)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.setPaused(w, r, false)
}

func (s *Server) setPaused(w http.ResponseWriter, r *http.Request, paused bool) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.sessions.SetPaused(r.Context(), sessionID, paused); err != nil {
		s.storeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"paused":     paused,
	})
}

// handleStartJourney kicks off the background healing journey walk and
// returns its job id.
func (s *Server) handleStartJourney(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	jobID, err := s.journeys.Start(r.Context(), sessionID)
	if err != nil {
		s.storeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id":     jobID,
		"session_id": sessionID,
	})
}

func (s *Server) handleSubmitEval(w http.ResponseWriter, r *http.Request) {
	var req evalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := s.evals.Submit(r.Context(), evaluation.Feedback{
		SessionID: req.TraceID,
		UserID:    req.UserID,
		Rating:    req.Rating,
		Comment:   req.Comments,
	})
	if err != nil {
		if errors.Is(err, evaluation.ErrInvalidFeedback) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.storeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleEvalSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	sum, err := s.evals.DailySummary(r.Context(), userID)
	if err != nil {
		s.storeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, evalSummaryResponse{
		UserID:          sum.UserID,
		Count:           sum.Count,
		SatisfactionAvg: sum.Average,
	})
}

// handleSetConsent records the user's memory consent. An empty body or an
// omitted field means consent granted, matching the opt-in call shape.
func (s *Server) handleSetConsent(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req consentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	granted := true
	if req.Consent != nil {
		granted = *req.Consent
	}

	if err := s.evals.SetConsent(r.Context(), userID, granted); err != nil {
		s.storeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"consent": granted,
	})
}

// handlePurgeUser removes everything recorded for a user: long-term
// memories, sessions, feedback and the consent flag.
func (s *Server) handlePurgeUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ctx := r.Context()

	memoriesDeleted, err := s.memories.PurgeUser(ctx, userID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	sessionsDeleted, err := s.sessions.DeleteUserData(ctx, userID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	evaluationsDeleted, err := s.evals.PurgeUser(ctx, userID)
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.logger.Info("User data purged",
		"user_id", userID,
		"memories_deleted", memoriesDeleted,
		"sessions_deleted", sessionsDeleted,
		"evaluations_deleted", evaluationsDeleted,
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":             userID,
		"memories_deleted":    memoriesDeleted,
		"sessions_deleted":    sessionsDeleted,
		"evaluations_deleted": evaluationsDeleted,
	})
}

// handleTrace returns the inter-agent message log recorded for a session.
func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if _, err := s.sessions.Get(r.Context(), sessionID); err != nil {
		s.storeError(w, err)
		return
	}

	msgs, err := s.recorder.List(r.Context(), sessionID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if msgs == nil {
		msgs = []trace.Message{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   msgs,
	})
}

// storeError maps store failures to HTTP statuses.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.logger.Error("Store operation failed", "error", err.Error())
	writeError(w, http.StatusInternalServerError, err.Error())
}
