// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/synapse-ai/cortex/internal/domain"
	"github.com/synapse-ai/cortex/internal/domain/model"
	"github.com/synapse-ai/cortex/internal/infra/logging"
	"github.com/synapse-ai/cortex/internal/usecase"
)

type completionMetadata struct {
	Model            string  `json:"model"`
	ProcessingTimeMs float64 `json:"processing_time_ms,omitempty"`
	NodesExtracted   int     `json:"nodes_extracted,omitempty"`
	EdgesExtracted   int     `json:"edges_extracted,omitempty"`
	EpisodeID        string  `json:"episode_id,omitempty"`
}

type ingestResponse struct {
	JobID                    string              `json:"jobId"`
	Status                   string              `json:"status"`
	UserKnowledgeCompilation string              `json:"userKnowledgeCompilation,omitempty"`
	Metadata                 *completionMetadata `json:"metadata,omitempty"`
}

type pollResponse struct {
	Status                   string              `json:"status"`
	UserKnowledgeCompilation string              `json:"userKnowledgeCompilation,omitempty"`
	Metadata                 *completionMetadata `json:"metadata,omitempty"`
	Error                    string              `json:"error,omitempty"`
	Code                     string              `json:"code,omitempty"`
}

// ingestHandler accepts a session for background extraction. Processing
// returns 202 with the job to poll; skipped resolves synchronously with 200.
func (s *Server) ingestHandler(w http.ResponseWriter, r *http.Request) {
	var req model.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	ctx := logging.WithUserID(r.Context(), req.UserID)
	ctx = logging.WithSessionID(ctx, req.SessionID)

	if s.limiter != nil {
		ok, err := s.allowIngest(ctx, req.UserID)
		if err != nil {
			// Limiter outage must not take ingestion down with it.
			logging.With(ctx, s.log).Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		} else if !ok {
			writeError(w, http.StatusTooManyRequests, "ingestion rate limit exceeded", "RATE_LIMITED")
			return
		}
	}

	res, err := s.ingestUC.Accept(ctx, &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		logging.With(ctx, s.log).Error().Err(err).Msg("ingest accept failed")
		writeError(w, http.StatusServiceUnavailable, err.Error(), "HYDRATION_ERROR")
		return
	}

	status := http.StatusAccepted
	if res.Status == usecase.AcceptStatusSkipped {
		status = http.StatusOK
	}
	writeJSON(w, status, ingestResponse{
		JobID:                    res.JobID,
		Status:                   string(res.Status),
		UserKnowledgeCompilation: res.Compilation,
		Metadata:                 &completionMetadata{Model: res.Model},
	})
}

// pollHandler reports job state. A terminal read removes the job, so a
// repeat poll of a delivered job is a 404.
func (s *Server) pollHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	ctx := logging.WithJobID(r.Context(), jobID)

	res, err := s.ingestUC.Poll(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		}
		logging.With(ctx, s.log).Error().Err(err).Msg("poll failed")
		writeError(w, http.StatusServiceUnavailable, err.Error(), "HYDRATION_ERROR")
		return
	}

	resp := pollResponse{
		Status:                   string(res.Status),
		UserKnowledgeCompilation: res.Compilation,
		Error:                    res.Error,
		Code:                     res.Code,
	}
	if res.Meta != nil {
		resp.Metadata = &completionMetadata{
			Model:            res.Meta.Model,
			ProcessingTimeMs: res.Meta.ProcessingTimeMs,
			NodesExtracted:   res.Meta.NodesExtracted,
			EdgesExtracted:   res.Meta.EdgesExtracted,
			EpisodeID:        res.Meta.EpisodeID,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type hydrateRequest struct {
	UserID string `json:"userId"`
}

type hydrateResponse struct {
	Success                  bool   `json:"success"`
	UserKnowledgeCompilation string `json:"userKnowledgeCompilation"`
}

func (s *Server) hydrateHandler(w http.ResponseWriter, r *http.Request) {
	var req hydrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required", "BAD_REQUEST")
		return
	}

	ctx := logging.WithUserID(r.Context(), req.UserID)
	compilation, err := s.hydrationUC.BuildUserKnowledge(ctx, req.UserID)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("hydration failed")
		writeError(w, http.StatusServiceUnavailable, err.Error(), "HYDRATION_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, hydrateResponse{Success: true, UserKnowledgeCompilation: compilation})
}

// completionsHandler streams OpenAI-format chunks over SSE.
func (s *Server) completionsHandler(w http.ResponseWriter, r *http.Request) {
	var req model.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	events, err := s.generationUC.StreamCompletion(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGenerationUnavailable):
			writeError(w, http.StatusServiceUnavailable, "chat generation is not configured", "GENERATION_UNAVAILABLE")
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		default:
			writeError(w, http.StatusInternalServerError, err.Error(), "GENERATION_ERROR")
		}
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported", "GENERATION_ERROR")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for ev := range events {
		if ev.Err != nil {
			payload, _ := json.Marshal(map[string]string{"error": ev.Err.Error()})
			_, _ = w.Write([]byte("data: " + string(payload) + "\n\n"))
			flusher.Flush()
			break
		}
		payload, err := json.Marshal(ev.Chunk)
		if err != nil {
			continue
		}
		_, _ = w.Write([]byte("data: " + string(payload) + "\n\n"))
		flusher.Flush()
	}

	_, _ = w.Write([]byte("data: [DONE]\n\n"))
	flusher.Flush()
}

func (s *Server) graphHandler(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	ctx := logging.WithUserID(r.Context(), groupID)

	view, err := s.graphUC.Explore(ctx, groupID)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("graph explore failed")
		writeError(w, http.StatusServiceUnavailable, err.Error(), "GRAPH_READ_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type correctionRequest struct {
	GroupID    string `json:"groupId"`
	Correction string `json:"correction"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) correctionHandler(w http.ResponseWriter, r *http.Request) {
	var req correctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	ctx := logging.WithUserID(r.Context(), req.GroupID)
	if err := s.graphUC.Correct(ctx, req.GroupID, req.Correction); err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		logging.With(ctx, s.log).Error().Err(err).Msg("memory correction failed")
		writeError(w, http.StatusInternalServerError, err.Error(), "MEMORY_CORRECTION_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

type sessionRequest struct {
	Secret string `json:"secret"`
}

// sessionHandler trades the service secret for a short-lived explorer
// session cookie.
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if !secretMatches(req.Secret, s.apiSecret) {
		writeError(w, http.StatusForbidden, "invalid secret", "FORBIDDEN")
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not mint session", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "synapse-cortex"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg, Code: code})
}
