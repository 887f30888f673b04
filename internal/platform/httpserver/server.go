package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	buildregistry "quorum/contexts/archive/build-registry"
	buildserrors "quorum/contexts/archive/build-registry/domain/errors"
	buildshttp "quorum/contexts/archive/build-registry/transport/http"
	eventbus "quorum/contexts/archive/event-bus"
	eventserrors "quorum/contexts/archive/event-bus/domain/errors"
	eventshttp "quorum/contexts/archive/event-bus/transport/http"
	messagelog "quorum/contexts/archive/message-log"
	messageserrors "quorum/contexts/archive/message-log/domain/errors"
	messageshttp "quorum/contexts/archive/message-log/transport/http"
	lockerrors "quorum/contexts/archive/record-locks/domain/errors"
	votesessions "quorum/contexts/archive/vote-sessions"
	sessionserrors "quorum/contexts/archive/vote-sessions/domain/errors"
	sessionshttp "quorum/contexts/archive/vote-sessions/transport/http"
	"quorum/internal/platform/metrics"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "quorum/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	builds   buildregistry.Module
	messages messagelog.Module
	sessions votesessions.Module
	events   eventbus.Module
}

func New(
	builds buildregistry.Module,
	messages messagelog.Module,
	sessions votesessions.Module,
	events eventbus.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		builds:   builds,
		messages: messages,
		sessions: sessions,
		events:   events,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", metrics.Handler())
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.mux.HandleFunc("POST /builds", s.handleSubmitBuild)
	s.mux.HandleFunc("GET /builds", s.handleListBuilds)
	s.mux.HandleFunc("GET /builds/{build_id}", s.handleGetBuild)
	s.mux.HandleFunc("PATCH /builds/{build_id}", s.handleEditBuild)

	s.mux.HandleFunc("POST /messages", s.handleTrackMessage)
	s.mux.HandleFunc("GET /messages", s.handleListMessages)
	s.mux.HandleFunc("GET /messages/{message_id}", s.handleGetMessage)
	s.mux.HandleFunc("DELETE /messages/{message_id}", s.handleUntrackMessage)

	s.mux.HandleFunc("POST /vote-sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /vote-sessions", s.handleListSessions)
	s.mux.HandleFunc("GET /vote-sessions/{session_id}", s.handleGetSession)
	s.mux.HandleFunc("POST /vote-sessions/{session_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /vote-sessions/{session_id}/cancel", s.handleCancelSession)

	s.mux.HandleFunc("GET /events", s.handleListEvents)
	s.mux.HandleFunc("GET /events/{event_id}", s.handleGetEvent)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmitBuild(w http.ResponseWriter, r *http.Request) {
	var req buildshttp.SubmitBuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBuildsError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.builds.Handler.SubmitBuildHandler(r.Context(), req)
	if err != nil {
		writeBuildsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListBuilds(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, ok := parseLimit(w, query.Get("limit"), writeBuildsError)
	if !ok {
		return
	}
	resp, err := s.builds.Handler.ListBuildsHandler(r.Context(), query.Get("status"), limit)
	if err != nil {
		writeBuildsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBuild(w http.ResponseWriter, r *http.Request) {
	buildID, ok := parsePathID(r, "build_id")
	if !ok {
		writeBuildsError(w, http.StatusBadRequest, "invalid_build_id", "build_id must be an integer")
		return
	}
	resp, err := s.builds.Handler.GetBuildHandler(r.Context(), buildID)
	if err != nil {
		writeBuildsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEditBuild(w http.ResponseWriter, r *http.Request) {
	buildID, ok := parsePathID(r, "build_id")
	if !ok {
		writeBuildsError(w, http.StatusBadRequest, "invalid_build_id", "build_id must be an integer")
		return
	}
	var req buildshttp.EditBuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBuildsError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.builds.Handler.EditBuildHandler(r.Context(), buildID, req)
	if err != nil {
		writeBuildsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrackMessage(w http.ResponseWriter, r *http.Request) {
	var req messageshttp.TrackMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessagesError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.messages.Handler.TrackMessageHandler(r.Context(), req)
	if err != nil {
		writeMessagesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var sessionID int64
	if raw := query.Get("session_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeMessagesError(w, http.StatusBadRequest, "invalid_session_id", "session_id must be an integer")
			return
		}
		sessionID = parsed
	}

	marked := false
	if raw := query.Get("marked"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeMessagesError(w, http.StatusBadRequest, "invalid_marked", "marked must be a boolean")
			return
		}
		marked = parsed
	}

	limit, ok := parseLimit(w, query.Get("limit"), writeMessagesError)
	if !ok {
		return
	}

	resp, err := s.messages.Handler.ListMessagesHandler(r.Context(), sessionID, marked, limit)
	if err != nil {
		writeMessagesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	messageID, ok := parsePathID(r, "message_id")
	if !ok {
		writeMessagesError(w, http.StatusBadRequest, "invalid_message_id", "message_id must be an integer")
		return
	}
	resp, err := s.messages.Handler.GetMessageHandler(r.Context(), messageID)
	if err != nil {
		writeMessagesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUntrackMessage(w http.ResponseWriter, r *http.Request) {
	messageID, ok := parsePathID(r, "message_id")
	if !ok {
		writeMessagesError(w, http.StatusBadRequest, "invalid_message_id", "message_id must be an integer")
		return
	}
	if err := s.messages.Handler.UntrackMessageHandler(r.Context(), messageID); err != nil {
		writeMessagesDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionshttp.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSessionsError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.sessions.Handler.CreateSessionHandler(r.Context(), req)
	if err != nil {
		writeSessionsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("message_id"); raw != "" {
		messageID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeSessionsError(w, http.StatusBadRequest, "invalid_message_id", "message_id must be an integer")
			return
		}
		resp, err := s.sessions.Handler.SessionByMessageHandler(r.Context(), messageID)
		if err != nil {
			writeSessionsDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp, err := s.sessions.Handler.ListOpenSessionsHandler(r.Context())
	if err != nil {
		writeSessionsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parsePathID(r, "session_id")
	if !ok {
		writeSessionsError(w, http.StatusBadRequest, "invalid_session_id", "session_id must be an integer")
		return
	}
	resp, err := s.sessions.Handler.GetSessionHandler(r.Context(), sessionID)
	if err != nil {
		writeSessionsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parsePathID(r, "session_id")
	if !ok {
		writeSessionsError(w, http.StatusBadRequest, "invalid_session_id", "session_id must be an integer")
		return
	}
	var req sessionshttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSessionsError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.sessions.Handler.CastVoteHandler(r.Context(), sessionID, req)
	if err != nil {
		writeSessionsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parsePathID(r, "session_id")
	if !ok {
		writeSessionsError(w, http.StatusBadRequest, "invalid_session_id", "session_id must be an integer")
		return
	}
	var req sessionshttp.CancelSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSessionsError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.sessions.Handler.CancelSessionHandler(r.Context(), sessionID, req)
	if err != nil {
		writeSessionsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, ok := parseLimit(w, query.Get("limit"), writeEventsError)
	if !ok {
		return
	}
	resp, err := s.events.Handler.ListEventsHandler(r.Context(), query.Get("processed"), limit)
	if err != nil {
		writeEventsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parsePathID(r, "event_id")
	if !ok {
		writeEventsError(w, http.StatusBadRequest, "invalid_event_id", "event_id must be an integer")
		return
	}
	resp, err := s.events.Handler.GetEventHandler(r.Context(), eventID)
	if err != nil {
		writeEventsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeBuildsDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, buildserrors.ErrBuildNotFound):
		writeBuildsError(w, http.StatusNotFound, "build_not_found", err.Error())
	case errors.Is(err, buildserrors.ErrInvalidBuildInput):
		writeBuildsError(w, http.StatusBadRequest, "invalid_build_input", err.Error())
	case errors.Is(err, buildserrors.ErrInvalidChange):
		writeBuildsError(w, http.StatusBadRequest, "invalid_change", err.Error())
	case errors.Is(err, buildserrors.ErrBuildNotPending):
		writeBuildsError(w, http.StatusConflict, "build_not_pending", err.Error())
	case errors.Is(err, buildserrors.ErrBuildLocked),
		errors.Is(err, lockerrors.ErrAcquireTimeout):
		writeBuildsError(w, http.StatusConflict, "build_locked", buildserrors.ErrBuildLocked.Error())
	default:
		writeBuildsError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMessagesDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, messageserrors.ErrMessageNotFound):
		writeMessagesError(w, http.StatusNotFound, "message_not_found", err.Error())
	case errors.Is(err, messageserrors.ErrInvalidMessageInput):
		writeMessagesError(w, http.StatusBadRequest, "invalid_message_input", err.Error())
	default:
		writeMessagesError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSessionsDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sessionserrors.ErrSessionNotFound):
		writeSessionsError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, sessionserrors.ErrInvalidSessionInput):
		writeSessionsError(w, http.StatusBadRequest, "invalid_session_input", err.Error())
	case errors.Is(err, sessionserrors.ErrInvalidThresholds):
		writeSessionsError(w, http.StatusBadRequest, "invalid_thresholds", err.Error())
	case errors.Is(err, sessionserrors.ErrTooManyMessages):
		writeSessionsError(w, http.StatusBadRequest, "too_many_messages", err.Error())
	case errors.Is(err, sessionserrors.ErrInvalidWeight):
		writeSessionsError(w, http.StatusBadRequest, "invalid_weight", err.Error())
	case errors.Is(err, sessionserrors.ErrSessionClosed):
		writeSessionsError(w, http.StatusConflict, "session_closed", err.Error())
	default:
		writeSessionsError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeEventsDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, eventserrors.ErrEventNotFound):
		writeEventsError(w, http.StatusNotFound, "event_not_found", err.Error())
	case errors.Is(err, eventserrors.ErrInvalidEventFilter):
		writeEventsError(w, http.StatusBadRequest, "invalid_event_filter", err.Error())
	default:
		writeEventsError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeBuildsError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, buildshttp.ErrorResponse{Code: code, Message: message})
}

func writeMessagesError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, messageshttp.ErrorResponse{Code: code, Message: message})
}

func writeSessionsError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, sessionshttp.ErrorResponse{Code: code, Message: message})
}

func writeEventsError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, eventshttp.ErrorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parsePathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil
}

func parseLimit(w http.ResponseWriter, raw string, writeError func(http.ResponseWriter, int, string, string)) (int, bool) {
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
		return 0, false
	}
	return limit, true
}
