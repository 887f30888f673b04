package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	buildregistry "quorum/contexts/archive/build-registry"
	buildsmemory "quorum/contexts/archive/build-registry/adapters/memory"
	buildshttp "quorum/contexts/archive/build-registry/transport/http"
	eventbus "quorum/contexts/archive/event-bus"
	eventshttp "quorum/contexts/archive/event-bus/transport/http"
	messagelog "quorum/contexts/archive/message-log"
	recordlocks "quorum/contexts/archive/record-locks"
	votesessions "quorum/contexts/archive/vote-sessions"
	sessionshttp "quorum/contexts/archive/vote-sessions/transport/http"
	"quorum/internal/shared/outbox"
)

func newTestServer() *Server {
	logger := slog.Default()
	log := outbox.NewMemoryLog()
	locks := recordlocks.NewInMemoryModule(logger)
	builds := buildregistry.NewInMemoryModule(buildsmemory.NewStore(log), locks.Service, logger)
	messages := messagelog.NewInMemoryModule(log, logger)
	sessions := votesessions.NewInMemoryModule(log, nil, nil, logger)
	events := eventbus.NewInMemoryModule(log, nil, logger)
	return New(builds, messages, sessions, events, logger, ":0")
}

func send(t *testing.T, server *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Code string `json:"code"`
	}
	decode(t, rr, &resp)
	return resp.Code
}

func TestHealthzReportsOK(t *testing.T) {
	server := newTestServer()
	rr := send(t, server, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSubmitEditAndGetBuild(t *testing.T) {
	server := newTestServer()

	body := []byte(`{"name":"piston door","description":"4x4 flush","submitter_id":7,"attributes":{"width":4}}`)
	rr := send(t, server, http.MethodPost, "/builds", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var created buildshttp.BuildResponse
	decode(t, rr, &created)
	if created.Item.BuildID == 0 || created.Item.Status != "pending" {
		t.Fatalf("unexpected created build: %+v", created.Item)
	}

	edit := []byte(`{"changes":[{"field":"name","from":"piston door","to":"hipster door"}]}`)
	rr = send(t, server, http.MethodPatch, fmt.Sprintf("/builds/%d", created.Item.BuildID), edit)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = send(t, server, http.MethodGet, fmt.Sprintf("/builds/%d", created.Item.BuildID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var fetched buildshttp.BuildResponse
	decode(t, rr, &fetched)
	if fetched.Item.Name != "hipster door" {
		t.Fatalf("edit not applied, name = %q", fetched.Item.Name)
	}
}

func TestSubmitBuildRejectsMalformedJSON(t *testing.T) {
	server := newTestServer()
	rr := send(t, server, http.MethodPost, "/builds", []byte(`{"name":`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetBuildMapsNotFoundTo404(t *testing.T) {
	server := newTestServer()
	rr := send(t, server, http.MethodGet, "/builds/999", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := errorCode(t, rr); code != "build_not_found" {
		t.Fatalf("code = %q, want build_not_found", code)
	}
}

func TestGetBuildRejectsNonNumericID(t *testing.T) {
	server := newTestServer()
	rr := send(t, server, http.MethodGet, "/builds/not-a-number", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTrackGetAndUntrackMessage(t *testing.T) {
	server := newTestServer()

	body := []byte(`{"message_id":501,"channel_id":77,"author_id":9,"purpose":"build_original_message","content":"behold the door"}`)
	rr := send(t, server, http.MethodPost, "/messages", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = send(t, server, http.MethodGet, "/messages/501", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = send(t, server, http.MethodDelete, "/messages/501", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = send(t, server, http.MethodGet, "/messages/501", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := errorCode(t, rr); code != "message_not_found" {
		t.Fatalf("code = %q, want message_not_found", code)
	}
}

func TestCreateSessionRejectsBadThresholds(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"kind":"build_confirmation","author_id":1,"pass_threshold":-1,"fail_threshold":-2,"build":{"build_id":42}}`)
	rr := send(t, server, http.MethodPost, "/vote-sessions", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := errorCode(t, rr); code != "invalid_thresholds" {
		t.Fatalf("code = %q, want invalid_thresholds", code)
	}
}

func TestCastVoteRejectsInvalidWeight(t *testing.T) {
	server := newTestServer()
	session := createSession(t, server, `{"kind":"build_confirmation","author_id":1,"pass_threshold":3,"fail_threshold":-3,"build":{"build_id":42}}`)

	rr := send(t, server, http.MethodPost, fmt.Sprintf("/vote-sessions/%d/votes", session), []byte(`{"user_id":11,"weight":0}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := errorCode(t, rr); code != "invalid_weight" {
		t.Fatalf("code = %q, want invalid_weight", code)
	}
}

func TestVoteFlowClosesSession(t *testing.T) {
	server := newTestServer()
	session := createSession(t, server, `{"kind":"build_confirmation","author_id":1,"pass_threshold":1,"fail_threshold":-1,"build":{"build_id":42}}`)

	rr := send(t, server, http.MethodPost, fmt.Sprintf("/vote-sessions/%d/votes", session), []byte(`{"user_id":11,"weight":1}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var cast sessionshttp.CastVoteResponse
	decode(t, rr, &cast)
	if !cast.Closed || cast.Item.Status != "closed" || cast.Item.Result != "approved" {
		t.Fatalf("unexpected cast result: %+v", cast)
	}

	rr = send(t, server, http.MethodGet, fmt.Sprintf("/vote-sessions/%d", session), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var fetched sessionshttp.SessionResponse
	decode(t, rr, &fetched)
	if fetched.Item.Status != "closed" {
		t.Fatalf("session status = %q, want closed", fetched.Item.Status)
	}
}

func TestListSessionsFiltersByMessage(t *testing.T) {
	server := newTestServer()
	session := createSession(t, server, `{"kind":"build_confirmation","author_id":1,"pass_threshold":3,"fail_threshold":-3,"message_ids":[501,502],"build":{"build_id":42}}`)

	rr := send(t, server, http.MethodGet, "/vote-sessions?message_id=501", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var byMessage sessionshttp.SessionResponse
	decode(t, rr, &byMessage)
	if byMessage.Item.SessionID != session {
		t.Fatalf("session_id = %d, want %d", byMessage.Item.SessionID, session)
	}

	rr = send(t, server, http.MethodGet, "/vote-sessions?message_id=9999", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = send(t, server, http.MethodGet, "/vote-sessions", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var open sessionshttp.ListSessionsResponse
	decode(t, rr, &open)
	if len(open.Items) != 1 {
		t.Fatalf("open sessions = %d, want 1", len(open.Items))
	}
}

func TestCancelledSessionEventIsVisibleOnEventsAPI(t *testing.T) {
	server := newTestServer()
	session := createSession(t, server, `{"kind":"log_deletion","author_id":1,"pass_threshold":2,"fail_threshold":-2,"deletion":{"target_message_id":9001,"target_channel_id":77}}`)

	rr := send(t, server, http.MethodPost, fmt.Sprintf("/vote-sessions/%d/cancel", session), []byte(`{"requester_id":1}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var cancelled sessionshttp.SessionResponse
	decode(t, rr, &cancelled)
	if cancelled.Item.Status != "closed" || cancelled.Item.Result != "cancelled" {
		t.Fatalf("unexpected cancel result: %+v", cancelled.Item)
	}

	rr = send(t, server, http.MethodGet, "/events?processed=false", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var list eventshttp.ListEventsResponse
	decode(t, rr, &list)
	if len(list.Items) != 1 || list.Items[0].Type != "vote_session_closed" {
		t.Fatalf("unexpected events: %+v", list.Items)
	}

	rr = send(t, server, http.MethodGet, fmt.Sprintf("/events/%d", list.Items[0].EventID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = send(t, server, http.MethodGet, "/events/999", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = send(t, server, http.MethodGet, "/events?processed=banana", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := errorCode(t, rr); code != "invalid_event_filter" {
		t.Fatalf("code = %q, want invalid_event_filter", code)
	}
}

func createSession(t *testing.T, server *Server, body string) int64 {
	t.Helper()
	rr := send(t, server, http.MethodPost, "/vote-sessions", []byte(body))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var created sessionshttp.SessionResponse
	decode(t, rr, &created)
	if created.Item.SessionID == 0 {
		t.Fatalf("missing session id in %s", rr.Body.String())
	}
	return created.Item.SessionID
}
