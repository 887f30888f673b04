package commands_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"quorum/contexts/archive/vote-sessions/adapters/memory"
	"quorum/contexts/archive/vote-sessions/application/commands"
	"quorum/contexts/archive/vote-sessions/domain/entities"
	domainerrors "quorum/contexts/archive/vote-sessions/domain/errors"
	"quorum/internal/shared/events"
	"quorum/internal/shared/outbox"
)

type approvedBuild struct {
	buildID int64
	changes []entities.Change
}

type buildDirectory struct {
	mu       sync.Mutex
	approved []approvedBuild
	denied   []int64
	err      error
}

func (d *buildDirectory) ApproveBuild(_ context.Context, buildID int64, changes []entities.Change) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.approved = append(d.approved, approvedBuild{buildID: buildID, changes: changes})
	return nil
}

func (d *buildDirectory) DenyBuild(_ context.Context, buildID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.denied = append(d.denied, buildID)
	return nil
}

type messageDirectory struct {
	mu     sync.Mutex
	marked []int64
}

func (d *messageDirectory) MarkMessageForDeletion(_ context.Context, messageID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.marked = append(d.marked, messageID)
	return nil
}

type engine struct {
	store    *memory.Store
	log      *outbox.MemoryLog
	builds   *buildDirectory
	messages *messageDirectory
	create   commands.CreateSessionUseCase
	cast     commands.CastVoteUseCase
	cancel   commands.CancelSessionUseCase
}

func newEngine() engine {
	log := outbox.NewMemoryLog()
	store := memory.NewStore(log)
	builds := &buildDirectory{}
	messages := &messageDirectory{}
	return engine{
		store:    store,
		log:      log,
		builds:   builds,
		messages: messages,
		create:   commands.CreateSessionUseCase{Sessions: store},
		cast:     commands.CastVoteUseCase{Sessions: store, Builds: builds, Messages: messages},
		cancel:   commands.CancelSessionUseCase{Sessions: store},
	}
}

func (e engine) openBuildSession(t *testing.T, pass, fail float64) entities.VoteSession {
	t.Helper()
	session, err := e.create.Execute(context.Background(), commands.CreateSessionCommand{
		Kind:          entities.KindBuildConfirmation,
		AuthorID:      7,
		PassThreshold: pass,
		FailThreshold: fail,
		MessageIDs:    []int64{501, 502},
		Build: &entities.BuildConfirmation{
			BuildID: 42,
			Changes: []entities.Change{{Field: "name", From: "piston door", To: "hipster door"}},
		},
	})
	if err != nil {
		t.Fatalf("create build session: %v", err)
	}
	return session
}

func (e engine) openDeletionSession(t *testing.T, pass, fail float64) entities.VoteSession {
	t.Helper()
	session, err := e.create.Execute(context.Background(), commands.CreateSessionCommand{
		Kind:          entities.KindLogDeletion,
		AuthorID:      7,
		PassThreshold: pass,
		FailThreshold: fail,
		MessageIDs:    []int64{601},
		Deletion: &entities.LogDeletion{
			TargetMessageID: 9001,
			TargetChannelID: 77,
		},
	})
	if err != nil {
		t.Fatalf("create deletion session: %v", err)
	}
	return session
}

func (e engine) castWeight(t *testing.T, sessionID, userID int64, weight float64) commands.CastVoteResult {
	t.Helper()
	result, err := e.cast.Execute(context.Background(), commands.CastVoteCommand{
		SessionID: sessionID,
		UserID:    userID,
		Weight:    weight,
	})
	if err != nil {
		t.Fatalf("cast vote (user %d, weight %v): %v", userID, weight, err)
	}
	return result
}

func eventsOfType(log *outbox.MemoryLog, eventType string) []events.Envelope {
	var matched []events.Envelope
	for _, envelope := range log.List(nil, 0) {
		if envelope.Type == eventType {
			matched = append(matched, envelope)
		}
	}
	return matched
}

func TestCreateSessionValidatesInput(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	base := commands.CreateSessionCommand{
		Kind:          entities.KindBuildConfirmation,
		AuthorID:      7,
		PassThreshold: 3,
		FailThreshold: -3,
		Build:         &entities.BuildConfirmation{BuildID: 42},
	}

	noPass := base
	noPass.PassThreshold = 0
	if _, err := e.create.Execute(ctx, noPass); !errors.Is(err, domainerrors.ErrInvalidThresholds) {
		t.Fatalf("zero pass threshold: err = %v, want ErrInvalidThresholds", err)
	}

	positiveFail := base
	positiveFail.FailThreshold = 1
	if _, err := e.create.Execute(ctx, positiveFail); !errors.Is(err, domainerrors.ErrInvalidThresholds) {
		t.Fatalf("positive fail threshold: err = %v, want ErrInvalidThresholds", err)
	}

	noPayload := base
	noPayload.Build = nil
	if _, err := e.create.Execute(ctx, noPayload); !errors.Is(err, domainerrors.ErrInvalidSessionInput) {
		t.Fatalf("missing payload: err = %v, want ErrInvalidSessionInput", err)
	}

	bothPayloads := base
	bothPayloads.Deletion = &entities.LogDeletion{TargetMessageID: 1, TargetChannelID: 1}
	if _, err := e.create.Execute(ctx, bothPayloads); !errors.Is(err, domainerrors.ErrInvalidSessionInput) {
		t.Fatalf("both payloads: err = %v, want ErrInvalidSessionInput", err)
	}
}

func TestCreateSessionBoundsAndDedupesMessages(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	tooMany := make([]int64, 0, entities.MaxSessionMessages+1)
	for i := 0; i <= entities.MaxSessionMessages; i++ {
		tooMany = append(tooMany, int64(100+i))
	}
	_, err := e.create.Execute(ctx, commands.CreateSessionCommand{
		Kind:          entities.KindBuildConfirmation,
		AuthorID:      7,
		PassThreshold: 3,
		FailThreshold: -3,
		MessageIDs:    tooMany,
		Build:         &entities.BuildConfirmation{BuildID: 42},
	})
	if !errors.Is(err, domainerrors.ErrTooManyMessages) {
		t.Fatalf("err = %v, want ErrTooManyMessages", err)
	}

	session, err := e.create.Execute(ctx, commands.CreateSessionCommand{
		Kind:          entities.KindBuildConfirmation,
		AuthorID:      7,
		PassThreshold: 3,
		FailThreshold: -3,
		MessageIDs:    []int64{502, 501, 502, 501, 503},
		Build:         &entities.BuildConfirmation{BuildID: 42},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := []int64{501, 502, 503}
	if len(session.MessageIDs) != len(want) {
		t.Fatalf("message ids = %v, want %v", session.MessageIDs, want)
	}
	for i, id := range want {
		if session.MessageIDs[i] != id {
			t.Fatalf("message ids = %v, want %v", session.MessageIDs, want)
		}
	}
	if session.Status != entities.StatusOpen || session.Result != entities.ResultPending {
		t.Fatalf("new session state = %q/%q, want open/pending", session.Status, session.Result)
	}
}

func TestCastVoteRejectsInvalidWeight(t *testing.T) {
	e := newEngine()
	session := e.openBuildSession(t, 3, -3)
	ctx := context.Background()

	for _, weight := range []float64{0, math.NaN(), math.Inf(1)} {
		_, err := e.cast.Execute(ctx, commands.CastVoteCommand{
			SessionID: session.ID,
			UserID:    1,
			Weight:    weight,
		})
		if !errors.Is(err, domainerrors.ErrInvalidWeight) {
			t.Fatalf("weight %v: err = %v, want ErrInvalidWeight", weight, err)
		}
	}
}

func TestCastVotesUntilPassThresholdCloses(t *testing.T) {
	e := newEngine()
	session := e.openBuildSession(t, 3, -3)

	first := e.castWeight(t, session.ID, 1, 1)
	if first.Closed || first.Session.IsClosed() {
		t.Fatalf("session closed after one of three votes")
	}
	second := e.castWeight(t, session.ID, 2, 1)
	if second.Closed {
		t.Fatalf("session closed after two of three votes")
	}

	third := e.castWeight(t, session.ID, 3, 1)
	if !third.Closed {
		t.Fatalf("third vote should close the session")
	}
	if third.Session.Result != entities.ResultApproved {
		t.Fatalf("result = %q, want approved", third.Session.Result)
	}
	if third.Tally.Net != 3 {
		t.Fatalf("net = %v, want 3", third.Tally.Net)
	}

	stored, err := e.store.GetSession(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !stored.IsClosed() || stored.Result != entities.ResultApproved || stored.ClosedAt == nil {
		t.Fatalf("stored session = %q/%q, want closed approved with stamp", stored.Status, stored.Result)
	}
	if got := len(eventsOfType(e.log, entities.EventTypeVoteSessionClosed)); got != 1 {
		t.Fatalf("closed events = %d, want 1", got)
	}

	e.builds.mu.Lock()
	defer e.builds.mu.Unlock()
	if len(e.builds.approved) != 1 || e.builds.approved[0].buildID != 42 {
		t.Fatalf("approve calls = %+v, want one for build 42", e.builds.approved)
	}
	if len(e.builds.approved[0].changes) != 1 || e.builds.approved[0].changes[0].Field != "name" {
		t.Fatalf("stored diff not forwarded: %+v", e.builds.approved[0].changes)
	}
}

func TestDownvotesUntilFailThresholdDenyBuild(t *testing.T) {
	e := newEngine()
	session := e.openBuildSession(t, 3, -2)

	e.castWeight(t, session.ID, 1, -1)
	result := e.castWeight(t, session.ID, 2, -1)
	if !result.Closed || result.Session.Result != entities.ResultDenied {
		t.Fatalf("result = closed=%v %q, want closed denied", result.Closed, result.Session.Result)
	}

	e.builds.mu.Lock()
	defer e.builds.mu.Unlock()
	if len(e.builds.denied) != 1 || e.builds.denied[0] != 42 {
		t.Fatalf("deny calls = %v, want one for build 42", e.builds.denied)
	}
	if len(e.builds.approved) != 0 {
		t.Fatalf("approve calls = %+v, want none", e.builds.approved)
	}
}

func TestRecastSameWeightTogglesOff(t *testing.T) {
	e := newEngine()
	session := e.openBuildSession(t, 5, -5)

	first := e.castWeight(t, session.ID, 1, 1)
	if first.Toggled || len(first.Votes) != 1 {
		t.Fatalf("first cast: toggled=%v votes=%d", first.Toggled, len(first.Votes))
	}

	second := e.castWeight(t, session.ID, 1, 1)
	if !second.Toggled {
		t.Fatalf("re-cast of same weight should toggle off")
	}
	if len(second.Votes) != 0 || second.Tally.Net != 0 {
		t.Fatalf("after toggle: votes=%d net=%v, want empty", len(second.Votes), second.Tally.Net)
	}
	if second.Session.IsClosed() {
		t.Fatalf("zero-vote session must stay open")
	}

	third := e.castWeight(t, session.ID, 1, 1)
	if third.Toggled || len(third.Votes) != 1 {
		t.Fatalf("third cast should restore the vote: toggled=%v votes=%d", third.Toggled, len(third.Votes))
	}

	changed := e.castWeight(t, session.ID, 1, 2)
	if changed.Toggled || changed.Tally.Net != 2 {
		t.Fatalf("different weight must replace, not toggle: toggled=%v net=%v", changed.Toggled, changed.Tally.Net)
	}
}

func TestCastAfterCloseIsSilentNoOp(t *testing.T) {
	e := newEngine()
	session := e.openDeletionSession(t, 1, -1)

	first := e.castWeight(t, session.ID, 1, 1)
	if !first.Closed || first.Session.Result != entities.ResultApproved {
		t.Fatalf("single vote at pass=1 should close approved, got closed=%v %q", first.Closed, first.Session.Result)
	}

	late := e.castWeight(t, session.ID, 2, 1)
	if late.Closed {
		t.Fatalf("late cast must not report winning the close")
	}
	if len(late.Votes) != 1 {
		t.Fatalf("late cast recorded a vote on a closed session: %d votes", len(late.Votes))
	}
	if got := len(eventsOfType(e.log, entities.EventTypeVoteSessionClosed)); got != 1 {
		t.Fatalf("closed events = %d, want 1", got)
	}

	e.messages.mu.Lock()
	defer e.messages.mu.Unlock()
	if len(e.messages.marked) != 1 || e.messages.marked[0] != 9001 {
		t.Fatalf("marked messages = %v, want [9001]", e.messages.marked)
	}
}

func TestConcurrentClosingCastsEmitOneEvent(t *testing.T) {
	e := newEngine()
	session := e.openBuildSession(t, 3, -3)

	const casters = 8
	var wg sync.WaitGroup
	wins := make(chan bool, casters)
	for i := 0; i < casters; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			result, err := e.cast.Execute(context.Background(), commands.CastVoteCommand{
				SessionID: session.ID,
				UserID:    userID,
				Weight:    3,
			})
			if err != nil {
				t.Errorf("cast (user %d): %v", userID, err)
				return
			}
			wins <- result.Closed
		}(int64(i + 1))
	}
	wg.Wait()
	close(wins)

	var winners int
	for won := range wins {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("close winners = %d, want exactly 1", winners)
	}
	if got := len(eventsOfType(e.log, entities.EventTypeVoteSessionClosed)); got != 1 {
		t.Fatalf("closed events = %d, want 1", got)
	}
}

func TestCancelClosesZeroVoteSession(t *testing.T) {
	e := newEngine()
	session := e.openBuildSession(t, 3, -3)
	ctx := context.Background()

	cancelled, err := e.cancel.Execute(ctx, commands.CancelSessionCommand{SessionID: session.ID, RequesterID: 7})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !cancelled.IsClosed() || cancelled.Result != entities.ResultCancelled || cancelled.ClosedAt == nil {
		t.Fatalf("cancelled session = %q/%q, want closed cancelled with stamp", cancelled.Status, cancelled.Result)
	}

	repeat, err := e.cancel.Execute(ctx, commands.CancelSessionCommand{SessionID: session.ID, RequesterID: 7})
	if err != nil {
		t.Fatalf("repeat cancel: %v", err)
	}
	if repeat.Result != entities.ResultCancelled {
		t.Fatalf("repeat cancel result = %q", repeat.Result)
	}
	if got := len(eventsOfType(e.log, entities.EventTypeVoteSessionClosed)); got != 1 {
		t.Fatalf("closed events = %d, want 1", got)
	}

	e.builds.mu.Lock()
	defer e.builds.mu.Unlock()
	if len(e.builds.approved) != 0 || len(e.builds.denied) != 0 {
		t.Fatalf("cancel must not run build side effects: %+v %v", e.builds.approved, e.builds.denied)
	}
}

func TestSideEffectFailureSurfacesAfterClose(t *testing.T) {
	e := newEngine()
	e.builds.err = errors.New("registry unavailable")
	session := e.openBuildSession(t, 1, -1)

	result, err := e.cast.Execute(context.Background(), commands.CastVoteCommand{
		SessionID: session.ID,
		UserID:    1,
		Weight:    1,
	})
	if err == nil {
		t.Fatalf("expected the side effect error to surface")
	}
	if !result.Closed {
		t.Fatalf("close must be reported even when the side effect fails")
	}

	stored, getErr := e.store.GetSession(context.Background(), session.ID)
	if getErr != nil {
		t.Fatalf("get session: %v", getErr)
	}
	if !stored.IsClosed() || stored.Result != entities.ResultApproved {
		t.Fatalf("session must stay closed: %q/%q", stored.Status, stored.Result)
	}
	if got := len(eventsOfType(e.log, entities.EventTypeVoteSessionClosed)); got != 1 {
		t.Fatalf("closed events = %d, want 1", got)
	}
}
