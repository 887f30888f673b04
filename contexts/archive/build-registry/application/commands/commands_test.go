package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quorum/contexts/archive/build-registry/adapters/memory"
	"quorum/contexts/archive/build-registry/application/commands"
	"quorum/contexts/archive/build-registry/domain/entities"
	domainerrors "quorum/contexts/archive/build-registry/domain/errors"
	"quorum/contexts/archive/record-locks/application/locking"
	lockerrors "quorum/contexts/archive/record-locks/domain/errors"
	"quorum/internal/shared/events"
	"quorum/internal/shared/outbox"
)

type registry struct {
	store  *memory.Store
	log    *outbox.MemoryLog
	submit commands.SubmitBuildUseCase
	edit   commands.EditBuildUseCase
	review commands.ReviewBuildUseCase
}

func newRegistry() registry {
	log := outbox.NewMemoryLog()
	store := memory.NewStore(log)
	locks := &locking.Service{
		Store:          store,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  1.5,
		MaxBackoff:     5 * time.Millisecond,
	}
	return registry{
		store:  store,
		log:    log,
		submit: commands.SubmitBuildUseCase{Builds: store},
		edit:   commands.EditBuildUseCase{Builds: store, Locks: locks},
		review: commands.ReviewBuildUseCase{Builds: store, Locks: locks},
	}
}

func (r registry) submitPending(t *testing.T) entities.Build {
	t.Helper()
	build, err := r.submit.Execute(context.Background(), commands.SubmitBuildCommand{
		Name:        "piston door",
		Description: "a 4x4 door",
		SubmitterID: 7,
		Attributes:  map[string]any{"size": "4x4"},
	})
	if err != nil {
		t.Fatalf("submit build: %v", err)
	}
	return build
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

func TestSubmitBuildCreatesPendingWithEvent(t *testing.T) {
	r := newRegistry()

	build := r.submitPending(t)

	if build.ID == 0 {
		t.Fatalf("expected an assigned build id")
	}
	if build.Status != entities.BuildStatusPending {
		t.Fatalf("status = %q, want pending", build.Status)
	}
	submitted := eventsOfType(r.log, entities.EventTypeBuildSubmitted)
	if len(submitted) != 1 {
		t.Fatalf("submitted events = %d, want 1", len(submitted))
	}
	if submitted[0].AggregateID != "1" {
		t.Fatalf("aggregate id = %q, want 1", submitted[0].AggregateID)
	}
}

func TestSubmitBuildValidatesInput(t *testing.T) {
	r := newRegistry()

	_, err := r.submit.Execute(context.Background(), commands.SubmitBuildCommand{
		Name:        "   ",
		SubmitterID: 7,
	})
	if !errors.Is(err, domainerrors.ErrInvalidBuildInput) {
		t.Fatalf("err = %v, want ErrInvalidBuildInput", err)
	}
}

func TestEditBuildAppliesChangesUnderLock(t *testing.T) {
	r := newRegistry()
	build := r.submitPending(t)
	ctx := context.Background()

	updated, err := r.edit.Execute(ctx, commands.EditBuildCommand{
		BuildID: build.ID,
		Changes: []entities.Change{
			{Field: "name", From: "piston door", To: "hipster door"},
			{Field: "attributes.size", From: "4x4", To: "5x5"},
			{Field: "attributes.observerless", To: true},
		},
	})
	if err != nil {
		t.Fatalf("edit build: %v", err)
	}
	if updated.Name != "hipster door" {
		t.Fatalf("name = %q", updated.Name)
	}
	if updated.Attributes["size"] != "5x5" || updated.Attributes["observerless"] != true {
		t.Fatalf("attributes = %v", updated.Attributes)
	}
	if updated.Description != "a 4x4 door" {
		t.Fatalf("untouched field changed: %q", updated.Description)
	}

	locked, err := r.store.TryLock(ctx, build.ID)
	if err != nil || !locked {
		t.Fatalf("lock should be free after edit: ok=%v err=%v", locked, err)
	}
}

func TestEditBuildRejectsNonEditableField(t *testing.T) {
	r := newRegistry()
	build := r.submitPending(t)

	_, err := r.edit.Execute(context.Background(), commands.EditBuildCommand{
		BuildID: build.ID,
		Changes: []entities.Change{{Field: "status", To: "confirmed"}},
	})
	if !errors.Is(err, domainerrors.ErrInvalidChange) {
		t.Fatalf("err = %v, want ErrInvalidChange", err)
	}
}

func TestEditBuildSurfacesLockTimeout(t *testing.T) {
	r := newRegistry()
	build := r.submitPending(t)
	ctx := context.Background()

	if ok, err := r.store.TryLock(ctx, build.ID); err != nil || !ok {
		t.Fatalf("pre-lock: ok=%v err=%v", ok, err)
	}
	defer func() {
		if err := r.store.Unlock(ctx, build.ID); err != nil {
			t.Fatalf("unlock: %v", err)
		}
	}()

	edit := r.edit
	edit.LockTimeout = 10 * time.Millisecond
	_, err := edit.Execute(ctx, commands.EditBuildCommand{
		BuildID: build.ID,
		Changes: []entities.Change{{Field: "name", To: "renamed"}},
	})
	if !errors.Is(err, lockerrors.ErrAcquireTimeout) {
		t.Fatalf("err = %v, want ErrAcquireTimeout", err)
	}
}

func TestConfirmBuildAppliesDiffAndFlipsOnce(t *testing.T) {
	r := newRegistry()
	build := r.submitPending(t)
	ctx := context.Background()

	changes := []entities.Change{
		{Field: "description", From: "a 4x4 door", To: "a verified 4x4 door"},
	}
	if err := r.review.Confirm(ctx, commands.ConfirmBuildCommand{BuildID: build.ID, Changes: changes}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	confirmed, err := r.store.GetBuild(ctx, build.ID)
	if err != nil {
		t.Fatalf("get build: %v", err)
	}
	if confirmed.Status != entities.BuildStatusConfirmed {
		t.Fatalf("status = %q, want confirmed", confirmed.Status)
	}
	if confirmed.Description != "a verified 4x4 door" {
		t.Fatalf("diff not applied: %q", confirmed.Description)
	}
	if confirmed.ConfirmedAt == nil {
		t.Fatalf("confirmed_at not stamped")
	}

	if err := r.review.Confirm(ctx, commands.ConfirmBuildCommand{BuildID: build.ID, Changes: changes}); err != nil {
		t.Fatalf("repeat confirm: %v", err)
	}
	if got := len(eventsOfType(r.log, entities.EventTypeBuildConfirmed)); got != 1 {
		t.Fatalf("confirmed events = %d, want 1", got)
	}
}

func TestConfirmAfterDenyReportsNotPending(t *testing.T) {
	r := newRegistry()
	build := r.submitPending(t)
	ctx := context.Background()

	if err := r.review.Deny(ctx, commands.DenyBuildCommand{BuildID: build.ID}); err != nil {
		t.Fatalf("deny: %v", err)
	}
	err := r.review.Confirm(ctx, commands.ConfirmBuildCommand{BuildID: build.ID})
	if !errors.Is(err, domainerrors.ErrBuildNotPending) {
		t.Fatalf("err = %v, want ErrBuildNotPending", err)
	}
}

func TestDenyBuildIsIdempotent(t *testing.T) {
	r := newRegistry()
	build := r.submitPending(t)
	ctx := context.Background()

	if err := r.review.Deny(ctx, commands.DenyBuildCommand{BuildID: build.ID}); err != nil {
		t.Fatalf("deny: %v", err)
	}
	if err := r.review.Deny(ctx, commands.DenyBuildCommand{BuildID: build.ID}); err != nil {
		t.Fatalf("repeat deny: %v", err)
	}
	if got := len(eventsOfType(r.log, entities.EventTypeBuildDenied)); got != 1 {
		t.Fatalf("denied events = %d, want 1", got)
	}
}
