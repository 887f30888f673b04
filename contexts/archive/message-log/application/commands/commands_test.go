package commands_test

import (
	"context"
	"errors"
	"testing"

	"quorum/contexts/archive/message-log/adapters/memory"
	"quorum/contexts/archive/message-log/application/commands"
	"quorum/contexts/archive/message-log/domain/entities"
	domainerrors "quorum/contexts/archive/message-log/domain/errors"
	"quorum/internal/shared/outbox"
)

func int64Ptr(v int64) *int64 { return &v }

func trackBallot(t *testing.T, store *memory.Store, messageID int64, sessionID int64) {
	t.Helper()
	track := commands.TrackMessageUseCase{Messages: store}
	_, err := track.Execute(context.Background(), commands.TrackMessageCommand{
		MessageID:     messageID,
		ChannelID:     500,
		AuthorID:      42,
		Purpose:       entities.PurposeVote,
		VoteSessionID: int64Ptr(sessionID),
	})
	if err != nil {
		t.Fatalf("track message: %v", err)
	}
}

func TestTrackMessageIdempotentOnID(t *testing.T) {
	store := memory.NewStore(outbox.NewMemoryLog())
	track := commands.TrackMessageUseCase{Messages: store}
	ctx := context.Background()

	first, err := track.Execute(ctx, commands.TrackMessageCommand{
		MessageID: 1001,
		ChannelID: 500,
		AuthorID:  42,
		Purpose:   entities.PurposeBuildOriginal,
		Content:   "original",
	})
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	_, err = track.Execute(ctx, commands.TrackMessageCommand{
		MessageID: 1001,
		ChannelID: 999,
		AuthorID:  43,
		Purpose:   entities.PurposeBuildOriginal,
		Content:   "replayed",
	})
	if err != nil {
		t.Fatalf("repeat track: %v", err)
	}

	stored, err := store.GetMessage(ctx, 1001)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ChannelID != first.ChannelID || stored.Content != "original" {
		t.Fatalf("replay overwrote the original row: %+v", stored)
	}
}

func TestTrackMessageValidatesPurposeReferences(t *testing.T) {
	store := memory.NewStore(outbox.NewMemoryLog())
	track := commands.TrackMessageUseCase{Messages: store}
	ctx := context.Background()

	_, err := track.Execute(ctx, commands.TrackMessageCommand{
		MessageID: 1,
		ChannelID: 500,
		Purpose:   entities.PurposeVote,
	})
	if !errors.Is(err, domainerrors.ErrInvalidMessageInput) {
		t.Fatalf("ballot without session: err = %v", err)
	}

	_, err = track.Execute(ctx, commands.TrackMessageCommand{
		MessageID: 2,
		ChannelID: 500,
		Purpose:   entities.PurposeViewPendingBuild,
	})
	if !errors.Is(err, domainerrors.ErrInvalidMessageInput) {
		t.Fatalf("build view without build: err = %v", err)
	}

	_, err = track.Execute(ctx, commands.TrackMessageCommand{
		MessageID: 3,
		ChannelID: 500,
		Purpose:   entities.MessagePurpose("banter"),
	})
	if !errors.Is(err, domainerrors.ErrInvalidMessageInput) {
		t.Fatalf("unknown purpose: err = %v", err)
	}
}

func TestMarkForDeletionEmitsOnce(t *testing.T) {
	log := outbox.NewMemoryLog()
	store := memory.NewStore(log)
	trackBallot(t, store, 1001, 5)
	mark := commands.MarkForDeletionUseCase{Messages: store}
	ctx := context.Background()

	if err := mark.Execute(ctx, commands.MarkForDeletionCommand{MessageID: 1001}); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := mark.Execute(ctx, commands.MarkForDeletionCommand{MessageID: 1001}); err != nil {
		t.Fatalf("repeat mark: %v", err)
	}

	message, err := store.GetMessage(ctx, 1001)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !message.MarkedForDeletion || message.MarkedAt == nil {
		t.Fatalf("message not marked: %+v", message)
	}

	var markedEvents int
	for _, envelope := range log.List(nil, 0) {
		if envelope.Type == entities.EventTypeMessageMarkedForDeletion {
			markedEvents++
		}
	}
	if markedEvents != 1 {
		t.Fatalf("marked events = %d, want 1", markedEvents)
	}
}

func TestMarkForDeletionUnknownMessage(t *testing.T) {
	store := memory.NewStore(outbox.NewMemoryLog())
	mark := commands.MarkForDeletionUseCase{Messages: store}

	err := mark.Execute(context.Background(), commands.MarkForDeletionCommand{MessageID: 404})
	if !errors.Is(err, domainerrors.ErrMessageNotFound) {
		t.Fatalf("err = %v, want ErrMessageNotFound", err)
	}
}

func TestUntrackMessageRemovesRow(t *testing.T) {
	store := memory.NewStore(outbox.NewMemoryLog())
	trackBallot(t, store, 1001, 5)
	untrack := commands.UntrackMessageUseCase{Messages: store}
	ctx := context.Background()

	if err := untrack.Execute(ctx, commands.UntrackMessageCommand{MessageID: 1001}); err != nil {
		t.Fatalf("untrack: %v", err)
	}
	if _, err := store.GetMessage(ctx, 1001); !errors.Is(err, domainerrors.ErrMessageNotFound) {
		t.Fatalf("message still present: err = %v", err)
	}
	if err := untrack.Execute(ctx, commands.UntrackMessageCommand{MessageID: 1001}); !errors.Is(err, domainerrors.ErrMessageNotFound) {
		t.Fatalf("repeat untrack: err = %v", err)
	}
}
