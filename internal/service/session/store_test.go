package session_test

import (
	"context"
	"testing"

	"github.com/carezhou/heartline/backend/internal/model/chat"
	"github.com/carezhou/heartline/backend/internal/service/session"
)

func TestStoreStartAndGet(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()

	created, err := store.Start(ctx, "user-1")
	if err != nil {
		t.Fatalf("Start err: %v", err)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got.ID != created.ID || got.UserID != "user-1" {
		t.Fatalf("unexpected session: %+v", got)
	}
	if !got.Open() {
		t.Fatal("new session should be open")
	}
}

func TestStoreStartRequiresUser(t *testing.T) {
	store := session.NewStore()
	if _, err := store.Start(context.Background(), ""); err != session.ErrUserRequired {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}
}

func TestStoreAppendExchangeAndRecentOrder(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()
	sess, _ := store.Start(ctx, "user-1")

	pairs := [][2]string{
		{"first question", "first answer"},
		{"second question", "second answer"},
		{"third question", "third answer"},
	}
	for _, pair := range pairs {
		err := store.AppendExchange(ctx,
			chat.Turn{SessionID: sess.ID, Sender: chat.SenderUser, Content: pair[0]},
			chat.Turn{SessionID: sess.ID, Sender: chat.SenderBot, Content: pair[1]},
		)
		if err != nil {
			t.Fatalf("AppendExchange err: %v", err)
		}
	}

	recent, err := store.RecentTurns(ctx, sess.ID, 3)
	if err != nil {
		t.Fatalf("RecentTurns err: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(recent))
	}
	// Most recent first.
	if recent[0].Content != "third answer" || recent[1].Content != "third question" || recent[2].Content != "second answer" {
		t.Fatalf("unexpected recent order: %q %q %q", recent[0].Content, recent[1].Content, recent[2].Content)
	}

	transcript, err := store.Transcript(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}
	if len(transcript) != 6 || transcript[0].Content != "first question" {
		t.Fatalf("unexpected transcript: %d turns, first %q", len(transcript), transcript[0].Content)
	}
}

func TestStoreAppendExchangeUnknownSession(t *testing.T) {
	store := session.NewStore()
	err := store.AppendExchange(context.Background(),
		chat.Turn{SessionID: "missing", Sender: chat.SenderUser},
		chat.Turn{SessionID: "missing", Sender: chat.SenderBot},
	)
	if err != session.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreCloseRecordsSummaryOnce(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()
	sess, _ := store.Start(ctx, "user-1")

	closed, err := store.Close(ctx, sess.ID, "Topic: work | State: Stress")
	if err != nil {
		t.Fatalf("Close err: %v", err)
	}
	if closed.Open() || closed.Summary == "" {
		t.Fatalf("expected closed session with summary, got %+v", closed)
	}

	if _, err := store.Close(ctx, sess.ID, "again"); err != session.ErrSessionClosed {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}

	err = store.AppendExchange(ctx,
		chat.Turn{SessionID: sess.ID, Sender: chat.SenderUser, Content: "hello"},
		chat.Turn{SessionID: sess.ID, Sender: chat.SenderBot, Content: "hi"},
	)
	if err != session.ErrSessionClosed {
		t.Fatalf("expected ErrSessionClosed on append, got %v", err)
	}
}

func TestStoreActivePicksMostRecentOpenSession(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()

	first, _ := store.Start(ctx, "user-1")
	second, _ := store.Start(ctx, "user-1")
	store.Start(ctx, "user-2")

	active, ok := store.Active(ctx, "user-1")
	if !ok {
		t.Fatal("expected an active session")
	}
	if active.ID != second.ID && active.ID != first.ID {
		t.Fatalf("active session belongs to another user: %+v", active)
	}
	// Close both; no active session remains.
	store.Close(ctx, first.ID, "")
	store.Close(ctx, second.ID, "")
	if _, ok := store.Active(ctx, "user-1"); ok {
		t.Fatal("expected no active session after closing all")
	}
}

func TestStoreAssessments(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()
	sess, _ := store.Start(ctx, "user-1")

	store.RecordAssessment(ctx, chat.Assessment{SessionID: sess.ID, State: "Anxiety", RiskLevel: "Medium", Score: 0.5})
	store.RecordAssessment(ctx, chat.Assessment{SessionID: "other", State: "Happy", RiskLevel: "Low"})

	got := store.Assessments(ctx, sess.ID)
	if len(got) != 1 || got[0].State != "Anxiety" {
		t.Fatalf("unexpected assessments: %+v", got)
	}
	if got[0].ID == "" || got[0].CreatedAt.IsZero() {
		t.Fatalf("assessment missing id/timestamp: %+v", got[0])
	}
}
