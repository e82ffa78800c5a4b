package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nadzzz/speakgenie/internal/message"
)

func newTestStore() *MemStore {
	s := NewMemStore()
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return s
}

func TestCreateAndGetSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	created, err := s.CreateSession(ctx, message.Session{Scenario: "home", Language: "hi-IN"})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("session not stamped: %+v", created)
	}

	got, err := s.Session(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != created {
		t.Errorf("Session() = %+v, want %+v", got, created)
	}

	if _, err := s.Session(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSessionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	first, _ := s.CreateSession(ctx, message.Session{Scenario: "school"})
	second, _ := s.CreateSession(ctx, message.Session{Scenario: "store"})

	list, err := s.Sessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("Sessions() order = %+v", list)
	}
}

func TestMessages(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	sess, _ := s.CreateSession(ctx, message.Session{Scenario: "home"})

	for _, text := range []string{"hello", "how are you?"} {
		if _, err := s.AddMessage(ctx, message.Message{SessionID: sess.ID, Sender: message.SenderUser, Message: text}); err != nil {
			t.Fatal(err)
		}
	}

	msgs, err := s.Messages(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].Message != "hello" || msgs[1].Message != "how are you?" {
		t.Fatalf("Messages() = %+v", msgs)
	}
	if msgs[0].ID == msgs[1].ID || !msgs[0].Timestamp.Before(msgs[1].Timestamp) {
		t.Errorf("messages not stamped in order: %+v", msgs)
	}

	msgs[0].Message = "changed"
	again, _ := s.Messages(ctx, sess.ID)
	if again[0].Message != "hello" {
		t.Error("Messages exposed internal slice")
	}
}

func TestAddMessageUnknownSession(t *testing.T) {
	s := newTestStore()
	_, err := s.AddMessage(context.Background(), message.Message{SessionID: "nope", Message: "hi"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.Messages(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Messages err = %v, want ErrNotFound", err)
	}
}
