package redis

import (
	"testing"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	session := app.NewSession("7", "AI", domain.Question{ID: 1})
	key := "quiz:session:" + session.Handle()

	store.Put(session)
	if !mr.Exists(key) {
		t.Fatalf("expected redis key to be set")
	}
	if got, _ := mr.Get(key); got != "7" {
		t.Fatalf("expected requester in marker, got %q", got)
	}
	if _, ok := store.Get(session.Handle()); !ok {
		t.Fatalf("expected session present")
	}

	store.Delete(session.Handle())
	if mr.Exists(key) {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get(session.Handle()); ok {
		t.Fatalf("expected session gone")
	}
}

func TestSessionStoreDropsExpiredMarkers(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	session := app.NewSession("7", "AI", domain.Question{ID: 1})
	store.Put(session)

	mr.FastForward(2 * time.Minute)

	if _, ok := store.Get(session.Handle()); ok {
		t.Fatalf("expected session to expire with its marker")
	}
}
