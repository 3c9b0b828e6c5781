package store

import (
	"errors"
	"testing"
	"time"

	"github.com/devaloi/safecast/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSaveAndHistory(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	now := time.Now().UTC()
	for i, typ := range []domain.AlertType{domain.AlertPanicButton, domain.AlertBatteryCritical, domain.AlertFakeCall} {
		_, err := s.Save(domain.Alert{
			UserID:    "user42",
			Type:      typ,
			Location:  domain.Location{Latitude: 12.5, Longitude: 77.1, Address: "Main St"},
			VideoLink: "http://localhost:8080/watch/user42",
			Status:    domain.StatusActive,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	history, err := s.History("user42", 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(history))
	}
	// Should be newest-first.
	if history[0].Type != domain.AlertFakeCall {
		t.Errorf("expected FAKE_CALL first, got %s", history[0].Type)
	}
	if history[2].Type != domain.AlertPanicButton {
		t.Errorf("expected PANIC_BUTTON last, got %s", history[2].Type)
	}
	if history[0].Location.Address != "Main St" || history[0].VideoLink == "" {
		t.Errorf("fields not round-tripped: %+v", history[0])
	}
}

func TestSQLiteSaveAssignsID(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	a, err := s.Save(domain.Alert{UserID: "u", Type: domain.AlertPanicButton, Status: domain.StatusActive})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if a.ID == 0 {
		t.Error("expected non-zero id")
	}
	if a.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestSQLiteHistoryLimit(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for i := 0; i < 10; i++ {
		s.Save(domain.Alert{UserID: "u", Type: domain.AlertPanicButton, Status: domain.StatusActive})
	}

	history, err := s.History("u", 5)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 5 {
		t.Errorf("expected 5 alerts, got %d", len(history))
	}
}

func TestSQLiteUserIsolation(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	s.Save(domain.Alert{UserID: "alice", Type: domain.AlertPanicButton, Status: domain.StatusActive})
	s.Save(domain.Alert{UserID: "bob", Type: domain.AlertPanicButton, Status: domain.StatusActive})

	h1, _ := s.History("alice", 50)
	h2, _ := s.History("bob", 50)
	if len(h1) != 1 || len(h2) != 1 {
		t.Errorf("expected 1 alert per user, got alice=%d bob=%d", len(h1), len(h2))
	}
}

func TestSQLiteResolve(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	a, err := s.Save(domain.Alert{UserID: "u", Type: domain.AlertPanicButton, Status: domain.StatusActive})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Resolve(a.ID); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	history, _ := s.History("u", 1)
	if len(history) != 1 || history[0].Status != domain.StatusResolved {
		t.Errorf("expected resolved alert, got %+v", history)
	}

	if err := s.Resolve(a.ID + 100); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteEmptyHistory(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	history, err := s.History("nobody", 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected 0 alerts, got %d", len(history))
	}
}
