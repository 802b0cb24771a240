package gamification

import (
	"context"
	"sort"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	entries []Entry
}

func (r *testRepo) Add(ctx context.Context, e Entry) error {
	for _, x := range r.entries {
		if x.UserID == e.UserID && x.Action == e.Action && x.RefID == e.RefID {
			return ErrDuplicate
		}
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *testRepo) TotalFor(ctx context.Context, userID string) (int, error) {
	total := 0
	for _, e := range r.entries {
		if e.UserID == userID {
			total += e.Points
		}
	}
	return total, nil
}

func (r *testRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	out := make([]Entry, 0)
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *testRepo) Leaderboard(ctx context.Context, limit int) ([]Standing, error) {
	totals := map[string]int{}
	for _, e := range r.entries {
		totals[e.UserID] += e.Points
	}
	out := make([]Standing, 0, len(totals))
	for u, t := range totals {
		out = append(out, Standing{UserID: u, Total: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Award_IsIdempotentPerRef(t *testing.T) {
	svc := NewService(&testRepo{})
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	pts, err := svc.Award(ctx, "u1", ActionPetReported, "pet-1")
	if err != nil || pts != 10 {
		t.Fatalf("first award: pts=%d err=%v", pts, err)
	}

	pts, err = svc.Award(ctx, "u1", ActionPetReported, "pet-1")
	if err != nil || pts != 0 {
		t.Fatalf("duplicate award should be a no-op: pts=%d err=%v", pts, err)
	}

	if _, err := svc.Award(ctx, "u1", ActionReunion, "pet-1"); err != nil {
		t.Fatalf("reunion award: %v", err)
	}

	s, err := svc.Summary(ctx, "u1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.Total != 60 {
		t.Fatalf("expected 60 points, got %d", s.Total)
	}
	if s.Level.Name != "Vecino Atento" {
		t.Fatalf("expected level Vecino Atento, got %s", s.Level.Name)
	}
}

func TestService_Award_RejectsUnknownAction(t *testing.T) {
	svc := NewService(&testRepo{})
	if _, err := svc.Award(context.Background(), "u1", Action("hack"), "x"); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Award(context.Background(), "", ActionComment, "x"); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for empty user, got %v", err)
	}
}

func TestService_Leaderboard_DefaultLimit(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, _ = svc.Award(ctx, string(rune('a'+i)), ActionComment, "c")
	}
	_, _ = svc.Award(ctx, "a", ActionReunion, "p")

	items, err := svc.Leaderboard(ctx, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(items) != 10 {
		t.Fatalf("expected default limit 10, got %d", len(items))
	}
	if items[0].UserID != "a" {
		t.Fatalf("expected 'a' on top, got %s", items[0].UserID)
	}
}
