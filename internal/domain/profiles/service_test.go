package profiles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pet-reunite/internal/platform/validate"
	"pet-reunite/internal/ports/auth"
)

type testRepo struct {
	byID map[string]Profile
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]Profile{}} }

func (r *testRepo) Get(ctx context.Context, userID string) (Profile, error) {
	p, ok := r.byID[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) Upsert(ctx context.Context, p Profile) error {
	r.byID[p.UserID] = p
	return nil
}

func (r *testRepo) GetMany(ctx context.Context, ids []string) ([]Profile, error) {
	out := make([]Profile, 0)
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Profile, int, error) {
	out := make([]Profile, 0)
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, len(out), nil
}

func strp(s string) *string { return &s }

func TestService_GetOrCreate_CreatesOnce(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	p, err := svc.GetOrCreate(context.Background(), auth.Claims{UserID: "u1", Email: "ana.p@correo.pe"})
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if p.DisplayName != "ana.p" || p.Role != auth.RoleUser || p.CreatedAt != now {
		t.Fatalf("unexpected default profile: %#v", p)
	}

	svc.now = func() time.Time { return now.Add(time.Hour) }
	again, _ := svc.GetOrCreate(context.Background(), auth.Claims{UserID: "u1"})
	if again.CreatedAt != now {
		t.Fatalf("second call must not recreate the profile")
	}
}

func TestService_UpdateMe_ValidatesPhoneAndDNI(t *testing.T) {
	svc := NewService(newTestRepo())
	claims := auth.Claims{UserID: "u1"}

	_, err := svc.UpdateMe(context.Background(), claims, UpdateInput{Phone: strp("12345")})
	var ve *validate.ValidationError
	if !errors.As(err, &ve) || ve.Field != "phone" {
		t.Fatalf("expected phone validation error, got %v", err)
	}

	_, err = svc.UpdateMe(context.Background(), claims, UpdateInput{DNI: strp("1234")})
	if !errors.As(err, &ve) || ve.Field != "dni" {
		t.Fatalf("expected dni validation error, got %v", err)
	}

	p, err := svc.UpdateMe(context.Background(), claims, UpdateInput{
		Phone:    strp("+51 987 654 321"),
		DNI:      strp("12345678"),
		District: strp("  Surco "),
	})
	if err != nil {
		t.Fatalf("UpdateMe: %v", err)
	}
	if p.Phone != "987654321" || p.DNI != "12345678" || p.District != "Surco" {
		t.Fatalf("unexpected profile after update: %#v", p)
	}
}

func TestService_BanAndRole(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	if banned, err := svc.IsBanned(ctx, "ghost"); err != nil || banned {
		t.Fatalf("unknown user must not be banned: %v %v", banned, err)
	}
	if _, err := svc.SetBanned(ctx, "ghost", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, _ = svc.GetOrCreate(ctx, auth.Claims{UserID: "u1"})
	if _, err := svc.SetBanned(ctx, "u1", true); err != nil {
		t.Fatalf("SetBanned: %v", err)
	}
	if banned, _ := svc.IsBanned(ctx, "u1"); !banned {
		t.Fatalf("expected banned")
	}

	if _, err := svc.SetRole(ctx, "u1", "superuser"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown role, got %v", err)
	}
	if _, err := svc.SetRole(ctx, "u1", auth.RoleAdmin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if role, _ := svc.RoleOf(ctx, "u1"); role != auth.RoleAdmin {
		t.Fatalf("expected admin role, got %q", role)
	}
}

func TestToPublicProfileResponse_HidesContactData(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	p := Profile{
		UserID: "u1", DisplayName: "Ana", Email: "ana@correo.pe", Phone: "987654321",
		DNI: "12345678", District: "Surco", CreatedAt: now,
	}

	want := publicProfileResponse{UserID: "u1", DisplayName: "Ana", District: "Surco", CreatedAt: now}
	if diff := cmp.Diff(want, toPublicProfileResponse(p)); diff != "" {
		t.Fatalf("public mapping mismatch (-want +got):\n%s", diff)
	}
}
