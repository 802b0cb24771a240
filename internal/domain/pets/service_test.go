package pets

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pet-reunite/internal/domain/gamification"
	"pet-reunite/internal/platform/validate"
	"pet-reunite/internal/ports/notify"
)

// -------------------------
// Test doubles (in-memory)
// -------------------------

type testRepo struct {
	items map[string]Pet
}

func newTestRepo() *testRepo { return &testRepo{items: map[string]Pet{}} }

func (r *testRepo) Create(ctx context.Context, p Pet) error {
	r.items[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Pet, prevUpdatedAt time.Time) error {
	cur, ok := r.items[p.ID]
	if !ok {
		return ErrNotFound
	}
	if !cur.UpdatedAt.Equal(prevUpdatedAt) {
		return ErrBadState
	}
	r.items[p.ID] = p
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	p, ok := r.items[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Pet, int, error) {
	out := make([]Pet, 0)
	for _, p := range r.items {
		if f.ReporterUserID != "" && p.ReporterUserID != f.ReporterUserID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (r *testRepo) CountOpenByStatus(ctx context.Context) (map[Status]int, error) {
	out := map[Status]int{}
	for _, p := range r.items {
		if p.Status.Open() {
			out[p.Status]++
		}
	}
	return out, nil
}

func (r *testRepo) CountClosedSince(ctx context.Context, since time.Time) (int, error) {
	n := 0
	for _, p := range r.items {
		if p.ClosedAt != nil && !p.ClosedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// racingRepo corre onGet una vez, después de la lectura del servicio y antes de
// su escritura.
type racingRepo struct {
	*testRepo
	onGet func()
}

func (r *racingRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	p, err := r.testRepo.GetByID(ctx, id)
	if f := r.onGet; f != nil {
		r.onGet = nil
		f()
	}
	return p, err
}

type award struct {
	user   string
	action gamification.Action
	ref    string
}

type testPoints struct{ awards []award }

func (p *testPoints) Award(ctx context.Context, userID string, a gamification.Action, refID string) (int, error) {
	p.awards = append(p.awards, award{userID, a, refID})
	return gamification.PointsFor(a), nil
}

type testPublisher struct{ events []notify.Event }

func (p *testPublisher) Publish(ctx context.Context, e notify.Event) error {
	p.events = append(p.events, e)
	return nil
}

type testIndexer struct {
	indexed []string
	err     error
}

func (i *testIndexer) Index(ctx context.Context, p Pet) error {
	i.indexed = append(i.indexed, p.ID)
	return i.err
}

var fixedNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestService() (*Service, *testPoints, *testPublisher, *testIndexer) {
	pts := &testPoints{}
	pub := &testPublisher{}
	idx := &testIndexer{}
	svc := NewService(newTestRepo(), Deps{
		Points:        pts,
		Publisher:     pub,
		Indexer:       idx,
		PublicBaseURL: "https://mascotas.pe/",
		QRBaseURL:     "https://api.qrserver.com/v1/create-qr-code/",
	})
	svc.now = func() time.Time { return fixedNow }
	return svc, pts, pub, idx
}

func validInput() CreateInput {
	return CreateInput{
		Status:       StatusLost,
		Species:      SpeciesDog,
		Breed:        " Schnauzer ",
		Color:        "gris",
		Name:         "Milo",
		Description:  "Collar rojo, responde a su nombre",
		Lat:          -12.1211,
		Lng:          -77.0297,
		District:     "Miraflores",
		ContactPhone: "+51 987 654 321",
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_NormalizesAndTriggersSideEffects(t *testing.T) {
	svc, pts, pub, idx := newTestService()

	p, err := svc.Create(context.Background(), "u1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if p.Breed != "Schnauzer" {
		t.Fatalf("breed not trimmed: %q", p.Breed)
	}
	if p.ContactPhone != "987654321" {
		t.Fatalf("phone not normalized: %q", p.ContactPhone)
	}
	if p.Sex != SexUnknown {
		t.Fatalf("expected default sex unknown, got %q", p.Sex)
	}
	if !p.EventAt.Equal(fixedNow) {
		t.Fatalf("expected event_at = now, got %v", p.EventAt)
	}

	if len(pts.awards) != 1 || pts.awards[0].action != gamification.ActionPetReported || pts.awards[0].ref != p.ID {
		t.Fatalf("unexpected awards: %+v", pts.awards)
	}
	if len(pub.events) != 1 || pub.events[0].Type != notify.EventPetReported {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
	if len(idx.indexed) != 1 {
		t.Fatalf("expected pet to be indexed")
	}
}

func TestService_Create_FoundAwardsMorePoints(t *testing.T) {
	svc, pts, _, _ := newTestService()

	in := validInput()
	in.Status = StatusFound
	if _, err := svc.Create(context.Background(), "u1", in); err != nil {
		t.Fatalf("create: %v", err)
	}
	if pts.awards[0].action != gamification.ActionPetFoundReported {
		t.Fatalf("expected found action, got %s", pts.awards[0].action)
	}
}

func TestService_Create_IndexFailureIsNotFatal(t *testing.T) {
	svc, _, _, idx := newTestService()
	idx.err = errors.New("embedding api down")

	if _, err := svc.Create(context.Background(), "u1", validInput()); err != nil {
		t.Fatalf("index failure must not fail create: %v", err)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	future := fixedNow.Add(48 * time.Hour)

	cases := []struct {
		name  string
		mod   func(*CreateInput)
		field string
	}{
		{"bad phone", func(in *CreateInput) { in.ContactPhone = "12345" }, "contact_phone"},
		{"closed status", func(in *CreateInput) { in.Status = StatusReunited }, "status"},
		{"no species", func(in *CreateInput) { in.Species = "" }, "species"},
		{"no location", func(in *CreateInput) { in.Lat, in.Lng = 0, 0 }, "lat"},
		{"future event", func(in *CreateInput) { in.EventAt = &future }, "event_at"},
		{"negative reward", func(in *CreateInput) { in.Reward = decimal.NewFromInt(-5) }, "reward"},
		{"too many photos", func(in *CreateInput) {
			in.PhotoURLs = strings.Split("https://a/1 https://a/2 https://a/3 https://a/4 https://a/5 https://a/6 https://a/7", " ")
		}, "photo_urls"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mod(&in)
			_, err := svc.Create(context.Background(), "u1", in)

			var ve *validate.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("expected field %s, got %s (%s)", tc.field, ve.Field, ve.Message)
			}
		})
	}
}

func TestService_Update_Permissions(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, "owner", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Max"
	if _, err := svc.Update(ctx, p.ID, Actor{UserID: "stranger"}, UpdateInput{Name: &name}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	updated, err := svc.Update(ctx, p.ID, Actor{UserID: "owner"}, UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Name != "Max" || updated.Breed != "Schnauzer" {
		t.Fatalf("patch should only touch name: %+v", updated)
	}

	if _, err := svc.Update(ctx, p.ID, Actor{UserID: "mod", Admin: true}, UpdateInput{Name: &name}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestService_Close(t *testing.T) {
	svc, pts, pub, _ := newTestService()
	ctx := context.Background()
	owner := Actor{UserID: "owner"}

	p, _ := svc.Create(ctx, "owner", validInput())

	if _, err := svc.Close(ctx, p.ID, owner, StatusAdopted); !errors.Is(err, ErrBadState) {
		t.Fatalf("lost pet cannot be adopted: %v", err)
	}

	closed, err := svc.Close(ctx, p.ID, owner, StatusReunited)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != StatusReunited || closed.ClosedAt == nil {
		t.Fatalf("unexpected closed pet: %+v", closed)
	}
	if last := pts.awards[len(pts.awards)-1]; last.action != gamification.ActionReunion {
		t.Fatalf("expected reunion points, got %s", last.action)
	}
	if last := pub.events[len(pub.events)-1]; last.Type != notify.EventPetClosed {
		t.Fatalf("expected pet.closed event, got %s", last.Type)
	}

	if _, err := svc.Close(ctx, p.ID, owner, StatusReunited); !errors.Is(err, ErrBadState) {
		t.Fatalf("closing twice should be ErrBadState, got %v", err)
	}

	// Cerrado: el dueño ya no edita, el admin sí.
	name := "Milo II"
	if _, err := svc.Update(ctx, p.ID, owner, UpdateInput{Name: &name}); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState on closed pet, got %v", err)
	}
	if _, err := svc.Update(ctx, p.ID, Actor{UserID: "mod", Admin: true}, UpdateInput{Name: &name}); err != nil {
		t.Fatalf("admin edit on closed pet: %v", err)
	}

	n, _ := svc.CountClosedSince(ctx, fixedNow.AddDate(0, 0, -30))
	if n != 1 {
		t.Fatalf("expected 1 closed pet, got %d", n)
	}
}

func TestService_Update_ConcurrentCloseIsNotReverted(t *testing.T) {
	repo := newTestRepo()
	race := &racingRepo{testRepo: repo}
	svc := NewService(race, Deps{})
	svc.now = func() time.Time { return fixedNow }
	ctx := context.Background()
	owner := Actor{UserID: "owner"}

	p, err := svc.Create(ctx, "owner", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// El dueño cierra el reporte mientras su propia edición ya leyó la fila abierta.
	race.onGet = func() {
		svc.now = func() time.Time { return fixedNow.Add(time.Minute) }
		if _, err := svc.Close(ctx, p.ID, owner, StatusReunited); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	name := "Milo II"
	if _, err := svc.Update(ctx, p.ID, owner, UpdateInput{Name: &name}); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState for stale update, got %v", err)
	}

	got := repo.items[p.ID]
	if got.Status != StatusReunited || got.ClosedAt == nil {
		t.Fatalf("close was reverted: %+v", got)
	}
	if got.Name != "Milo" {
		t.Fatalf("stale update should not be written, name=%q", got.Name)
	}
}

func TestService_Close_Adoption(t *testing.T) {
	svc, pts, _, _ := newTestService()
	ctx := context.Background()

	in := validInput()
	in.Status = StatusAdoption
	p, _ := svc.Create(ctx, "shelter", in)

	closed, err := svc.Close(ctx, p.ID, Actor{UserID: "shelter"}, StatusAdopted)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != StatusAdopted {
		t.Fatalf("expected adopted, got %s", closed.Status)
	}
	for _, a := range pts.awards {
		if a.action == gamification.ActionReunion {
			t.Fatalf("adoption must not award reunion points")
		}
	}
}

func TestService_ShareLink_RoundTrip(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	p, _ := svc.Create(ctx, "owner", validInput())
	link, err := svc.ShareLink(ctx, p.ID)
	if err != nil {
		t.Fatalf("share link: %v", err)
	}

	if link.PublicURL != "https://mascotas.pe/p/"+link.Slug {
		t.Fatalf("unexpected public url: %s", link.PublicURL)
	}
	if !strings.Contains(link.QRCodeURL, "size=300x300") || !strings.Contains(link.QRCodeURL, "data=https%3A%2F%2Fmascotas.pe%2Fp%2F") {
		t.Fatalf("unexpected qr url: %s", link.QRCodeURL)
	}

	got, err := svc.GetBySlug(ctx, link.Slug)
	if err != nil || got.ID != p.ID {
		t.Fatalf("slug lookup: id=%s err=%v", got.ID, err)
	}

	if _, err := svc.GetBySlug(ctx, "0OIl"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for invalid slug, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	p, _ := svc.Create(ctx, "owner", validInput())
	if err := svc.Delete(ctx, p.ID, Actor{UserID: "other"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, p.ID, Actor{UserID: "owner"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
