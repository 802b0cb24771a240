package comments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-reunite/internal/domain/gamification"
	"pet-reunite/internal/domain/pets"
	"pet-reunite/internal/platform/validate"
	"pet-reunite/internal/ports/notify"
)

type testRepo struct {
	items []Comment
}

func (r *testRepo) Create(ctx context.Context, c Comment) error {
	r.items = append(r.items, c)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Comment, error) {
	for _, c := range r.items {
		if c.ID == id {
			return c, nil
		}
	}
	return Comment{}, ErrNotFound
}

func (r *testRepo) ListByPet(ctx context.Context, petID string, limit, offset int) ([]Comment, int, error) {
	out := []Comment{}
	for _, c := range r.items {
		if c.PetID == petID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	for i, c := range r.items {
		if c.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type testPets map[string]pets.Pet

func (p testPets) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	pet, ok := p[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return pet, nil
}

type testPoints struct{ actions []gamification.Action }

func (p *testPoints) Award(ctx context.Context, userID string, a gamification.Action, refID string) (int, error) {
	p.actions = append(p.actions, a)
	return gamification.PointsFor(a), nil
}

type testPublisher struct{ events []notify.Event }

func (p *testPublisher) Publish(ctx context.Context, e notify.Event) error {
	p.events = append(p.events, e)
	return nil
}

func newTestService() (*Service, *testPoints, *testPublisher) {
	pts := &testPoints{}
	pub := &testPublisher{}
	svc := NewService(&testRepo{}, testPets{
		"pet-1": {ID: "pet-1", ReporterUserID: "owner", Status: pets.StatusLost},
	}, pts, pub, nil)
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc, pts, pub
}

func ptr(f float64) *float64 { return &f }

func TestService_Create(t *testing.T) {
	svc, pts, pub := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, "pet-1", "neighbor", CreateInput{Body: "  Lo vi en el parque Kennedy  "})
	require.NoError(t, err)
	assert.Equal(t, "Lo vi en el parque Kennedy", c.Body)
	assert.Nil(t, c.Location)
	assert.Equal(t, []gamification.Action{gamification.ActionComment}, pts.actions)
	require.Len(t, pub.events, 1)
	assert.Equal(t, notify.EventCommentAdded, pub.events[0].Type)
	assert.Equal(t, "pet-1", pub.events[0].SubjectID)
}

func TestService_Create_Sighting(t *testing.T) {
	svc, pts, _ := newTestService()

	c, err := svc.Create(context.Background(), "pet-1", "neighbor", CreateInput{
		Body:       "Cruzando la Av. Larco",
		IsSighting: true,
		Lat:        ptr(-12.122),
		Lng:        ptr(-77.030),
	})
	require.NoError(t, err)
	require.NotNil(t, c.Location)
	assert.Equal(t, -12.122, c.Location.Lat)
	assert.Equal(t, []gamification.Action{gamification.ActionSighting}, pts.actions)
}

func TestService_Create_OwnCommentDoesNotAward(t *testing.T) {
	svc, pts, _ := newTestService()

	_, err := svc.Create(context.Background(), "pet-1", "owner", CreateInput{Body: "Gracias a todos"})
	require.NoError(t, err)
	assert.Empty(t, pts.actions)
}

func TestService_Create_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name  string
		petID string
		in    CreateInput
	}{
		{"empty body", "pet-1", CreateInput{Body: "   "}},
		{"too long", "pet-1", CreateInput{Body: strings.Repeat("a", 1001)}},
		{"half location", "pet-1", CreateInput{Body: "aquí", IsSighting: true, Lat: ptr(-12.1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.petID, "u1", tc.in)
			var ve *validate.ValidationError
			assert.True(t, errors.As(err, &ve), "got %v", err)
		})
	}

	_, err := svc.Create(ctx, "missing", "u1", CreateInput{Body: "hola"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete_Permissions(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	mk := func() Comment {
		c, err := svc.Create(ctx, "pet-1", "author", CreateInput{Body: "spam"})
		require.NoError(t, err)
		return c
	}

	c := mk()
	assert.ErrorIs(t, svc.Delete(ctx, c.ID, "stranger", false), ErrForbidden)
	assert.NoError(t, svc.Delete(ctx, c.ID, "author", false))

	c = mk()
	assert.NoError(t, svc.Delete(ctx, c.ID, "owner", false), "pet reporter can delete")

	c = mk()
	assert.NoError(t, svc.Delete(ctx, c.ID, "mod", true))

	assert.ErrorIs(t, svc.Delete(ctx, c.ID, "mod", true), ErrNotFound)
}
