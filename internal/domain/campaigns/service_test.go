package campaigns

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-reunite/internal/domain/gamification"
	"pet-reunite/internal/platform/validate"
)

type testRepo struct {
	items map[string]Campaign
}

func (r *testRepo) Create(ctx context.Context, c Campaign) error {
	r.items[c.ID] = c
	return nil
}

func (r *testRepo) Update(ctx context.Context, c Campaign) error {
	r.items[c.ID] = c
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Campaign, error) {
	c, ok := r.items[id]
	if !ok {
		return Campaign{}, ErrNotFound
	}
	return c, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Campaign, int, error) {
	out := []Campaign{}
	for _, c := range r.items {
		if len(f.Statuses) > 0 && c.Status != f.Statuses[0] {
			continue
		}
		if !f.EndsAfter.IsZero() && c.EndsAt.Before(f.EndsAfter) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, len(out), nil
}

func (r *testRepo) CountUpcoming(ctx context.Context, now time.Time) (int, error) {
	items, _, _ := r.List(ctx, ListFilter{Statuses: []Status{StatusPublished}, EndsAfter: now})
	return len(items), nil
}

type testPoints struct{ actions []gamification.Action }

func (p *testPoints) Award(ctx context.Context, userID string, a gamification.Action, refID string) (int, error) {
	p.actions = append(p.actions, a)
	return 0, nil
}

var now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestService() (*Service, *testPoints) {
	pts := &testPoints{}
	svc := NewService(&testRepo{items: map[string]Campaign{}}, pts, nil, nil)
	svc.now = func() time.Time { return now }
	return svc, pts
}

func input(startInDays int) Input {
	start := now.AddDate(0, 0, startInDays)
	return Input{
		Title:    "Esterilización gratuita",
		Type:     TypeSterilization,
		Address:  "Parque Reducto",
		District: "Miraflores",
		StartsAt: start,
		EndsAt:   start.Add(8 * time.Hour),
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := input(3)
	in.EndsAt = in.StartsAt
	_, err := svc.Create(ctx, "org", in)
	var ve *validate.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "ends_at", ve.Field)

	_, err = svc.Create(ctx, "org", input(-5))
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "la campaña ya terminó", ve.Message)

	c, err := svc.Create(ctx, "org", input(3))
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, c.Status)
}

func TestService_PublishFlow(t *testing.T) {
	svc, pts := newTestService()
	ctx := context.Background()

	later, _ := svc.Create(ctx, "org", input(10))
	sooner, _ := svc.Create(ctx, "org", input(2))
	draft, _ := svc.Create(ctx, "org", input(1))

	items, _, err := svc.ListUpcoming(ctx, "", "", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, items, "drafts are not public")

	for _, id := range []string{later.ID, sooner.ID} {
		_, err := svc.Publish(ctx, id, "admin")
		require.NoError(t, err)
	}
	_, err = svc.Publish(ctx, later.ID, "admin")
	assert.ErrorIs(t, err, ErrBadState)

	items, total, err := svc.ListUpcoming(ctx, "", "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, sooner.ID, items[0].ID)
	assert.Equal(t, later.ID, items[1].ID)
	assert.NotEqual(t, draft.ID, items[0].ID)

	assert.Equal(t, []gamification.Action{gamification.ActionCampaignCreated, gamification.ActionCampaignCreated}, pts.actions)

	n, _ := svc.CountUpcoming(ctx)
	assert.Equal(t, 2, n)
}

func TestService_Cancel(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c, _ := svc.Create(ctx, "org", input(3))

	_, err := svc.Cancel(ctx, c.ID, "other", false)
	assert.ErrorIs(t, err, ErrForbidden)

	c, err = svc.Cancel(ctx, c.ID, "org", false)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, c.Status)

	_, err = svc.Cancel(ctx, c.ID, "org", false)
	assert.ErrorIs(t, err, ErrBadState)
	_, err = svc.Update(ctx, c.ID, "org", false, input(4))
	assert.ErrorIs(t, err, ErrBadState)
	_, err = svc.Publish(ctx, c.ID, "admin")
	assert.ErrorIs(t, err, ErrBadState)
}
