package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-reunite/internal/domain/gamification"
	"pet-reunite/internal/platform/validate"
)

type testRepo struct {
	items []Report
}

func (r *testRepo) Create(ctx context.Context, x Report) error {
	r.items = append(r.items, x)
	return nil
}

func (r *testRepo) Update(ctx context.Context, x Report) error {
	for i := range r.items {
		if r.items[i].ID == x.ID {
			r.items[i] = x
			return nil
		}
	}
	return ErrNotFound
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Report, error) {
	for _, x := range r.items {
		if x.ID == id {
			return x, nil
		}
	}
	return Report{}, ErrNotFound
}

func (r *testRepo) FindPending(ctx context.Context, reporter string, t TargetType, targetID string) (Report, bool, error) {
	for _, x := range r.items {
		if x.ReporterUserID == reporter && x.TargetType == t && x.TargetID == targetID && x.Status == StatusPending {
			return x, true, nil
		}
	}
	return Report{}, false, nil
}

func (r *testRepo) List(ctx context.Context, st Status, limit, offset int) ([]Report, int, error) {
	out := []Report{}
	for _, x := range r.items {
		if st == "" || x.Status == st {
			out = append(out, x)
		}
	}
	return out, len(out), nil
}

func (r *testRepo) CountByStatus(ctx context.Context, st Status) (int, error) {
	_, n, err := r.List(ctx, st, 0, 0)
	return n, err
}

type testPoints struct{ n int }

func (p *testPoints) Award(ctx context.Context, userID string, a gamification.Action, refID string) (int, error) {
	p.n++
	return 0, nil
}

func newTestService(removed *[]string, removeErr error) (*Service, *testPoints) {
	pts := &testPoints{}
	removers := Removers{
		TargetPet: func(ctx context.Context, id string) error {
			if removeErr != nil {
				return removeErr
			}
			*removed = append(*removed, "pet:"+id)
			return nil
		},
	}
	svc := NewService(&testRepo{}, removers, pts, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC) }
	return svc, pts
}

func TestService_Create(t *testing.T) {
	var removed []string
	svc, _ := newTestService(&removed, nil)
	ctx := context.Background()

	in := CreateInput{TargetType: TargetPet, TargetID: "pet-1", Reason: ReasonFraud, Details: "pide dinero por adelantado"}
	r, err := svc.Create(ctx, "u1", in)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, r.Status)

	_, err = svc.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = svc.Create(ctx, "u2", in)
	assert.NoError(t, err, "other users can report the same content")

	_, err = svc.Create(ctx, "u1", CreateInput{TargetType: TargetUser, TargetID: "u1", Reason: ReasonSpam})
	var ve *validate.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = svc.Create(ctx, "u1", CreateInput{TargetType: TargetComment, TargetID: "c1", Reason: ReasonOther})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "details", ve.Field)

	n, _ := svc.CountPending(ctx)
	assert.Equal(t, 2, n)
}

func TestService_Resolve_RemovesContent(t *testing.T) {
	var removed []string
	svc, pts := newTestService(&removed, nil)
	ctx := context.Background()

	r, _ := svc.Create(ctx, "u1", CreateInput{TargetType: TargetPet, TargetID: "pet-9", Reason: ReasonSpam})

	r, err := svc.Resolve(ctx, r.ID, "admin", ResolveInput{Resolution: "spam confirmado", RemoveContent: true})
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, r.Status)
	assert.Equal(t, "admin", r.ResolvedBy)
	require.NotNil(t, r.ResolvedAt)
	assert.Equal(t, []string{"pet:pet-9"}, removed)
	assert.Equal(t, 1, pts.n)

	_, err = svc.Dismiss(ctx, r.ID, "admin", "")
	assert.ErrorIs(t, err, ErrBadState)

	// Ya no está pendiente: se puede volver a reportar.
	_, err = svc.Create(ctx, "u1", CreateInput{TargetType: TargetPet, TargetID: "pet-9", Reason: ReasonSpam})
	assert.NoError(t, err)
}

func TestService_Resolve_RemoveFailureKeepsPending(t *testing.T) {
	var removed []string
	boom := errors.New("db down")
	svc, _ := newTestService(&removed, boom)
	ctx := context.Background()

	r, _ := svc.Create(ctx, "u1", CreateInput{TargetType: TargetPet, TargetID: "pet-9", Reason: ReasonSpam})
	_, err := svc.Resolve(ctx, r.ID, "admin", ResolveInput{RemoveContent: true})
	assert.ErrorIs(t, err, boom)

	got, _ := svc.Get(ctx, r.ID)
	assert.Equal(t, StatusPending, got.Status)
}

func TestService_Resolve_UnsupportedTarget(t *testing.T) {
	var removed []string
	svc, _ := newTestService(&removed, nil)
	ctx := context.Background()

	r, _ := svc.Create(ctx, "u1", CreateInput{TargetType: TargetCampaign, TargetID: "c1", Reason: ReasonSpam})
	_, err := svc.Resolve(ctx, r.ID, "admin", ResolveInput{RemoveContent: true})
	assert.ErrorIs(t, err, ErrUnsupportedTarget)

	r, err = svc.Dismiss(ctx, r.ID, "admin", "no aplica")
	require.NoError(t, err)
	assert.Equal(t, StatusDismissed, r.Status)
}
