package support

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-reunite/internal/ports/notify"
)

type testRepo struct {
	seq   int64
	items map[string]Ticket
}

func newTestRepo() *testRepo { return &testRepo{items: map[string]Ticket{}} }

func (r *testRepo) NextNumber(ctx context.Context) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *testRepo) Create(ctx context.Context, t Ticket) error {
	r.items[t.ID] = t
	return nil
}

func (r *testRepo) Update(ctx context.Context, t Ticket) error {
	cur := r.items[t.ID]
	t.Messages = cur.Messages
	r.items[t.ID] = t
	return nil
}

func (r *testRepo) AddMessage(ctx context.Context, ticketID string, m Message) error {
	t := r.items[ticketID]
	t.Messages = append(t.Messages, m)
	r.items[ticketID] = t
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Ticket, error) {
	t, ok := r.items[id]
	if !ok {
		return Ticket{}, ErrNotFound
	}
	return t, nil
}

func (r *testRepo) List(ctx context.Context, userID string, st Status, limit, offset int) ([]Ticket, int, error) {
	out := []Ticket{}
	for _, t := range r.items {
		if (userID == "" || t.UserID == userID) && (st == "" || t.Status == st) {
			out = append(out, t)
		}
	}
	return out, len(out), nil
}

func (r *testRepo) CountOpen(ctx context.Context) (int, error) {
	n := 0
	for _, t := range r.items {
		if t.Status == StatusOpen || t.Status == StatusInProgress {
			n++
		}
	}
	return n, nil
}

type testPublisher struct{ events []notify.Event }

func (p *testPublisher) Publish(ctx context.Context, e notify.Event) error {
	p.events = append(p.events, e)
	return nil
}

func newTestService() (*Service, *testRepo, *testPublisher) {
	repo := newTestRepo()
	pub := &testPublisher{}
	svc := NewService(repo, pub, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 7, 7, 8, 0, 0, 0, time.UTC) }
	return svc, repo, pub
}

func createTicket(t *testing.T, svc *Service) Ticket {
	t.Helper()
	tk, err := svc.Create(context.Background(), "u1", CreateInput{
		Subject:     "No puedo cerrar mi reporte",
		Category:    CategoryReport,
		Description: "Al presionar 'Reencontrado' sale un error.",
	})
	require.NoError(t, err)
	return tk
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "T-000001", FormatNumber(1))
	assert.Equal(t, "T-123456", FormatNumber(123456))
	assert.Equal(t, "T-000007", FormatNumber(1_000_007))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusClosed, true},
		{StatusInProgress, StatusOpen, true},
		{StatusResolved, StatusOpen, true},
		{StatusResolved, StatusInProgress, false},
		{StatusClosed, StatusOpen, false},
		{StatusOpen, StatusOpen, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestService_Create(t *testing.T) {
	svc, _, pub := newTestService()

	tk := createTicket(t, svc)
	assert.Equal(t, "T-000001", tk.Number)
	assert.Equal(t, StatusOpen, tk.Status)
	assert.Equal(t, PriorityNormal, tk.Priority)
	require.Len(t, tk.Messages, 1)
	assert.Equal(t, "u1", tk.Messages[0].AuthorUserID)
	assert.False(t, tk.Messages[0].FromStaff)

	require.Len(t, pub.events, 1)
	assert.Equal(t, notify.EventTicketCreated, pub.events[0].Type)

	tk2 := createTicket(t, svc)
	assert.Equal(t, "T-000002", tk2.Number)
}

func TestService_Get_HidesOthersTickets(t *testing.T) {
	svc, _, _ := newTestService()
	tk := createTicket(t, svc)
	ctx := context.Background()

	_, err := svc.Get(ctx, tk.ID, "intruder", false)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, tk.ID, "staff", true)
	assert.NoError(t, err)
}

func TestService_ReplyFlow(t *testing.T) {
	svc, _, _ := newTestService()
	tk := createTicket(t, svc)
	ctx := context.Background()

	tk, err := svc.Reply(ctx, tk.ID, "staff", true, ReplyInput{Body: "Lo revisamos"})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, tk.Status)
	assert.True(t, tk.Messages[1].FromStaff)

	tk, err = svc.SetStatus(ctx, tk.ID, "staff", StatusResolved)
	require.NoError(t, err)
	require.NotNil(t, tk.ResolvedAt)

	// El dueño responde: se reabre.
	tk, err = svc.Reply(ctx, tk.ID, "u1", false, ReplyInput{Body: "Sigue fallando"})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, tk.Status)
	assert.Nil(t, tk.ResolvedAt)
	assert.Len(t, tk.Messages, 3)

	_, err = svc.SetStatus(ctx, tk.ID, "staff", StatusClosed)
	require.NoError(t, err)
	_, err = svc.Reply(ctx, tk.ID, "u1", false, ReplyInput{Body: "?"})
	assert.ErrorIs(t, err, ErrBadState)
	_, err = svc.SetStatus(ctx, tk.ID, "staff", StatusOpen)
	assert.ErrorIs(t, err, ErrBadState)

	n, _ := svc.CountOpen(ctx)
	assert.Equal(t, 0, n)
}

func TestService_SetPriority(t *testing.T) {
	svc, _, _ := newTestService()
	tk := createTicket(t, svc)

	tk, err := svc.SetPriority(context.Background(), tk.ID, "staff", PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, tk.Priority)

	_, err = svc.SetPriority(context.Background(), tk.ID, "staff", "urgent")
	assert.Error(t, err)
}
