package notify

import (
	"context"
	goerrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eventease/internal/config"
	"eventease/internal/model"
	"eventease/internal/repository"
	"eventease/internal/testutil"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func fixtures() (*model.Event, *model.User, *model.RSVP) {
	owner := &model.User{ID: "owner-1", Email: "owner@example.com", Name: "Olive", Role: model.RoleEventOwner}
	event := &model.Event{
		ID:       uuid.New(),
		Title:    "Go Meetup",
		Date:     time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC),
		Location: "Berlin",
		OwnerID:  owner.ID,
	}
	rsvp := &model.RSVP{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", Status: model.RSVPStatusConfirmed, EventID: event.ID}
	return event, owner, rsvp
}

func TestRSVPCreated(t *testing.T) {
	event, owner, rsvp := fixtures()

	rows, err := RSVPCreated(event, owner, rsvp)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, model.NotificationRSVPCreatedAttendee, rows[0].Kind)
	assert.Equal(t, "ada@example.com", rows[0].Recipient)
	assert.Equal(t, "RSVP Confirmation - Go Meetup", rows[0].Subject)
	assert.Contains(t, rows[0].Body, "Hi Ada,")
	assert.Contains(t, rows[0].Body, "Location: Berlin")
	assert.Contains(t, rows[0].Body, "EventEase Team")

	assert.Equal(t, model.NotificationRSVPCreatedOwner, rows[1].Kind)
	assert.Equal(t, "owner@example.com", rows[1].Recipient)
	assert.Equal(t, "New RSVP - Go Meetup", rows[1].Subject)
	assert.Contains(t, rows[1].Body, "Email: ada@example.com")

	for _, row := range rows {
		assert.Equal(t, rsvp.ID.String(), row.AggregateID)
		p, err := DecodePayload([]byte(row.Payload))
		require.NoError(t, err)
		assert.Equal(t, event.ID.String(), p.EventID)
		assert.Equal(t, model.RSVPStatusConfirmed, p.Status)
	}
}

func TestRSVPStatusChanged(t *testing.T) {
	event, owner, rsvp := fixtures()

	tests := []struct {
		status  model.RSVPStatus
		subject string
		detail  string
	}{
		{model.RSVPStatusConfirmed, "RSVP confirmed - Go Meetup", "We look forward to seeing you there!"},
		{model.RSVPStatusCancelled, "RSVP cancelled - Go Meetup", "Thank you for your interest in the event."},
		{model.RSVPStatusPending, "RSVP cancelled - Go Meetup", "Thank you for your interest in the event."},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			rsvp.Status = tt.status
			rows, err := RSVPStatusChanged(event, owner, rsvp)
			require.NoError(t, err)
			require.Len(t, rows, 2)

			assert.Equal(t, tt.subject, rows[0].Subject)
			assert.Equal(t, tt.subject, rows[1].Subject)
			assert.Contains(t, rows[0].Body, tt.detail)
			assert.Equal(t, model.NotificationRSVPStatusOwner, rows[1].Kind)
		})
	}
}

func seedOutbox(t *testing.T, store repository.Store, n int) {
	t.Helper()
	event, owner, rsvp := fixtures()
	for i := 0; i < n; i++ {
		rows, err := RSVPCreated(event, owner, rsvp)
		require.NoError(t, err)
		require.NoError(t, store.Outbox().Create(context.Background(), rows[:1]))
	}
}

func TestRelayer_DrainOnce_MarksSent(t *testing.T) {
	store := repository.NewStore(testutil.NewDB(t))
	seedOutbox(t, store, 3)

	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.AnythingOfType("notify.Message")).Return(nil)

	r := NewRelayer(store.Outbox(), sender, 10, time.Second, 3)
	assert.Equal(t, 3, r.DrainOnce(context.Background()))

	sent, err := store.Outbox().CountByStatus(context.Background(), model.OutboxStatusSent)
	require.NoError(t, err)
	assert.EqualValues(t, 3, sent)

	// Nothing left to deliver.
	assert.Equal(t, 0, r.DrainOnce(context.Background()))
	sender.AssertNumberOfCalls(t, "Send", 3)
}

func TestRelayer_DrainOnce_RetriesUntilMax(t *testing.T) {
	store := repository.NewStore(testutil.NewDB(t))
	seedOutbox(t, store, 1)

	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return(goerrors.New("smtp down"))

	r := NewRelayer(store.Outbox(), sender, 10, time.Second, 2)
	ctx := context.Background()
	assert.Equal(t, 0, r.DrainOnce(ctx))
	assert.Equal(t, 0, r.DrainOnce(ctx))
	assert.Equal(t, 0, r.DrainOnce(ctx))

	// Two attempts, then the row is parked as failed.
	sender.AssertNumberOfCalls(t, "Send", 2)
	failed, err := store.Outbox().CountByStatus(ctx, model.OutboxStatusFailed)
	require.NoError(t, err)
	assert.EqualValues(t, 1, failed)
}

func TestRelayer_ServeStopsOnCancel(t *testing.T) {
	store := repository.NewStore(testutil.NewDB(t))
	r := NewRelayer(store.Outbox(), LogSender{}, 10, 10*time.Millisecond, 3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("relayer did not stop")
	}
}

func TestBreakerSender_OpensAfterFailures(t *testing.T) {
	next := new(MockSender)
	next.On("Send", mock.Anything, mock.Anything).Return(goerrors.New("broker unavailable"))

	b := NewBreakerSender("test", next, 2, time.Minute)
	ctx := context.Background()

	assert.Error(t, b.Send(ctx, Message{}))
	assert.Error(t, b.Send(ctx, Message{}))
	assert.Equal(t, "open", b.State())

	// Open breaker fails fast without calling the transport.
	assert.Error(t, b.Send(ctx, Message{}))
	next.AssertNumberOfCalls(t, "Send", 2)
}

func TestRelayer_DrainOnce_OpenBreakerKeepsRows(t *testing.T) {
	store := repository.NewStore(testutil.NewDB(t))
	seedOutbox(t, store, 20)
	ctx := context.Background()

	transport := new(MockSender)
	transport.On("Send", mock.Anything, mock.Anything).Return(goerrors.New("smtp down")).Times(5)
	transport.On("Send", mock.Anything, mock.Anything).Return(nil)

	breaker := NewBreakerSender("test", transport, 5, 50*time.Millisecond)
	r := NewRelayer(store.Outbox(), breaker, 50, time.Second, 10)

	// Five real failures trip the breaker; every later tick is rejected
	// before reaching the transport and must not use up retries.
	for i := 0; i < 10; i++ {
		assert.Equal(t, 0, r.DrainOnce(ctx))
	}
	transport.AssertNumberOfCalls(t, "Send", 5)
	assert.Equal(t, "open", breaker.State())

	rows, err := store.Outbox().ListDeliverable(ctx, 50, 10)
	require.NoError(t, err)
	require.Len(t, rows, 20)
	for _, row := range rows {
		assert.LessOrEqual(t, row.Attempts, 1)
	}

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 20, r.DrainOnce(ctx))

	sent, err := store.Outbox().CountByStatus(ctx, model.OutboxStatusSent)
	require.NoError(t, err)
	assert.EqualValues(t, 20, sent)
}

func TestNewSender(t *testing.T) {
	s, closeFn, err := NewSender(config.NotifyConfig{Transport: "log"})
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, s)
	assert.NoError(t, closeFn())

	s, closeFn, err = NewSender(config.NotifyConfig{Transport: "kafka", KafkaBrokers: []string{"127.0.0.1:9092"}, KafkaTopic: "rsvp", BreakerTimeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &BreakerSender{}, s)
	assert.NoError(t, closeFn())

	_, _, err = NewSender(config.NotifyConfig{Transport: "smtp"})
	assert.Error(t, err)

	_, _, err = NewSender(config.NotifyConfig{Transport: "pigeon"})
	assert.Error(t, err)
}
