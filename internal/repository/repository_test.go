package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"eventease/internal/model"
	"eventease/internal/testutil"
)

func seedUser(t *testing.T, s Store, id string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{ID: id, Email: id + "@example.com", Name: id, Role: role}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func seedEvent(t *testing.T, s Store, ownerID string, capacity *int) *model.Event {
	t.Helper()
	e := &model.Event{
		Title:       "Go Meetup",
		Description: "Talks",
		Date:        time.Now().Add(48 * time.Hour),
		Location:    "Berlin",
		Capacity:    capacity,
		OwnerID:     ownerID,
		Status:      model.EventStatusPendingReview,
	}
	require.NoError(t, s.Events().Create(context.Background(), e))
	return e
}

func TestRSVPRepository_UniqueEventEmail(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.NewDB(t))
	owner := seedUser(t, s, "owner", model.RoleEventOwner)
	event := seedEvent(t, s, owner.ID, nil)

	require.NoError(t, s.RSVPs().Create(ctx, &model.RSVP{Name: "A", Email: "a@x.io", EventID: event.ID, Status: model.RSVPStatusConfirmed}))
	err := s.RSVPs().Create(ctx, &model.RSVP{Name: "A2", Email: "a@x.io", EventID: event.ID, Status: model.RSVPStatusConfirmed})

	require.Error(t, err)

	n, err := s.RSVPs().CountByStatus(ctx, event.ID, model.RSVPStatusConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRSVPRepository_Counts(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.NewDB(t))
	owner := seedUser(t, s, "owner", model.RoleEventOwner)
	e1 := seedEvent(t, s, owner.ID, nil)
	e2 := seedEvent(t, s, owner.ID, nil)

	for i, st := range []model.RSVPStatus{model.RSVPStatusConfirmed, model.RSVPStatusConfirmed, model.RSVPStatusCancelled} {
		require.NoError(t, s.RSVPs().Create(ctx, &model.RSVP{
			Name: "guest", Email: uuid.NewString() + "@x.io", EventID: e1.ID, Status: st,
		}), i)
	}

	confirmed, err := s.RSVPs().CountByStatus(ctx, e1.ID, model.RSVPStatusConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 2, confirmed)

	counts, err := s.RSVPs().CountByEvents(ctx, []uuid.UUID{e1.ID, e2.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts[e1.ID])
	assert.EqualValues(t, 0, counts[e2.ID])
}

func TestEventRepository_FindDetailAndList(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.NewDB(t))
	owner := seedUser(t, s, "owner", model.RoleEventOwner)
	event := seedEvent(t, s, owner.ID, nil)
	require.NoError(t, s.RSVPs().Create(ctx, &model.RSVP{Name: "A", Email: "a@x.io", EventID: event.ID, Status: model.RSVPStatusConfirmed}))

	detail, err := s.Events().FindDetail(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Owner)
	assert.Equal(t, owner.Email, detail.Owner.Email)
	assert.Len(t, detail.RSVPs, 1)

	pending, err := s.Events().List(ctx, EventFilter{Status: model.EventStatusPendingReview})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	approved, err := s.Events().List(ctx, EventFilter{Status: model.EventStatusApproved})
	require.NoError(t, err)
	assert.Empty(t, approved)

	_, err = s.Events().FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, s.Events().UpdateStatus(ctx, uuid.New(), model.EventStatusApproved), gorm.ErrRecordNotFound)
}

func TestEventRepository_FindByIDForUpdateInsideTransaction(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.NewDB(t))
	owner := seedUser(t, s, "owner", model.RoleEventOwner)
	event := seedEvent(t, s, owner.ID, nil)

	err := s.WithTransaction(ctx, func(ctx context.Context, tx Store) error {
		locked, err := tx.Events().FindByIDForUpdate(ctx, event.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, event.ID, locked.ID)
		return nil
	})
	require.NoError(t, err)
}

// dryRunMySQL builds statements with the MySQL dialect without connecting and
// returns a pointer to the last query it rendered.
func dryRunMySQL(t *testing.T) (*gorm.DB, *string) {
	t.Helper()
	gdb, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "eventease:secret@tcp(127.0.0.1:3306)/eventease?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var last string
	require.NoError(t, gdb.Callback().Query().After("gorm:query").Register("test:capture_sql", func(db *gorm.DB) {
		last = db.Statement.SQL.String()
	}))
	return gdb, &last
}

// SQLite drops FOR UPDATE, so the lock is checked on the rendered MySQL query.
func TestFindByIDForUpdate_LocksRow(t *testing.T) {
	ctx := context.Background()
	gdb, last := dryRunMySQL(t)
	s := NewStore(gdb)

	_, _ = s.Events().FindByIDForUpdate(ctx, uuid.New())
	assert.Contains(t, *last, "FROM `events`")
	assert.True(t, strings.HasSuffix(*last, "FOR UPDATE"), *last)

	_, _ = s.Reports().FindByIDForUpdate(ctx, uuid.New())
	assert.Contains(t, *last, "FROM `reports`")
	assert.True(t, strings.HasSuffix(*last, "FOR UPDATE"), *last)

	_, _ = s.Events().FindByID(ctx, uuid.New())
	assert.NotContains(t, *last, "FOR UPDATE")
}

func TestStore_WithTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.NewDB(t))
	boom := errors.New("boom")

	err := s.WithTransaction(ctx, func(ctx context.Context, tx Store) error {
		if err := tx.Users().Create(ctx, &model.User{ID: "u1", Email: "u1@x.io", Name: "U1", Role: model.RoleStaff}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := s.Users().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCommentRepository_ListFlagged(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.NewDB(t))
	owner := seedUser(t, s, "owner", model.RoleEventOwner)
	event := seedEvent(t, s, owner.ID, nil)

	flagged := &model.Comment{Content: "spam", EventID: event.ID, AuthorID: owner.ID}
	clean := &model.Comment{Content: "nice", EventID: event.ID, AuthorID: owner.ID}
	hidden := &model.Comment{Content: "gone", EventID: event.ID, AuthorID: owner.ID}
	for _, c := range []*model.Comment{flagged, clean, hidden} {
		require.NoError(t, s.Comments().Create(ctx, c))
	}
	require.NoError(t, s.Comments().SetHidden(ctx, hidden.ID, true))

	for _, id := range []uuid.UUID{flagged.ID, hidden.ID} {
		cid := id
		require.NoError(t, s.Reports().Create(ctx, &model.Report{
			Reason: "bad", Status: model.ReportStatusPending, ReporterID: owner.ID, CommentID: &cid,
		}))
	}

	list, err := s.Comments().ListFlagged(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, flagged.ID, list[0].ID)

	visible, err := s.Comments().ListVisibleByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestReportRepository_DeleteByTargets(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.NewDB(t))
	owner := seedUser(t, s, "owner", model.RoleEventOwner)
	e1 := seedEvent(t, s, owner.ID, nil)
	e2 := seedEvent(t, s, owner.ID, nil)
	comment := &model.Comment{Content: "x", EventID: e2.ID, AuthorID: owner.ID}
	require.NoError(t, s.Comments().Create(ctx, comment))

	e1ID, e2ID, cID := e1.ID, e2.ID, comment.ID
	for _, r := range []*model.Report{
		{Reason: "a", Status: model.ReportStatusPending, ReporterID: owner.ID, EventID: &e1ID},
		{Reason: "b", Status: model.ReportStatusPending, ReporterID: owner.ID, EventID: &e2ID},
		{Reason: "c", Status: model.ReportStatusPending, ReporterID: owner.ID, CommentID: &cID},
	} {
		require.NoError(t, s.Reports().Create(ctx, r))
	}

	require.NoError(t, s.Reports().DeleteByTargets(ctx, []uuid.UUID{e1.ID}, []uuid.UUID{comment.ID}))

	left, err := s.Reports().ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.NotNil(t, left[0].EventID)
	assert.Equal(t, e2.ID, *left[0].EventID)
	require.NotNil(t, left[0].Reporter)
	assert.Equal(t, owner.ID, left[0].Reporter.ID)
}

func TestOutboxRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.NewDB(t))

	rows := []model.NotificationOutbox{
		{Kind: model.NotificationRSVPCreatedAttendee, AggregateID: "r1", Recipient: "a@x.io", Subject: "s", Body: "b", Payload: "{}"},
		{Kind: model.NotificationRSVPCreatedOwner, AggregateID: "r1", Recipient: "o@x.io", Subject: "s", Body: "b", Payload: "{}"},
	}
	require.NoError(t, s.Outbox().Create(ctx, rows))

	list, err := s.Outbox().ListDeliverable(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, s.Outbox().MarkSent(ctx, list[0].ID))
	require.NoError(t, s.Outbox().MarkFailed(ctx, list[1].ID, "smtp down"))

	list, err = s.Outbox().ListDeliverable(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Attempts)
	assert.Equal(t, "smtp down", list[0].LastError)

	require.NoError(t, s.Outbox().MarkFailed(ctx, list[0].ID, "smtp down"))
	list, err = s.Outbox().ListDeliverable(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, list)

	sent, err := s.Outbox().CountByStatus(ctx, model.OutboxStatusSent)
	require.NoError(t, err)
	assert.EqualValues(t, 1, sent)
}

func TestOutboxRepository_ListDeliverablePendingFirst(t *testing.T) {
	ctx := context.Background()
	outbox := NewOutboxRepository(testutil.NewDB(t))

	row := func(id string) model.NotificationOutbox {
		return model.NotificationOutbox{Kind: model.NotificationRSVPCreatedAttendee, AggregateID: id, Recipient: "a@x.io", Subject: "s", Body: "b", Payload: "{}"}
	}
	require.NoError(t, outbox.Create(ctx, []model.NotificationOutbox{row("old-1"), row("old-2"), row("old-3")}))
	backlog, err := outbox.ListDeliverable(ctx, 10, 5)
	require.NoError(t, err)
	for _, r := range backlog {
		require.NoError(t, outbox.MarkFailed(ctx, r.ID, "smtp down"))
	}
	require.NoError(t, outbox.Create(ctx, []model.NotificationOutbox{row("new")}))

	list, err := outbox.ListDeliverable(ctx, 2, 5)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].AggregateID)
	assert.Equal(t, model.OutboxStatusPending, list[0].Status)
	assert.Equal(t, "old-1", list[1].AggregateID)
}

func TestUserRepository_ListNewestFirstAndUpdateRole(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.NewDB(t))

	older := &model.User{ID: "old", Email: "old@x.io", Name: "Old", Role: model.RoleEventOwner, CreatedAt: time.Now().Add(-time.Hour)}
	newer := &model.User{ID: "new", Email: "new@x.io", Name: "New", Role: model.RoleEventOwner, CreatedAt: time.Now()}
	require.NoError(t, s.Users().Create(ctx, older))
	require.NoError(t, s.Users().Create(ctx, newer))

	users, err := s.Users().List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "new", users[0].ID)

	require.NoError(t, s.Users().UpdateRole(ctx, "old", model.RoleStaff))
	got, err := s.Users().FindByID(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, got.Role)

	assert.ErrorIs(t, s.Users().UpdateRole(ctx, "missing", model.RoleStaff), gorm.ErrRecordNotFound)
}
