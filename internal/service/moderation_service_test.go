package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventease/internal/errors"
	"eventease/internal/model"
)

func TestModerationService_ResolveCommentReportHidesComment(t *testing.T) {
	f := newFixture(t)
	f.user(t, "owner", model.RoleEventOwner)
	reporter := f.user(t, "reporter", model.RoleEventOwner)
	staff := f.user(t, "staff", model.RoleStaff)
	e := f.event(t, "owner", nil)
	ctx := context.Background()

	comments := NewCommentService(f.store)
	c, err := comments.Create(ctx, reporter, e.ID, "buy cheap watches")
	require.NoError(t, err)
	report, err := comments.Report(ctx, reporter, "spam", nil, &c.ID)
	require.NoError(t, err)

	svc := NewModerationService(f.store, f.enforcer)
	updated, err := svc.UpdateReport(ctx, staff, report.ID, model.ReportStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusResolved, updated.Status)

	got, err := f.store.Comments().FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsHidden)

	visible, err := comments.ListVisible(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestModerationService_ResolveEventReportRejectsEvent(t *testing.T) {
	f := newFixture(t)
	f.user(t, "owner", model.RoleEventOwner)
	reporter := f.user(t, "reporter", model.RoleEventOwner)
	staff := f.user(t, "staff", model.RoleStaff)
	e := f.event(t, "owner", nil)
	ctx := context.Background()

	svc := NewModerationService(f.store, f.enforcer)
	_, err := svc.ModerateEvent(ctx, staff, e.ID, model.EventStatusApproved)
	require.NoError(t, err)

	report, err := NewCommentService(f.store).Report(ctx, reporter, "scam", &e.ID, nil)
	require.NoError(t, err)

	_, err = svc.UpdateReport(ctx, staff, report.ID, model.ReportStatusResolved)
	require.NoError(t, err)

	got, err := f.store.Events().FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusRejected, got.Status)
}

func TestModerationService_DismissLeavesTarget(t *testing.T) {
	f := newFixture(t)
	f.user(t, "owner", model.RoleEventOwner)
	reporter := f.user(t, "reporter", model.RoleEventOwner)
	staff := f.user(t, "staff", model.RoleStaff)
	e := f.event(t, "owner", nil)
	ctx := context.Background()

	report, err := NewCommentService(f.store).Report(ctx, reporter, "meh", &e.ID, nil)
	require.NoError(t, err)

	svc := NewModerationService(f.store, f.enforcer)
	_, err = svc.UpdateReport(ctx, staff, report.ID, model.ReportStatusDismissed)
	require.NoError(t, err)

	got, err := f.store.Events().FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusPendingReview, got.Status)

	// Closed reports stay closed.
	_, err = svc.UpdateReport(ctx, staff, report.ID, model.ReportStatusResolved)
	assert.ErrorIs(t, err, errors.ErrInvalidStatus)
}

func TestModerationService_UpdateReportValidation(t *testing.T) {
	f := newFixture(t)
	staff := f.user(t, "staff", model.RoleStaff)
	svc := NewModerationService(f.store, f.enforcer)
	ctx := context.Background()

	_, err := svc.UpdateReport(ctx, staff, uuid.New(), model.ReportStatusPending)
	assert.ErrorIs(t, err, errors.ErrInvalidStatus)

	_, err = svc.UpdateReport(ctx, staff, uuid.New(), model.ReportStatusResolved)
	assert.ErrorIs(t, err, errors.ErrReportNotFound)
}

func TestModerationService_ModerateEvent(t *testing.T) {
	f := newFixture(t)
	f.user(t, "owner", model.RoleEventOwner)
	staff := f.user(t, "staff", model.RoleStaff)
	e := f.event(t, "owner", nil)
	svc := NewModerationService(f.store, f.enforcer)
	ctx := context.Background()

	_, err := svc.ModerateEvent(ctx, staff, e.ID, model.EventStatusPendingReview)
	assert.ErrorIs(t, err, errors.ErrInvalidStatus)

	got, err := svc.ModerateEvent(ctx, staff, e.ID, model.EventStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusRejected, got.Status)

	// No reverse transitions.
	_, err = svc.ModerateEvent(ctx, staff, e.ID, model.EventStatusApproved)
	assert.ErrorIs(t, err, errors.ErrInvalidStatus)

	_, err = svc.ModerateEvent(ctx, staff, uuid.New(), model.EventStatusApproved)
	assert.ErrorIs(t, err, errors.ErrEventNotFound)
}

func TestModerationService_RequiresStaff(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner", model.RoleEventOwner)
	admin := f.user(t, "admin", model.RoleAdmin)
	e := f.event(t, "owner", nil)
	svc := NewModerationService(f.store, f.enforcer)
	ctx := context.Background()

	_, err := svc.ModerateEvent(ctx, admin, e.ID, model.EventStatusApproved)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	_, err = svc.PendingEvents(ctx, nil)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	_, err = svc.HideComment(ctx, admin, uuid.New())
	assert.ErrorIs(t, err, errors.ErrForbidden)

	_, err = svc.PendingReports(ctx, owner)
	assert.ErrorIs(t, err, errors.ErrForbidden)
}

func TestModerationService_Queues(t *testing.T) {
	f := newFixture(t)
	f.user(t, "owner", model.RoleEventOwner)
	reporter := f.user(t, "reporter", model.RoleEventOwner)
	staff := f.user(t, "staff", model.RoleStaff)
	pending := f.event(t, "owner", nil)
	approved := f.event(t, "owner", nil)
	ctx := context.Background()

	svc := NewModerationService(f.store, f.enforcer)
	_, err := svc.ModerateEvent(ctx, staff, approved.ID, model.EventStatusApproved)
	require.NoError(t, err)

	_, err = NewRSVPService(f.store, f.enforcer).Create(ctx, pending.ID, "A", "a@example.com")
	require.NoError(t, err)

	comments := NewCommentService(f.store)
	flagged, err := comments.Create(ctx, reporter, approved.ID, "rude")
	require.NoError(t, err)
	_, err = comments.Create(ctx, reporter, approved.ID, "nice")
	require.NoError(t, err)
	_, err = comments.Report(ctx, reporter, "rude", nil, &flagged.ID)
	require.NoError(t, err)

	events, err := svc.PendingEvents(ctx, staff)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, pending.ID, events[0].ID)
	assert.EqualValues(t, 1, events[0].RSVPCount)

	flaggedList, err := svc.FlaggedComments(ctx, staff)
	require.NoError(t, err)
	require.Len(t, flaggedList, 1)
	assert.Equal(t, flagged.ID, flaggedList[0].ID)

	reports, err := svc.PendingReports(ctx, staff)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.NotNil(t, reports[0].Reporter)
	assert.Equal(t, "reporter", reports[0].Reporter.ID)

	hidden, err := svc.HideComment(ctx, staff, flagged.ID)
	require.NoError(t, err)
	assert.True(t, hidden.IsHidden)

	flaggedList, err = svc.FlaggedComments(ctx, staff)
	require.NoError(t, err)
	assert.Empty(t, flaggedList)
}

func TestCommentService_ReportTargets(t *testing.T) {
	f := newFixture(t)
	f.user(t, "owner", model.RoleEventOwner)
	reporter := f.user(t, "reporter", model.RoleEventOwner)
	e := f.event(t, "owner", nil)
	svc := NewCommentService(f.store)
	ctx := context.Background()
	missing := uuid.New()

	_, err := svc.Report(ctx, reporter, "x", nil, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidReportTarget)

	_, err = svc.Report(ctx, reporter, "x", &e.ID, &missing)
	assert.ErrorIs(t, err, errors.ErrInvalidReportTarget)

	_, err = svc.Report(ctx, reporter, "", &e.ID, nil)
	assert.ErrorIs(t, err, errors.ErrMissingFields)

	_, err = svc.Report(ctx, reporter, "x", &missing, nil)
	assert.ErrorIs(t, err, errors.ErrEventNotFound)

	_, err = svc.Report(ctx, reporter, "x", nil, &missing)
	assert.ErrorIs(t, err, errors.ErrCommentNotFound)

	_, err = svc.Report(ctx, nil, "x", &e.ID, nil)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)
}
