package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"eventease/internal/auth"
	"eventease/internal/authz"
	"eventease/internal/cache"
	"eventease/internal/errors"
	"eventease/internal/logging"
	"eventease/internal/model"
	"eventease/internal/repository"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = 30 * time.Second
	statsLatest   = 5
	statsMonths   = 6
)

// LatestEvent is a recently created event in the admin dashboard.
type LatestEvent struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	Date      time.Time         `json:"date"`
	Status    model.EventStatus `json:"status"`
	Organizer string            `json:"organizer"`
	CreatedAt time.Time         `json:"createdAt"`
}

// LatestUser is a recently registered user in the admin dashboard.
type LatestUser struct {
	model.UserSummary
	CreatedAt time.Time `json:"createdAt"`
}

// MonthCount is the number of events created in one calendar month (YYYY-MM).
type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers    int64         `json:"totalUsers"`
	TotalEvents   int64         `json:"totalEvents"`
	TotalRSVPs    int64         `json:"totalRsvps"`
	LatestUsers   []LatestUser  `json:"latestUsers"`
	LatestEvents  []LatestEvent `json:"latestEvents"`
	EventsByMonth []MonthCount  `json:"eventsByMonth"`
}

// AdminService holds user management and dashboard operations.
type AdminService interface {
	Stats(ctx context.Context, caller *auth.Session) (*Stats, error)
	ListUsers(ctx context.Context, caller *auth.Session) ([]model.User, error)
	UpdateRole(ctx context.Context, caller *auth.Session, id string, role model.Role) (*model.User, error)
	DeleteUser(ctx context.Context, caller *auth.Session, id string) error
}

type adminService struct {
	store      repository.Store
	idp        auth.IdentityProvider
	authorizer authz.Authorizer
	cache      *cache.Client
	now        func() time.Time
}

// NewAdminService creates a new admin service. A nil cache disables stats caching.
func NewAdminService(store repository.Store, idp auth.IdentityProvider, authorizer authz.Authorizer, cache *cache.Client) AdminService {
	return &adminService{
		store:      store,
		idp:        idp,
		authorizer: authorizer,
		cache:      cache,
		now:        time.Now,
	}
}

func (s *adminService) authorize(caller *auth.Session) error {
	return authorize(s.authorizer, caller, authz.ObjectUsers, authz.ActionManage)
}

// Stats returns dashboard totals, served from redis for up to 30 seconds.
func (s *adminService) Stats(ctx context.Context, caller *auth.Session) (*Stats, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}

	if cached, _ := s.cache.Get(ctx, statsCacheKey); cached != nil {
		var stats Stats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
		logging.Ctx(ctx).Warn().Msg("discarding unreadable cached stats")
	}

	stats, err := s.computeStats(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(stats); err == nil {
		_ = s.cache.Set(ctx, statsCacheKey, raw, statsCacheTTL)
	}
	return stats, nil
}

func (s *adminService) computeStats(ctx context.Context) (*Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.TotalUsers, err = s.store.Users().Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if stats.TotalEvents, err = s.store.Events().Count(ctx); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	if stats.TotalRSVPs, err = s.store.RSVPs().Count(ctx); err != nil {
		return nil, fmt.Errorf("count rsvps: %w", err)
	}

	users, err := s.store.Users().Latest(ctx, statsLatest)
	if err != nil {
		return nil, fmt.Errorf("latest users: %w", err)
	}
	stats.LatestUsers = make([]LatestUser, len(users))
	for i := range users {
		stats.LatestUsers[i] = LatestUser{UserSummary: users[i].Summary(), CreatedAt: users[i].CreatedAt}
	}

	events, err := s.store.Events().Latest(ctx, statsLatest)
	if err != nil {
		return nil, fmt.Errorf("latest events: %w", err)
	}
	stats.LatestEvents = make([]LatestEvent, len(events))
	for i, e := range events {
		le := LatestEvent{ID: e.ID, Title: e.Title, Date: e.Date, Status: e.Status, CreatedAt: e.CreatedAt}
		if e.Owner != nil {
			le.Organizer = e.Owner.Name
		}
		stats.LatestEvents[i] = le
	}

	now := s.now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(statsMonths - 1), 0)
	created, err := s.store.Events().CreatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("events by month: %w", err)
	}
	stats.EventsByMonth = countByMonth(created)
	return &stats, nil
}

// countByMonth buckets times by UTC month, newest month first.
func countByMonth(times []time.Time) []MonthCount {
	counts := make(map[string]int64)
	for _, t := range times {
		counts[t.UTC().Format("2006-01")]++
	}
	out := make([]MonthCount, 0, len(counts))
	for month, n := range counts {
		out = append(out, MonthCount{Month: month, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out
}

func (s *adminService) ListUsers(ctx context.Context, caller *auth.Session) ([]model.User, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *adminService) UpdateRole(ctx context.Context, caller *auth.Session, id string, role model.Role) (*model.User, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, errors.ErrInvalidRole
	}
	if err := s.store.Users().UpdateRole(ctx, id, role); err != nil {
		return nil, notFound(err, errors.ErrUserNotFound, "update role")
	}
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound, "find user")
	}
	s.invalidateStats(ctx)
	logging.Ctx(ctx).Info().Str("user_id", id).Str("role", string(role)).Str("by", caller.UserID()).Msg("user role changed")
	return user, nil
}

// DeleteUser removes a user and everything they own in one transaction:
// their events with those events' RSVPs, comments and reports, then their
// own comments and reports, then the user row. The identity provider
// credential is removed once the transaction has committed.
func (s *adminService) DeleteUser(ctx context.Context, caller *auth.Session, id string) error {
	if err := s.authorize(caller); err != nil {
		return err
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Users().FindByID(ctx, id); err != nil {
			return notFound(err, errors.ErrUserNotFound, "find user")
		}

		eventIDs, err := tx.Events().IDsByOwner(ctx, id)
		if err != nil {
			return fmt.Errorf("list owned events: %w", err)
		}
		if err := deleteEvents(ctx, tx, eventIDs); err != nil {
			return err
		}

		commentIDs, err := tx.Comments().IDsByAuthor(ctx, id)
		if err != nil {
			return fmt.Errorf("list authored comments: %w", err)
		}
		if err := tx.Reports().DeleteByTargets(ctx, nil, commentIDs); err != nil {
			return fmt.Errorf("delete reports on authored comments: %w", err)
		}
		if err := tx.Comments().DeleteByIDs(ctx, commentIDs); err != nil {
			return fmt.Errorf("delete authored comments: %w", err)
		}
		if err := tx.Reports().DeleteByReporter(ctx, id); err != nil {
			return fmt.Errorf("delete filed reports: %w", err)
		}
		if err := tx.Users().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.idp.DeleteUser(ctx, id); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("user_id", id).Msg("failed to delete identity provider credential")
	}
	s.invalidateStats(ctx)
	logging.Ctx(ctx).Info().Str("user_id", id).Str("by", caller.UserID()).Msg("user deleted")
	return nil
}

func (s *adminService) invalidateStats(ctx context.Context) {
	_ = s.cache.Delete(ctx, statsCacheKey)
}
