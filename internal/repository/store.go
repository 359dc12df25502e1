package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one connection, so a caller can
// run several of them inside a single transaction.
type Store interface {
	Users() UserRepository
	Credentials() CredentialRepository
	Events() EventRepository
	RSVPs() RSVPRepository
	Comments() CommentRepository
	Reports() ReportRepository
	Outbox() OutboxRepository
	// WithTransaction executes fn with a Store bound to one database transaction.
	// Returning an error from fn rolls every write back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type store struct {
	db *gorm.DB
}

// NewStore creates a Store over db.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Users() UserRepository             { return NewUserRepository(s.db) }
func (s *store) Credentials() CredentialRepository { return NewCredentialRepository(s.db) }
func (s *store) Events() EventRepository           { return NewEventRepository(s.db) }
func (s *store) RSVPs() RSVPRepository             { return NewRSVPRepository(s.db) }
func (s *store) Comments() CommentRepository       { return NewCommentRepository(s.db) }
func (s *store) Reports() ReportRepository         { return NewReportRepository(s.db) }
func (s *store) Outbox() OutboxRepository          { return NewOutboxRepository(s.db) }

// WithTransaction executes a function within a database transaction.
func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &store{db: tx})
	})
}
