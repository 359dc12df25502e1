package repository

import (
	"context"

	"gorm.io/gorm"

	"eventease/internal/model"
)

// CredentialRepository stores identity-provider credentials.
type CredentialRepository interface {
	Create(ctx context.Context, cred *model.Credential) error
	FindByEmail(ctx context.Context, email string) (*model.Credential, error)
	Delete(ctx context.Context, subject string) error
}

type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a new credential repository.
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, cred *model.Credential) error {
	return r.db.WithContext(ctx).Create(cred).Error
}

func (r *credentialRepository) FindByEmail(ctx context.Context, email string) (*model.Credential, error) {
	var cred model.Credential
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) Delete(ctx context.Context, subject string) error {
	return r.db.WithContext(ctx).Where("subject = ?", subject).Delete(&model.Credential{}).Error
}
