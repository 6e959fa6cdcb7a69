package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Preload("Sbu").First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (r *UserRepository) List(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	var users []domain.User
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.User{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("display_name ASC").Find(&users).Error

	return users, total, err
}

// ListActiveByRole returns active users holding the given role
func (r *UserRepository) ListActiveByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND active = ?", role, true).
		Find(&users).Error
	return users, err
}

// GetSbuHead returns the head user of an SBU, if one is set
func (r *UserRepository) GetSbuHead(ctx context.Context, sbuID uuid.UUID) (*domain.User, error) {
	var sbu domain.SBU
	if err := r.db.WithContext(ctx).First(&sbu, "id = ?", sbuID).Error; err != nil {
		return nil, err
	}
	if sbu.HeadUserID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, *sbu.HeadUserID)
}
