package merchants

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealora/mealora-backend/pkg/db/models"
)

// Repository manages persistence for merchant accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, account *models.MerchantAccount) error
	GetByRestaurantID(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error)
	Update(ctx context.Context, account *models.MerchantAccount) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a merchant account repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, account *models.MerchantAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) GetByRestaurantID(ctx context.Context, restaurantID uuid.UUID) (*models.MerchantAccount, error) {
	var account models.MerchantAccount
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *repository) Update(ctx context.Context, account *models.MerchantAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}
