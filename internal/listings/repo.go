package listings

import (
	"context"
	"errors"

	"github.com/campuspool/campuspool-backend/pkg/db/models"
	"github.com/campuspool/campuspool-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the persistence contract the service drives. The conditional
// update is the only mutation path for membership state.
type Repository interface {
	Create(ctx context.Context, l *models.Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	ConditionalUpdate(ctx context.Context, l *models.Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByOwner(ctx context.Context, ownerID uuid.UUID, kind enums.ListingKind, excludeID uuid.UUID) (*models.Listing, error)
	ListByKind(ctx context.Context, kind enums.ListingKind) ([]*models.Listing, error)
}

type gormRepository struct {
	db *gorm.DB
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// NewRepository constructs a listings repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, l *models.Listing) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var l models.Listing
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// mutableColumns are the only fields the engine is allowed to change after
// insert. Everything else is immutable listing identity.
var mutableColumns = []string{
	"owner_id",
	"owner_name",
	"owner_verified",
	"available_seats",
	"members",
	"contributions",
	"version",
}

// ConditionalUpdate persists l's mutable state if and only if the stored row
// still carries l.Version. On success l.Version is advanced; a stale version
// yields ErrVersionConflict, a vanished row gorm.ErrRecordNotFound.
func (r *gormRepository) ConditionalUpdate(ctx context.Context, l *models.Listing) error {
	expected := l.Version

	next := *l
	next.Version = expected + 1

	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND version = ?", l.ID, expected).
		Select(mutableColumns).
		Updates(&next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.Listing{}).
			Where("id = ?", l.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrVersionConflict
	}

	l.Version = expected + 1
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Listing{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByOwner returns the caller's other listing of the same kind, or nil
// when they own none.
func (r *gormRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, kind enums.ListingKind, excludeID uuid.UUID) (*models.Listing, error) {
	var l models.Listing
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND kind = ?", ownerID, kind).
		Where("id <> ?", excludeID).
		Order("created_at DESC").
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *gormRepository) ListByKind(ctx context.Context, kind enums.ListingKind) ([]*models.Listing, error) {
	var out []*models.Listing
	err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
