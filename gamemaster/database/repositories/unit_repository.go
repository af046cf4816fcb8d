package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/uptrace/bun"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

const unitCacheSize = 512

// UnitRepository serves the shared unit catalog. Masters change rarely, so
// id lookups go through a small LRU.
type UnitRepository interface {
	GetByID(ctx context.Context, unitID int) (*models.Unit, error)
	GetByIDs(ctx context.Context, unitIDs []int) ([]*models.Unit, error)
	GetByName(ctx context.Context, name string) (*models.Unit, error)
	GetAll(ctx context.Context) ([]*models.Unit, error)
	GetAllRecruitable(ctx context.Context) ([]*models.Unit, error)
	GetHumans(ctx context.Context) ([]*models.Unit, error)
}

type unitRepository struct {
	db    *bun.DB
	cache *lru.Cache
}

func NewUnitRepository(db *bun.DB) UnitRepository {
	cache, _ := lru.New(unitCacheSize)
	return &unitRepository{db: db, cache: cache}
}

func (r *unitRepository) GetByID(ctx context.Context, unitID int) (*models.Unit, error) {
	if cached, ok := r.cache.Get(unitID); ok {
		return cached.(*models.Unit), nil
	}

	unit := new(models.Unit)
	err := r.db.NewSelect().
		Model(unit).
		Where("unit_id = ?", unitID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("unit %d not found", unitID)
		}
		return nil, err
	}

	r.cache.Add(unitID, unit)
	return unit, nil
}

func (r *unitRepository) GetByIDs(ctx context.Context, unitIDs []int) ([]*models.Unit, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}

	units := make([]*models.Unit, 0, len(unitIDs))
	var missing []int
	for _, id := range unitIDs {
		if cached, ok := r.cache.Get(id); ok {
			units = append(units, cached.(*models.Unit))
		} else {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		var fetched []*models.Unit
		err := r.db.NewSelect().
			Model(&fetched).
			Where("unit_id IN (?)", bun.In(missing)).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load units: %w", err)
		}
		for _, u := range fetched {
			r.cache.Add(u.UnitID, u)
		}
		units = append(units, fetched...)
	}

	// Preserve the caller's order; rotation order is meaningful.
	byID := make(map[int]*models.Unit, len(units))
	for _, u := range units {
		byID[u.UnitID] = u
	}
	ordered := make([]*models.Unit, 0, len(unitIDs))
	for _, id := range unitIDs {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}

func (r *unitRepository) GetByName(ctx context.Context, name string) (*models.Unit, error) {
	unit := new(models.Unit)
	err := r.db.NewSelect().
		Model(unit).
		Where("LOWER(name) = LOWER(?)", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("unit %q not found", name)
		}
		return nil, err
	}
	return unit, nil
}

func (r *unitRepository) GetAll(ctx context.Context) ([]*models.Unit, error) {
	var units []*models.Unit
	err := r.db.NewSelect().
		Model(&units).
		Order("unit_id ASC").
		Scan(ctx)
	return units, err
}

func (r *unitRepository) GetAllRecruitable(ctx context.Context) ([]*models.Unit, error) {
	var units []*models.Unit
	err := r.db.NewSelect().
		Model(&units).
		Where("is_recruitable = TRUE").
		Order("unit_id ASC").
		Scan(ctx)
	return units, err
}

func (r *unitRepository) GetHumans(ctx context.Context) ([]*models.Unit, error) {
	var units []*models.Unit
	err := r.db.NewSelect().
		Model(&units).
		Where("kind = ?", models.KindHuman).
		Order("unit_id ASC").
		Scan(ctx)
	return units, err
}
