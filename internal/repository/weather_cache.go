package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/momager/momager-core/internal/apperror"
	"github.com/momager/momager-core/internal/model"
)

type WeatherCacheRepository interface {
	Create(ctx context.Context, entry *model.WeatherCache) error
	ByCoordinates(ctx context.Context, lat, lon string) (*model.WeatherCache, error)
	ByCityState(ctx context.Context, city, state string) (*model.WeatherCache, error)
	Delete(ctx context.Context, id string) error
}

type weatherCacheRepository struct {
	table *table[model.WeatherCache]
}

func NewWeatherCacheRepository(db *sqlx.DB) WeatherCacheRepository {
	return &weatherCacheRepository{
		table: newTable[model.WeatherCache](db, "weather_caches",
			columns("id", "city", "state", "lat", "lon", "fetched_at"),
			columns("data", "fetched_at"),
		),
	}
}

func (r *weatherCacheRepository) Create(ctx context.Context, entry *model.WeatherCache) error {
	if entry.ID == "" || len(entry.Data) == 0 {
		return apperror.External("Weather data is required to create a cache entry")
	}
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now()
	}
	entry.FetchedAt = timestamp(entry.FetchedAt)

	return r.table.insert(ctx, map[string]any{
		"id":         entry.ID,
		"city":       entry.City,
		"state":      entry.State,
		"lat":        entry.Lat,
		"lon":        entry.Lon,
		"data":       entry.Data,
		"fetched_at": entry.FetchedAt,
	})
}

func (r *weatherCacheRepository) ByCoordinates(ctx context.Context, lat, lon string) (*model.WeatherCache, error) {
	return r.table.queryOneWhere(ctx, "fetched_at DESC", eq("lat", lat), eq("lon", lon))
}

func (r *weatherCacheRepository) ByCityState(ctx context.Context, city, state string) (*model.WeatherCache, error) {
	return r.table.queryOneWhere(ctx, "fetched_at DESC", eq("city", city), eq("state", state))
}

func (r *weatherCacheRepository) Delete(ctx context.Context, id string) error {
	return r.table.delete(ctx, id)
}
