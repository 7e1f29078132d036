package model

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx/types"
)

type WeatherCache struct {
	ID        string         `db:"id"`
	City      sql.NullString `db:"city"`
	State     sql.NullString `db:"state"`
	Lat       sql.NullString `db:"lat"`
	Lon       sql.NullString `db:"lon"`
	Data      types.JSONText `db:"data"`
	FetchedAt time.Time      `db:"fetched_at"`
}

func (w *WeatherCache) IsStale(now time.Time, ttl time.Duration) bool {
	return now.Sub(w.FetchedAt) > ttl
}
