package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/momager/momager-core/internal/apperror"
	"github.com/momager/momager-core/internal/ident"
	"github.com/momager/momager-core/internal/model"
	"github.com/momager/momager-core/internal/repository"
)

var (
	ErrWeatherQuery     = errors.New("coordinates or city and state are required")
	ErrWeatherNotCached = errors.New("no cached weather for city")
)

const coordinateDecimals = 5

type WeatherQuery struct {
	Lat   string
	Lon   string
	City  string
	State string
}

// WeatherFetcher loads a forecast payload for a coordinate pair.
type WeatherFetcher interface {
	Fetch(ctx context.Context, lat, lon string) (json.RawMessage, error)
}

type HTTPWeatherFetcher struct {
	client      *http.Client
	urlTemplate string
}

// NewHTTPWeatherFetcher builds a fetcher for urlTemplate, which takes latitude and longitude as two %s verbs.
func NewHTTPWeatherFetcher(urlTemplate string, timeout time.Duration) *HTTPWeatherFetcher {
	return &HTTPWeatherFetcher{
		client:      &http.Client{Timeout: timeout},
		urlTemplate: urlTemplate,
	}
}

func (f *HTTPWeatherFetcher) Fetch(ctx context.Context, lat, lon string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf(f.urlTemplate, url.QueryEscape(lat), url.QueryEscape(lon))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("weather response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather provider returned %d", resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("weather provider returned invalid JSON")
	}
	return json.RawMessage(body), nil
}

type WeatherService struct {
	weatherCacheRepository repository.WeatherCacheRepository
	fetcher                WeatherFetcher
	ttl                    time.Duration
}

func NewWeatherService(weatherCacheRepository repository.WeatherCacheRepository, fetcher WeatherFetcher, ttl time.Duration) *WeatherService {
	return &WeatherService{
		weatherCacheRepository: weatherCacheRepository,
		fetcher:                fetcher,
		ttl:                    ttl,
	}
}

// Lookup returns cached weather for the query, fetching from the provider on a miss or when the entry is stale.
// Coordinates take precedence over city and state. A city/state miss cannot be fetched.
func (s *WeatherService) Lookup(ctx context.Context, q WeatherQuery) (json.RawMessage, error) {
	lat, lon, err := normalizeCoordinates(q.Lat, q.Lon)
	if err != nil {
		return nil, err
	}
	q.Lat, q.Lon = lat, lon
	q.City, q.State = strings.TrimSpace(q.City), strings.TrimSpace(q.State)

	var entry *model.WeatherCache
	switch {
	case q.Lat != "" && q.Lon != "":
		entry, err = s.weatherCacheRepository.ByCoordinates(ctx, q.Lat, q.Lon)
	case q.City != "" && q.State != "":
		entry, err = s.weatherCacheRepository.ByCityState(ctx, q.City, q.State)
	default:
		return nil, apperror.New("No data to search with", apperror.StatusExternal, ErrWeatherQuery)
	}

	if errors.Is(err, repository.ErrNotFound) {
		if q.Lat == "" {
			return nil, apperror.New("No cached weather for city", apperror.StatusExternal, ErrWeatherNotCached)
		}
		return s.refetch(ctx, q)
	}
	if err != nil {
		return nil, err
	}

	if !entry.IsStale(time.Now(), s.ttl) {
		return json.RawMessage(entry.Data), nil
	}

	slog.DebugContext(ctx, "weather cache stale", "id", entry.ID, "fetched_at", entry.FetchedAt)
	err = s.weatherCacheRepository.Delete(ctx, entry.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if q.Lat == "" {
		q.Lat, q.Lon = entry.Lat.String, entry.Lon.String
	}
	if q.City == "" {
		q.City, q.State = entry.City.String, entry.State.String
	}
	if q.Lat == "" || q.Lon == "" {
		return nil, apperror.New("No coordinates to refresh weather", apperror.StatusExternal, ErrWeatherNotCached)
	}
	return s.refetch(ctx, q)
}

func (s *WeatherService) refetch(ctx context.Context, q WeatherQuery) (json.RawMessage, error) {
	data, err := s.fetcher.Fetch(ctx, q.Lat, q.Lon)
	if err != nil {
		return nil, apperror.Internal("Unable to fetch weather data", err)
	}

	entry := &model.WeatherCache{
		ID:        ident.New(),
		City:      nullString(q.City),
		State:     nullString(q.State),
		Lat:       nullString(q.Lat),
		Lon:       nullString(q.Lon),
		Data:      types.JSONText(data),
		FetchedAt: time.Now(),
	}
	err = s.weatherCacheRepository.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func normalizeCoordinates(lat, lon string) (string, string, error) {
	lat, lon = strings.TrimSpace(lat), strings.TrimSpace(lon)
	if lat == "" || lon == "" {
		return "", "", nil
	}

	for _, c := range []string{lat, lon} {
		_, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return "", "", apperror.Externalf("Invalid coordinate %q", c)
		}
	}
	return truncateCoordinate(lat), truncateCoordinate(lon), nil
}

// truncateCoordinate cuts a decimal string to five places without rounding.
func truncateCoordinate(coord string) string {
	whole, frac, ok := strings.Cut(coord, ".")
	if !ok || len(frac) <= coordinateDecimals {
		return coord
	}
	return whole + "." + frac[:coordinateDecimals]
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
