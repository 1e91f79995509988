package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vmunix/horizon/pkg/igdb"
)

// ErrUpstream indicates the catalog API could not produce a complete
// listing within the retry budget. Partial results are never returned.
var ErrUpstream = errors.New("catalog upstream unavailable")

// IGDB caps page size at 500.
const maxPageSize = 500

// CatalogAPI is the slice of the IGDB client the service needs.
type CatalogAPI interface {
	Games(ctx context.Context, q igdb.Query) ([]igdb.Game, error)
}

//go:generate mockgen -destination=mocks/mock_api.go -package=mocks github.com/vmunix/horizon/internal/catalog CatalogAPI

// Service fetches and normalizes a platform's monthly releases.
type Service struct {
	api       CatalogAPI
	heuristic Heuristic
	log       *slog.Logger
}

// NewService creates a catalog service.
func NewService(api CatalogAPI, heuristic Heuristic, log *slog.Logger) *Service {
	return &Service{api: api, heuristic: heuristic, log: log}
}

// ListReleases returns up to limit distinct games releasing on the platform
// in the given month, sorted by release date then name, TBA entries last.
func (s *Service) ListReleases(ctx context.Context, year int, month time.Month, platformID, limit int) ([]Game, error) {
	start := time.Now()

	pageSize := limit
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	seen := make(map[int64]bool)
	games := make([]Game, 0, limit)
	offset := 0
	pages := 0

	for len(games) < limit {
		raw, err := s.api.Games(ctx, igdb.UpcomingQuery(platformID, year, month, pageSize, offset))
		if err != nil {
			if errors.Is(err, igdb.ErrAuth) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		pages++

		for _, r := range raw {
			if seen[r.ID] || len(games) >= limit {
				continue
			}
			seen[r.ID] = true

			g := normalize(r, platformName(platformID))
			g.Notable = s.heuristic.Notable(g.Popularity, g.Developer, g.Publisher)
			games = append(games, g)
		}

		if len(raw) < pageSize {
			break
		}
		offset += len(raw)
	}

	sortReleases(games)

	if s.log != nil {
		s.log.Debug("listed releases",
			"year", year, "month", int(month), "platform", platformID,
			"count", len(games), "pages", pages,
			"duration_ms", time.Since(start).Milliseconds())
	}

	return games, nil
}

// SearchGames looks up games by keyword, optionally filtered to a platform.
// Results keep upstream relevance order.
func (s *Service) SearchGames(ctx context.Context, keyword string, platformID, limit int) ([]Game, error) {
	start := time.Now()

	if limit > maxPageSize {
		limit = maxPageSize
	}

	raw, err := s.api.Games(ctx, igdb.SearchQuery(keyword, platformID, limit))
	if err != nil {
		if errors.Is(err, igdb.ErrAuth) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	games := make([]Game, 0, len(raw))
	for _, r := range raw {
		g := normalize(r, platformName(platformID))
		if g.Platform == "" {
			g.Platform = joinPlatforms(r.Platforms)
		}
		g.Notable = s.heuristic.Notable(g.Popularity, g.Developer, g.Publisher)
		games = append(games, g)
	}

	if s.log != nil {
		s.log.Debug("searched games", "keyword", keyword, "platform", platformID,
			"count", len(games), "duration_ms", time.Since(start).Milliseconds())
	}

	return games, nil
}

func joinPlatforms(platforms []igdb.Named) string {
	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

func platformName(id int) string {
	switch id {
	case igdb.PlatformSwitch:
		return "Switch"
	case igdb.PlatformPS5:
		return "PS5"
	case igdb.PlatformXboxSeries:
		return "Xbox Series X|S"
	case igdb.PlatformPC:
		return "PC"
	default:
		return ""
	}
}
