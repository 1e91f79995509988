// Package horizon wires the catalog, localization and enrichment services
// behind the two query surfaces the presentation layer consumes.
package horizon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vmunix/horizon/internal/catalog"
	"github.com/vmunix/horizon/internal/detail"
)

// Listings go stale quickly around announcement season.
const listingTTL = 15 * time.Minute

// ValidationError reports malformed request input. It is returned before
// any network call is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// ListingRequest is a listing query as received from a caller.
type ListingRequest struct {
	Year      int
	Month     int
	Translate bool
	Limit     int
}

// Validate checks the request ranges.
func (r ListingRequest) Validate() error {
	if r.Year < 1970 || r.Year > 2100 {
		return &ValidationError{Field: "year", Msg: fmt.Sprintf("%d out of range [1970, 2100]", r.Year)}
	}
	if r.Month < 1 || r.Month > 12 {
		return &ValidationError{Field: "month", Msg: fmt.Sprintf("%d out of range [1, 12]", r.Month)}
	}
	if r.Limit < 1 || r.Limit > 500 {
		return &ValidationError{Field: "limit", Msg: fmt.Sprintf("%d out of range [1, 500]", r.Limit)}
	}
	return nil
}

// Listing is the response for one month of releases.
type Listing struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Total int            `json:"total"`
	Games []catalog.Game `json:"games"`
}

// Catalog is the slice of the catalog service the orchestrator needs.
type Catalog interface {
	ListReleases(ctx context.Context, year int, month time.Month, platformID, limit int) ([]catalog.Game, error)
	SearchGames(ctx context.Context, keyword string, platformID, limit int) ([]catalog.Game, error)
}

// Translator resolves localized names for a set of titles.
type Translator interface {
	Translate(ctx context.Context, names []string) map[string]string
}

// Enricher resolves a title to a crew record.
type Enricher interface {
	GetDetail(ctx context.Context, searchName, fallbackName string) detail.Record
}

// Orchestrator serves listings and detail lookups. Listings follow a
// two-phase protocol: the raw variant is served immediately, the translated
// variant is derived from it on request and differs only in NameCN.
type Orchestrator struct {
	catalog    Catalog
	translator Translator
	enricher   Enricher
	cache      *catalog.Cache
	platformID int
	log        *slog.Logger
}

// NewOrchestrator creates an orchestrator serving releases for one platform.
func NewOrchestrator(cat Catalog, translator Translator, enricher Enricher, platformID int, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		catalog:    cat,
		translator: translator,
		enricher:   enricher,
		cache:      catalog.NewCache(),
		platformID: platformID,
		log:        log,
	}
}

// FetchListing returns the month's releases. With Translate set the games
// carry NameCN where a confident localization exists; identities and order
// are identical to the raw listing for the same request.
func (o *Orchestrator) FetchListing(ctx context.Context, req ListingRequest) (Listing, error) {
	if err := req.Validate(); err != nil {
		return Listing{}, err
	}
	month := time.Month(req.Month)

	raw, err := o.rawListing(ctx, req.Year, month, req.Limit)
	if err != nil {
		return Listing{}, err
	}

	games := raw
	if req.Translate {
		games = o.translatedListing(ctx, req.Year, month, raw)
	}
	return Listing{Year: req.Year, Month: req.Month, Total: len(games), Games: games}, nil
}

func (o *Orchestrator) rawListing(ctx context.Context, year int, month time.Month, limit int) ([]catalog.Game, error) {
	if games, ok := o.cache.Get(year, month, catalog.VariantRaw, limit); ok {
		return games, nil
	}

	games, err := o.catalog.ListReleases(ctx, year, month, o.platformID, limit)
	if err != nil {
		return nil, err
	}
	// Fresh raw data invalidates any translated variant derived from the
	// previous listing; it may no longer agree on identities.
	o.cache.Invalidate(year, month)
	o.cache.Put(year, month, catalog.VariantRaw, games, limit, listingTTL)
	return games, nil
}

// translatedListing derives the localized variant from the raw one, so both
// always agree on identities and order.
func (o *Orchestrator) translatedListing(ctx context.Context, year int, month time.Month, raw []catalog.Game) []catalog.Game {
	if games, ok := o.cache.Get(year, month, catalog.VariantTranslated, len(raw)); ok && sameIdentities(games, raw) {
		return games
	}

	pending := make([]string, 0, len(raw))
	for _, g := range raw {
		if g.NameCN == "" {
			pending = append(pending, g.Name)
		}
	}
	localized := o.translator.Translate(ctx, pending)

	games := make([]catalog.Game, len(raw))
	copy(games, raw)
	for i := range games {
		if games[i].NameCN != "" {
			continue
		}
		if cn, ok := localized[games[i].Name]; ok && cn != games[i].Name {
			games[i].NameCN = cn
		}
	}

	o.cache.Put(year, month, catalog.VariantTranslated, games, len(games), listingTTL)
	return games
}

// sameIdentities reports whether two listings hold the same games in the
// same order.
func sameIdentities(a, b []catalog.Game) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

// Search looks up games by keyword on the orchestrator's platform. Results
// come back in upstream relevance order and are not cached.
func (o *Orchestrator) Search(ctx context.Context, query string, limit int) ([]catalog.Game, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Field: "query", Msg: "must not be empty"}
	}
	if limit < 1 || limit > 500 {
		return nil, &ValidationError{Field: "limit", Msg: fmt.Sprintf("%d out of range [1, 500]", limit)}
	}
	return o.catalog.SearchGames(ctx, query, o.platformID, limit)
}

// GetDetail resolves a title to its crew record. Enrichment is best effort
// and never fails; the record's Status carries the diagnostic.
func (o *Orchestrator) GetDetail(ctx context.Context, name, fallbackName string) detail.Record {
	return o.enricher.GetDetail(ctx, name, fallbackName)
}

// InvalidateMonth drops both listing variants for a month, for callers that
// know the data changed before the TTL ran out.
func (o *Orchestrator) InvalidateMonth(year int, month time.Month) {
	o.cache.Invalidate(year, month)
	if o.log != nil {
		o.log.Debug("invalidated listing cache", "year", year, "month", int(month))
	}
}
