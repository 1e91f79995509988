package horizon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/horizon/internal/catalog"
	"github.com/vmunix/horizon/internal/detail"
)

type fakeCatalog struct {
	mu          sync.Mutex
	calls       int
	searchCalls int
	games       []catalog.Game
	err         error
}

func (f *fakeCatalog) ListReleases(ctx context.Context, year int, month time.Month, platformID, limit int) ([]catalog.Game, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.games) > limit {
		return f.games[:limit], nil
	}
	return f.games, nil
}

func (f *fakeCatalog) SearchGames(ctx context.Context, keyword string, platformID, limit int) ([]catalog.Game, error) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.games, nil
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTranslator struct {
	mu      sync.Mutex
	calls   int
	mapping map[string]string
}

func (f *fakeTranslator) Translate(ctx context.Context, names []string) map[string]string {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	out := make(map[string]string)
	for _, name := range names {
		if cn, ok := f.mapping[name]; ok {
			out[name] = cn
		}
	}
	return out
}

type fakeEnricher struct {
	rec detail.Record
}

func (f *fakeEnricher) GetDetail(ctx context.Context, searchName, fallbackName string) detail.Record {
	return f.rec
}

func febGames() []catalog.Game {
	return []catalog.Game{
		{ID: 1, Name: "Deep Rock Galactic", ReleaseDate: "2026-02-05", Platform: "Switch", Genres: []string{}},
		{ID: 2, Name: "The Legend of Zelda", ReleaseDate: "2026-02-12", Platform: "Switch", Genres: []string{}},
		{ID: 3, Name: "Untitled Sequel", ReleaseDate: "", Platform: "Switch", Genres: []string{}},
	}
}

func newTestOrchestrator(cat Catalog, translator Translator) *Orchestrator {
	if translator == nil {
		translator = &fakeTranslator{}
	}
	return NewOrchestrator(cat, translator, &fakeEnricher{}, 130, nil)
}

func TestListingRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       ListingRequest
		wantField string
	}{
		{"valid", ListingRequest{Year: 2026, Month: 2, Limit: 50}, ""},
		{"year too early", ListingRequest{Year: 1969, Month: 2, Limit: 50}, "year"},
		{"year too late", ListingRequest{Year: 2101, Month: 2, Limit: 50}, "year"},
		{"month zero", ListingRequest{Year: 2026, Month: 0, Limit: 50}, "month"},
		{"month thirteen", ListingRequest{Year: 2026, Month: 13, Limit: 50}, "month"},
		{"limit zero", ListingRequest{Year: 2026, Month: 2, Limit: 0}, "limit"},
		{"limit over cap", ListingRequest{Year: 2026, Month: 2, Limit: 501}, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestOrchestrator_FetchListing_ValidatesBeforeNetwork(t *testing.T) {
	lister := &fakeCatalog{games: febGames()}
	o := newTestOrchestrator(lister, nil)

	_, err := o.FetchListing(context.Background(), ListingRequest{Year: 2026, Month: 13, Limit: 50})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, lister.callCount(), "invalid input must fail before any fetch")
}

func TestOrchestrator_FetchListing_RawCached(t *testing.T) {
	lister := &fakeCatalog{games: febGames()}
	o := newTestOrchestrator(lister, nil)
	req := ListingRequest{Year: 2026, Month: 2, Limit: 3}

	first, err := o.FetchListing(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, 1, lister.callCount())

	second, err := o.FetchListing(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, lister.callCount(), "second request must hit the cache")
}

func TestOrchestrator_FetchListing_TranslatedMatchesRaw(t *testing.T) {
	lister := &fakeCatalog{games: febGames()}
	translator := &fakeTranslator{mapping: map[string]string{
		"The Legend of Zelda": "塞尔达传说",
	}}
	o := newTestOrchestrator(lister, translator)

	raw, err := o.FetchListing(context.Background(), ListingRequest{Year: 2026, Month: 2, Limit: 3})
	require.NoError(t, err)
	translated, err := o.FetchListing(context.Background(), ListingRequest{Year: 2026, Month: 2, Translate: true, Limit: 3})
	require.NoError(t, err)

	require.Equal(t, len(raw.Games), len(translated.Games))
	for i := range raw.Games {
		assert.Equal(t, raw.Games[i].ID, translated.Games[i].ID, "identities must match position for position")
		assert.Equal(t, raw.Games[i].Name, translated.Games[i].Name)
	}
	assert.Equal(t, "塞尔达传说", translated.Games[1].NameCN)
	assert.Empty(t, translated.Games[0].NameCN, "untranslatable names stay empty")

	// The raw variant must not have been mutated by the translated pass.
	rawAgain, err := o.FetchListing(context.Background(), ListingRequest{Year: 2026, Month: 2, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, rawAgain.Games[1].NameCN)
}

func TestOrchestrator_FetchListing_TranslatedCached(t *testing.T) {
	lister := &fakeCatalog{games: febGames()}
	translator := &fakeTranslator{mapping: map[string]string{"The Legend of Zelda": "塞尔达传说"}}
	o := newTestOrchestrator(lister, translator)
	req := ListingRequest{Year: 2026, Month: 2, Translate: true, Limit: 3}

	_, err := o.FetchListing(context.Background(), req)
	require.NoError(t, err)
	_, err = o.FetchListing(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, lister.callCount())
	assert.Equal(t, 1, translator.calls, "translated variant must be served from cache")
}

func TestOrchestrator_FetchListing_TranslationEqualToNameDropped(t *testing.T) {
	lister := &fakeCatalog{games: []catalog.Game{
		{ID: 1, Name: "Celeste", ReleaseDate: "2026-02-01", Genres: []string{}},
	}}
	translator := &fakeTranslator{mapping: map[string]string{"Celeste": "Celeste"}}
	o := newTestOrchestrator(lister, translator)

	listing, err := o.FetchListing(context.Background(), ListingRequest{Year: 2026, Month: 2, Translate: true, Limit: 1})
	require.NoError(t, err)
	assert.Empty(t, listing.Games[0].NameCN)
}

func TestOrchestrator_FetchListing_UpstreamErrorPassesThrough(t *testing.T) {
	lister := &fakeCatalog{err: catalog.ErrUpstream}
	o := newTestOrchestrator(lister, nil)

	_, err := o.FetchListing(context.Background(), ListingRequest{Year: 2026, Month: 2, Limit: 50})
	assert.ErrorIs(t, err, catalog.ErrUpstream)
}

func TestOrchestrator_InvalidateMonth(t *testing.T) {
	lister := &fakeCatalog{games: febGames()}
	o := newTestOrchestrator(lister, nil)
	req := ListingRequest{Year: 2026, Month: 2, Limit: 3}

	_, err := o.FetchListing(context.Background(), req)
	require.NoError(t, err)
	o.InvalidateMonth(2026, time.February)

	_, err = o.FetchListing(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, lister.callCount(), "invalidated month must be refetched")
}

func TestOrchestrator_GetDetail_Passthrough(t *testing.T) {
	rec := detail.Record{SubjectName: "Hades II", Status: detail.StatusOK}
	o := NewOrchestrator(&fakeCatalog{}, &fakeTranslator{}, &fakeEnricher{rec: rec}, 130, nil)

	got := o.GetDetail(context.Background(), "Hades II", "")
	assert.Equal(t, rec, got)
}

func TestOrchestrator_FetchListing_ErrorsNotCached(t *testing.T) {
	lister := &fakeCatalog{err: errors.New("boom")}
	o := newTestOrchestrator(lister, nil)
	req := ListingRequest{Year: 2026, Month: 2, Limit: 3}

	_, err := o.FetchListing(context.Background(), req)
	require.Error(t, err)

	lister.mu.Lock()
	lister.err = nil
	lister.games = febGames()
	lister.mu.Unlock()

	listing, err := o.FetchListing(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, listing.Total)
}

func TestOrchestrator_FetchListing_ShortMonthCached(t *testing.T) {
	// Three releases against limit 50: the listing is complete because
	// upstream is exhausted, so it must still satisfy later requests.
	lister := &fakeCatalog{games: febGames()}
	o := newTestOrchestrator(lister, nil)
	req := ListingRequest{Year: 2026, Month: 2, Limit: 50}

	first, err := o.FetchListing(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Total)

	second, err := o.FetchListing(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, lister.callCount(), "second request within TTL must hit the cache")
}

func TestOrchestrator_FetchListing_StaleTranslatedIdentitiesDropped(t *testing.T) {
	lister := &fakeCatalog{games: febGames()}
	translator := &fakeTranslator{mapping: map[string]string{"The Legend of Zelda": "塞尔达传说"}}
	o := newTestOrchestrator(lister, translator)

	// A leftover translated entry of equal length but different identities,
	// as after upstream data changed between raw refreshes.
	stale := []catalog.Game{
		{ID: 7, Name: "Old Entry A", NameCN: "旧条目甲", Genres: []string{}},
		{ID: 8, Name: "Old Entry B", Genres: []string{}},
		{ID: 9, Name: "Old Entry C", Genres: []string{}},
	}
	o.cache.Put(2026, time.February, catalog.VariantRaw, febGames(), 3, time.Hour)
	o.cache.Put(2026, time.February, catalog.VariantTranslated, stale, 3, time.Hour)

	listing, err := o.FetchListing(context.Background(), ListingRequest{Year: 2026, Month: 2, Translate: true, Limit: 3})
	require.NoError(t, err)

	require.Len(t, listing.Games, 3)
	for i, g := range febGames() {
		assert.Equal(t, g.ID, listing.Games[i].ID, "translated listing must mirror the raw identities")
	}
	assert.Equal(t, "塞尔达传说", listing.Games[1].NameCN)
	assert.Equal(t, 1, translator.calls, "mismatched translated entry must be rebuilt")
}

func TestOrchestrator_FetchListing_RawRefetchDropsTranslated(t *testing.T) {
	lister := &fakeCatalog{games: febGames()}
	translator := &fakeTranslator{mapping: map[string]string{"The Legend of Zelda": "塞尔达传说"}}
	o := newTestOrchestrator(lister, translator)

	// Only a translated entry survives, its raw counterpart has expired.
	stale := []catalog.Game{
		{ID: 7, Name: "Old Entry A", Genres: []string{}},
		{ID: 8, Name: "Old Entry B", Genres: []string{}},
		{ID: 9, Name: "Old Entry C", Genres: []string{}},
	}
	o.cache.Put(2026, time.February, catalog.VariantTranslated, stale, 3, time.Hour)

	listing, err := o.FetchListing(context.Background(), ListingRequest{Year: 2026, Month: 2, Translate: true, Limit: 3})
	require.NoError(t, err)

	for i, g := range febGames() {
		assert.Equal(t, g.ID, listing.Games[i].ID)
	}
	assert.Equal(t, 1, translator.calls, "re-fetched raw listing must rebuild the translated variant")
}

func TestOrchestrator_Search(t *testing.T) {
	lister := &fakeCatalog{games: febGames()}
	o := newTestOrchestrator(lister, nil)

	games, err := o.Search(context.Background(), "zelda", 10)
	require.NoError(t, err)
	assert.Len(t, games, 3)
	assert.Equal(t, 1, lister.searchCalls)
}

func TestOrchestrator_Search_Validation(t *testing.T) {
	lister := &fakeCatalog{games: febGames()}
	o := newTestOrchestrator(lister, nil)

	tests := []struct {
		name  string
		query string
		limit int
	}{
		{"empty query", "  ", 10},
		{"limit zero", "zelda", 0},
		{"limit over cap", "zelda", 501},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Search(context.Background(), tt.query, tt.limit)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
	assert.Equal(t, 0, lister.searchCalls, "invalid input must fail before any fetch")
}
