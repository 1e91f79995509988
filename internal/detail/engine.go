package detail

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vmunix/horizon/internal/llm"
)

const (
	// Crew facts change rarely, so hits and confirmed-empty results keep
	// a long TTL. Upstream failures are cached briefly so a flapping
	// endpoint is not hammered but recovers quickly.
	recordTTL = 7 * 24 * time.Hour
	errorTTL  = 10 * time.Minute

	keyPrefix = "detail:"

	maxCompletionTokens = 1500
)

// Completer is the slice of the LLM client the engine needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// Cache is the persistent store for resolved records.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Engine resolves titles to crew records with caching, single-flight
// coalescing and fallback-name retry.
type Engine struct {
	completer Completer
	cache     Cache
	log       *slog.Logger

	flight singleflight.Group
}

// NewEngine creates an enrichment engine.
func NewEngine(completer Completer, cache Cache, log *slog.Logger) *Engine {
	return &Engine{completer: completer, cache: cache, log: log}
}

// GetDetail resolves searchName to a crew record. It never fails: any
// upstream or parse problem degrades to an all-empty record whose Status
// says what happened. If the lookup on searchName comes back empty and
// fallbackName differs, it is tried once before giving up; localized
// titles are often only recognized under their original name.
func (e *Engine) GetDetail(ctx context.Context, searchName, fallbackName string) Record {
	searchName = strings.TrimSpace(searchName)
	if searchName == "" {
		searchName = strings.TrimSpace(fallbackName)
		fallbackName = ""
	}
	if searchName == "" {
		return emptyRecord("", StatusEmpty, "no name given")
	}

	key := keyPrefix + normalizeSubject(searchName)
	if rec, ok := e.cached(ctx, key); ok {
		return rec
	}

	// Coalesce concurrent lookups for the same subject. The upstream work
	// runs detached from the caller's context: an abandoned request must
	// still populate the cache for the next caller.
	v, _, _ := e.flight.Do(key, func() (any, error) {
		if rec, ok := e.cached(ctx, key); ok {
			return rec, nil
		}
		return e.lookup(context.WithoutCancel(ctx), searchName, fallbackName), nil
	})
	return v.(Record)
}

func (e *Engine) cached(ctx context.Context, key string) (Record, bool) {
	data, ok := e.cache.Get(ctx, key)
	if !ok {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// Treat a corrupt entry as a miss and fetch fresh data.
		if e.log != nil {
			e.log.Warn("failed to unmarshal cached record", "key", key)
		}
		return Record{}, false
	}
	return rec, true
}

func (e *Engine) lookup(ctx context.Context, searchName, fallbackName string) Record {
	rec := e.fetch(ctx, searchName, fallbackName)

	if rec.Status != StatusOK && fallbackName != "" &&
		normalizeSubject(fallbackName) != normalizeSubject(searchName) {
		if e.log != nil {
			e.log.Debug("retrying with fallback name", "search", searchName, "fallback", fallbackName)
		}
		fallbackRec := e.fetch(ctx, fallbackName, searchName)
		if fallbackRec.Status == StatusOK {
			rec = fallbackRec
		}
	}

	e.store(ctx, searchName, rec)
	return rec
}

// fetch performs one model call for one name.
func (e *Engine) fetch(ctx context.Context, name, altName string) Record {
	start := time.Now()

	content, err := e.completer.Complete(ctx, systemPrompt, buildPrompt(name, altName), maxCompletionTokens)
	if err != nil {
		if e.log != nil {
			e.log.Warn("enrichment call failed", "name", name, "error", err)
		}
		return emptyRecord(name, StatusError, "upstream call failed")
	}

	rec, ok := parseRecord(name, content)
	if e.log != nil {
		e.log.Debug("enrichment lookup", "name", name, "status", string(rec.Status),
			"parsed", ok, "duration_ms", time.Since(start).Milliseconds())
	}
	return rec
}

// store caches under the resolved canonical name, not the query string.
func (e *Engine) store(ctx context.Context, searchName string, rec Record) {
	key := keyPrefix + normalizeSubject(rec.SubjectName)
	if rec.SubjectName == "" {
		key = keyPrefix + normalizeSubject(searchName)
	}

	ttl := recordTTL
	if rec.Status == StatusError {
		ttl = errorTTL
	}

	data, err := json.Marshal(rec)
	if err != nil {
		if e.log != nil {
			e.log.Warn("failed to marshal record for cache", "key", key, "error", err)
		}
		return
	}
	if err := e.cache.Set(ctx, key, data, ttl); err != nil {
		if e.log != nil {
			e.log.Warn("failed to cache record", "key", key, "error", err)
		}
	}
}

type wireCredit struct {
	Name     string   `json:"name"`
	KnownFor []string `json:"known_for"`
}

type wireRecord struct {
	Name         string       `json:"name"`
	Directors    []wireCredit `json:"directors"`
	Writers      []wireCredit `json:"writers"`
	Composers    []wireCredit `json:"composers"`
	Producers    []wireCredit `json:"producers"`
	Series       string       `json:"series"`
	RelatedGames []string     `json:"related_games"`
	Highlights   []string     `json:"highlights"`
}

// parseRecord turns raw model output into a Record. The bool result reports
// whether the payload parsed at all; the Record is always structurally
// valid either way.
func parseRecord(queryName, content string) (Record, bool) {
	var wire wireRecord
	if err := llm.DecodeJSON(content, &wire); err != nil {
		return emptyRecord(queryName, StatusError, "unparseable model output"), false
	}

	subject := strings.TrimSpace(wire.Name)
	if subject == "" {
		subject = queryName
	}

	rec := Record{
		SubjectName:  subject,
		Directors:    credits(wire.Directors),
		Writers:      credits(wire.Writers),
		Composers:    credits(wire.Composers),
		Producers:    credits(wire.Producers),
		Series:       strings.TrimSpace(wire.Series),
		RelatedGames: nonEmpty(wire.RelatedGames),
		Highlights:   nonEmpty(wire.Highlights),
	}

	if rec.Empty() {
		rec.Status = StatusEmpty
		rec.Reason = "no data found"
	} else {
		rec.Status = StatusOK
	}
	return rec, true
}

func credits(wire []wireCredit) []Credit {
	out := make([]Credit, 0, len(wire))
	for _, c := range wire {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		knownFor := c.KnownFor
		if knownFor == nil {
			knownFor = []string{}
		}
		out = append(out, Credit{Name: name, KnownFor: knownFor})
	}
	return out
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
