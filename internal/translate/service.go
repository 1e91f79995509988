// Package translate resolves official Chinese titles for game names in
// batches, keeping only translations the model is certain about.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hbollon/go-edlib"
	"golang.org/x/sync/errgroup"
)

const (
	// Small batches keep the model from mixing up adjacent titles.
	batchSize       = 5
	maxBatchWorkers = 3

	cacheTTL = 24 * time.Hour

	maxCompletionTokens = 2000

	// Minimum similarity for fuzzily matching a returned English name
	// back to one of the requested names.
	matchSimilarity = 0.9
)

// Completer is the slice of the LLM client the service needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

type cachedName struct {
	localized string
	expires   time.Time
}

// Service batch-translates game names with its own cache. Partial upstream
// failure yields partial results; a bad batch never poisons the others.
type Service struct {
	completer Completer
	log       *slog.Logger

	mu    sync.RWMutex
	cache map[string]cachedName
}

// NewService creates a localization service.
func NewService(completer Completer, log *slog.Logger) *Service {
	return &Service{
		completer: completer,
		log:       log,
		cache:     make(map[string]cachedName),
	}
}

// Translate maps names to their official Chinese titles. Names with no
// confident translation are absent from the result. Never fails: upstream
// trouble just shrinks the mapping.
func (s *Service) Translate(ctx context.Context, names []string) map[string]string {
	results := make(map[string]string)
	if len(names) == 0 {
		return results
	}

	var pending []string
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		if localized, ok := s.cachedTranslation(name); ok {
			results[name] = localized
			continue
		}
		pending = append(pending, name)
	}
	if len(pending) == 0 {
		return results
	}

	start := time.Now()

	var resultMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchWorkers)

	for batchStart := 0; batchStart < len(pending); batchStart += batchSize {
		batch := pending[batchStart:min(batchStart+batchSize, len(pending))]
		g.Go(func() error {
			translated, err := s.translateBatch(gctx, batch)
			if err != nil {
				// Partial failure: this batch contributes nothing.
				if s.log != nil {
					s.log.Warn("translation batch failed", "size", len(batch), "error", err)
				}
				return nil
			}
			resultMu.Lock()
			for name, localized := range translated {
				results[name] = localized
			}
			resultMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if s.log != nil {
		s.log.Debug("translated names", "requested", len(names), "resolved", len(results),
			"duration_ms", time.Since(start).Milliseconds())
	}
	return results
}

func (s *Service) cachedTranslation(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[name]
	if !ok || time.Now().After(entry.expires) {
		return "", false
	}
	return entry.localized, true
}

func (s *Service) cacheTranslation(name, localized string) {
	s.mu.Lock()
	s.cache[name] = cachedName{localized: localized, expires: time.Now().Add(cacheTTL)}
	s.mu.Unlock()
}

type wireTranslation struct {
	En   string `json:"en"`
	Cn   string `json:"cn"`
	Sure bool   `json:"sure"`
}

func (s *Service) translateBatch(ctx context.Context, names []string) (map[string]string, error) {
	content, err := s.completer.Complete(ctx, translateSystemPrompt, buildBatchPrompt(names), maxCompletionTokens)
	if err != nil {
		return nil, err
	}

	var translations []wireTranslation
	if err := decodeTranslations(content, &translations); err != nil {
		return nil, fmt.Errorf("parse translations: %w", err)
	}

	results := make(map[string]string)
	for _, item := range translations {
		en := strings.TrimSpace(item.En)
		cn := strings.TrimSpace(item.Cn)
		if en == "" || cn == "" {
			continue
		}
		// Only confident translations that actually contain Chinese count;
		// the model is told to echo the English name when unsure.
		if !item.Sure || !containsHan(cn) {
			continue
		}

		if matched, ok := matchName(en, names); ok {
			results[matched] = cn
			s.cacheTranslation(matched, cn)
		}
	}
	return results, nil
}

// matchName maps a returned English name back to one of the requested
// names: exact, case-insensitive, then fuzzy. Models love to "fix"
// punctuation in echoed titles.
func matchName(en string, names []string) (string, bool) {
	for _, name := range names {
		if name == en {
			return name, true
		}
	}
	enFolded := strings.ToLower(strings.TrimSpace(en))
	for _, name := range names {
		if strings.ToLower(strings.TrimSpace(name)) == enFolded {
			return name, true
		}
	}
	for _, name := range names {
		similarity, err := edlib.StringsSimilarity(enFolded, strings.ToLower(name), edlib.Levenshtein)
		if err == nil && similarity >= matchSimilarity {
			return name, true
		}
	}
	return "", false
}

func containsHan(s string) bool {
	for _, r := range s {
		if r >= 0x4e00 && r <= 0x9fff {
			return true
		}
	}
	return false
}
