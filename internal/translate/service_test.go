package translate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter answers each batch from a canned translation table.
type fakeCompleter struct {
	mu          sync.Mutex
	calls       int
	table       map[string]wireTranslation // requested name -> reply row
	failOn      string                     // fail any batch containing this name
	rawResponse string                     // overrides table when set
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(user, f.failOn) {
		return "", errors.New("batch exploded")
	}
	if f.rawResponse != "" {
		return f.rawResponse, nil
	}

	var rows []wireTranslation
	for name, row := range f.table {
		if strings.Contains(user, name) {
			rows = append(rows, row)
		}
	}
	data, _ := json.Marshal(rows)
	return string(data), nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestService_Translate_Empty(t *testing.T) {
	svc := NewService(&fakeCompleter{}, nil)

	got := svc.Translate(context.Background(), nil)
	assert.Empty(t, got)
	got = svc.Translate(context.Background(), []string{})
	assert.Empty(t, got)
}

func TestService_Translate_ConfidentOnly(t *testing.T) {
	completer := &fakeCompleter{table: map[string]wireTranslation{
		"The Legend of Zelda": {En: "The Legend of Zelda", Cn: "塞尔达传说", Sure: true},
		"Unknown Indie":       {En: "Unknown Indie", Cn: "未知独立游戏", Sure: false},
		"Fake Confident":      {En: "Fake Confident", Cn: "Fake Confident", Sure: true}, // no Han runes
	}}
	svc := NewService(completer, nil)

	got := svc.Translate(context.Background(), []string{"The Legend of Zelda", "Unknown Indie", "Fake Confident"})

	assert.Equal(t, map[string]string{"The Legend of Zelda": "塞尔达传说"}, got)
}

func TestService_Translate_FuzzyNameMatch(t *testing.T) {
	// The model echoes the title with altered punctuation.
	completer := &fakeCompleter{table: map[string]wireTranslation{
		"Zelda: Tears of the Kingdom": {En: "Zelda - Tears of the Kingdom", Cn: "塞尔达传说：王国之泪", Sure: true},
	}}
	svc := NewService(completer, nil)

	got := svc.Translate(context.Background(), []string{"Zelda: Tears of the Kingdom"})

	assert.Equal(t, "塞尔达传说：王国之泪", got["Zelda: Tears of the Kingdom"])
}

func TestService_Translate_PartialBatchFailure(t *testing.T) {
	names := []string{"Game A", "Game B", "Game C", "Game D", "Game E", "Poison Pill"}
	completer := &fakeCompleter{
		failOn: "Poison Pill",
		table: map[string]wireTranslation{
			"Game A": {En: "Game A", Cn: "游戏甲", Sure: true},
		},
	}
	svc := NewService(completer, nil)

	got := svc.Translate(context.Background(), names)

	// First batch of five succeeds, second batch fails but doesn't
	// invalidate the first.
	assert.Equal(t, "游戏甲", got["Game A"])
	assert.NotContains(t, got, "Poison Pill")
}

func TestService_Translate_CachesResults(t *testing.T) {
	completer := &fakeCompleter{table: map[string]wireTranslation{
		"The Legend of Zelda": {En: "The Legend of Zelda", Cn: "塞尔达传说", Sure: true},
	}}
	svc := NewService(completer, nil)

	first := svc.Translate(context.Background(), []string{"The Legend of Zelda"})
	require.Equal(t, "塞尔达传说", first["The Legend of Zelda"])
	require.Equal(t, 1, completer.callCount())

	second := svc.Translate(context.Background(), []string{"The Legend of Zelda"})
	assert.Equal(t, first, second, "repeated translation must be stable")
	assert.Equal(t, 1, completer.callCount(), "second call must come from cache")
}

func TestService_Translate_GarbageResponse(t *testing.T) {
	completer := &fakeCompleter{rawResponse: "I cannot help with that."}
	svc := NewService(completer, nil)

	got := svc.Translate(context.Background(), []string{"Some Game"})
	assert.Empty(t, got)
}

func TestService_Translate_DeduplicatesInput(t *testing.T) {
	completer := &fakeCompleter{table: map[string]wireTranslation{
		"The Legend of Zelda": {En: "The Legend of Zelda", Cn: "塞尔达传说", Sure: true},
	}}
	svc := NewService(completer, nil)

	got := svc.Translate(context.Background(), []string{
		"The Legend of Zelda", "The Legend of Zelda", "  ", "",
	})

	assert.Len(t, got, 1)
	assert.Equal(t, 1, completer.callCount())
}
