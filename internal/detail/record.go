// Package detail resolves a game title to production-crew facts via a
// language model. Enrichment is best effort: lookups degrade to empty,
// diagnostic-tagged records instead of failing.
package detail

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Status tags how a record was produced.
type Status string

const (
	// StatusOK means the model returned usable crew data.
	StatusOK Status = "ok"

	// StatusEmpty means the lookup worked but found no data.
	StatusEmpty Status = "empty"

	// StatusError means the upstream call or its output was unusable.
	StatusError Status = "error"
)

// Credit is one crew member and their representative works.
type Credit struct {
	Name     string   `json:"name"`
	KnownFor []string `json:"known_for"`
}

// Record holds production-crew facts for one game. SubjectName is the
// resolved identity, which may differ from the original query string.
type Record struct {
	SubjectName  string   `json:"subject_name"`
	Directors    []Credit `json:"directors"`
	Writers      []Credit `json:"writers"`
	Composers    []Credit `json:"composers"`
	Producers    []Credit `json:"producers"`
	Series       string   `json:"series,omitempty"`
	RelatedGames []string `json:"related_games"`
	Highlights   []string `json:"highlights"`
	Status       Status   `json:"status"`
	Reason       string   `json:"reason,omitempty"`
}

// Empty reports whether the record carries no crew data at all.
func (r Record) Empty() bool {
	return len(r.Directors) == 0 && len(r.Writers) == 0 &&
		len(r.Composers) == 0 && len(r.Producers) == 0 &&
		r.Series == "" && len(r.RelatedGames) == 0 && len(r.Highlights) == 0
}

// emptyRecord builds a structurally valid all-empty record: collections are
// present but empty, never nil.
func emptyRecord(name string, status Status, reason string) Record {
	return Record{
		SubjectName:  name,
		Directors:    []Credit{},
		Writers:      []Credit{},
		Composers:    []Credit{},
		Producers:    []Credit{},
		RelatedGames: []string{},
		Highlights:   []string{},
		Status:       status,
		Reason:       reason,
	}
}

var foldCaser = cases.Fold()

// normalizeSubject produces the cache key form of a title: NFKC-normalized,
// case-folded, with whitespace collapsed. Handles full-width forms in
// Chinese and Japanese titles.
func normalizeSubject(name string) string {
	folded := foldCaser.String(norm.NFKC.String(name))
	return strings.Join(strings.Fields(folded), " ")
}
