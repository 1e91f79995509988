// Package igdb provides a client for the IGDB v4 API.
package igdb

import (
	"fmt"
	"strings"
	"time"
)

// IGDB platform IDs.
const (
	PlatformSwitch     = 130
	PlatformPS5        = 167
	PlatformXboxSeries = 169
	PlatformPC         = 6
)

// Game is a raw IGDB game record.
type Game struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Summary          string            `json:"summary"`
	FirstReleaseDate int64             `json:"first_release_date"` // unix seconds, 0 = TBA
	InvolvedCompany  []InvolvedCompany `json:"involved_companies"`
	Cover            Cover             `json:"cover"`
	Genres           []Named           `json:"genres"`
	Platforms        []Named           `json:"platforms"`
	AlternativeNames []AlternativeName `json:"alternative_names"`
	Hypes            int               `json:"hypes"`
	URL              string            `json:"url"`
}

// InvolvedCompany links a company to a game with role flags.
type InvolvedCompany struct {
	Company   Named `json:"company"`
	Developer bool  `json:"developer"`
	Publisher bool  `json:"publisher"`
}

// Named is the generic {id, name} IGDB reference.
type Named struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Cover is a game cover image reference.
type Cover struct {
	URL string `json:"url"`
}

// AlternativeName is a localized or regional title.
type AlternativeName struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

// Query is an Apicalypse query against the /games endpoint.
type Query struct {
	Fields []string
	Search string
	Where  []string
	Sort   string
	Limit  int
	Offset int
}

// Body renders the query in Apicalypse syntax.
func (q Query) Body() string {
	var b strings.Builder
	if q.Search != "" {
		fmt.Fprintf(&b, "search %q; ", q.Search)
	}
	if len(q.Fields) > 0 {
		fmt.Fprintf(&b, "fields %s; ", strings.Join(q.Fields, ", "))
	}
	if len(q.Where) > 0 {
		fmt.Fprintf(&b, "where %s; ", strings.Join(q.Where, " & "))
	}
	if q.Sort != "" {
		fmt.Fprintf(&b, "sort %s; ", q.Sort)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, "limit %d; ", q.Limit)
	}
	if q.Offset > 0 {
		fmt.Fprintf(&b, "offset %d; ", q.Offset)
	}
	return strings.TrimSpace(b.String())
}

var releaseFields = []string{
	"name", "summary", "first_release_date",
	"involved_companies.company.name",
	"involved_companies.developer",
	"involved_companies.publisher",
	"cover.url",
	"genres.name",
	"platforms.name",
	"alternative_names.name",
	"alternative_names.comment",
	"hypes",
	"url",
}

// UpcomingQuery builds the query for one page of a platform's releases
// inside the given month.
func UpcomingQuery(platformID, year int, month time.Month, limit, offset int) Query {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	return Query{
		Fields: releaseFields,
		Where: []string{
			fmt.Sprintf("platforms = (%d)", platformID),
			fmt.Sprintf("first_release_date >= %d", start.Unix()),
			fmt.Sprintf("first_release_date < %d", end.Unix()),
		},
		Sort:   "first_release_date asc",
		Limit:  limit,
		Offset: offset,
	}
}

// SearchQuery builds a keyword search, optionally filtered by platform.
func SearchQuery(keyword string, platformID, limit int) Query {
	q := Query{
		Search: keyword,
		Fields: releaseFields,
		Where:  []string{"category = 0"},
		Limit:  limit,
	}
	if platformID > 0 {
		q.Where = append(q.Where, fmt.Sprintf("platforms = (%d)", platformID))
	}
	return q
}
