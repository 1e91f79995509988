// Package catalog queries the IGDB catalog for a platform's monthly
// releases and normalizes them into the domain model.
package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/vmunix/horizon/pkg/igdb"
)

// Game is a normalized release entry.
type Game struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	NameCN      string   `json:"name_cn,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"` // "2006-01-02", empty = TBA
	Platform    string   `json:"platform,omitempty"`
	Genres      []string `json:"genres"`
	Developer   string   `json:"developer,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Popularity  int      `json:"popularity"`
	Notable     bool     `json:"is_notable"`
}

// TBA reports whether the release date is still unannounced.
func (g Game) TBA() bool {
	return g.ReleaseDate == ""
}

// normalize converts a raw IGDB record into a Game. Notability is computed
// separately so the heuristic stays a pure function of its inputs.
func normalize(raw igdb.Game, platform string) Game {
	g := Game{
		ID:        raw.ID,
		Name:      raw.Name,
		NameCN:    chineseAltName(raw.AlternativeNames),
		Platform:  platform,
		Genres:    make([]string, 0, len(raw.Genres)),
		Developer: companies(raw.InvolvedCompany, roleDeveloper),
		Publisher: companies(raw.InvolvedCompany, rolePublisher),
		CoverURL:  coverURL(raw.Cover),
		Summary:   raw.Summary,
	}

	if raw.FirstReleaseDate > 0 {
		g.ReleaseDate = time.Unix(raw.FirstReleaseDate, 0).UTC().Format("2006-01-02")
	}
	for _, genre := range raw.Genres {
		if genre.Name != "" {
			g.Genres = append(g.Genres, genre.Name)
		}
	}
	g.Popularity = raw.Hypes

	return g
}

type companyRole int

const (
	roleDeveloper companyRole = iota
	rolePublisher
)

func companies(involved []igdb.InvolvedCompany, role companyRole) string {
	var names []string
	for _, ic := range involved {
		if role == roleDeveloper && !ic.Developer {
			continue
		}
		if role == rolePublisher && !ic.Publisher {
			continue
		}
		if ic.Company.Name != "" {
			names = append(names, ic.Company.Name)
		}
	}
	return strings.Join(names, ", ")
}

// coverURL upgrades IGDB's thumbnail URL to the large cover size.
func coverURL(c igdb.Cover) string {
	if c.URL == "" {
		return ""
	}
	return strings.Replace(c.URL, "t_thumb", "t_cover_big", 1)
}

// chineseAltName extracts a Chinese title from IGDB alternative names, either
// tagged as such or containing Han runes.
func chineseAltName(alts []igdb.AlternativeName) string {
	for _, alt := range alts {
		comment := strings.ToLower(alt.Comment)
		if strings.Contains(comment, "chinese") || strings.Contains(alt.Comment, "中文") ||
			strings.Contains(alt.Comment, "简体") || strings.Contains(alt.Comment, "繁体") {
			return alt.Name
		}
		if containsHan(alt.Name) {
			return alt.Name
		}
	}
	return ""
}

func containsHan(s string) bool {
	for _, r := range s {
		if r >= 0x4e00 && r <= 0x9fff {
			return true
		}
	}
	return false
}

// sortReleases orders games by release date ascending, then name ascending,
// with TBA entries after all dated ones.
func sortReleases(games []Game) {
	sort.SliceStable(games, func(i, j int) bool {
		gi, gj := games[i], games[j]
		if gi.TBA() != gj.TBA() {
			return !gi.TBA()
		}
		if gi.ReleaseDate != gj.ReleaseDate {
			return gi.ReleaseDate < gj.ReleaseDate
		}
		return gi.Name < gj.Name
	})
}
