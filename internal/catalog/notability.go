package catalog

import "strings"

// DefaultHypeThreshold is the popularity score at or above which a game is
// notable regardless of who makes it.
const DefaultHypeThreshold = 10

// majorStudios are developers and publishers whose releases are always
// notable. Matching is case-insensitive and accepts substring matches in
// either direction ("Nintendo EPD" matches "Nintendo").
var majorStudios = []string{
	// Japanese majors
	"Nintendo", "Nintendo EPD", "Nintendo EAD",
	"Square Enix", "Square", "Enix",
	"Bandai Namco", "Bandai Namco Entertainment", "Bandai Namco Studios",
	"Capcom",
	"Konami", "Konami Digital Entertainment",
	"SEGA",
	"Atlus",
	"Koei Tecmo", "Koei Tecmo Games", "Omega Force", "Team Ninja",
	"Level-5", "Level5",
	"FromSoftware", "From Software",
	"PlatinumGames", "Platinum Games",
	"Falcom", "Nihon Falcom",
	"NIS", "Nippon Ichi Software",
	"Arc System Works",
	"Spike Chunsoft",
	"Grasshopper Manufacture",
	"Vanillaware",
	"Game Freak",
	"HAL Laboratory",
	"Intelligent Systems",
	"Monolith Soft",
	"Retro Studios",
	// Western majors
	"Ubisoft", "Ubisoft Montreal", "Ubisoft Paris",
	"Electronic Arts", "EA", "EA Sports",
	"Activision", "Activision Blizzard",
	"Blizzard", "Blizzard Entertainment",
	"Bethesda", "Bethesda Game Studios", "Bethesda Softworks",
	"2K Games", "2K", "Firaxis Games",
	"Rockstar Games", "Rockstar North",
	"Warner Bros", "WB Games",
	"CD Projekt", "CD Projekt Red",
	"Devolver Digital",
	"505 Games",
	"THQ Nordic",
	// Notable independents
	"Team Cherry",
	"Supergiant Games",
	"Moon Studios",
	"Yacht Club Games",
	"Motion Twin",
	"ConcernedApe",
}

// Heuristic decides whether a game's production team is of interest. It is
// deterministic: identical inputs always yield identical results.
type Heuristic struct {
	// HypeThreshold is the minimum popularity score; zero means the default.
	HypeThreshold int

	// ExtraStudios extends the built-in major-studio list.
	ExtraStudios []string
}

// Notable reports whether a game qualifies, given its popularity score and
// its developer/publisher strings (each possibly a comma-joined list).
func (h Heuristic) Notable(popularity int, companies ...string) bool {
	threshold := h.HypeThreshold
	if threshold <= 0 {
		threshold = DefaultHypeThreshold
	}
	if popularity >= threshold {
		return true
	}

	for _, field := range companies {
		for _, name := range strings.Split(field, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			if matchesStudio(name, majorStudios) || matchesStudio(name, h.ExtraStudios) {
				return true
			}
		}
	}
	return false
}

func matchesStudio(name string, studios []string) bool {
	for _, studio := range studios {
		studio = strings.ToLower(studio)
		if strings.Contains(name, studio) || strings.Contains(studio, name) {
			return true
		}
	}
	return false
}
