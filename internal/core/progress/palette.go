package progress

import (
	"hash/fnv"
	"strings"
)

const DefaultColor = "indigo"

var categoryColors = map[string]string{
	"fitness":         "red",
	"personal growth": "blue",
	"financial":       "green",
	"relationships":   "purple",
	"community":       "yellow",
	"self-care":       "pink",
}

// fallbackColors are handed out to categories outside the table by title hash,
// so a category keeps its colour across requests.
var fallbackColors = []string{"indigo", "teal", "orange", "cyan", "lime", "rose", "amber", "sky"}

// tierShades maps a tier to an abstract shade step; renderers decide what a step looks like.
var tierShades = [...]int{100, 200, 400, 600, 800}

// CategoryColor returns the colour family of a category title.
func CategoryColor(title string) string {
	key := strings.ToLower(strings.TrimSpace(title))
	if key == "" {
		return DefaultColor
	}
	if c, ok := categoryColors[key]; ok {
		return c
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return fallbackColors[h.Sum32()%uint32(len(fallbackColors))]
}

func Shade(t Tier) int {
	if t < TierNone || t > TierVeryHigh {
		return tierShades[TierNone]
	}
	return tierShades[t]
}

type LegendEntry struct {
	Tier  Tier   `json:"tier"`
	Name  string `json:"name"`
	Shade int    `json:"shade"`
}

// Legend describes every tier for heatmap renderers.
func Legend() []LegendEntry {
	legend := make([]LegendEntry, 0, len(tierShades))
	for t := TierNone; t <= TierVeryHigh; t++ {
		legend = append(legend, LegendEntry{Tier: t, Name: t.String(), Shade: Shade(t)})
	}
	return legend
}
