package utils

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

// FindUnitByName resolves player input to a master unit: exact match first
// (case-insensitive), then the best fuzzy match.
func FindUnitByName(units []*models.Unit, query string) (*models.Unit, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false
	}

	for _, u := range units {
		if strings.EqualFold(u.Name, query) {
			return u, true
		}
	}

	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.Name
	}
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return nil, false
	}
	return units[matches[0].Index], true
}

// FindPlayerUnitByName is the roster counterpart, matching nicknames.
func FindPlayerUnitByName(units []*models.PlayerUnit, query string) (*models.PlayerUnit, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false
	}

	for _, u := range units {
		if strings.EqualFold(u.Nickname, query) {
			return u, true
		}
	}

	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.Nickname
	}
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return nil, false
	}
	return units[matches[0].Index], true
}

// ProgressBar renders a fixed-width unicode bar for ratios in [0, 1].
func ProgressBar(ratio float64, width int) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < width; i++ {
		if i < filled {
			bar.WriteString("■")
		} else {
			bar.WriteString("□")
		}
	}
	bar.WriteString("]")
	return bar.String()
}
