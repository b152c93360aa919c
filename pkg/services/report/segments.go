package report

import (
	"github.com/obs-tools/visit-atlas/pkg/models/store"
	"github.com/obs-tools/visit-atlas/pkg/normalize"
)

// Consumer-segment exports arrive at the supplier's fine grain.
// segmentGroups rolls the raw labels up to the three published
// spending buckets before ranking.
var segmentGroups = map[string]string{
	"PAVILLONNAIRE FAMILIAL AISE": "CSP +",
	"URBAIN FAMILIAL AISE":        "CSP +",
	"URBAIN DYNAMIQUE":            "CSP +",
	"RURAL DYNAMIQUE":             "CSP +",
	"PERIURBAIN EN CROISSANCE":    "CSP en croissance",
	"RESIDENCE SECONDAIRE":        "CSP en croissance",
	"URBAIN CLASSE MOYENNE":       "CSP en croissance",
	"POPULAIRE":                   "Populaire",
	"RURAL TRADITIONNEL":          "Populaire",
	"RURAL OUVRIER":               "Populaire",
	"URBAIN DEFAVORISE":           "Populaire",
}

// groupSegments sums raw segment volumes into their buckets. Labels
// with no bucket are dropped rather than ranked as noise.
func groupSegments(rows []store.DimensionRow) []store.DimensionRow {
	totals := make(map[string]int64, 3)
	var order []string
	for _, r := range rows {
		group, ok := segmentGroups[normalize.Key(r.Member)]
		if !ok {
			continue
		}
		if _, seen := totals[group]; !seen {
			order = append(order, group)
		}
		totals[group] += r.Volume
	}
	out := make([]store.DimensionRow, 0, len(order))
	for _, g := range order {
		out = append(out, store.DimensionRow{Member: g, Volume: totals[g]})
	}
	return out
}
