package zone

// Built-in alias tables, one per naming epoch of the fact store.
// Keys are normalize.Key-folded display labels, values the canonical
// store label. The legacy epoch stores zones under their historical
// administrative codes; the current epoch stores them under their
// display names. Both tables carry the spelling and punctuation
// variants that show up in historical CSV exports, including the
// intercommunality names that were folded into their parent territory
// for reporting.

var legacyAliases = map[string]string{
	"PAYS D'AURILLAC":         "CABA",
	"PAYS DAURILLAC":          "CABA",
	"CA DU BASSIN D'AURILLAC": "CABA",
	"CABA":                    "CABA",

	"CANTAL": "CANTAL",

	"CARLADES":      "CARLADES",
	"CC DU CARLADE": "CARLADES",

	"CHATAIGNERAIE": "CHÂTAIGNERAIE",

	"HAUT CANTAL": "GENTIANE",
	"HAUT-CANTAL": "GENTIANE",
	"HAUTCANTAL":  "GENTIANE",
	"GENTIANE":    "GENTIANE",

	"HAUTES TERRES": "HTC",
	"HAUTES-TERRES": "HTC",
	"HAUTESTERRES":  "HTC",
	"HTC":           "HTC",

	"PAYS DE MAURIAC": "PAYS DE MAURIAC",

	"PAYS SAINT FLOUR":      "PAYS SAINT FLOUR",
	"SAINT FLOUR COMMUNAUTE": "PAYS SAINT FLOUR",
	"ST FLOUR COMMUNAUTE":   "PAYS SAINT FLOUR",

	"PAYS SALERS":          "PAYS SALERS",
	"CC DU PAYS DE SALERS": "PAYS SALERS",

	"LIORAN":         "STATION",
	"STATION":        "STATION",
	"STATION DE SKI": "STATION",

	"VAL TRUYERE":          "VAL TRUYÈRE",
	"VALLEE DE LA TRUYERE": "VAL TRUYÈRE",

	// Administrative zones kept resolvable but not listed on dashboards.
	"HAUTES TERRES COMMUNAUTE":            "HAUTES TERRES COMMUNAUTE",
	"STATION THERMALE DE CHAUDES-AIGUES":  "STATION THERMALE DE CHAUDES-AIGUES",
	"CC SUMENE ARTENSE":                   "CC SUMENE ARTENSE",
	"CCSA":                                "CCSA",
	"RESTE DEPARTEMENT":                   "RESTE DEPARTEMENT",
}

var currentAliases = map[string]string{
	"PAYS D'AURILLAC":         "PAYS D'AURILLAC",
	"CA DU BASSIN D'AURILLAC": "PAYS D'AURILLAC",
	"CABA":                    "PAYS D'AURILLAC",

	"CANTAL": "CANTAL",

	"CARLADES":      "CARLADES",
	"CC DU CARLADE": "CARLADES",

	"CHATAIGNERAIE": "CHÂTAIGNERAIE",

	"HAUT CANTAL": "HAUT CANTAL",
	"HAUT-CANTAL": "HAUT CANTAL",
	"GENTIANE":    "HAUT CANTAL",

	"HAUTES TERRES": "HAUTES TERRES",
	"HAUTES-TERRES": "HAUTES TERRES",
	"HTC":           "HAUTES TERRES",

	"PAYS DE MAURIAC": "PAYS DE MAURIAC",

	"PAYS SAINT FLOUR":      "PAYS SAINT FLOUR",
	"SAINT FLOUR COMMUNAUTE": "PAYS SAINT FLOUR",
	"ST FLOUR COMMUNAUTE":   "PAYS SAINT FLOUR",

	"PAYS SALERS":          "PAYS SALERS",
	"CC DU PAYS DE SALERS": "PAYS SALERS",

	"LIORAN":         "LIORAN",
	"STATION":        "LIORAN",
	"STATION DE SKI": "LIORAN",

	"VAL TRUYERE":          "VAL TRUYÈRE",
	"VALLEE DE LA TRUYERE": "VAL TRUYÈRE",

	"HAUTES TERRES COMMUNAUTE":           "HAUTES TERRES COMMUNAUTE",
	"STATION THERMALE DE CHAUDES-AIGUES": "STATION THERMALE DE CHAUDES-AIGUES",
	"CC SUMENE ARTENSE":                  "CC SUMENE ARTENSE",
	"CCSA":                               "CCSA",
	"RESTE DEPARTEMENT":                  "RESTE DEPARTEMENT",
}

// Canonical label → preferred display label, per epoch. Entries absent
// from the map display as themselves.
var legacyDisplay = map[string]string{
	"CABA":     "PAYS D'AURILLAC",
	"GENTIANE": "HAUT CANTAL",
	"HTC":      "HAUTES TERRES",
	"STATION":  "LIORAN",
}

var currentDisplay = map[string]string{}

// Zones excluded from dashboard listings even though they resolve.
var excludedZones = map[string]bool{
	"HAUTES TERRES COMMUNAUTE":           true,
	"STATION THERMALE DE CHAUDES-AIGUES": true,
	"CC SUMENE ARTENSE":                  true,
	"CCSA":                               true,
	"RESTE DEPARTEMENT":                  true,
}
