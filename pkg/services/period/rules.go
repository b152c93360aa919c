package period

import "time"

// CodeFullYear is the degrade-gracefully fallback every unknown period
// code resolves to.
const CodeFullYear = "year"

// boundary is a month/day anchor; yearOffset shifts it into an adjacent
// calendar year (the winter season ends in the following year).
type boundary struct {
	month      time.Month
	day        int
	yearOffset int
}

// rule describes one symbolic period. Calendar rules carry start/end
// boundaries; feast rules carry day offsets from Easter Sunday.
type rule struct {
	code       string
	label      string
	start, end boundary
	feast      bool
	feastFrom  int
	feastTo    int
}

// The boundary table. Feast windows move with Easter and are recomputed
// per year; everything else is fixed month/day business convention.
var rules = []rule{
	{code: CodeFullYear, label: "Full year",
		start: boundary{time.January, 1, 0}, end: boundary{time.December, 31, 0}},
	{code: "winter", label: "Winter season",
		start: boundary{time.December, 21, 0}, end: boundary{time.March, 20, 1}},
	{code: "spring", label: "Spring season",
		start: boundary{time.April, 5, 0}, end: boundary{time.June, 8, 0}},
	{code: "summer", label: "Summer season",
		start: boundary{time.June, 21, 0}, end: boundary{time.September, 20, 0}},
	{code: "autumn", label: "Autumn season",
		start: boundary{time.September, 21, 0}, end: boundary{time.December, 20, 0}},
	{code: "february_holidays", label: "February school holidays",
		start: boundary{time.February, 8, 0}, end: boundary{time.March, 8, 0}},
	{code: "may_bridge", label: "May bridge weekends",
		start: boundary{time.May, 1, 0}, end: boundary{time.June, 9, 0}},
	{code: "easter_weekend", label: "Easter weekend",
		feast: true, feastFrom: -2, feastTo: 1},
	{code: "ascension_bridge", label: "Ascension bridge",
		feast: true, feastFrom: 39, feastTo: 42},
	{code: "pentecost_weekend", label: "Pentecost weekend",
		feast: true, feastFrom: 48, feastTo: 50},
}

// Synonyms accepted for each code, already in normalize.Code form.
// Carries the French spellings the historical callers still send.
var synonyms = map[string]string{
	"annee":             CodeFullYear,
	"annee complete":    CodeFullYear,
	"full year":         CodeFullYear,
	"hiver":             "winter",
	"vacances d'hiver":  "winter",
	"saison hiver":      "winter",
	"printemps":         "spring",
	"periode printemps": "spring",
	"ete":               "summer",
	"saison ete":        "summer",
	"automne":           "autumn",
	"vacances fevrier":  "february_holidays",
	"vacances de fevrier": "february_holidays",
	"pont de mai":       "may_bridge",
	"pont mai":          "may_bridge",
	"mai":               "may_bridge",
	"paques":            "easter_weekend",
	"easter":            "easter_weekend",
	"week end de paques": "easter_weekend",
	"ascension":         "ascension_bridge",
	"pentecote":         "pentecost_weekend",
	"pentecost":         "pentecost_weekend",
}
