// Package page isolates the site-specific markup rules. The crawler and the
// match parser only see the structured views defined here, so fixture
// implementations of Model can stand in for real HTML in tests.
package page

import "errors"

// ErrNoStatsSection is returned when a match page lacks its stats section.
var ErrNoStatsSection = errors.New("stats section not found")

// TableKind classifies a stat table by its header.
type TableKind int

const (
	TableUnknown TableKind = iota
	TableScoreboard
	TablePerformance
)

func (k TableKind) String() string {
	switch k {
	case TableScoreboard:
		return "scoreboard"
	case TablePerformance:
		return "performance"
	default:
		return "unknown"
	}
}

// HistoryPage is one page of a profile's match history.
type HistoryPage struct {
	// MatchLinks are the raw hrefs of match anchors, in page order.
	MatchLinks []string
	// HasPagination is false when the page carries no pagination control.
	HasPagination bool
	// HasNext is true when the control offers an enabled "next" link.
	HasNext bool
}

// MatchPage is the extracted view of one match-detail page.
type MatchPage struct {
	MapName string // empty when no known map element exists
	// TimeAgo is the text of the relative-time element, e.g. "5 minutes ago".
	TimeAgo string
	// TimeISO is the datetime attribute of a <time> element, if any.
	TimeISO string
	Tables  []StatTable
}

// StatTable is one per-team stat block.
type StatTable struct {
	Kind TableKind
	Win  bool
	Rows []PlayerRow
}

// PlayerRow is one player line inside a stat table. Rows lacking a name link
// or champion image are dropped by the model.
type PlayerRow struct {
	Name     string
	Href     string
	Champion string
	// Fields holds the trimmed text of the row's stat cells, in order.
	Fields []string
}

// Model extracts structured views from raw page bodies.
type Model interface {
	History(body []byte) (HistoryPage, error)
	// Match returns ErrNoStatsSection when the stats section is missing; the
	// other fields of the returned page are still populated.
	Match(body []byte) (MatchPage, error)
}
