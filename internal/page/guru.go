package page

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for paladins.guru server-rendered markup. Grouped selectors list
// the variants seen across site revisions; the first match in document order
// wins.
const (
	historyContainerSelector = "div.match-history-list, div.infinite-scroll > div > div"
	matchLinkSelector        = "a[href^='/match/']"
	paginationSelector       = "ul.pagination"
	pageItemSelector         = "li.page-item"

	mapNameSelector   = "div.match-header__map-name, span.match-title__map, div.map-name"
	timeAgoSelector   = "div.match-header__time span, span.timeago, time.timeago"
	timeISOSelector   = "time[datetime]"
	statsSelector     = "section#match-stats"
	tableSelector     = "div.match-table"
	tableHeader       = ".match-table__header"
	playerRowSelector = "div.row.match-table__row"
	playerInfo        = "div.row__player"
	playerName        = "a.row__player__name"
	playerChampImg    = "img.row__player__img"
	statCellSelector  = "div.row__item"
)

// Guru is the Model for paladins.guru.
type Guru struct{}

var _ Model = Guru{}

func parseDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// History extracts match anchors and the pagination state. Anchors are taken
// from the history list container when present, else from the whole page.
func (Guru) History(body []byte) (HistoryPage, error) {
	doc, err := parseDocument(body)
	if err != nil {
		return HistoryPage{}, err
	}

	var hp HistoryPage
	scope := doc.Selection
	if container := doc.Find(historyContainerSelector).First(); container.Length() > 0 {
		scope = container
	}
	scope.Find(matchLinkSelector).Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			hp.MatchLinks = append(hp.MatchLinks, href)
		}
	})

	pagination := doc.Find(paginationSelector).First()
	if pagination.Length() == 0 {
		return hp, nil
	}
	hp.HasPagination = true

	// The "next" item is normally last; scan from the end.
	items := pagination.Find(pageItemSelector)
	for i := items.Length() - 1; i >= 0; i-- {
		li := items.Eq(i)
		a := li.Find("a").First()
		if a.Length() == 0 || !strings.Contains(strings.ToLower(a.Text()), "next") {
			continue
		}
		hp.HasNext = !li.HasClass("disabled")
		break
	}
	return hp, nil
}

// Match extracts map, time and stat tables from a match-detail page.
func (Guru) Match(body []byte) (MatchPage, error) {
	doc, err := parseDocument(body)
	if err != nil {
		return MatchPage{}, err
	}

	var mp MatchPage
	if el := doc.Find(mapNameSelector).First(); el.Length() > 0 {
		mp.MapName = strings.TrimSpace(el.Text())
	}
	if el := doc.Find(timeAgoSelector).First(); el.Length() > 0 {
		mp.TimeAgo = strings.TrimSpace(el.Text())
	}
	mp.TimeISO = doc.Find(timeISOSelector).First().AttrOr("datetime", "")

	section := doc.Find(statsSelector).First()
	if section.Length() == 0 {
		return mp, ErrNoStatsSection
	}

	section.Find(tableSelector).Each(func(_ int, table *goquery.Selection) {
		st := StatTable{
			Kind: classifyTable(strings.ToLower(table.Find(tableHeader).First().Text())),
			Win:  table.HasClass("win"),
		}
		table.Find(playerRowSelector).Each(func(_ int, row *goquery.Selection) {
			if pr, ok := parsePlayerRow(row); ok {
				st.Rows = append(st.Rows, pr)
			}
		})
		mp.Tables = append(mp.Tables, st)
	})
	return mp, nil
}

func classifyTable(header string) TableKind {
	switch {
	case strings.Contains(header, "k/d/a") && strings.Contains(header, "credits"):
		return TableScoreboard
	case strings.Contains(header, "healing") && strings.Contains(header, "weapon"):
		return TablePerformance
	default:
		return TableUnknown
	}
}

func parsePlayerRow(row *goquery.Selection) (PlayerRow, bool) {
	info := row.Find(playerInfo).First()
	if info.Length() == 0 {
		return PlayerRow{}, false
	}
	name := info.Find(playerName).First()
	img := info.Find(playerChampImg).First()
	if name.Length() == 0 || img.Length() == 0 {
		return PlayerRow{}, false
	}

	pr := PlayerRow{
		Name:     strings.TrimSpace(name.Text()),
		Href:     name.AttrOr("href", ""),
		Champion: strings.TrimSpace(img.AttrOr("alt", "Unknown")),
	}
	row.ChildrenFiltered(statCellSelector).Each(func(_ int, cell *goquery.Selection) {
		pr.Fields = append(pr.Fields, strings.TrimSpace(cell.Text()))
	})
	return pr, true
}
