package page

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	profileRe       = regexp.MustCompile(`/profile/(\d+)-([^/?]+)`)
	profileHrefRe   = regexp.MustCompile(`/profile/(\d+)-`)
	trailingDigitRe = regexp.MustCompile(`/(\d+)$`)
	leadingNumberRe = regexp.MustCompile(`\d+`)
)

// StatValue parses a displayed stat such as "12,345" or "1.234". Group
// separators are dropped; anything that is not then a plain run of ASCII
// digits yields 0.
func StatValue(s string) int {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(".", "", ",", "").Replace(s)
	if s == "" {
		return 0
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// PlayerIDFromHref returns the numeric id of a "/profile/<id>-<slug>" link,
// or "" when href is not a profile link.
func PlayerIDFromHref(href string) string {
	m := profileHrefRe.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}

// ProfileFromURL extracts the display name and id from a profile URL.
func ProfileFromURL(u string) (name, id string, ok bool) {
	m := profileRe.FindStringSubmatch(u)
	if m == nil {
		return "", "", false
	}
	name = m[2]
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name, m[1], true
}

// MatchIDFromURL returns the final path segment of a match URL.
func MatchIDFromURL(u string) string {
	u = strings.TrimRight(u, "/")
	if i := strings.LastIndexByte(u, '/'); i >= 0 {
		return u[i+1:]
	}
	return u
}

// MatchNumber returns the trailing numeric id of a match URL, or 0.
func MatchNumber(u string) int {
	m := trailingDigitRe.FindStringSubmatch(u)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// IsMatchHref reports whether href is a site-relative match-detail link of
// the form "/match/<id>".
func IsMatchHref(href string) bool {
	return strings.HasPrefix(href, "/match/") && strings.Count(href, "/") <= 2
}

// ProfileMatchesURL builds the URL of one page of a player's match history.
func ProfileMatchesURL(baseURL, id, name string, pageNum int) string {
	slug := strings.ReplaceAll(strings.ToLower(name), " ", "%20")
	u := strings.TrimRight(baseURL, "/") + "/profile/" + id + "-" + slug + "/matches"
	if pageNum > 1 {
		u += "?page=" + strconv.Itoa(pageNum)
	}
	return u
}

var relativeUnits = []struct {
	word string
	unit time.Duration
}{
	{"second", time.Second},
	{"minute", time.Minute},
	{"hour", time.Hour},
	{"day", 24 * time.Hour},
	{"week", 7 * 24 * time.Hour},
	{"month", 30 * 24 * time.Hour},
	{"year", 365 * 24 * time.Hour},
}

// RelativeTime resolves strings like "5 minutes ago" or "a day ago" against
// now. Months count as 30 days and years as 365. It returns nil for text
// without "ago" or without a recognised unit.
func RelativeTime(s string, now time.Time) *time.Time {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.Contains(s, "ago") {
		return nil
	}
	s = strings.TrimSpace(strings.Replace(s, " ago", "", 1))

	n := 1
	if d := leadingNumberRe.FindString(s); d != "" {
		if v, err := strconv.Atoi(d); err == nil {
			n = v
		}
	}
	for _, u := range relativeUnits {
		if strings.Contains(s, u.word) {
			t := now.Add(-time.Duration(n) * u.unit)
			return &t
		}
	}
	return nil
}

// ISOTime parses a datetime attribute such as "2024-03-01T12:00:00Z".
func ISOTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
