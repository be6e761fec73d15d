// Package crawler discovers the match-detail URLs of one player by walking
// the paginated match history.
package crawler

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/optisebas/paladins-match-analyzer/internal/fetch"
	"github.com/optisebas/paladins-match-analyzer/internal/model"
	"github.com/optisebas/paladins-match-analyzer/internal/page"
)

// Options bounds a crawl.
type Options struct {
	BaseURL    string
	MaxPages   int // <= 0 means 50
	MaxMatches int // <= 0 means unlimited
	// Delay is the inter-request delay; the crawler waits half of it between
	// history pages.
	Delay time.Duration
}

// Crawler walks history pages through a Fetcher and a page Model.
type Crawler struct {
	fetch fetch.Fetcher
	pages page.Model
	sleep fetch.Sleeper
	opts  Options
	log   *slog.Logger
}

// New returns a Crawler. A nil sleeper uses wall-clock timers; a nil logger
// uses slog.Default().
func New(f fetch.Fetcher, pages page.Model, sleep fetch.Sleeper, opts Options, log *slog.Logger) *Crawler {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 50
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://paladins.guru"
	}
	if sleep == nil {
		sleep = fetch.WallClock
	}
	if log == nil {
		log = slog.Default()
	}
	return &Crawler{fetch: f, pages: pages, sleep: sleep, opts: opts, log: log}
}

// Crawl returns the player's match URLs, newest first. Page-level failures
// end the crawl with whatever was collected; the only error returned is the
// context's.
func (c *Crawler) Crawl(ctx context.Context, p model.Player) ([]string, error) {
	base := strings.TrimRight(c.opts.BaseURL, "/")
	seen := make(map[string]struct{})
	log := c.log.With("player", p.Name, "player_id", p.ID)

	for pageNum := 1; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		url := page.ProfileMatchesURL(base, p.ID, p.Name, pageNum)
		log.Debug("fetching history page", "page", pageNum, "url", url)

		body, err := c.fetch.Fetch(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("history page fetch failed, stopping", "page", pageNum, "err", err)
			break
		}
		hp, err := c.pages.History(body)
		if err != nil {
			log.Warn("history page unreadable, stopping", "page", pageNum, "err", err)
			break
		}

		if pageNum > 1 && len(hp.MatchLinks) == 0 {
			log.Debug("no match links, end of history", "page", pageNum)
			break
		}
		added := 0
		for _, href := range hp.MatchLinks {
			if !page.IsMatchHref(href) {
				continue
			}
			full := base + href
			if _, ok := seen[full]; !ok {
				seen[full] = struct{}{}
				added++
			}
		}
		log.Debug("history page parsed", "page", pageNum, "links", len(hp.MatchLinks), "new", added)
		if pageNum > 1 && added == 0 {
			break
		}
		if !hp.HasPagination || !hp.HasNext {
			break
		}
		if pageNum >= c.opts.MaxPages {
			log.Info("max history pages reached", "pages", c.opts.MaxPages)
			break
		}
		if err := c.sleep.Sleep(ctx, c.opts.Delay/2); err != nil {
			return nil, err
		}
	}

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	SortNewestFirst(urls)
	if c.opts.MaxMatches > 0 && len(urls) > c.opts.MaxMatches {
		urls = urls[:c.opts.MaxMatches]
	}
	log.Info("crawl finished", "matches", len(urls))
	return urls, nil
}

// SortNewestFirst orders match URLs by their trailing numeric id, descending.
// URLs without one sort as id 0; ties fall back to the URL text so the order
// is deterministic.
func SortNewestFirst(urls []string) {
	sort.Slice(urls, func(i, j int) bool {
		ni, nj := page.MatchNumber(urls[i]), page.MatchNumber(urls[j])
		if ni != nj {
			return ni > nj
		}
		return urls[i] < urls[j]
	})
}
