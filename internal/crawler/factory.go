package crawler

import (
	"sjsage522/hotdealbot/config"
	"sjsage522/hotdealbot/logger"
	"sjsage522/hotdealbot/services/cache"
)

// CreateCrawlers creates all the crawlers based on the configuration. The
// slice order is the scan order: deals are deduplicated and alerted source by
// source in this order.
func CreateCrawlers(cfg *config.Config, cacheSvc cache.CacheService) []Crawler {
	configurations := []CrawlerConfig{
		{
			// FMKorea crawler configuration
			URL:       cfg.FMKoreaURL,
			CacheKey:  "fmkorea_rate_limited",
			BlockTime: 500,
			BaseURL:   "https://www.fmkorea.com",
			Provider:  "FMKorea",
			Selectors: Selectors{
				DealList: "li.li",
				Title:    "h3.title > a",
				Link:     "h3.title > a",
			},
		},
		{
			// TheQoo crawler configuration
			URL:       cfg.TheQooURL,
			CacheKey:  "theqoo_rate_limited",
			BlockTime: 500,
			BaseURL:   "https://theqoo.net",
			Provider:  "TheQoo",
			Selectors: Selectors{
				DealList: "table.board-list tbody tr",
				Title:    "td.title a",
				Link:     "td.title a",
			},
		},
		{
			// Arca crawler configuration; each row is itself the anchor, so
			// the link selector stays empty
			URL:       cfg.ArcaURL,
			CacheKey:  "arca_rate_limited",
			BlockTime: 500,
			BaseURL:   "https://arca.live",
			Provider:  "ArcaLive",
			Selectors: Selectors{
				DealList: "a.vrow",
				Title:    "span.title",
				Link:     "",
			},
		},
		{
			// Quasar crawler configuration
			URL:       cfg.QuasarURL,
			CacheKey:  "quasar_rate_limited",
			BlockTime: 500,
			BaseURL:   "https://quasarzone.com",
			Provider:  "Quasarzone",
			Selectors: Selectors{
				DealList: "div.market-info-list table tbody tr",
				Title:    "span.ellipsis-with-reply-cnt",
				Link:     "a.subject-link",
			},
		},
		{
			// HotdealZip crawler configuration; links are already absolute
			URL:       cfg.HotdealZipURL,
			CacheKey:  "hotdealzip_rate_limited",
			BlockTime: 500,
			BaseURL:   "",
			Provider:  "HotdealZip",
			Selectors: Selectors{
				DealList: "div.post-item",
				Title:    "h3.post-title a",
				Link:     "h3.post-title a",
			},
		},
	}

	var crawlers []Crawler
	for _, config := range configurations {
		crawlers = append(crawlers, NewConfigurableCrawler(config, cacheSvc))
	}

	logger.Info("Created %d crawlers", len(crawlers))

	return crawlers
}
