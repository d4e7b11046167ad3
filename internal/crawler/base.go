package crawler

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/hotdealbot/helpers"
	"sjsage522/hotdealbot/logger"
	"sjsage522/hotdealbot/services/cache"
)

// BaseCrawler provides common functionality for all crawlers
type BaseCrawler struct {
	URL       string
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	BaseURL   string
	Provider  string
}

// fetchWithCache fetches a URL with caching and rate limiting
func (c *BaseCrawler) fetchWithCache() (io.Reader, error) {
	// Check if the crawler is rate limited
	if c.CacheSvc != nil && c.CacheKey != "" {
		_, err := c.CacheSvc.Get(c.CacheKey)
		if err == nil {
			return nil, fmt.Errorf("%s: %d초 동안 더 이상 요청을 보내지 않음", c.CacheKey, c.BlockTime/time.Second)
		}
	}

	utf8Body, err := helpers.FetchWithRandomHeaders(c.URL)
	if err != nil {
		if c.CacheSvc != nil && c.CacheKey != "" && strings.HasPrefix(err.Error(), "rate limited") {
			// Remember the block so later cycles skip this site until the key expires
			if setErr := c.CacheSvc.Set(c.CacheKey, []byte(fmt.Sprintf("%d", c.BlockTime/time.Second)), c.BlockTime); setErr != nil {
				logger.ForCrawler(c.Provider).Warn().Err(setErr).Msg("failed to set rate limit cache")
			}
		}
		return nil, err
	}

	return utf8Body, nil
}

// createDocument creates a goquery document from a reader
func (c *BaseCrawler) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("HTML 파싱 오류: %v", err)
	}
	return doc, nil
}

// processDeals processes items one by one in page order. Dedup and alerting
// downstream depend on that order being stable, so no goroutine fan-out here.
// A nil result from the processor skips the item without aborting the source.
func (c *BaseCrawler) processDeals(selections *goquery.Selection, processor ProcessorFunc) []HotDeal {
	var deals []HotDeal
	selections.Each(func(i int, s *goquery.Selection) {
		if deal := processor(s); deal != nil {
			deals = append(deals, *deal)
		}
	})
	return deals
}

// ResolveURL turns a relative href into an absolute one. Hrefs that do not
// start with "/" are passed through untouched.
func (c *BaseCrawler) ResolveURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return c.BaseURL + href
	}
	return href
}

// GetName returns the crawler's name for logging
func (c *BaseCrawler) GetName() string {
	return c.Provider + "Crawler"
}

// GetProvider returns the provider name
func (c *BaseCrawler) GetProvider() string {
	return c.Provider
}
