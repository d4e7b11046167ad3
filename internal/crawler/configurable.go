package crawler

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/hotdealbot/services/cache"
)

// ConfigurableCrawler is a crawler that can be configured with selectors
type ConfigurableCrawler struct {
	BaseCrawler
	Selectors Selectors
}

// NewConfigurableCrawler creates a new configurable crawler
func NewConfigurableCrawler(config CrawlerConfig, cacheSvc cache.CacheService) *ConfigurableCrawler {
	return &ConfigurableCrawler{
		BaseCrawler: BaseCrawler{
			URL:       config.URL,
			CacheKey:  config.CacheKey,
			CacheSvc:  cacheSvc,
			BlockTime: time.Duration(config.BlockTime) * time.Second,
			BaseURL:   config.BaseURL,
			Provider:  config.Provider,
		},
		Selectors: config.Selectors,
	}
}

// FetchDeals fetches deals based on the configuration
func (c *ConfigurableCrawler) FetchDeals() ([]HotDeal, error) {
	// Fetch the page with rate limiting
	utf8Body, err := c.fetchWithCache()
	if err != nil {
		return nil, err
	}

	// Parse the HTML document
	doc, err := c.createDocument(utf8Body)
	if err != nil {
		return nil, err
	}

	// Find all deal items
	dealSelections := doc.Find(c.Selectors.DealList)

	// Process deals
	deals := c.processDeals(dealSelections, c.processDeal)

	return deals, nil
}

// processDeal processes a single item. A nil return means the item is
// skipped; one malformed row must never abort the source.
func (c *ConfigurableCrawler) processDeal(s *goquery.Selection) *HotDeal {
	// Extract title; an empty selector means the item itself carries the text
	titleSel := s
	if c.Selectors.Title != "" {
		titleSel = s.Find(c.Selectors.Title)
		if titleSel.Length() == 0 {
			return nil
		}
	}

	title := strings.TrimSpace(titleSel.Text())
	if title == "" {
		return nil
	}

	// Extract link; an empty selector means the item is its own anchor
	linkSel := s
	if c.Selectors.Link != "" {
		linkSel = s.Find(c.Selectors.Link)
		if linkSel.Length() == 0 {
			return nil
		}
	}

	href, exists := linkSel.Attr("href")
	href = strings.TrimSpace(href)
	if !exists || href == "" || strings.Contains(href, "javascript") {
		return nil
	}

	return &HotDeal{
		Title:    title,
		Link:     c.ResolveURL(href),
		Provider: c.Provider,
	}
}
