package crawler

import "github.com/PuerkitoBio/goquery"

// HotDeal represents a scraped hot deal
type HotDeal struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Provider string `json:"provider"`
}

// Crawler interface defines the contract for all crawler implementations
type Crawler interface {
	// FetchDeals retrieves hot deals from a source
	FetchDeals() ([]HotDeal, error)

	// GetName returns the crawler's name for logging and identification
	GetName() string

	// GetProvider returns the provider name for the crawler
	GetProvider() string
}

// ProcessorFunc defines the function signature for processing a single item
type ProcessorFunc func(*goquery.Selection) *HotDeal

// Selectors contains CSS selectors for various elements in the page. An
// empty Title or Link selector means the item node itself plays that role;
// some boards render each row as a single anchor.
type Selectors struct {
	DealList string
	Title    string
	Link     string
}

// CrawlerConfig contains configuration for a crawler
type CrawlerConfig struct {
	URL       string
	CacheKey  string
	BlockTime int
	BaseURL   string
	Provider  string
	Selectors Selectors
}
