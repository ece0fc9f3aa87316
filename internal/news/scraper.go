package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// Scraper handles scraping headlines from multiple sources
type Scraper struct {
	sources []Source
	timeout time.Duration
}

// Source defines a news source configuration
type Source struct {
	Name       string
	BaseURL    string
	SearchPath string // e.g., "/search?q={symbol}"
	Selectors  Selectors
	RateLimit  time.Duration
}

// Selectors defines CSS selectors for extracting headline data
type Selectors struct {
	Container   string
	Title       string
	URL         string
	Description string
}

// NewScraper creates a news scraper with default sources
func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		sources: getDefaultSources(),
		timeout: timeout,
	}
}

func getDefaultSources() []Source {
	return []Source{
		{
			Name:       "MoneyControl",
			BaseURL:    "https://www.moneycontrol.com",
			SearchPath: "/news/tags/{symbol}.html",
			Selectors: Selectors{
				Container:   "li.clearfix",
				Title:       "h2 a, h3 a",
				URL:         "h2 a, h3 a",
				Description: "p",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "EconomicTimes",
			BaseURL:    "https://economictimes.indiatimes.com",
			SearchPath: "/topic/{symbol}",
			Selectors: Selectors{
				Container:   "div.story-box",
				Title:       "a",
				URL:         "a",
				Description: "p",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "BusinessStandard",
			BaseURL:    "https://www.business-standard.com",
			SearchPath: "/search?q={symbol}",
			Selectors: Selectors{
				Container:   "div.listing-txt",
				Title:       "a.Hdng",
				URL:         "a.Hdng",
				Description: "p",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

// Headlines fetches news items for a symbol from all sources. A source that
// fails is skipped, not fatal.
func (s *Scraper) Headlines(ctx context.Context, symbol string, limit int) ([]types.Headline, error) {
	logger.Info(ctx, "Starting news scraping", "symbol", symbol, "sources", len(s.sources))

	all := []types.Headline{}
	perSource := limit / len(s.sources)
	if perSource < 1 {
		perSource = 1
	}

	for _, source := range s.sources {
		items, err := s.scrapeSource(ctx, source, symbol, perSource)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", source.Name, "symbol", symbol)
			continue
		}
		all = append(all, items...)

		// Rate limiting between sources
		time.Sleep(source.RateLimit)
	}

	if len(all) == 0 {
		logger.Info(ctx, "No headlines from primary sources, trying Google News", "symbol", symbol)
		return s.scrapeGoogleNews(ctx, symbol, limit)
	}

	logger.Info(ctx, "News scraping completed", "symbol", symbol, "headlines", len(all))
	return all, nil
}

func (s *Scraper) scrapeSource(ctx context.Context, source Source, symbol string, limit int) ([]types.Headline, error) {
	headlines := []types.Headline{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)

	c.SetRequestTimeout(s.timeout)

	// Set user agent to avoid being blocked
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnHTML(source.Selectors.Container, func(e *colly.HTMLElement) {
		if len(headlines) >= limit {
			return
		}

		title := strings.TrimSpace(e.ChildText(source.Selectors.Title))
		if title == "" {
			return
		}

		link := e.ChildAttr(source.Selectors.URL, "href")
		if link == "" {
			return
		}
		if !strings.HasPrefix(link, "http") {
			link = source.BaseURL + link
		}

		headlines = append(headlines, types.Headline{
			Title:       title,
			Description: firstParagraph(e.DOM, source.Selectors.Description),
			URL:         link,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "source", source.Name, "url", r.Request.URL.String())
	})

	searchURL := source.BaseURL + strings.ReplaceAll(source.SearchPath, "{symbol}", strings.ToLower(symbol))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}
	c.Wait()

	return headlines, nil
}

// firstParagraph pulls the first non-trivial paragraph under the container
// as the headline description.
func firstParagraph(sel *goquery.Selection, selector string) string {
	desc := ""
	sel.Find(selector).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if len(text) > 20 {
			desc = text
			return false
		}
		return true
	})
	return desc
}

func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// scrapeGoogleNews is the fallback when no primary source yields headlines.
func (s *Scraper) scrapeGoogleNews(ctx context.Context, symbol string, limit int) ([]types.Headline, error) {
	headlines := []types.Headline{}

	c := colly.NewCollector(
		colly.AllowedDomains("news.google.com", "www.google.com"),
	)

	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if len(headlines) >= limit {
			return
		}

		title := e.ChildText("h3, h4")
		link := e.ChildAttr("a", "href")
		if title == "" || link == "" {
			return
		}

		// Clean up Google News redirect URL
		if strings.HasPrefix(link, "./articles/") {
			link = "https://news.google.com" + link[1:]
		}

		headlines = append(headlines, types.Headline{Title: title, URL: link})
	})

	searchQuery := url.QueryEscape(symbol + " stock news")
	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en-IN&gl=IN&ceid=IN:en", searchQuery)

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to scrape Google News: %w", err)
	}
	c.Wait()

	logger.Info(ctx, "Google News scraping completed", "symbol", symbol, "headlines", len(headlines))
	return headlines, nil
}
