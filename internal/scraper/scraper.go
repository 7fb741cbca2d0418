// Package scraper fetches the community plugins wiki page and parses its
// category sections into a catalog. Each wiki section heading becomes a
// category; each table row under it becomes a package with its repository
// link, author, and description.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/hbpm-labs/hbpm/internal/logging"
	"github.com/hbpm-labs/hbpm/internal/pkgdb"
)

// adviceSection is a wiki heading that carries prose, not a plugin table.
const adviceSection = "General Advice"

// WikiFetcher retrieves and parses the plugins wiki page.
type WikiFetcher struct {
	url    string
	client *retryablehttp.Client
	log    *logging.Logger
}

// NewWikiFetcher constructs a fetcher for the given wiki page URL.
func NewWikiFetcher(url string, log *logging.Logger) *WikiFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = 30 * time.Second
	client.Logger = nil

	return &WikiFetcher{url: url, client: client, log: log}
}

// FetchCatalog downloads the wiki page and parses it into a catalog.
func (w *WikiFetcher) FetchCatalog(ctx context.Context) (pkgdb.Catalog, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, w.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", w.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", w.url, resp.StatusCode)
	}

	catalog, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	w.log.Infow("scraped plugins wiki",
		"url", w.url, "categories", len(catalog), "packages", catalog.Count())
	return catalog, nil
}

// Parse extracts the catalog from wiki page HTML. Section headings pair
// with the tables that follow them in document order; the general-advice
// section has no table and is skipped.
func Parse(r io.Reader) (pkgdb.Catalog, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing wiki page: %w", err)
	}

	var categories []string
	doc.Find(".markdown-body h3").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Text())
		if name != "" && name != adviceSection {
			categories = append(categories, name)
		}
	})

	catalog := pkgdb.Catalog{}
	doc.Find(".markdown-body table").Each(func(i int, table *goquery.Selection) {
		if i >= len(categories) {
			return
		}
		category := categories[i]
		catalog[category] = parseTable(table)
	})

	if len(catalog) == 0 {
		return nil, fmt.Errorf("no package tables found on wiki page")
	}
	return catalog, nil
}

// parseTable reads one category table. Header rows carry th cells and are
// skipped; each remaining row is title/author/description with the
// repository taken from the title cell's link.
func parseTable(table *goquery.Selection) []pkgdb.Package {
	packages := []pkgdb.Package{}

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		var pkg pkgdb.Package
		cells.Each(func(col int, cell *goquery.Selection) {
			text := normalize(cell.Text())
			switch col {
			case 0:
				pkg.Title = text
				if href, ok := cell.Find("a").First().Attr("href"); ok {
					pkg.Repository = strings.TrimSpace(href)
				}
			case 1:
				pkg.Author = text
			case 2:
				pkg.Description = text
			}
		})

		if pkg.Title != "" {
			packages = append(packages, pkg)
		}
	})

	return packages
}

// normalize collapses runs of whitespace left over from nested markup.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
