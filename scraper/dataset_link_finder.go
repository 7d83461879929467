// scraper/dataset_link_finder.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DatasetExtensions are the downloadable formats the record sources understand.
var DatasetExtensions = []string{".csv", ".json", ".ndjson"}

// FindDatasetLink fetches pageURL and returns the absolute URL of the first <a href> inside
// containerSelector whose path ends in one of extensions (DatasetExtensions when empty).
func FindDatasetLink(ctx context.Context, client *http.Client, pageURL, containerSelector string, extensions []string) (string, error) {
	log.Printf("Scraper: Looking for dataset link on %s (container: '%s')\n", pageURL, containerSelector)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get URL %s: %w", pageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get URL %s: status code %d", pageURL, res.StatusCode)
	}

	return findDatasetLink(res.Body, pageURL, containerSelector, extensions)
}

func findDatasetLink(body io.Reader, pageURL, containerSelector string, extensions []string) (string, error) {
	if len(extensions) == 0 {
		extensions = DatasetExtensions
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}

	if containerSelector == "" {
		containerSelector = "body"
	}

	var found string
	doc.Find(containerSelector).Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if !HasDatasetExtension(href, extensions) {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			log.Printf("WARN Scraper: skipping unparsable href %q on %s: %v", href, pageURL, err)
			return true
		}
		found = base.ResolveReference(ref).String()
		return false
	})

	if found == "" {
		return "", fmt.Errorf("no dataset link (%s) found on %s within container '%s'",
			strings.Join(extensions, ", "), pageURL, containerSelector)
	}
	log.Printf("Scraper: Found dataset link %s\n", found)
	return found, nil
}

// HasDatasetExtension reports whether the path of href (or a URL) ends in one of extensions.
// Matching is case-insensitive.
func HasDatasetExtension(href string, extensions []string) bool {
	// Ignore query strings and fragments when checking the extension.
	path := href
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.ToLower(path)
	for _, ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
