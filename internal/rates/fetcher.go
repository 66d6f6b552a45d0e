package rates

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"
)

// Fetcher downloads rendered rates pages with headless Chrome
type Fetcher struct {
	Wait    time.Duration
	Timeout time.Duration
	Tiers   []string
	limiter *rate.Limiter
}

// NewFetcher creates a fetcher with the default wait and tiers
func NewFetcher() *Fetcher {
	return &Fetcher{
		Wait:    3 * time.Second,
		Timeout: 30 * time.Second,
		Tiers:   Tiers,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// FetchAll saves every map and tier page into outDir. Failed pages are
// logged and skipped; the count of saved pages is returned.
func (f *Fetcher) FetchAll(ctx context.Context, maps []string, outDir string) (int, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create rates dir: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	saved := 0
	for _, m := range maps {
		slug := Slug(m)
		for _, tier := range f.Tiers {
			if f.limiter != nil {
				if err := f.limiter.Wait(ctx); err != nil {
					return saved, err
				}
			} else if err := ctx.Err(); err != nil {
				return saved, err
			}

			url := RatesURL(slug, tier)
			fmt.Printf("[Rates] Fetching %s\n", url)

			page, err := f.fetchPage(browserCtx, url)
			if err != nil {
				fmt.Printf("[Rates] Failed %s (%s): %v\n", m, tier, err)
				continue
			}

			if err := os.WriteFile(PagePath(outDir, slug, tier), []byte(page), 0644); err != nil {
				fmt.Printf("[Rates] Failed to save %s (%s): %v\n", m, tier, err)
				continue
			}
			saved++
		}
	}

	fmt.Printf("[Rates] Saved %d pages to %s\n", saved, outDir)
	return saved, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, url string) (string, error) {
	pageCtx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	var page string
	err := chromedp.Run(pageCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(f.Wait),
		chromedp.OuterHTML("html", &page, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}
	return page, nil
}
