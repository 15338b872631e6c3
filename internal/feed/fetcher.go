package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

type Fetcher struct {
	client *resty.Client
}

// FetchResult is the outcome of fetching one URL.
type FetchResult struct {
	URL  string
	Body []byte
	Err  error
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetRetryCount(3).
			SetRetryWaitTime(2 * time.Second).
			SetRetryMaxWaitTime(10 * time.Second).
			SetHeader("User-Agent", "AutoStudio/1.0 (+trends)"),
	}
}

// FetchFeed retrieves the raw feed document at url
func (f *Fetcher) FetchFeed(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8").
		Get(url)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed from %s: %w", url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), url)
	}

	return resp.Body(), nil
}

// FetchMultipleFeeds concurrently fetches multiple feeds. Results keep the
// order of urls; the error summarizes any failures.
func (f *Fetcher) FetchMultipleFeeds(ctx context.Context, urls []string) ([]FetchResult, error) {
	type indexed struct {
		i int
		FetchResult
	}

	results := make(chan indexed, len(urls))

	for i, url := range urls {
		go func(i int, u string) {
			body, err := f.FetchFeed(ctx, u)
			results <- indexed{i: i, FetchResult: FetchResult{URL: u, Body: body, Err: err}}
		}(i, url)
	}

	out := make([]FetchResult, len(urls))
	var errs []error

	for i := 0; i < len(urls); i++ {
		res := <-results
		out[res.i] = res.FetchResult
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}

	if len(errs) > 0 {
		return out, fmt.Errorf("encountered %d errors while fetching feeds, first error: %w", len(errs), errs[0])
	}

	return out, nil
}
