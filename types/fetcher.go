package types

import "context"

/*
Fetcher retrieves a remote resource when the asset cache is asked to preload it.

The cache never retries and never surfaces the error: a failed Fetch simply
means nothing was cached.
  1. PreloadAndCacheImage(url)
  2. Fetcher.Fetch(url) → bytes
  3. CacheImage(url, bytes)
  4. The cached handle is returned
*/
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}
