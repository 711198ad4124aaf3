package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/labstack/gommon/log"
)

type FetchOptions struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
	Timeout  time.Duration
	Client   *http.Client
}

func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		Attempts: 3,
		Delay:    500 * time.Millisecond,
		MaxDelay: 5 * time.Second,
		Timeout:  30 * time.Second,
	}
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch returns the raw bytes of source, which is either a local path or an
// http(s) URL. Remote fetches are retried with exponential backoff.
func Fetch(ctx context.Context, source string, opts FetchOptions) ([]byte, error) {
	if !isRemote(source) {
		content, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("engine: read dataset: %w", err)
		}
		return content, nil
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	attempts := opts.Attempts
	if attempts == 0 {
		attempts = 1
	}

	var content []byte
	err := retry.Do(
		func() error {
			b, err := fetchOnce(ctx, client, source)
			if err != nil {
				return err
			}
			content = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(opts.Delay),
		retry.MaxDelay(opts.MaxDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Warnf("fetch %s: attempt %d/%d failed: %v", source, n+1, attempts, err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: fetch dataset: %w", err)
	}
	return content, nil
}

func fetchOnce(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
