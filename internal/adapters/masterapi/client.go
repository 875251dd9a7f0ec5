// Package masterapi fetches guest beer master data from the remote
// endpoint.
package masterapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"guest_beer/internal/adapters/observability"
	"guest_beer/internal/domain"
	"guest_beer/internal/ingest"
)

const SourceRemote = "remote"

// max accepted body size
const maxBody = 8 << 20

type Client struct {
	url string
	hc  *http.Client
	key string
	rl  *rate.Limiter
}

// New returns a client for the master-data URL. key is optional and sent
// as X-API-Key when set.
func New(url, key string, rps int, timeout time.Duration) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("master data URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url: url,
		hc:  &http.Client{Timeout: timeout},
		key: key,
		rl:  rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// FetchMasterData performs one GET; there is no retry. Any transport
// failure, non-2xx status or undecodable body is ErrSourceUnavailable.
func (c *Client) FetchMasterData(ctx context.Context) (domain.MasterData, error) {
	body, err := c.get(ctx)
	if err != nil {
		return domain.MasterData{}, err
	}
	md, err := ingest.DecodeMasterData(body)
	if err != nil {
		return domain.MasterData{}, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	return md, nil
}

// Source adapts the client to a menu source.
func (c *Client) Source() domain.MenuSource { return source{c} }

type source struct{ c *Client }

func (s source) Name() string { return SourceRemote }

func (s source) Load(ctx context.Context) (domain.Batch, error) {
	md, err := s.c.FetchMasterData(ctx)
	if err != nil {
		return domain.Batch{}, err
	}
	return ingest.FromMasterData(md, SourceRemote), nil
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "guest-beer/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(SourceRemote, "master_data", 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal(SourceRemote, "master_data", resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: bad status %d: %s", domain.ErrSourceUnavailable, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrSourceUnavailable, err)
	}
	if len(b) > maxBody {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", domain.ErrSourceUnavailable, maxBody)
	}
	return b, nil
}

// IsUnavailable reports whether err means the remote could not serve data.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrSourceUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
