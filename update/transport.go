package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

// ErrUnsupported is returned by a transport which cannot handle a URL, the
// fetcher moves on to the next transport.
var ErrUnsupported = errors.New("unsupported url")

// MaxSize bounds the size of a downloaded registry.
const MaxSize = 64 * 1024 * 1024

// Transport fetches the content behind a URL.
type Transport interface {
	Name() string
	Fetch(ctx context.Context, u string) ([]byte, error)
}

// HTTP fetches http and https URLs.
type HTTP struct {
	Client *http.Client
}

// NewHTTP returns an HTTP transport whose requests time out after timeout.
func NewHTTP(timeout time.Duration) *HTTP {
	return &HTTP{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        16,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

func (t *HTTP) Name() string { return "http" }

func (t *HTTP) Fetch(ctx context.Context, u string) ([]byte, error) {
	pu, err := url.Parse(u)
	if err != nil {
		return nil, err
	}
	if pu.Scheme != "http" && pu.Scheme != "https" {
		return nil, ErrUnsupported
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	c := t.Client
	if c == nil {
		c = http.DefaultClient
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, badCodeError(resp.StatusCode)
	}
	return readLimited(resp.Body)
}

// File reads file:// URLs and plain local paths.
type File struct{}

func (File) Name() string { return "file" }

func (File) Fetch(ctx context.Context, u string) ([]byte, error) {
	path := u
	if pu, err := url.Parse(u); err == nil && pu.Scheme != "" {
		if pu.Scheme != "file" {
			return nil, ErrUnsupported
		}
		path = pu.Path
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("registry exceeds %d bytes", MaxSize)
	}
	return data, nil
}

func badCodeError(c int) error {
	return fmt.Errorf("bad response code: %d", c)
}
