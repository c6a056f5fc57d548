// Package update refreshes a registry file from a remote source. The new
// content only replaces the destination once it is complete.
package update

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"oui"
	"oui/manuf"
)

// DefaultURL is the Wireshark manuf registry.
const DefaultURL = "https://www.wireshark.org/download/automated/data/manuf"

// Fetcher tries each transport in order until one succeeds.
type Fetcher struct {
	Transports []Transport
}

// NewFetcher returns a fetcher trying t in the given order.
func NewFetcher(t ...Transport) *Fetcher {
	return &Fetcher{Transports: t}
}

// Fetch returns the content at u and the name of the transport which
// retrieved it.
func (f *Fetcher) Fetch(ctx context.Context, u string) ([]byte, string, error) {
	var errs []error
	for _, t := range f.Transports {
		data, err := t.Fetch(ctx, u)
		if err == nil {
			return data, t.Name(), nil
		}
		if errors.Is(err, ErrUnsupported) {
			slog.Debug("transport skipped", slog.String("transport", t.Name()), slog.String("url", u))
			continue
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}

		slog.Warn("transport failed", slog.String("transport", t.Name()), slog.Any("err", err))
		errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
	}

	if len(errs) == 0 {
		return nil, "", fmt.Errorf("no transport for %s", u)
	}
	return nil, "", fmt.Errorf("all transports failed: %w", errors.Join(errs...))
}

// Options tweak Download.
type Options struct {
	// Verify parses the downloaded content and rejects it unless it yields
	// at least one registry entry.
	Verify bool
}

// Result describes a completed download.
type Result struct {
	Transport string
	Bytes     int
	Digest    oui.Digest
	Entries   int // only set when verified
}

// Download fetches u and publishes it at path.
func Download(ctx context.Context, f *Fetcher, u, path string, opts Options) (Result, error) {
	data, transport, err := f.Fetch(ctx, u)
	if err != nil {
		return Result{}, err
	}

	r := Result{
		Transport: transport,
		Bytes:     len(data),
		Digest:    oui.NewDigest(data),
	}

	if opts.Verify && len(data) > 0 {
		idx, err := manuf.Read(bytes.NewReader(data))
		if err != nil {
			return Result{}, fmt.Errorf("verify download: %w", err)
		}
		if idx.Len() == 0 {
			return Result{}, fmt.Errorf("verify download: no registry entries")
		}
		r.Entries = idx.Indexed()
	}

	if err := Publish(path, data); err != nil {
		return Result{}, err
	}
	return r, nil
}

// Publish atomically replaces path with data. A temporary file is written
// next to path and renamed over it, empty data is rejected and leaves path
// untouched.
func Publish(path string, data []byte) (err error) {
	if len(data) == 0 {
		return fmt.Errorf("downloaded file is empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}
