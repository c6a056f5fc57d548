package oui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"oui/mac"
	"oui/manuf"
)

// Client queries the lookup API of a running server.
type Client struct {
	base   string
	client *http.Client
}

func NewClient(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		base:   strings.TrimSuffix(base, "/"),
		client: hc,
	}
}

type lookupReply struct {
	Found    bool   `json:"found"`
	Vendor   string `json:"vendor"`
	Prefix   string `json:"prefix"`
	MaskBits int    `json:"mask_bits"`
	Comment  string `json:"comment"`
	Error    string `json:"error"`
}

// Lookup resolves q on the server. The returned result has the same shape
// as a local lookup.
func (c *Client) Lookup(ctx context.Context, q string) (manuf.Result, error) {
	u := c.base + "/api/lookup?" + url.Values{"mac": {q}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return manuf.Result{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return manuf.Result{}, err
	}
	defer resp.Body.Close()

	// Decode the reply and ensure it's not errored
	var lr lookupReply
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return manuf.Result{}, fmt.Errorf("decode reply (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if lr.Error != "" {
			return manuf.Result{}, fmt.Errorf("lookup %q: %s", q, lr.Error)
		}
		return manuf.Result{}, badCodeError(resp.StatusCode)
	}
	if !lr.Found {
		return manuf.Result{}, nil
	}

	v, _, ok := mac.Parse(lr.Prefix)
	if !ok {
		return manuf.Result{}, fmt.Errorf("invalid prefix in reply: %q", lr.Prefix)
	}
	return manuf.Result{
		Found: true,
		Entry: manuf.Entry{
			Prefix:  v & mac.Mask(lr.MaskBits),
			Bits:    lr.MaskBits,
			Vendor:  lr.Vendor,
			Comment: lr.Comment,
		},
		Prefix: lr.Prefix,
	}, nil
}

func badCodeError(c int) error {
	return fmt.Errorf("bad response code: %d", c)
}
