package httpds

import (
	"context"
	"fmt"
	"io"
)

// Remote is a datasource backed by one URL.
type Remote struct {
	client *Client
	url    string
}

// NewRemote binds url to client.
func NewRemote(client *Client, url string) *Remote {
	return &Remote{client: client, url: url}
}

// URL returns the configured URL.
func (r *Remote) URL() string { return r.url }

// Open performs the GET and hands back the response body.
func (r *Remote) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := r.client.Get(ctx, r.url)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.url, err)
	}
	return resp.Body, nil
}
