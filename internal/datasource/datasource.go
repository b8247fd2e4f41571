// Package datasource resolves source locations to byte streams.
package datasource

import (
	"context"
	"io"
	"net/url"
	"strings"

	"referralreport/internal/datasource/file"
	"referralreport/internal/datasource/httpds"
)

// Source opens a fresh reader over one input relation.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FromLocation returns a Source for a plain path, a file:// URL or an
// http(s):// URL. Remote sources share client.
func FromLocation(location string, client *httpds.Client) Source {
	u, err := url.Parse(location)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			if client == nil {
				client = httpds.NewClient(httpds.Config{})
			}
			return httpds.NewRemote(client, location)
		case "file":
			p := u.Path
			if u.Host != "" {
				p = u.Host + p
			}
			return file.NewLocal(p)
		}
	}
	return file.NewLocal(location)
}
