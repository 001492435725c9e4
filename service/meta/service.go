// Package meta loads configuration documents from any location the abstract
// file system understands (file, embed, mem, s3, gs, ...).  Documents are
// environment-expanded before decoding so that secrets and host specifics
// stay out of the files themselves.
package meta

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service resolves and decodes YAML documents.
type Service struct {
	fs        afs.Service
	baseURL   string
	fsOptions []storage.Option
}

// New creates a meta service.  Relative URLs passed to Load resolve against
// baseURL; options are handed to the file system on every download (e.g. an
// *embed.FS for the embed scheme).
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	return &Service{fs: fs, baseURL: baseURL, fsOptions: options}
}

// Load fetches the document at URL, expands ${env.KEY} expressions and
// decodes the YAML into target.
func (s *Service) Load(ctx context.Context, URL string, target interface{}) error {
	location := URL
	if s.baseURL != "" && url.IsRelative(URL) {
		location = url.Join(s.baseURL, URL)
	}
	data, err := s.fs.DownloadWithURL(ctx, location, s.fsOptions...)
	if err != nil {
		return fmt.Errorf("failed to load %v: %w", location, err)
	}
	if err := yaml.Unmarshal([]byte(expandEnvExpr(string(data))), target); err != nil {
		return fmt.Errorf("failed to decode %v: %w", location, err)
	}
	return nil
}
