// SPDX-License-Identifier: Unlicense OR MIT

// Package dtd keeps a local copy of the external DTDs and entity modules
// referenced by DocBook reference pages, and extracts the entities they
// declare.
package dtd

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"gioui.org/glbind/internal/logging"
)

var log = logging.DefaultLogger.WithField(logging.LogSubsys, "dtd")

// ErrNotCached is returned for documents missing from the cache when
// downloads are disabled.
var ErrNotCached = errors.New("not cached")

var knownURIs = map[string]string{
	"-//OASIS//DTD DocBook MathML Module V1.1b1//EN":         "http://www.oasis-open.org/docbook/xml/mathml/1.1CR1/dbmathml.dtd",
	"-//OASIS//DTD DocBook XML V4.3//EN":                     "http://www.oasis-open.org/docbook/xml/4.3/docbookx.dtd",
	"-//OASIS//ENTITIES DocBook Notations V4.3//EN":          "http://www.oasis-open.org/docbook/xml/4.3/dbnotnx.mod",
	"-//OASIS//ENTITIES DocBook Character Entities V4.3//EN": "http://www.oasis-open.org/docbook/xml/4.3/dbcentx.mod",
	"-//W3C//DTD XHTML 1.0 Transitional//EN":                 "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd",
}

// KnownURIs returns the public identifiers the cache resolves without a
// system identifier, mapped to their canonical URLs.
func KnownURIs() map[string]string {
	return maps.Clone(knownURIs)
}

// Cache is a directory of downloaded DTD files.
type Cache struct {
	dir     string
	client  *http.Client
	retries int
	timeout time.Duration
	offline bool

	mu sync.Mutex
	// local holds the base names found in dir.
	local map[string]bool
	// files maps URLs to file names in dir.
	files map[string]string
	// entities holds the general entities declared by DTD URLs.
	entities map[string]map[string]string
}

type Option func(c *Cache)

// WithClient sets the HTTP client used for downloads.
func WithClient(client *http.Client) Option {
	return func(c *Cache) {
		c.client = client
	}
}

// WithRetries sets the number of download attempts per document.
func WithRetries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.retries = n
		}
	}
}

// WithTimeout bounds each download attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithOffline disables downloads.
func WithOffline(offline bool) Option {
	return func(c *Cache) {
		c.offline = offline
	}
}

var patterns = []string{"*.dtd", "*.mod", "*.ent"}

// New returns the cache stored in dir, indexing the files already there.
// A missing dir is created on the first download.
func New(dir string, opts ...Option) (*Cache, error) {
	c := &Cache{
		dir:      dir,
		client:   http.DefaultClient,
		retries:  3,
		timeout:  time.Second,
		local:    make(map[string]bool),
		files:    make(map[string]string),
		entities: make(map[string]map[string]string),
	}
	for _, o := range opts {
		o(c)
	}
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, p))
		if err != nil {
			return nil, errors.Wrapf(err, "dtd: scan %s", dir)
		}
		for _, m := range matches {
			c.local[filepath.Base(m)] = true
		}
	}
	return c, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// List returns the sorted names of the cached files.
func (c *Cache) List() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := maps.Keys(c.local)
	slices.Sort(names)
	return names
}

// Resolve returns the URL of the document identified by publicID or,
// when the public identifier is unknown, systemID.
func Resolve(publicID, systemID string) string {
	if u, ok := knownURIs[publicID]; ok {
		return u
	}
	return systemID
}

// Open returns the cached document identified by publicID and systemID,
// downloading it if needed.
func (c *Cache) Open(publicID, systemID string) (*os.File, error) {
	return c.OpenURL(Resolve(publicID, systemID))
}

// OpenURL returns the cached document at rawURL, downloading it if needed.
// URLs without a network scheme are opened as local paths.
func (c *Cache) OpenURL(rawURL string) (*os.File, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "dtd: %s", rawURL)
	}
	switch u.Scheme {
	case "http", "https":
	case "", "file":
		return os.Open(filepath.FromSlash(u.Path))
	default:
		return nil, errors.Errorf("dtd: %s: unsupported scheme", rawURL)
	}
	name, err := c.fetch(rawURL, path.Base(u.Path))
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(c.dir, name))
}

// Prefetch downloads every known document missing from the cache. The
// downloads run concurrently.
func (c *Cache) Prefetch() error {
	urls := maps.Values(knownURIs)
	slices.Sort(urls)
	var eg errgroup.Group
	for _, u := range urls {
		u := u
		eg.Go(func() error {
			f, err := c.OpenURL(u)
			if err != nil {
				return err
			}
			return f.Close()
		})
	}
	return eg.Wait()
}

func (c *Cache) lookup(rawURL, name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.files[rawURL]; ok {
		return n, true
	}
	if c.local[name] {
		c.files[rawURL] = name
		return name, true
	}
	return "", false
}

func (c *Cache) remember(rawURL, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local[name] = true
	c.files[rawURL] = name
}

func (c *Cache) fetch(rawURL, name string) (string, error) {
	if n, ok := c.lookup(rawURL, name); ok {
		return n, nil
	}
	if c.offline {
		return "", errors.Wrapf(ErrNotCached, "dtd: %s", rawURL)
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", errors.Wrap(err, "dtd")
	}
	dst := filepath.Join(c.dir, name)
	lock := flock.New(dst + ".lock")
	if err := lock.Lock(); err != nil {
		return "", errors.Wrap(err, "dtd: lock cache")
	}
	defer lock.Unlock()
	// Another process or goroutine may have stored it while we waited.
	if _, err := os.Stat(dst); err == nil {
		c.remember(rawURL, name)
		return name, nil
	}
	data, err := c.download(rawURL)
	if err != nil {
		return "", err
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", errors.Wrap(err, "dtd")
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", errors.Wrap(err, "dtd")
	}
	c.remember(rawURL, name)
	return name, nil
}

func (c *Cache) download(rawURL string) ([]byte, error) {
	var err error
	for try := 1; try <= c.retries; try++ {
		var data []byte
		data, err = c.get(rawURL)
		if err == nil {
			log.WithField("url", rawURL).Info("Downloaded")
			return data, nil
		}
		log.WithError(err).WithField("try", try).Debug("Download failed")
	}
	return nil, errors.Wrapf(err, "dtd: download %s after %d tries", rawURL, c.retries)
}

func (c *Cache) get(rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("%s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
