// Package assets holds the process-lifetime cache of bundled text assets.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"
	"unicode/utf8"

	"github.com/klazomenai/netbash/pkg/metrics"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minjs "github.com/tdewolff/minify/v2/js"
)

// ErrNotFound is returned when a name is missing from the bundle
var ErrNotFound = errors.New("assets: not found")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Cache memoizes decoded asset text keyed by logical filename.
// Entries are never evicted or replaced.
type Cache struct {
	bundle   fs.FS
	minifier *minify.M
	entries  sync.Map // name -> string
}

// Option configures a Cache
type Option func(*Cache)

// WithMinify minifies .js and .css assets before they are stored.
func WithMinify() Option {
	return func(c *Cache) {
		m := minify.New()
		m.AddFunc("text/css", mincss.Minify)
		m.AddFunc("application/javascript", minjs.Minify)
		c.minifier = m
	}
}

// NewCache creates a cache reading from bundle
func NewCache(bundle fs.FS, opts ...Option) *Cache {
	c := &Cache{bundle: bundle}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetResource returns the text of the named asset, reading it from the
// bundle on first use. Concurrent first reads of the same name may both hit
// the bundle; the first stored value wins and later callers see it.
func (c *Cache) GetResource(name string) (string, error) {
	if v, ok := c.entries.Load(name); ok {
		metrics.ObserveCacheLookup(true)
		return v.(string), nil
	}
	metrics.ObserveCacheLookup(false)

	text, err := c.read(name)
	if err != nil {
		return "", err
	}

	v, _ := c.entries.LoadOrStore(name, text)
	return v.(string), nil
}

// Preload reads every named asset into the cache, returning the first error.
func (c *Cache) Preload(names ...string) error {
	for _, name := range names {
		if _, err := c.GetResource(name); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *Cache) read(name string) (string, error) {
	data, err := fs.ReadFile(c.bundle, name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read asset %s: %w", name, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("asset %s is not valid UTF-8", name)
	}

	if c.minifier != nil {
		if mediaType := mediaTypeFor(name); mediaType != "" {
			var buf bytes.Buffer
			if err := c.minifier.Minify(mediaType, &buf, bytes.NewReader(data)); err != nil {
				return "", fmt.Errorf("failed to minify asset %s: %w", name, err)
			}
			data = buf.Bytes()
		}
	}

	return string(data), nil
}

// ContentType returns the response content type for an asset name, or
// false when the extension is not served.
func ContentType(name string) (string, bool) {
	switch path.Ext(name) {
	case ".js":
		return "application/javascript", true
	case ".css":
		return "text/css", true
	default:
		return "", false
	}
}

func mediaTypeFor(name string) string {
	t, _ := ContentType(name)
	return t
}
