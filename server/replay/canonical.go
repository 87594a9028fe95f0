package replay

import (
	"net/url"

	"github.com/parquetlake/tablelog/pkg/errors"
)

// Canonicalizer resolves raw add/remove paths against a table root into
// the canonical URI form used as the key into activeFiles/tombstones.
// Two raw paths that differ only in percent-escaping of the same URI
// must canonicalize to an identical string (spec.md §4.3, invariant 4).
type Canonicalizer struct {
	root *url.URL
}

// NewCanonicalizer parses the table root once; a malformed root is a
// setup-time error, not a per-file one.
func NewCanonicalizer(root string) (*Canonicalizer, error) {
	u, err := url.Parse(root)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedURI, err, "malformed table root")
	}
	// The root always denotes a directory; RFC 3986 reference resolution
	// treats a base path without a trailing slash as a file and drops its
	// last segment, which would silently truncate the table root.
	if u.Path != "" && u.Path[len(u.Path)-1] != '/' {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return &Canonicalizer{root: u}, nil
}

// Canonicalize resolves a raw add/remove path into its canonical URI
// string. Relative paths are resolved against and qualified with the
// root's scheme/authority; absolute paths are qualified in place.
// Percent-escaping is preserved through url.URL's own encode/decode
// round trip, so two encodings of the same URI always collide here.
func (c *Canonicalizer) Canonicalize(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(ErrMalformedURI, err, "malformed path %q", raw)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	return c.root.ResolveReference(u).String(), nil
}
