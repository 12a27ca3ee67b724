// Package images stores product pictures on local disk as
// <dir>/<productId>/1.<ext> and resolves their public URLs.
package images

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Extensions are tried in this order when resolving a product's picture.
var Extensions = []string{".jpg", ".png", ".jpeg", ".webp"}

// ErrUnsupportedType is returned for uploads whose extension is not in Extensions.
var ErrUnsupportedType = errors.New("unsupported image type")

// ErrInvalidProductID rejects ids that cannot be used as a directory name.
var ErrInvalidProductID = errors.New("invalid product id")

const urlPrefix = "/product_images"

type Store struct {
	dir     string
	urlHost string
	maxSize int64
}

// NewStore keeps files under dir. urlHost, when set, prefixes every URL.
func NewStore(dir, urlHost string) *Store {
	return &Store{
		dir:     dir,
		urlHost: strings.TrimRight(urlHost, "/"),
		maxSize: 5 << 20,
	}
}

// URL returns the public URL of the product's first picture, or "" if none exists.
func (s *Store) URL(productID string) string {
	if s == nil || !validID(productID) {
		return ""
	}
	for _, ext := range Extensions {
		if _, err := os.Stat(filepath.Join(s.dir, productID, "1"+ext)); err == nil {
			return s.urlFor(productID, ext)
		}
	}
	return ""
}

// Save replaces the product's picture with the contents of r. The extension
// is taken from filename.
func (s *Store) Save(productID, filename string, r io.Reader) (string, error) {
	if !validID(productID) {
		return "", ErrInvalidProductID
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !supported(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	productDir := filepath.Join(s.dir, productID)
	if err := os.MkdirAll(productDir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(productDir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, s.maxSize+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}
	if n > s.maxSize {
		return "", fmt.Errorf("image larger than %d bytes", s.maxSize)
	}

	// Only one picture per product; drop other extensions so URL stays deterministic.
	for _, other := range Extensions {
		if other != ext {
			_ = os.Remove(filepath.Join(productDir, "1"+other))
		}
	}
	if err := os.Rename(tmp.Name(), filepath.Join(productDir, "1"+ext)); err != nil {
		return "", err
	}
	return s.urlFor(productID, ext), nil
}

func (s *Store) urlFor(productID, ext string) string {
	return s.urlHost + path.Join(urlPrefix, productID, "1"+ext)
}

func supported(ext string) bool {
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
