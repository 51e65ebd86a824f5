package resumepdf

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-resumepdf/internal/fileutil"
)

// Local fallback defaults.
const (
	DefaultPublicDir = "public"
	DefaultPDFSubdir = "pdfs"
	localStoreName   = "local"
)

// LocalStore writes artifacts under Root/pdfs and builds URLs that a static
// file server rooted at Root can serve.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates a LocalStore. An empty root uses ./public; an empty
// baseURL yields root-relative URLs.
func NewLocalStore(root, baseURL string) *LocalStore {
	if root == "" {
		root = DefaultPublicDir
	}
	return &LocalStore{root: root, baseURL: baseURL}
}

// Dir returns the directory artifacts are written to.
func (s *LocalStore) Dir() string {
	return filepath.Join(s.root, DefaultPDFSubdir)
}

// Save writes data to Dir()/name, replacing any previous file atomically,
// and returns the written path and its URL.
func (s *LocalStore) Save(data []byte, name string) (path, fileURL string, err error) {
	if err := ValidateFileName(name); err != nil {
		return "", "", err
	}

	dir := s.Dir()
	// #nosec G301 -- published PDFs are meant to be served
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating %s: %w", dir, err)
	}

	path = filepath.Join(dir, name)
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", "", err
	}
	return path, s.URLFor(name), nil
}

// URLFor returns the URL under which name is served.
func (s *LocalStore) URLFor(name string) string {
	rel := "/" + DefaultPDFSubdir + "/" + url.PathEscape(name)
	if s.baseURL == "" {
		return rel
	}
	return strings.TrimRight(s.baseURL, "/") + rel
}
