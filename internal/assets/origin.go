package assets

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by an Origin when the named asset does not exist.
var ErrNotFound = stderrors.New("asset not found")

// Object is an opened asset. Body is an io.ReadSeeker when the origin
// supports range requests.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	ModTime     time.Time
	ETag        string
}

// Origin opens built client assets by slash-separated relative name.
type Origin interface {
	Open(ctx context.Context, name string) (*Object, error)
}

// CleanName validates a request-derived asset name. It rejects traversal,
// absolute paths, backslashes, and NUL bytes rather than cleaning them away.
func CleanName(name string) (string, bool) {
	if name == "" || strings.IndexByte(name, 0) != -1 || strings.Contains(name, "\\") {
		return "", false
	}
	if strings.HasPrefix(name, "/") {
		return "", false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(name)
	if clean == "." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", false
	}
	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}
	return clean, true
}

// ContentType guesses a MIME type from the file extension.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// DirOrigin serves assets from a local directory.
type DirOrigin struct {
	root string
}

// NewDirOrigin creates an origin rooted at dir.
func NewDirOrigin(dir string) *DirOrigin {
	return &DirOrigin{root: dir}
}

// Open implements Origin.
func (d *DirOrigin) Open(_ context.Context, name string) (*Object, error) {
	clean, ok := CleanName(name)
	if !ok {
		return nil, ErrNotFound
	}

	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(clean)))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}

	return &Object{
		Body:        f,
		ContentType: ContentType(clean),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}, nil
}
