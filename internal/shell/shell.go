package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/streamssr/streamssr/internal/assets"
	"github.com/streamssr/streamssr/internal/errors"
	"github.com/streamssr/streamssr/internal/page"
	"github.com/streamssr/streamssr/internal/render"
	. "github.com/streamssr/streamssr/internal/vdom"
)

// Options configures Build.
type Options struct {
	// Year is shown in the footer. Zero means the current year.
	Year int

	// Pretty indents the output.
	Pretty bool
}

// Build renders the static shell. The output depends only on opts.
func Build(opts Options) (string, error) {
	year := opts.Year
	if year == 0 {
		year = time.Now().Year()
	}

	doc := render.Document{
		Title:  page.Title,
		Styles: []string{page.CriticalCSS},
		Body:   body(year),
	}

	var buf bytes.Buffer
	if err := render.New(render.Config{Pretty: opts.Pretty}).RenderDocument(&buf, doc); err != nil {
		return "", errors.New("E200").Wrap(err)
	}
	return buf.String(), nil
}

func body(year int) *VNode {
	return Div(ID("root"),
		page.SiteHeader("/"),
		Main(Class("main"),
			page.HeroSkeleton(),
			Section(Class("section"),
				Div(Class("section__header"),
					Div(Class("skeleton", "skeleton--text"), Style("width: 150px;")),
				),
				page.Skeleton(page.SkeletonGrid, 3),
			),
		),
		page.SiteFooter(year),
	)
}

// Cache builds the shell once per process.
type Cache struct {
	opts Options

	once sync.Once
	html string
	err  error
}

// NewCache creates a cache building with opts.
func NewCache(opts Options) *Cache {
	return &Cache{opts: opts}
}

// Get returns the cached shell, building it on first use.
func (c *Cache) Get() (string, error) {
	c.once.Do(func() {
		c.html, c.err = Build(c.opts)
	})
	return c.html, c.err
}

// Static returns the shell file at path if it exists, otherwise the cached
// shell. A pre-generated artifact wins so that what was deployed is what
// is served.
func (c *Cache) Static(path string) (string, error) {
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return string(data), nil
		}
	}
	return c.Get()
}

// WriteFile writes html to path, creating parent directories.
func WriteFile(path, html string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New("E202").WithDetail(path).Wrap(err)
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return errors.New("E202").WithDetail(path).Wrap(err)
	}
	return nil
}

// Publish uploads html to s3://bucket/<key>.
func Publish(ctx context.Context, client assets.S3API, bucket, key, html string) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader([]byte(html)),
		ContentType:  aws.String("text/html; charset=utf-8"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return errors.New("E202").WithDetail("s3://" + bucket + "/" + key).Wrap(err)
	}
	return nil
}
