package server

import (
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/streamssr/streamssr/internal/assets"
)

// Cache-Control values for built assets.
const (
	CacheImmutable = "public, max-age=31536000, immutable"
	CacheNone      = "no-store"
)

// AssetHandler serves files from origin under the route's wildcard.
// Production responses are cached for a year since the bundler
// fingerprints every file name; development responses are never cached.
func AssetHandler(origin assets.Origin, production bool, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := assets.CleanName(chi.URLParam(r, "*"))
		if !ok {
			http.NotFound(w, r)
			return
		}

		obj, err := origin.Open(r.Context(), name)
		if err != nil {
			if stderrors.Is(err, assets.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			logger.Error("asset origin failed", "asset", name, "error", err)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
		defer obj.Body.Close()

		h := w.Header()
		if production {
			h.Set("Cache-Control", CacheImmutable)
		} else {
			h.Set("Cache-Control", CacheNone)
		}
		h.Set("Content-Type", obj.ContentType)
		h.Set("X-Content-Type-Options", "nosniff")
		if obj.ETag != "" {
			h.Set("ETag", obj.ETag)
		}

		if rs, ok := obj.Body.(io.ReadSeeker); ok {
			http.ServeContent(w, r, name, obj.ModTime, rs)
			return
		}

		if obj.ETag != "" && r.Header.Get("If-None-Match") == obj.ETag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		if obj.Size > 0 {
			h.Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		}
		if !obj.ModTime.IsZero() {
			h.Set("Last-Modified", obj.ModTime.UTC().Format(http.TimeFormat))
		}
		if r.Method == http.MethodHead {
			return
		}
		_, _ = io.Copy(w, obj.Body)
	}
}
