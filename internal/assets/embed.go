// Package assets serves the dashboard's stylesheet and script from the binary.
// Each file is fingerprinted with a content hash at startup, so pages can link
// hashed URLs that are cached forever while the logical names stay no-cache.
package assets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
)

//go:embed static
var staticFS embed.FS

// Prefix is where FileServer is mounted.
const Prefix = "/static/"

var (
	// hashed maps logical names to fingerprinted names.
	hashed = map[string]string{}
	// logical is the reverse of hashed.
	logical = map[string]string{}
)

// contentTypes pins the types browsers are strict about; the rest come
// from the mime package.
var contentTypes = map[string]string{
	".js":  "application/javascript",
	".mjs": "application/javascript",
	".css": "text/css; charset=utf-8",
	".svg": "image/svg+xml",
	".map": "application/json",
}

func init() {
	err := fs.WalkDir(staticFS, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(staticFS, p)
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(p, "static/")
		register(name, data)
		return nil
	})
	if err != nil {
		slog.Error("failed to fingerprint assets", "error", err)
	}
}

// register records the fingerprinted name for one file.
func register(name string, data []byte) string {
	sum := sha256.Sum256(data)
	ext := path.Ext(name)
	fp := strings.TrimSuffix(name, ext) + "." + hex.EncodeToString(sum[:4]) + ext
	hashed[name] = fp
	logical[fp] = name
	return fp
}

func contentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// URL returns the fingerprinted URL for a logical asset name like
// "admin.css". Unknown names are returned unhashed.
func URL(name string) string {
	if fp, ok := hashed[name]; ok {
		return Prefix + fp
	}
	return Prefix + name
}

// FileServer returns an http.Handler that serves embedded assets.
// Fingerprinted paths get immutable cache headers; logical names get no-cache.
// The handler expects paths relative to the static root (strip Prefix before calling).
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("assets: embedded static dir missing: " + err.Error())
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		cache := "no-cache"
		switch orig, fingerprinted := logical[name]; {
		case fingerprinted:
			name = orig
			cache = "public, max-age=31536000, immutable"
		case hashed[name] == "":
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", contentType(name))
		w.Header().Set("Cache-Control", cache)
		http.ServeFileFS(w, r, sub, name)
	})
}
