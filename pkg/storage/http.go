package storage

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
)

// FileServer returns a handler that serves files from the default disk.
// Mount it on a wildcard route whose path starts with prefix:
//
//	r.Get("/storage/*", "storage.show", storage.FileServer("/storage/"))
func FileServer(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, prefix)
		// Clean against the root so ".." cannot climb out of it.
		name = strings.TrimPrefix(path.Clean("/"+name), "/")
		if name == "" {
			http.NotFound(w, r)
			return
		}

		f, err := GetStream(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		io.Copy(w, f)
	}
}
