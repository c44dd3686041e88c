package handler

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox/internal/storage"
)

// MediaHandler serves uploaded files when the disk storage driver is
// active. With s3 storage the image URLs point at the bucket directly and
// this handler is never mounted.
type MediaHandler struct {
	disk   *storage.Disk
	logger *slog.Logger
}

// NewMediaHandler creates a new MediaHandler over a disk store.
func NewMediaHandler(disk *storage.Disk, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		disk:   disk,
		logger: logger,
	}
}

// Serve handles GET /media/*. Keys that would escape the media root and
// keys with no file behind them both report the same JSON 404.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	path, err := h.disk.Path(key)
	if err != nil {
		h.notFound(w)
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		h.notFound(w)
		return
	}

	// Keys are unique per upload (replacing an image mints a new key), so
	// long-lived caching is safe despite the global no-store default.
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}

func (h *MediaHandler) notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "file not found",
	})
}
