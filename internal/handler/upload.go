package handler

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/upload"
)

// maxUploadSize caps multipart uploads at 10 MiB.
const maxUploadSize = 10 << 20

// UploadMedia handles POST /api/upload (admin). It accepts a multipart form
// with a "file" field and an optional "folder" field and returns the stored
// file's public URL.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	folder := r.FormValue("folder")
	if folder == "" {
		folder = "products"
	}

	// The uploader works from a local path, so spill the upload to a temp
	// file first and clean it up on every path.
	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, file); err != nil {
		writeServerError(w, r, err)
		return
	}
	if err := tmp.Close(); err != nil {
		writeServerError(w, r, err)
		return
	}

	url, err := h.uploader.Upload(r.Context(), tmp.Name(), folder)
	if errors.Is(err, upload.ErrInvalidFolder) {
		writeError(w, http.StatusBadRequest, "invalid folder name")
		return
	}
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		URL string `json:"url"`
	}{url})
}
