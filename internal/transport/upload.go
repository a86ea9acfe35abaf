package transport

import (
	"errors"
	"mime/multipart"
	"net/http"

	"shoe-store/internal/middleware"

	"go.uber.org/zap"
)

// DefaultMaxUploadBytes caps image uploads when no limit is configured
const DefaultMaxUploadBytes = 5 << 20

// room for the other multipart fields and boundaries
const formOverhead = 1 << 20

// imageFile parses a multipart form and opens its file field.
// The caller closes the returned file.
func imageFile(w http.ResponseWriter, r *http.Request, logger *zap.Logger, field string, maxBytes int64) (multipart.File, bool) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formOverhead)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "image exceeds the upload size limit")
			return nil, false
		}
		logger.Debug("Multipart parse failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "expected a multipart form")
		return nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing "+field+" file")
		return nil, false
	}
	if header.Size > maxBytes {
		file.Close()
		middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "image exceeds the upload size limit")
		return nil, false
	}
	return file, true
}
