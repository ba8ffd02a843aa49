package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/dustin/go-humanize"

	"guestbook/internal/httputil"
	"guestbook/internal/model"
)

// multipartOverhead is allowed on top of the file size for form boundaries and headers
const multipartOverhead = 1 << 20

type AttachmentHandler struct {
	media       AttachmentStore
	maxFileSize int64
}

func NewAttachmentHandler(media AttachmentStore, maxFileSize int64) *AttachmentHandler {
	return &AttachmentHandler{
		media:       media,
		maxFileSize: maxFileSize,
	}
}

// Upload handles POST /attachments
// Expects a multipart form with the file in field "file". The returned
// attachment is then sent along with POST /messages.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteServiceError(w, model.ErrFileTooLarge)
			return
		}
		httputil.WriteBadRequest(w, "Missing file in form field \"file\"")
		return
	}
	defer file.Close()

	lastStep := -1
	onProgress := func(fraction float64) {
		// Log quarter steps only
		step := int(fraction * 4)
		if step != lastStep {
			lastStep = step
			log.Printf("[Upload] Progress: name=%s size=%s sent=%.0f%%",
				header.Filename, humanize.IBytes(uint64(header.Size)), fraction*100)
		}
	}

	attachment, err := h.media.Upload(r.Context(), model.UploadInput{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, onProgress)
	if err != nil {
		logUnexpected("Upload attachment handler: name="+header.Filename, err)
		httputil.WriteServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, attachment)
}

// Delete handles DELETE /attachments?key=
// Used to clean up an upload whose message was never posted.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		httputil.WriteBadRequest(w, "key is required")
		return
	}

	if err := h.media.Delete(r.Context(), key); err != nil {
		logUnexpected("Delete attachment handler: key="+key, err)
		httputil.WriteServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Attachment deleted successfully",
	})
}
