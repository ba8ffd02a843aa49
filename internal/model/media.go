package model

import (
	"io"
	"path"
	"strings"
)

const (
	AttachmentFolder       = "attachments"
	PreviewFolder          = "attachments/previews"
	PreviewWidth           = 320
	PreviewExt             = ".jpg"
	AttachmentCacheControl = "public, max-age=3600"
	DefaultMaxFileSize     = 10 * 1024 * 1024 // 10MB
)

// Supported content types
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

// DefaultSupportedFileTypes is the attachment allow-list used when no config overrides it.
var DefaultSupportedFileTypes = []string{
	ContentTypeJPEG,
	ContentTypePNG,
	ContentTypeGIF,
	ContentTypeWebP,
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge        = "FILE_TOO_LARGE"
	CodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
)

// UploadInput describes a file to be stored as a message attachment.
type UploadInput struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// ProgressFunc receives the fraction (0..1) of an upload already sent.
type ProgressFunc func(fraction float64)

// IsImageType reports whether a content type can get a preview.
// GIF and WebP are stored as-is.
func IsImageType(contentType string) bool {
	return contentType == ContentTypeJPEG || contentType == ContentTypePNG
}

// NormalizeContentType strips parameters such as "; charset=utf-8".
func NormalizeContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// PreviewKey returns the blob key of the JPEG preview generated for an attachment key.
func PreviewKey(key string) string {
	name := path.Base(key)
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return PreviewFolder + "/" + name + PreviewExt
}

// IsAttachmentKey reports whether key names an uploaded attachment or its
// preview, and nothing else in the bucket.
func IsAttachmentKey(key string) bool {
	return strings.HasPrefix(key, AttachmentFolder+"/") &&
		!strings.Contains(key, "..") &&
		IsStorableText(key)
}
