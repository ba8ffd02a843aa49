package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"

	"guestbook/internal/config"
	"guestbook/internal/metrics"
	domain "guestbook/internal/model"
	"guestbook/internal/storage"
)

// MediaService validates attachments and stores them in blob storage.
type MediaService struct {
	blobs  storage.BlobStore
	limits config.AppLimits
	now    func() time.Time
}

func NewMediaService(blobs storage.BlobStore, limits config.AppLimits) *MediaService {
	return &MediaService{
		blobs:  blobs,
		limits: limits,
		now:    time.Now,
	}
}

// Upload enforces name, size and type, then stores the file under
// attachments/<unix millis>_<name>. JPEG and PNG uploads also get a preview.
// onProgress (optional) receives the fraction of bytes sent so far.
func (s *MediaService) Upload(ctx context.Context, in domain.UploadInput, onProgress domain.ProgressFunc) (*domain.Attachment, error) {
	startTime := time.Now()

	name := sanitizeFileName(in.Name)
	if name == "" {
		return nil, domain.ErrFileNameRequired
	}
	if err := s.checkSize(in.Size); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, s.limits.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	size := int64(len(data))
	if err := s.checkSize(size); err != nil {
		return nil, err
	}

	contentType := domain.NormalizeContentType(in.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = domain.NormalizeContentType(http.DetectContentType(data[:min(len(data), 512)]))
	}
	if !s.isSupported(contentType) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, contentType)
	}

	key := fmt.Sprintf("%s/%d_%s", domain.AttachmentFolder, s.now().UnixMilli(), name)
	body := &progressReader{r: bytes.NewReader(data), total: size, onProgress: onProgress}
	if err := s.blobs.Put(ctx, key, body, size, contentType); err != nil {
		log.Printf("[MediaService] Upload FAILED: key=%s err=%v", key, err)
		return nil, err
	}
	body.finish()
	metrics.UploadBytes.Add(float64(size))

	attachment := &domain.Attachment{
		Name: name,
		URL:  s.blobs.PublicURL(key),
		Size: size,
		Type: contentType,
		Key:  key,
	}

	if domain.IsImageType(contentType) {
		previewURL, err := s.storePreview(ctx, key, data)
		if err != nil {
			// The full-size file is stored; clients fall back to it
			log.Printf("[MediaService] Preview FAILED: key=%s err=%v", key, err)
		} else {
			attachment.PreviewURL = previewURL
		}
	}

	log.Printf("[MediaService] Upload OK: key=%s type=%s size=%s duration=%v",
		key, contentType, humanize.IBytes(uint64(size)), time.Since(startTime))
	return attachment, nil
}

// Delete removes an uploaded attachment and its preview, if any.
func (s *MediaService) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if !domain.IsAttachmentKey(key) {
		return domain.ErrInvalidID
	}

	if err := s.blobs.Delete(ctx, key); err != nil {
		return err
	}
	if !strings.HasPrefix(key, domain.PreviewFolder+"/") {
		if err := s.blobs.Delete(ctx, domain.PreviewKey(key)); err != nil {
			log.Printf("[MediaService] Failed to delete preview: key=%s err=%v", key, err)
		}
	}

	log.Printf("[MediaService] Delete OK: key=%s", key)
	return nil
}

func (s *MediaService) checkSize(size int64) error {
	if size > s.limits.MaxFileSize {
		return fmt.Errorf("%w: %s exceeds the %s limit",
			domain.ErrFileTooLarge, humanize.IBytes(uint64(size)), humanize.IBytes(uint64(s.limits.MaxFileSize)))
	}
	return nil
}

func (s *MediaService) isSupported(contentType string) bool {
	return isSupportedType(s.limits.SupportedFileTypes, contentType)
}

func isSupportedType(allowed []string, contentType string) bool {
	for _, t := range allowed {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

// storePreview scales an image down to PreviewWidth and stores it as JPEG.
func (s *MediaService) storePreview(ctx context.Context, key string, data []byte) (string, error) {
	preview, err := resizeToJPEG(data, domain.PreviewWidth, 80)
	if err != nil {
		return "", err
	}
	previewKey := domain.PreviewKey(key)
	if err := s.blobs.Put(ctx, previewKey, bytes.NewReader(preview), int64(len(preview)), domain.ContentTypeJPEG); err != nil {
		return "", err
	}
	return s.blobs.PublicURL(previewKey), nil
}

// resizeToJPEG fits the image to width (keeping aspect ratio, never upscaling) and encodes it as JPEG.
func resizeToJPEG(data []byte, width, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeFileName keeps the base name and replaces characters that are
// awkward in object keys and URLs.
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, name)
}

// progressReader reports upload progress as the blob store consumes the body.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	onProgress domain.ProgressFunc
	mu         sync.Mutex
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.read += int64(n)
		p.report()
		p.mu.Unlock()
	}
	return n, err
}

// Seek lets the S3 client rewind the body when it retries a request.
func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	seeker, ok := p.r.(io.Seeker)
	if !ok {
		return 0, fmt.Errorf("body is not seekable")
	}
	pos, err := seeker.Seek(offset, whence)
	if err == nil {
		p.mu.Lock()
		p.read = pos
		p.mu.Unlock()
	}
	return pos, err
}

func (p *progressReader) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.read = p.total
	p.report()
}

func (p *progressReader) report() {
	if p.onProgress == nil {
		return
	}
	if p.total <= 0 {
		p.onProgress(1)
		return
	}
	fraction := float64(p.read) / float64(p.total)
	if fraction > 1 {
		fraction = 1
	}
	p.onProgress(fraction)
}
