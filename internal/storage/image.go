package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"strings"

	"gaethering/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMaxUploadSizeMB = 10
	MasterMaxSize          = 2048
	JPEGQuality            = 82
	WebPQuality            = 70
)

// ProcessedImage is a validated, normalized upload ready for the object store.
type ProcessedImage struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// ProcessImage validates the upload, decodes it, downscales anything larger
// than the master size and re-encodes. JPEG stays JPEG; everything else is
// re-encoded as webp to keep stored sizes small.
func ProcessImage(content []byte, providedContentType string, maxSizeBytes int64) (*ProcessedImage, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > maxSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", maxSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	if provided := normalizeContentType(providedContentType); strings.HasPrefix(provided, "image/") {
		if !isMatchingContentType(provided, decodedFormatToMime(format)) {
			return nil, models.NewValidationError("Image content type mismatch")
		}
	}

	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)
	b := master.Bounds()

	var (
		data        []byte
		contentType string
		ext         string
	)
	if strings.EqualFold(format, "jpeg") || strings.EqualFold(format, "jpg") {
		data, err = encodeJPEG(master, JPEGQuality)
		contentType, ext = "image/jpeg", "jpg"
	} else {
		data, err = encodeWebP(master, WebPQuality)
		contentType, ext = "image/webp", "webp"
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &ProcessedImage{
		Data:        data,
		ContentType: contentType,
		Ext:         ext,
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}

// ProfileImageKey builds an object key for a member profile image.
func ProfileImageKey(ext string) string {
	return fmt.Sprintf("profile/%s.%s", uuid.NewString(), ext)
}

// PostImageKey builds an object key for a board post image.
func PostImageKey(postID uint, ext string) string {
	return fmt.Sprintf("board/%d/%s.%s", postID, uuid.NewString(), ext)
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}
