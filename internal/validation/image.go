package validation

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxImageSize is the largest accepted photo upload
const MaxImageSize = 5 << 20

var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
)

// allowed content types and the extensions that may carry them
var imageTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/webp": {".webp"},
}

// Image describes an accepted upload
type Image struct {
	ContentType string
	Ext         string
}

// ValidateImage checks size, sniffed content type and extension of an upload.
// The file's read position is reset to the start before returning.
func ValidateImage(header *multipart.FileHeader, file multipart.File) (*Image, error) {
	if header.Size > MaxImageSize {
		return nil, fmt.Errorf("%w: maximum size is %d MB", ErrFileTooLarge, MaxImageSize>>20)
	}

	// http.DetectContentType looks at the first 512 bytes at most
	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to reset file pointer: %w", err)
	}

	detected := http.DetectContentType(buffer[:n])
	exts, ok := imageTypes[detected]
	if !ok {
		return nil, fmt.Errorf("%w (detected: %s)", ErrInvalidImageType, detected)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	for _, allowed := range exts {
		if ext == allowed {
			return &Image{ContentType: detected, Ext: ext}, nil
		}
	}
	return nil, fmt.Errorf("%w: extension %q does not match %s", ErrInvalidImageType, ext, detected)
}
