package qna

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// DefaultMaxImageMB is the upload limit the server accepts
const DefaultMaxImageMB = 3

// AllowedImageTypes are the MIME types accepted for a post image
var AllowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

var validate = validator.New()

// ImageFile is a locally selected image staged for upload
type ImageFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// NewImageFile wraps file contents, detecting the MIME type from the bytes
func NewImageFile(name string, data []byte) *ImageFile {
	mtype := mimetype.Detect(data).String()
	// Drop parameters such as "; charset=utf-8".
	if i := strings.IndexByte(mtype, ';'); i >= 0 {
		mtype = strings.TrimSpace(mtype[:i])
	}
	return &ImageFile{
		Name:        name,
		ContentType: mtype,
		Size:        int64(len(data)),
		Data:        data,
	}
}

// Validation is the outcome of checking a file. Errors holds a readable
// message per violation.
type Validation struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors,omitempty"`
}

// ValidateFileSize reports whether f is at most maxMB megabytes
func ValidateFileSize(f *ImageFile, maxMB int) bool {
	return validate.Var(f.Size, fmt.Sprintf("lte=%d", int64(maxMB)*1024*1024)) == nil
}

// ValidateImageType reports whether f has an allowed image MIME type
func ValidateImageType(f *ImageFile) bool {
	return validate.Var(f.ContentType, "required,oneof="+strings.Join(AllowedImageTypes, " ")) == nil
}

// ValidateFile checks size and type against the default limit
func ValidateFile(f *ImageFile) Validation {
	return ValidateFileWithLimit(f, DefaultMaxImageMB)
}

// ValidateFileWithLimit checks size and type and reports every violation
func ValidateFileWithLimit(f *ImageFile, maxMB int) Validation {
	if f == nil {
		return Validation{Errors: []string{"No file selected."}}
	}

	var errs []string
	if !ValidateFileSize(f, maxMB) {
		errs = append(errs, fmt.Sprintf("File size must be %dMB or less.", maxMB))
	}
	if !ValidateImageType(f) {
		errs = append(errs, "Only JPG, PNG and WebP files can be uploaded.")
	}

	return Validation{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateFile lets the client satisfy the controller's API interface
func (c *Client) ValidateFile(f *ImageFile) Validation {
	return ValidateFile(f)
}
