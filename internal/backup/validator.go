package backup

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// UploadValidator screens restore uploads before any document is written.
// Restores accept full JSON archives and per-collection CSV dumps only.
type UploadValidator struct {
	maxSizeBytes int64
}

var restoreExtensions = map[string]bool{
	".json": true,
	".csv":  true,
}

var restoreMimeTypes = map[string]bool{
	"application/json":         true,
	"text/csv":                 true,
	"application/vnd.ms-excel": true, // some browsers label csv this way
}

func NewUploadValidator(maxSizeBytes int64) *UploadValidator {
	return &UploadValidator{maxSizeBytes: maxSizeBytes}
}

// Validate checks the filename, declared MIME type, size, and content of a
// restore upload and returns the detected format ("JSON" or "CSV").
func (v *UploadValidator) Validate(data []byte, filename, contentType string) (string, error) {
	if err := v.validateFilename(filename); err != nil {
		return "", err
	}
	if contentType != "" && !restoreMimeTypes[contentType] {
		return "", fmt.Errorf("unsupported MIME type: %s", contentType)
	}
	if err := v.validateSize(int64(len(data))); err != nil {
		return "", err
	}

	format, err := detectFormat(data)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if (format == "JSON" && ext != ".json") || (format == "CSV" && ext != ".csv") {
		return "", errors.New("file extension does not match file content")
	}
	return format, nil
}

func (v *UploadValidator) validateFilename(filename string) error {
	if filename == "" {
		return errors.New("filename cannot be empty")
	}
	if strings.Contains(filename, "..") {
		return errors.New("filename contains path traversal")
	}
	if strings.Contains(filename, "\x00") {
		return errors.New("filename contains null bytes")
	}
	if strings.HasPrefix(filename, "/") || strings.HasPrefix(filename, "\\") {
		return errors.New("filename cannot be an absolute path")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !restoreExtensions[ext] {
		return fmt.Errorf("unsupported file extension: %s", ext)
	}
	return nil
}

func (v *UploadValidator) validateSize(size int64) error {
	if size == 0 {
		return errors.New("empty file")
	}
	if size > v.maxSizeBytes {
		return fmt.Errorf("file size (%d bytes) exceeds maximum allowed size (%d bytes)", size, v.maxSizeBytes)
	}
	return nil
}

// detectFormat sniffs the payload. JSON archives start with an object or
// array; CSV has no signature, so anything else that looks like text passes
// as CSV.
func detectFormat(data []byte) (string, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return "JSON", nil
	}
	if isTextContent(data) {
		return "CSV", nil
	}
	return "", errors.New("unsupported file type based on content")
}

func isTextContent(data []byte) bool {
	checkLen := len(data)
	if checkLen > 512 {
		checkLen = 512
	}
	sample := data[:checkLen]

	if bytes.Contains(sample, []byte{0x00}) {
		return false
	}

	printable := 0
	for _, b := range sample {
		if (b >= 0x20 && b <= 0x7E) || b == 0x09 || b == 0x0A || b == 0x0D {
			printable++
		}
	}
	return float64(printable)/float64(len(sample)) > 0.95
}
