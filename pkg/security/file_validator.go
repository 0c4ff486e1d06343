package security

import (
	"bytes"
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Detected file extension
	DetectedMIME string // Detected MIME type
	Error        string // Error message if validation failed
}

// Magic byte signatures for resume documents
var magicBytes = map[string][][]byte{
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},                         // %PDF
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}}, // OLE Compound Document
	".docx": {{0x50, 0x4B, 0x03, 0x04}},                         // ZIP (PK..)
}

// Strict MIME types. application/octet-stream is never accepted.
var strictMIMETypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	// Generic containers DOC/DOCX are sometimes reported as
	"application/x-ole-storage": true,
	"application/zip":           true,
}

// DetectMIME sniffs the content type from the file header.
func DetectMIME(data []byte) *mimetype.MIME {
	return mimetype.Detect(data)
}

// ValidateFile performs 3-layer file validation:
// 1. Extension whitelist check
// 2. Magic byte verification (content matches extension)
// 3. Sniffed MIME type (or one of its parents) is whitelisted
func ValidateFile(filename string, data []byte) FileValidationResult {
	var result FileValidationResult

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	if _, ok := magicBytes[ext]; !ok {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	detected := DetectMIME(data)
	result.DetectedMIME = detected.String()
	if !allowedMIME(detected) {
		result.Error = "MIME type not allowed: " + detected.String()
		return result
	}

	result.Valid = true
	return result
}

func allowedMIME(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strictMIMETypes[m.String()] {
			return true
		}
	}
	return false
}

func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, sig := range magicBytes[ext] {
		if len(data) >= len(sig) && bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// ValidateFileExtension checks only the extension (for quick pre-validation)
func ValidateFileExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return errors.New("file has no extension")
	}
	if _, ok := magicBytes[ext]; !ok {
		return errors.New("file extension not allowed: " + ext)
	}
	return nil
}

// GetAllowedExtensions returns the accepted extensions, sorted.
func GetAllowedExtensions() []string {
	extensions := make([]string, 0, len(magicBytes))
	for ext := range magicBytes {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
