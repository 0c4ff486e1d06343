package wizard

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/security"

	"github.com/dustin/go-humanize"
)

const (
	ReasonTooSmall        = "too small"
	ReasonTooLarge        = "too large"
	ReasonUnsupportedType = "unsupported type"
	ReasonInfected        = "infected"
)

const (
	DefaultUploadMinBytes = 100 * 1024
	DefaultUploadMaxBytes = 5000 * 1024
)

// RejectionError explains why the upload gate refused a file.
type RejectionError struct {
	Reason  string
	Message string
}

func (e *RejectionError) Error() string { return e.Message }

// UploadGate accepts a file whose size lies in [MinBytes, MaxBytes] and
// whose extension is listed. MinBytes 0 disables the floor, but an empty
// file is always too small. MaxBytes 0 disables the ceiling.
type UploadGate struct {
	MinBytes   int64
	MaxBytes   int64
	Extensions []string
}

func DefaultUploadGate() UploadGate {
	return UploadGate{
		MinBytes:   DefaultUploadMinBytes,
		MaxBytes:   DefaultUploadMaxBytes,
		Extensions: security.GetAllowedExtensions(),
	}
}

func (g UploadGate) Rules() domain.UploadRules {
	return domain.UploadRules{MinBytes: g.MinBytes, MaxBytes: g.MaxBytes, Extensions: g.Extensions}
}

// Check applies the size window and extension list.
func (g UploadGate) Check(name string, size int64) error {
	if size <= 0 || size < g.MinBytes {
		return &RejectionError{
			Reason:  ReasonTooSmall,
			Message: fmt.Sprintf("File is too small. Minimum size is %s.", humanize.IBytes(uint64(max(g.MinBytes, 1)))),
		}
	}
	if g.MaxBytes > 0 && size > g.MaxBytes {
		return &RejectionError{
			Reason:  ReasonTooLarge,
			Message: fmt.Sprintf("File is too large. Maximum size is %s.", humanize.IBytes(uint64(g.MaxBytes))),
		}
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range g.Extensions {
		if ext == allowed {
			return nil
		}
	}
	return &RejectionError{
		Reason:  ReasonUnsupportedType,
		Message: fmt.Sprintf("Unsupported file type. Upload one of: %s.", strings.Join(g.Extensions, ", ")),
	}
}

// Inspect checks an uploaded file and confirms its content matches its
// extension. The returned file is ready to attach to the draft.
func (g UploadGate) Inspect(name string, data []byte, now time.Time) (*domain.ResumeFile, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if err := g.Check(name, int64(len(data))); err != nil {
		return nil, err
	}
	res := security.ValidateFile(name, data)
	if !res.Valid {
		return nil, &RejectionError{Reason: ReasonUnsupportedType, Message: "Unsupported file type: " + res.Error + "."}
	}
	return &domain.ResumeFile{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: res.DetectedMIME,
		Content:     data,
		UploadedAt:  now,
	}, nil
}
