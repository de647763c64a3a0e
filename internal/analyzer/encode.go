package analyzer

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/yildizm/nexus/internal/ai"
	"github.com/yildizm/nexus/internal/common"
)

// MaxFileSize caps attachments; inline parts above this are rejected upstream anyway
const MaxFileSize = 20 << 20

// EncodeBytes returns the standard base64 encoding of data
func EncodeBytes(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// StripDataURI removes a "data:<type>;base64," header if present
func StripDataURI(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}

// DecodePayload reverses EncodeBytes, tolerating a data-URI header and whitespace
func DecodePayload(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(StripDataURI(s)), "")
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ai.NewInputError("file.data", "", fmt.Sprintf("file payload is not valid base64: %v", err))
	}
	return data, nil
}

// DetectMediaType sniffs data and returns its media type without parameters
func DetectMediaType(data []byte) string {
	return baseMediaType(mimetype.Detect(data).String())
}

// NewFileInput encodes data as an attachment. An empty mimeType is sniffed
// from the content, and unsupported types are rejected.
func NewFileInput(name, mimeType string, data []byte) (*common.FileInput, error) {
	if len(data) == 0 {
		return nil, ai.NewInputError("file", name, "file is empty")
	}
	if len(data) > MaxFileSize {
		return nil, ai.NewInputError("file", name, fmt.Sprintf("file exceeds %d MiB", MaxFileSize>>20))
	}

	mimeType = baseMediaType(mimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = DetectMediaType(data)
	}
	if !common.AcceptedMediaType(mimeType) {
		return nil, ai.NewInputError("file.mimeType", mimeType, "only PDF, image and text files are accepted")
	}

	return &common.FileInput{
		Name:     name,
		MIMEType: mimeType,
		Data:     EncodeBytes(data),
	}, nil
}

// ReadFileInput reads an attachment from r
func ReadFileInput(name, mimeType string, r io.Reader) (*common.FileInput, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return NewFileInput(name, mimeType, data)
}

// LoadFileInput reads an attachment from disk, sniffing its media type
func LoadFileInput(path string) (*common.FileInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadFileInput(filepath.Base(path), "", f)
}

func baseMediaType(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
