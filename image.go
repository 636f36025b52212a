package lynx

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// DefaultMIMEType is assumed when the service omits the MIME type of an
// inline payload.
const DefaultMIMEType = "image/png"

// GeneratedImage is one history record.
type GeneratedImage struct {
	// ID is unique within the history
	ID string `json:"id"`

	// URL is a data URI embedding the image bytes
	URL string `json:"url"`

	// Prompt is the exact text that was submitted
	Prompt string `json:"prompt"`

	// Settings is a snapshot of the settings active at creation time
	Settings GenerationSettings `json:"settings"`

	// CreatedAt is the creation time in epoch milliseconds
	CreatedAt int64 `json:"createdAt"`
}

// Created returns CreatedAt as a time.Time.
func (img GeneratedImage) Created() time.Time {
	return time.UnixMilli(img.CreatedAt)
}

// MIMEType returns the MIME type declared in the record's data URI.
func (img GeneratedImage) MIMEType() string {
	mime, _, err := DecodeDataURI(img.URL)
	if err != nil {
		return ""
	}
	return mime
}

// GenerationState is the transient, unpersisted UI state.
type GenerationState struct {
	IsGenerating bool

	// Error is empty when there is nothing to show
	Error string
}

// HasError reports whether an error message is pending dismissal.
func (s GenerationState) HasError() bool {
	return s.Error != ""
}

// EncodeDataURI wraps data in a base64 data URI. An empty mimeType is
// replaced with DefaultMIMEType.
func EncodeDataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a base64 data URI into its MIME type and bytes.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload separator", ErrInvalidDataURI)
	}

	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}

	return mimeType, data, nil
}
