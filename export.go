package lynx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportFileName returns the download name used for img, e.g.
// "lynx-<id>.png".
func ExportFileName(img GeneratedImage) string {
	return exportName(img.ID, img.MIMEType())
}

func exportName(id, mimeType string) string {
	return "lynx-" + id + "." + extensionFromMIME(mimeType)
}

func validateExportID(id string) error {
	if id == "" || id == "." || id == ".." ||
		strings.ContainsAny(id, `/\`) || filepath.Base(id) != id {
		return fmt.Errorf("%w: %q", ErrInvalidImageID, id)
	}
	return nil
}

// Export decodes the image's data URI and writes it into dir, returning the
// written path. dir is created if needed. Ids that are not a single path
// element are rejected, so the file always lands directly in dir.
func Export(img GeneratedImage, dir string) (string, error) {
	if err := validateExportID(img.ID); err != nil {
		return "", err
	}

	mimeType, data, err := DecodeDataURI(img.URL)
	if err != nil {
		return "", fmt.Errorf("image %s: %w", img.ID, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	path := filepath.Join(dir, exportName(img.ID, mimeType))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	return path, nil
}

// extensionFromMIME returns a file extension for common image MIME types.
func extensionFromMIME(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
