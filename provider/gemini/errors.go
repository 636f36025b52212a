package gemini

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/mhpenta/lynx"
	"google.golang.org/genai"
)

const entityNotFound = "Requested entity was not found"

var authStatusPattern = regexp.MustCompile(`\b40[34]\b`)

// classifyError maps an SDK or transport failure to a GenerationError.
// Forbidden and not-found responses usually mean the key lacks access to the
// model or its project has no quota, so they get an actionable message.
func classifyError(err error) *lynx.GenerationError {
	var genErr *lynx.GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	msg := err.Error()

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusForbidden, http.StatusNotFound:
			return lynx.NewGenerationError(lynx.KindAuthorization, "", err)
		}
		if apiErr.Message != "" {
			msg = apiErr.Message
		}
	}

	if strings.Contains(msg, entityNotFound) || authStatusPattern.MatchString(msg) {
		return lynx.NewGenerationError(lynx.KindAuthorization, "", err)
	}

	return lynx.NewGenerationError(lynx.KindService, strings.TrimSpace(msg), err)
}
