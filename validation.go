package lynx

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validation errors
var (
	ErrEmptyPrompt     = errors.New("prompt cannot be empty")
	ErrInvalidSettings = errors.New("invalid generation settings")
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func settingsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidatePrompt rejects prompts that are empty or whitespace only.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// ValidateSettings checks that every enum field holds a known value and that
// at least one image is requested.
func ValidateSettings(s GenerationSettings) error {
	err := settingsValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s=%v fails %s", fe.Field(), fe.Value(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(msgs, ", "))
}
