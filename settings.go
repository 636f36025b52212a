package lynx

import (
	"fmt"
	"strings"
)

// Model identifies a generation tier. Values are the service model names so
// that persisted settings can be sent to the API unchanged.
type Model string

const (
	// ModelFlash is the fast tier (Gemini 2.5 Flash Image).
	ModelFlash Model = "gemini-2.5-flash-image"

	// ModelPro is the high-fidelity tier (Gemini 3 Pro Image).
	ModelPro Model = "gemini-3-pro-image-preview"

	ModelDefault Model = ModelFlash
)

// ImageSize represents the output resolution for generated images.
// It is only honored by tiers that support explicit sizing.
type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
	ImageSize4K ImageSize = "4K"
)

// AspectRatio represents the aspect ratio for generated images.
type AspectRatio string

const (
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio3x4  AspectRatio = "3:4"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio9x16 AspectRatio = "9:16"
)

// Models lists every tier in display order.
var Models = []Model{ModelFlash, ModelPro}

// AspectRatios lists every supported ratio in display order.
var AspectRatios = []AspectRatio{
	AspectRatio1x1,
	AspectRatio16x9,
	AspectRatio9x16,
	AspectRatio4x3,
	AspectRatio3x4,
}

// ImageSizes lists every supported output size.
var ImageSizes = []ImageSize{ImageSize1K, ImageSize2K, ImageSize4K}

// GenerationSettings holds the options applied to a submit.
//
// It is a plain value: copying it produces an independent snapshot, and the
// With* helpers return modified copies instead of mutating the receiver.
type GenerationSettings struct {
	// Model selects the tier
	Model Model `json:"model" yaml:"model" validate:"required,oneof=gemini-2.5-flash-image gemini-3-pro-image-preview"`

	// AspectRatio of the output image
	AspectRatio AspectRatio `json:"aspectRatio" yaml:"aspect_ratio" validate:"required,oneof=1:1 3:4 4:3 16:9 9:16"`

	// ImageSize of the output image (1K, 2K, 4K); ignored by the fast tier
	ImageSize ImageSize `json:"imageSize,omitempty" yaml:"image_size" validate:"omitempty,oneof=1K 2K 4K"`

	// NumberOfImages requested by the user
	NumberOfImages int `json:"numberOfImages" yaml:"number_of_images" validate:"min=1"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() GenerationSettings {
	return GenerationSettings{
		Model:          ModelDefault,
		AspectRatio:    AspectRatio1x1,
		ImageSize:      ImageSize1K,
		NumberOfImages: 1,
	}
}

// WithModel returns a copy of the settings with the specified model.
func (s GenerationSettings) WithModel(model Model) GenerationSettings {
	s.Model = model
	return s
}

// WithAspectRatio returns a copy of the settings with the specified ratio.
func (s GenerationSettings) WithAspectRatio(ratio AspectRatio) GenerationSettings {
	s.AspectRatio = ratio
	return s
}

// WithImageSize returns a copy of the settings with the specified size.
func (s GenerationSettings) WithImageSize(size ImageSize) GenerationSettings {
	s.ImageSize = size
	return s
}

// WithNumberOfImages returns a copy of the settings with the specified count.
func (s GenerationSettings) WithNumberOfImages(n int) GenerationSettings {
	s.NumberOfImages = n
	return s
}

// Validate reports whether every field holds a legal value.
func (s GenerationSettings) Validate() error {
	return ValidateSettings(s)
}

// ParseModel accepts either a model identifier or a tier alias.
func ParseModel(v string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "fast", "flash", string(ModelFlash):
		return ModelFlash, nil
	case "pro", "high", "high-fidelity", string(ModelPro):
		return ModelPro, nil
	}
	return "", fmt.Errorf("%w: unknown model %q", ErrInvalidSettings, v)
}

// ParseAspectRatio accepts one of the supported ratios, e.g. "16:9".
func ParseAspectRatio(v string) (AspectRatio, error) {
	v = strings.TrimSpace(v)
	for _, r := range AspectRatios {
		if string(r) == v {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported aspect ratio %q", ErrInvalidSettings, v)
}

// ParseImageSize accepts 1K, 2K or 4K in either case.
func ParseImageSize(v string) (ImageSize, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	for _, s := range ImageSizes {
		if string(s) == v {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported image size %q", ErrInvalidSettings, v)
}

// String returns the model identifier.
func (m Model) String() string {
	return string(m)
}

// String returns the string representation for API calls.
func (s ImageSize) String() string {
	return string(s)
}

// String returns the string representation for API calls.
func (a AspectRatio) String() string {
	return string(a)
}
