package gemini

import "github.com/mhpenta/lynx"

// Model name constants - the actual API model names.
const (
	// APIModelFlash is the API name for Gemini 2.5 Flash Image (fast tier)
	APIModelFlash = string(lynx.ModelFlash)

	// APIModelPro is the API name for Gemini 3 Pro Image (high-fidelity tier)
	APIModelPro = string(lynx.ModelPro)
)

// FlashInfo describes the fast tier.
//
// Flash Image renders at roughly 1024px and ignores explicit size requests,
// so no ImageSize is sent for it.
var FlashInfo = lynx.TierInfo{
	Model:       lynx.ModelFlash,
	Label:       "FLASH",
	Description: "Fast generation, ~1024px output",

	SupportsImageSize:    false,
	RequiresKeySelection: false,

	ImageConstraints: lynx.ImageConstraints{
		SupportedAspectRatios: lynx.AspectRatios,
		SupportedSizes: []lynx.ImageSize{
			lynx.ImageSize1K,
		},
	},

	RateLimits: lynx.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 500, // ~500 RPM for Tier 1
	},
}

// ProInfo describes the high-fidelity tier.
//
// Gemini 3 Pro Image is billed to a paid project, so a key has to be
// selected explicitly before it is used.
var ProInfo = lynx.TierInfo{
	Model:       lynx.ModelPro,
	Label:       "PRO",
	Description: "High fidelity, 1K/2K/4K output, paid key required",

	SupportsImageSize:    true,
	RequiresKeySelection: true,

	ImageConstraints: lynx.ImageConstraints{
		SupportedAspectRatios: lynx.AspectRatios,
		SupportedSizes:        lynx.ImageSizes,
	},

	RateLimits: lynx.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 360,
	},
}
