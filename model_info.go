package lynx

// RateLimits defines client-side rate limiting parameters for a tier.
type RateLimits struct {
	TokensPerMinute   int
	RequestsPerMinute int
}

// ImageConstraints defines supported image configurations for a tier.
type ImageConstraints struct {
	SupportedAspectRatios []AspectRatio
	SupportedSizes        []ImageSize
}

// TierInfo contains complete metadata for a generation tier.
type TierInfo struct {
	// Model is the tier identifier, also the API model name
	Model Model

	// Label is the short badge shown next to history entries (e.g. "FLASH")
	Label string

	// Description is a one-line summary for settings pickers
	Description string

	// SupportsImageSize reports whether ImageSize is sent with requests
	SupportsImageSize bool

	// RequiresKeySelection reports whether the key-selection step runs
	// before requests for this tier
	RequiresKeySelection bool

	ImageConstraints ImageConstraints

	RateLimits RateLimits
}

// TierByModel looks up model in tiers.
func TierByModel(tiers []TierInfo, model Model) (TierInfo, bool) {
	for _, t := range tiers {
		if t.Model == model {
			return t, true
		}
	}
	return TierInfo{}, false
}

// TierLabel returns the display label of a model, falling back to the model
// identifier for unknown values.
func TierLabel(model Model) string {
	switch model {
	case ModelFlash:
		return "FLASH"
	case ModelPro:
		return "PRO"
	default:
		return string(model)
	}
}
