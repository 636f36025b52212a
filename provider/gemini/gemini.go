// Package gemini provides a lynx.Generator implementation using Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
//
// A fresh SDK client is created for every request so that a key chosen in the
// interactive selection flow is picked up without restarting.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mhpenta/lynx"
	"github.com/mhpenta/lynx/ratelimiter"
	"google.golang.org/genai"
)

// MessageKeySelection is shown when the key-selection flow fails under the
// strict policy.
const MessageKeySelection = "API key selection was cancelled or failed. Select a key for a paid project to use the high-fidelity model."

// KeyPolicy decides what happens when key selection does not succeed.
type KeyPolicy string

const (
	// KeyPolicyStrict fails the request without contacting the service.
	KeyPolicyStrict KeyPolicy = "strict"

	// KeyPolicyOptimistic logs a warning and issues the request anyway,
	// relying on an ambient credential.
	KeyPolicyOptimistic KeyPolicy = "optimistic"
)

// ParseKeyPolicy converts a configuration value into a KeyPolicy. The empty
// string selects KeyPolicyStrict.
func ParseKeyPolicy(v string) (KeyPolicy, error) {
	switch KeyPolicy(v) {
	case "", KeyPolicyStrict:
		return KeyPolicyStrict, nil
	case KeyPolicyOptimistic:
		return KeyPolicyOptimistic, nil
	}
	return "", fmt.Errorf("unknown key policy %q", v)
}

// ContentGenerator is the subset of the genai Models service used here.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientFactory builds the SDK client used for a single request.
type ClientFactory func(ctx context.Context, apiKey string) (ContentGenerator, error)

// Client implements lynx.Generator using Google's Gemini API.
type Client struct {
	apiKey    string
	baseURL   string
	keySource lynx.KeySource
	selector  lynx.KeySelector
	policy    KeyPolicy
	factory   ClientFactory
	limiters  *ratelimiter.Registry
	tiers     []lynx.TierInfo
	logger    *slog.Logger
}

// Ensure Client implements the interface.
var _ lynx.Generator = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithAPIKey sets a fixed API key. If neither this nor a KeySource is set,
// the SDK reads GOOGLE_API_KEY or GEMINI_API_KEY.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithBaseURL points the SDK at a custom endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithKeySource sets where the API key is read from before each request.
// It takes precedence over WithAPIKey when it returns a non-empty key.
func WithKeySource(source lynx.KeySource) Option {
	return func(c *Client) {
		c.keySource = source
	}
}

// WithKeySelector sets the capability consulted before tiers that require
// key selection. Without one the step is skipped.
func WithKeySelector(selector lynx.KeySelector) Option {
	return func(c *Client) {
		c.selector = selector
	}
}

// WithKeyPolicy sets the behavior after a failed or cancelled selection.
func WithKeyPolicy(policy KeyPolicy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithClientFactory overrides how SDK clients are created.
func WithClientFactory(factory ClientFactory) Option {
	return func(c *Client) {
		c.factory = factory
	}
}

// WithLimiter replaces the rate limiter for a model. A nil limiter disables
// limiting for it.
func WithLimiter(model lynx.Model, limiter ratelimiter.Limiter) Option {
	return func(c *Client) {
		c.limiters.Set(string(model), limiter)
	}
}

// WithLogger sets a structured logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client serving the flash and pro tiers. Each tier gets an
// in-memory limiter built from its RateLimits unless overridden.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		policy:   KeyPolicyStrict,
		limiters: ratelimiter.NewRegistry(),
		tiers:    []lynx.TierInfo{FlashInfo, ProInfo},
		logger:   slog.Default(),
	}

	for _, tier := range c.tiers {
		c.limiters.Configure(string(tier.Model),
			tier.RateLimits.TokensPerMinute,
			tier.RateLimits.RequestsPerMinute,
		)
	}

	for _, opt := range opts {
		opt(c)
	}

	if _, err := ParseKeyPolicy(string(c.policy)); err != nil {
		return nil, err
	}
	if c.factory == nil {
		c.factory = c.newSDKClient
	}

	return c, nil
}

// Tiers returns the tiers supported by this client. The first is the default.
func (c *Client) Tiers() []lynx.TierInfo {
	return c.tiers
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

// Generate issues one request for prompt and returns a data URI per inline
// image in the response.
func (c *Client) Generate(ctx context.Context, prompt string, settings lynx.GenerationSettings) ([]string, error) {
	if err := lynx.ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	tier, ok := lynx.TierByModel(c.tiers, settings.Model)
	if !ok {
		return nil, lynx.NewGenerationError(lynx.KindService,
			fmt.Sprintf("Unsupported model %q.", settings.Model), nil)
	}

	if tier.RequiresKeySelection && c.selector != nil {
		if err := c.ensureKeySelected(ctx, tier); err != nil {
			return nil, err
		}
	}

	if err := c.checkRateLimit(tier, prompt); err != nil {
		c.logger.Warn("rate limit hit",
			"model", string(tier.Model),
			"error", err.Error(),
		)
		return nil, err
	}

	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return nil, c.fail(tier, lynx.NewGenerationError(lynx.KindAuthorization, "", err))
	}

	client, err := c.factory(ctx, apiKey)
	if err != nil {
		return nil, c.fail(tier, classifyError(err))
	}

	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	start := time.Now()
	c.logger.Debug("sending generate request",
		"model", string(tier.Model),
		"aspect_ratio", string(settings.AspectRatio),
		"image_size", string(settings.ImageSize),
	)

	resp, err := client.GenerateContent(ctx, string(tier.Model), contents, buildGenerateContentConfig(tier, settings))
	if err != nil {
		return nil, c.fail(tier, classifyError(err))
	}

	urls := parseResponse(resp)
	if len(urls) == 0 {
		return nil, c.fail(tier, lynx.NewGenerationError(lynx.KindEmptyResult, "", nil))
	}

	c.logger.Debug("generate request completed",
		"model", string(tier.Model),
		"duration_ms", time.Since(start).Milliseconds(),
		"image_count", len(urls),
	)

	return urls, nil
}

// ensureKeySelected runs the selection flow when no key is selected yet.
func (c *Client) ensureKeySelected(ctx context.Context, tier lynx.TierInfo) error {
	has, err := c.selector.HasSelectedKey(ctx)
	if err != nil {
		c.logger.Warn("checking selected key failed",
			"model", string(tier.Model),
			"error", err.Error(),
		)
	}
	if has {
		return nil
	}

	selected, err := c.selector.OpenSelectKey(ctx)
	if err == nil && selected {
		return nil
	}

	attrs := []any{"model", string(tier.Model), "policy", string(c.policy)}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}

	if c.policy == KeyPolicyOptimistic {
		c.logger.Warn("key selection did not complete, continuing with ambient credentials", attrs...)
		return nil
	}

	c.logger.Error("key selection did not complete", attrs...)
	return lynx.NewGenerationError(lynx.KindAuthorization, MessageKeySelection,
		errors.Join(lynx.ErrKeySelection, err))
}

// checkRateLimit charges the tier's limiter, failing fast when exhausted.
func (c *Client) checkRateLimit(tier lynx.TierInfo, prompt string) error {
	d := c.limiters.Allow(string(tier.Model), ratelimiter.PromptCost(prompt))
	if d.Allowed {
		return nil
	}

	rlErr := &lynx.RateLimitError{
		RetryAfter: d.RetryAfter,
		LimitType:  d.LimitType,
		Model:      string(tier.Model),
	}
	return lynx.NewGenerationError(lynx.KindRateLimited, rlErr.Error(), rlErr)
}

func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	if c.keySource != nil {
		key, err := c.keySource.APIKey(ctx)
		if err != nil {
			return "", fmt.Errorf("reading api key: %w", err)
		}
		if key != "" {
			return key, nil
		}
	}
	return c.apiKey, nil
}

func (c *Client) newSDKClient(ctx context.Context, apiKey string) (ContentGenerator, error) {
	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	}
	// If APIKey is empty, the SDK will try GOOGLE_API_KEY or GEMINI_API_KEY env vars
	if apiKey != "" {
		clientCfg.APIKey = apiKey
	}
	if c.baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client.Models, nil
}

func (c *Client) fail(tier lynx.TierInfo, err *lynx.GenerationError) error {
	attrs := []any{
		"model", string(tier.Model),
		"kind", err.Kind.String(),
		"message", err.Message,
	}
	if err.Err != nil {
		attrs = append(attrs, "error", err.Err.Error())
	}
	c.logger.Error("gemini generation error", attrs...)
	return err
}

// buildGenerateContentConfig sets the aspect ratio always and the image size
// only for tiers that support it.
func buildGenerateContentConfig(tier lynx.TierInfo, settings lynx.GenerationSettings) *genai.GenerateContentConfig {
	imageConfig := &genai.ImageConfig{
		AspectRatio: settings.AspectRatio.String(),
	}

	if tier.SupportsImageSize && settings.ImageSize != "" {
		imageConfig.ImageSize = settings.ImageSize.String()
	}

	return &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig:        imageConfig,
	}
}

// parseResponse wraps every inline payload of every candidate in a data
// URI. Thought parts carry interim renders and are skipped.
func parseResponse(resp *genai.GenerateContentResponse) []string {
	if resp == nil {
		return nil
	}

	var urls []string
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			urls = append(urls, lynx.EncodeDataURI(part.InlineData.MIMEType, part.InlineData.Data))
		}
	}
	return urls
}
