package ratelimiter

import "math"

// RequestOverhead is charged on top of the prompt estimate for every request.
const RequestOverhead = 100

// PromptCost approximates the token charge of a text prompt: about four
// characters per token with a 20% margin, plus RequestOverhead.
func PromptCost(prompt string) int {
	if prompt == "" {
		return RequestOverhead
	}

	estimate := float64(len([]rune(prompt))) / 4.0 * 1.2
	return int(math.Ceil(estimate)) + 3 + RequestOverhead
}
