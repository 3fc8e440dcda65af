package generation

import "context"

const (
	DefaultMaxNewTokens = 256
	DefaultTemperature  = 0.7
	DefaultTopP         = 0.95
)

// Params are sampling parameters for one generation call.
type Params struct {
	MaxNewTokens int
	Temperature  float64
	TopP         float64
}

// DefaultParams returns sampled generation with the default limits.
func DefaultParams() Params {
	return Params{MaxNewTokens: DefaultMaxNewTokens, Temperature: DefaultTemperature, TopP: DefaultTopP}
}

// Generator completes a raw prompt. The returned text may or may not echo
// the prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string, params Params) (string, error)
}

// Checker is implemented by generators that can verify the model is
// reachable before first use.
type Checker interface {
	Check(ctx context.Context) error
}
