package domain

import "strings"

// Environment selects which TalkJS application (identifier and secret pair)
// an outbound call is made against.
type Environment string

const (
	// EnvDev is the development application. It is also the fallback for any
	// unrecognized selector.
	EnvDev Environment = "dev"
	// EnvProd is the production application.
	EnvProd Environment = "prod"
)

// ParseEnvironment resolves a selector to an Environment. Matching is
// case-insensitive; anything other than "prod" resolves to EnvDev.
func ParseEnvironment(s string) Environment {
	if strings.EqualFold(strings.TrimSpace(s), string(EnvProd)) {
		return EnvProd
	}
	return EnvDev
}

// String implements fmt.Stringer.
func (e Environment) String() string { return string(e) }
