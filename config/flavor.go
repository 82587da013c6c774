package config

import "strings"

// Flavor is the deployment variant an environment was loaded for.
type Flavor int

const (
	FlavorDev Flavor = iota
	FlavorStaging
	FlavorProd
)

// ParseFlavor maps a flavor name to a Flavor, case-insensitively.
// Unrecognised names yield FlavorDev.
func ParseFlavor(s string) Flavor {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "staging", "stage":
		return FlavorStaging
	case "prod", "production":
		return FlavorProd
	default:
		return FlavorDev
	}
}

func (f Flavor) String() string {
	switch f {
	case FlavorStaging:
		return "staging"
	case FlavorProd:
		return "prod"
	default:
		return "dev"
	}
}
