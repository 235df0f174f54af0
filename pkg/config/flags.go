package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

var _ pflag.Value = (*Strategy)(nil)

// Set implements pflag.Value.
func (s *Strategy) Set(v string) error {
	parsed, err := ParseStrategy(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Type implements pflag.Value.
func (s *Strategy) Type() string {
	return "strategy"
}

// ParseStrategy accepts the kebab-case names printed by Strategy.String.
func ParseStrategy(v string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "rarest-first", "rarest":
		return RarestFirst, nil
	case "most-common-first", "most-common":
		return MostCommonFirst, nil
	case "uniform":
		return Uniform, nil
	default:
		return RarestFirst, fmt.Errorf("unknown strategy %q (want rarest-first, most-common-first or uniform)", v)
	}
}

// ParseCooperation accepts the names printed by Cooperation.String.
func ParseCooperation(v string) (Cooperation, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "altruistic":
		return Altruistic, nil
	case "selfish":
		return Selfish, nil
	case "freerider":
		return Freerider, nil
	default:
		return Altruistic, fmt.Errorf("unknown cooperation policy %q", v)
	}
}
