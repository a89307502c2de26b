package vrp

import (
	"fmt"
	"sort"
	"strings"
)

// ProfileName selects a threshold ladder.
type ProfileName string

const (
	ProfileLegacy       ProfileName = "LEGACY"
	ProfileBalanced     ProfileName = "BALANCED"
	ProfileConservative ProfileName = "CONSERVATIVE"
	ProfileAggressive   ProfileName = "AGGRESSIVE"
	ProfileCustom       ProfileName = "CUSTOM"
)

// Thresholds are minimum ratios for each tier, evaluated high to low.
type Thresholds struct {
	Excellent float64 `yaml:"excellent"`
	Good      float64 `yaml:"good"`
	Marginal  float64 `yaml:"marginal"`
}

// Validate requires positive, strictly descending thresholds.
func (t Thresholds) Validate() error {
	if t.Marginal <= 0 {
		return fmt.Errorf("marginal threshold must be > 0, got %g", t.Marginal)
	}
	if !(t.Excellent > t.Good && t.Good > t.Marginal) {
		return fmt.Errorf("thresholds must be descending: excellent=%g good=%g marginal=%g", t.Excellent, t.Good, t.Marginal)
	}
	return nil
}

// Profile is a named threshold ladder.
type Profile struct {
	Name       ProfileName
	Thresholds Thresholds
}

var builtin = map[ProfileName]Thresholds{
	ProfileLegacy:       {Excellent: 7.0, Good: 4.0, Marginal: 1.5},
	ProfileBalanced:     {Excellent: 1.8, Good: 1.4, Marginal: 1.2},
	ProfileConservative: {Excellent: 2.0, Good: 1.5, Marginal: 1.2},
	ProfileAggressive:   {Excellent: 1.5, Good: 1.3, Marginal: 1.1},
}

// DefaultProfile is LEGACY.
func DefaultProfile() Profile {
	return Profile{Name: ProfileLegacy, Thresholds: builtin[ProfileLegacy]}
}

// LookupProfile resolves a built-in profile by name, case-insensitively.
func LookupProfile(name string) (Profile, error) {
	n := ProfileName(strings.ToUpper(strings.TrimSpace(name)))
	if n == "" {
		return DefaultProfile(), nil
	}
	t, ok := builtin[n]
	if !ok {
		return Profile{}, fmt.Errorf("unknown vrp profile %q (known: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return Profile{Name: n, Thresholds: t}, nil
}

// CustomProfile wraps explicit numeric thresholds.
func CustomProfile(t Thresholds) (Profile, error) {
	if err := t.Validate(); err != nil {
		return Profile{}, err
	}
	return Profile{Name: ProfileCustom, Thresholds: t}, nil
}

// ResolveProfile picks CUSTOM when name says so, otherwise a built-in.
func ResolveProfile(name string, custom Thresholds) (Profile, error) {
	if ProfileName(strings.ToUpper(strings.TrimSpace(name))) == ProfileCustom {
		return CustomProfile(custom)
	}
	return LookupProfile(name)
}

// ProfileNames lists built-in profile names, sorted.
func ProfileNames() []string {
	out := make([]string, 0, len(builtin))
	for n := range builtin {
		out = append(out, string(n))
	}
	sort.Strings(out)
	return out
}
