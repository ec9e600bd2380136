package valueobject

import "fmt"

// RiskLevel is an ordered band over the 0-100 fraud confidence. The zero
// value is not a valid level.
type RiskLevel uint8

const (
	RiskLevelLow RiskLevel = iota + 1
	RiskLevelMedium
	RiskLevelHigh
	RiskLevelCritical
)

var riskLevelNames = [...]string{
	RiskLevelLow:      "LOW",
	RiskLevelMedium:   "MEDIUM",
	RiskLevelHigh:     "HIGH",
	RiskLevelCritical: "CRITICAL",
}

// riskBands maps a minimum confidence to its level, highest first.
var riskBands = []struct {
	min   int
	level RiskLevel
}{
	{90, RiskLevelCritical},
	{70, RiskLevelHigh},
	{51, RiskLevelMedium},
}

// AllRiskLevels lists the levels from lowest to highest.
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical}
}

// RiskLevelFromConfidence derives the level for a 0-100 confidence.
// Every flagged record scores above 50, so flagged records are at least MEDIUM.
func RiskLevelFromConfidence(confidence int) RiskLevel {
	for _, b := range riskBands {
		if confidence >= b.min {
			return b.level
		}
	}
	return RiskLevelLow
}

// ParseRiskLevel reverses String.
func ParseRiskLevel(s string) (RiskLevel, error) {
	for _, l := range AllRiskLevels() {
		if riskLevelNames[l] == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("invalid risk level: %q", s)
}

// Valid reports whether r is one of the four defined levels.
func (r RiskLevel) Valid() bool {
	return r >= RiskLevelLow && r <= RiskLevelCritical
}

// AtLeast reports whether r is as severe as other or more.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r >= other
}

func (r RiskLevel) String() string {
	if !r.Valid() {
		return "UNKNOWN"
	}
	return riskLevelNames[r]
}

// MarshalText encodes the level by name, so JSON carries "HIGH" rather than 3.
func (r RiskLevel) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid risk level: %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a level name.
func (r *RiskLevel) UnmarshalText(text []byte) error {
	l, err := ParseRiskLevel(string(text))
	if err != nil {
		return err
	}
	*r = l
	return nil
}
