package lint

import "github.com/leapstack-labs/namelint/pkg/core"

// Config controls which rules are enabled and their severity.
// It is applied by LoadRegistry; disabled rules never reach the registry.
type Config struct {
	// DisabledRules contains rule IDs to skip
	DisabledRules map[string]bool

	// SeverityOverrides changes the default severity of rules
	SeverityOverrides map[string]core.Severity

	// OnlyRules, when non-empty, restricts the registry to these IDs
	OnlyRules map[string]bool
}

// NewConfig creates a default configuration with all rules enabled.
func NewConfig() *Config {
	return &Config{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]core.Severity),
		OnlyRules:         make(map[string]bool),
	}
}

// IsDisabled returns true if the rule should be skipped.
func (c *Config) IsDisabled(ruleID string) bool {
	if c == nil {
		return false
	}
	if len(c.OnlyRules) > 0 && !c.OnlyRules[ruleID] {
		return true
	}
	return c.DisabledRules[ruleID]
}

// GetSeverity returns the severity for a rule, applying any override.
func (c *Config) GetSeverity(ruleID string, defaultSeverity core.Severity) core.Severity {
	if c != nil {
		if sev, ok := c.SeverityOverrides[ruleID]; ok {
			return sev
		}
	}
	return defaultSeverity
}

// Disable disables a rule by ID.
func (c *Config) Disable(ruleID string) *Config {
	c.DisabledRules[ruleID] = true
	return c
}

// SetSeverity overrides the severity for a rule.
func (c *Config) SetSeverity(ruleID string, severity core.Severity) *Config {
	c.SeverityOverrides[ruleID] = severity
	return c
}

// Only restricts the registry to the given rule IDs.
func (c *Config) Only(ruleIDs ...string) *Config {
	for _, id := range ruleIDs {
		c.OnlyRules[id] = true
	}
	return c
}
