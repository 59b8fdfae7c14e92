package builtin

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/deskpilot-ai/deskpilot/internal/config"
	"github.com/deskpilot-ai/deskpilot/internal/guardrail"
)

// RuleConfig represents a rule configuration entry from YAML
type RuleConfig struct {
	Type   string         `yaml:"type" json:"type"`
	Config map[string]any `yaml:"config,omitempty" json:"config,omitempty"`
}

// ruleConfigFile is the top-level shape of a rule configuration file
type ruleConfigFile struct {
	Rules []RuleConfig `yaml:"rules"`
}

// DefaultRules returns the four standard rules in their evaluation order.
func DefaultRules(security config.SecurityConfig, rateLimitPerMinute int) []guardrail.Rule {
	return []guardrail.Rule{
		NewPathSecurity(security),
		NewAppSecurity(security.BlockedApps),
		NewContentSecurity(),
		NewRateLimit(rateLimitPerMinute, DefaultRateWindow),
	}
}

// LoadRuleConfigs reads a YAML rule configuration file and constructs the
// rules it declares, in file order.
func LoadRuleConfigs(path string, security config.SecurityConfig) ([]guardrail.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule config file: %w", err)
	}

	var file ruleConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rule config file: %w", err)
	}

	return ParseRuleConfigs(file.Rules, security)
}

// ParseRuleConfigs creates Rule instances from configurations
func ParseRuleConfigs(configs []RuleConfig, security config.SecurityConfig) ([]guardrail.Rule, error) {
	rules := make([]guardrail.Rule, 0, len(configs))

	for i, rc := range configs {
		rule, err := ParseRuleConfig(rc, security)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rule config at index %d: %w", i, err)
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// ParseRuleConfig creates a single Rule from configuration
func ParseRuleConfig(rc RuleConfig, security config.SecurityConfig) (guardrail.Rule, error) {
	switch rc.Type {
	case "path_security":
		return parsePathConfig(rc, security)
	case "app_security":
		return parseAppConfig(rc, security)
	case "content_security":
		return NewContentSecurity(), nil
	case "rate_limit":
		return parseRateConfig(rc)
	default:
		return nil, fmt.Errorf("unknown rule type: %s", rc.Type)
	}
}

// parsePathConfig parses a path security configuration. The allow-list
// defaults to the security config's but can be overridden per rule.
func parsePathConfig(rc RuleConfig, security config.SecurityConfig) (guardrail.Rule, error) {
	type pathConfig struct {
		AllowedWritePaths []string `mapstructure:"allowed_write_paths"`
	}

	var pc pathConfig
	if err := decodeRuleConfig(rc.Config, &pc); err != nil {
		return nil, fmt.Errorf("failed to decode path_security config: %w", err)
	}

	if len(pc.AllowedWritePaths) > 0 {
		security.AllowedWritePaths = pc.AllowedWritePaths
	}
	return NewPathSecurity(security), nil
}

// parseAppConfig parses an application security configuration. The blocklist
// defaults to the security config's but can be overridden per rule.
func parseAppConfig(rc RuleConfig, security config.SecurityConfig) (guardrail.Rule, error) {
	type appConfig struct {
		BlockedApps []string `mapstructure:"blocked_apps"`
	}

	var ac appConfig
	if err := decodeRuleConfig(rc.Config, &ac); err != nil {
		return nil, fmt.Errorf("failed to decode app_security config: %w", err)
	}

	blocked := security.BlockedApps
	if len(ac.BlockedApps) > 0 {
		blocked = ac.BlockedApps
	}
	return NewAppSecurity(blocked), nil
}

// parseRateConfig parses a rate limit configuration
func parseRateConfig(rc RuleConfig) (guardrail.Rule, error) {
	// Temporary struct so the window can be given as a duration string
	type tempRateConfig struct {
		Limit  int    `mapstructure:"limit"`
		Window string `mapstructure:"window"`
	}

	var temp tempRateConfig
	if err := decodeRuleConfig(rc.Config, &temp); err != nil {
		return nil, fmt.Errorf("failed to decode rate_limit config: %w", err)
	}

	window := DefaultRateWindow
	if temp.Window != "" {
		parsed, err := time.ParseDuration(temp.Window)
		if err != nil {
			return nil, fmt.Errorf("invalid window duration %q: %w", temp.Window, err)
		}
		window = parsed
	}

	return NewRateLimit(temp.Limit, window), nil
}

// decodeRuleConfig decodes a raw config map into the typed result.
func decodeRuleConfig(raw map[string]any, result any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  result,
		TagName: "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	return decoder.Decode(raw)
}
