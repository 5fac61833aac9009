package checks

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/dataplane-io/datahealth/internal/dataset"
	"github.com/dataplane-io/datahealth/internal/health"
)

// PolicyRules are the declarative governance rules a policy check can
// enforce. Zero values disable a rule.
type PolicyRules struct {
	RequireOwner       bool     `mapstructure:"require_owner"`
	RequireDescription bool     `mapstructure:"require_description"`
	LocationPrefixes   []string `mapstructure:"location_prefixes"`
	RequiredFields     []string `mapstructure:"required_fields"`
	ForbiddenFields    []string `mapstructure:"forbidden_fields"`
	MaxSchemaFields    int      `mapstructure:"max_schema_fields"`
}

// PolicyCheck evaluates declarative governance rules against a snapshot.
// Any violation yields the policy's configured severity (RED unless the
// policy says otherwise); a clean pass is GREEN.
type PolicyCheck struct {
	name        string
	description string
	severity    health.Status
	rules       PolicyRules
}

// NewPolicyCheck builds a policy check from a raw rule mapping. severity may
// be empty, which means RED.
func NewPolicyCheck(name, description, severity string, rules map[string]any) (*PolicyCheck, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("policy has no name")
	}

	var decoded PolicyRules
	if err := mapstructure.Decode(rules, &decoded); err != nil {
		return nil, fmt.Errorf("decoding rules for policy %s: %w", name, err)
	}

	resolved := health.StatusRed
	if severity != "" {
		parsed, err := health.ParseStatus(severity)
		if err != nil {
			return nil, fmt.Errorf("policy %s: %w", name, err)
		}
		resolved = parsed
	}

	if description == "" {
		description = "Policy rules are satisfied."
	}

	return &PolicyCheck{
		name:        name,
		description: description,
		severity:    resolved,
		rules:       decoded,
	}, nil
}

func (c *PolicyCheck) Name() string        { return c.name }
func (c *PolicyCheck) Description() string { return c.description }

func (c *PolicyCheck) Evaluate(_ context.Context, snap *dataset.Snapshot, _ time.Time) (*health.CheckResult, error) {
	var violations []string

	if c.rules.RequireOwner && strings.TrimSpace(snap.Owner) == "" {
		violations = append(violations, "owner is not set")
	}
	if c.rules.RequireDescription && strings.TrimSpace(snap.Description) == "" {
		violations = append(violations, "description is not set")
	}
	if len(c.rules.LocationPrefixes) > 0 && !hasAnyPrefix(snap.Location, c.rules.LocationPrefixes) {
		violations = append(violations, fmt.Sprintf("location %q does not match an approved prefix", snap.Location))
	}

	rawSchema, _ := snap.Lookup("schema")
	fields := dataset.ToStrings(rawSchema)
	if len(c.rules.RequiredFields) > 0 {
		for _, missing := range setDifference(c.rules.RequiredFields, fields) {
			violations = append(violations, fmt.Sprintf("schema is missing required field %s", missing))
		}
	}
	if len(c.rules.ForbiddenFields) > 0 {
		present := make(map[string]bool, len(fields))
		for _, f := range fields {
			present[f] = true
		}
		for _, forbidden := range c.rules.ForbiddenFields {
			if present[forbidden] {
				violations = append(violations, fmt.Sprintf("schema contains forbidden field %s", forbidden))
			}
		}
	}
	if c.rules.MaxSchemaFields > 0 && len(fields) > c.rules.MaxSchemaFields {
		violations = append(violations, fmt.Sprintf("schema has %d fields (limit %d)", len(fields), c.rules.MaxSchemaFields))
	}

	if len(violations) > 0 {
		return &health.CheckResult{
			Name:    c.name,
			Status:  c.severity,
			Message: "Policy violations found.",
			Details: map[string]any{"violations": violations},
		}, nil
	}

	return &health.CheckResult{
		Name:    c.name,
		Status:  health.StatusGreen,
		Message: "All policy rules satisfied.",
		Details: map[string]any{"violations": []string{}},
	}, nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// policyFile is the on-disk shape of a policy definition document.
type policyFile struct {
	Policies []struct {
		Name        string         `yaml:"name"`
		Description string         `yaml:"description"`
		Severity    string         `yaml:"severity"`
		Rules       map[string]any `yaml:"rules"`
	} `yaml:"policies"`
}

// LoadPolicyChecks reads a policy YAML file and returns one check per
// declared policy, in file order. The caller registers them, which is where
// duplicate names get caught.
func LoadPolicyChecks(path string) ([]Check, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}

	var doc policyFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing policy file %s: %w", path, err)
	}

	out := make([]Check, 0, len(doc.Policies))
	for _, entry := range doc.Policies {
		chk, err := NewPolicyCheck(entry.Name, entry.Description, entry.Severity, entry.Rules)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, chk)
	}
	return out, nil
}
