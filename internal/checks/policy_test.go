package checks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dataplane-io/datahealth/internal/dataset"
	"github.com/dataplane-io/datahealth/internal/health"
)

func TestNewPolicyCheck(t *testing.T) {
	t.Run("defaults to red severity", func(t *testing.T) {
		chk, err := NewPolicyCheck("ownership", "", "", map[string]any{"require_owner": true})
		require.NoError(t, err)

		res, err := chk.Evaluate(context.Background(), &dataset.Snapshot{Name: "orders"}, evalTime)
		require.NoError(t, err)
		require.Equal(t, health.StatusRed, res.Status)
	})

	t.Run("honors configured severity", func(t *testing.T) {
		chk, err := NewPolicyCheck("ownership", "", "yellow", map[string]any{"require_owner": true})
		require.NoError(t, err)

		res, err := chk.Evaluate(context.Background(), &dataset.Snapshot{Name: "orders"}, evalTime)
		require.NoError(t, err)
		require.Equal(t, health.StatusYellow, res.Status)
	})

	t.Run("rejects unknown severity", func(t *testing.T) {
		_, err := NewPolicyCheck("ownership", "", "blocker", nil)
		require.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewPolicyCheck("  ", "", "", nil)
		require.Error(t, err)
	})
}

func TestPolicyCheck_Evaluate(t *testing.T) {
	snap := &dataset.Snapshot{
		Name:        "orders",
		Description: "Order events",
		Location:    "s3://lake/orders",
		Owner:       "data-eng",
		Metadata: map[string]any{
			"schema": []any{"id", "ts", "amount"},
		},
	}

	t.Run("clean pass is green", func(t *testing.T) {
		chk, err := NewPolicyCheck("governance", "", "", map[string]any{
			"require_owner":       true,
			"require_description": true,
			"location_prefixes":   []any{"s3://"},
			"required_fields":     []any{"id", "ts"},
			"forbidden_fields":    []any{"ssn"},
			"max_schema_fields":   10,
		})
		require.NoError(t, err)

		res, err := chk.Evaluate(context.Background(), snap, evalTime)
		require.NoError(t, err)
		require.Equal(t, health.StatusGreen, res.Status)
		require.Equal(t, "All policy rules satisfied.", res.Message)
	})

	t.Run("collects every violation", func(t *testing.T) {
		chk, err := NewPolicyCheck("governance", "", "", map[string]any{
			"require_owner":     true,
			"location_prefixes": []any{"gs://"},
			"required_fields":   []any{"tenant_id"},
			"forbidden_fields":  []any{"amount"},
			"max_schema_fields": 2,
		})
		require.NoError(t, err)

		bare := &dataset.Snapshot{
			Name:     "orders",
			Location: "s3://lake/orders",
			Metadata: map[string]any{"schema": []any{"id", "ts", "amount"}},
		}
		res, err := chk.Evaluate(context.Background(), bare, evalTime)
		require.NoError(t, err)
		require.Equal(t, health.StatusRed, res.Status)
		require.Equal(t, "Policy violations found.", res.Message)

		violations := res.Details["violations"].([]string)
		require.Len(t, violations, 5)
		require.Contains(t, violations, "owner is not set")
		require.Contains(t, violations, `location "s3://lake/orders" does not match an approved prefix`)
		require.Contains(t, violations, "schema is missing required field tenant_id")
		require.Contains(t, violations, "schema contains forbidden field amount")
		require.Contains(t, violations, "schema has 3 fields (limit 2)")
	})

	t.Run("no rules always passes", func(t *testing.T) {
		chk, err := NewPolicyCheck("noop", "", "", nil)
		require.NoError(t, err)

		res, err := chk.Evaluate(context.Background(), &dataset.Snapshot{Name: "orders"}, evalTime)
		require.NoError(t, err)
		require.Equal(t, health.StatusGreen, res.Status)
	})
}

func TestLoadPolicyChecks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
policies:
  - name: ownership
    description: Every dataset declares an accountable owner.
    severity: YELLOW
    rules:
      require_owner: true
  - name: pii
    rules:
      forbidden_fields: [ssn, dob]
`), 0o644))

	chks, err := LoadPolicyChecks(path)
	require.NoError(t, err)
	require.Len(t, chks, 2)
	require.Equal(t, "ownership", chks[0].Name())
	require.Equal(t, "Every dataset declares an accountable owner.", chks[0].Description())
	require.Equal(t, "pii", chks[1].Name())

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPolicyChecks(filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("nameless policy", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("policies:\n  - description: no name\n"), 0o644))
		_, err := LoadPolicyChecks(bad)
		require.Error(t, err)
	})
}
