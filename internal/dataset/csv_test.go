package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleInventory = `name,owner,location,last_updated,freshness_hours,record_count,expected_min_records,expected_schema
orders,team-commerce,s3://lake/orders,2026-02-07T10:00:00Z,24,120000,100000,order_id;user_id;total
users,team-identity,warehouse.users,2026-02-06T08:00:00Z,48,,,user_id;email
`

func TestRegistry_AddCSV(t *testing.T) {
	dir := t.TempDir()

	t.Run("one dataset per row", func(t *testing.T) {
		path := writeFile(t, dir, "inventory.csv", sampleInventory)
		reg := NewRegistry()
		require.NoError(t, reg.AddCSV(path))
		require.Equal(t, 2, reg.Len())

		snaps := reg.List()
		orders := snaps[0]
		require.Equal(t, "orders", orders.Name)
		require.Equal(t, "team-commerce", orders.Owner)
		require.Equal(t, "s3://lake/orders", orders.Location)
		require.Equal(t, "24", orders.Metadata["freshness_hours"])
		require.Equal(t, "120000", orders.Metadata["record_count"])
		require.Equal(t, []any{"order_id", "user_id", "total"}, orders.Metadata["expected_schema"])
		require.Equal(t, path+"#row2", orders.Source)
	})

	t.Run("empty cells are absent not empty strings", func(t *testing.T) {
		path := writeFile(t, dir, "sparse.csv", sampleInventory)
		reg := NewRegistry()
		require.NoError(t, reg.AddCSV(path))

		users := reg.List()[1]
		require.NotContains(t, users.Metadata, "record_count")
		require.NotContains(t, users.Metadata, "expected_min_records")
		require.Contains(t, users.Metadata, "freshness_hours")
	})

	t.Run("numeric cells coerce through the usual accessors", func(t *testing.T) {
		path := writeFile(t, dir, "coerce.csv", sampleInventory)
		reg := NewRegistry()
		require.NoError(t, reg.AddCSV(path))

		orders := reg.List()[0]
		count, err := ToFloat(orders.Metadata["record_count"])
		require.NoError(t, err)
		require.Equal(t, 120000.0, count)

		ts, ok := ParseTime(orders.Metadata["last_updated"])
		require.True(t, ok)
		require.Equal(t, 2026, ts.Year())
	})

	t.Run("missing name column fails", func(t *testing.T) {
		path := writeFile(t, dir, "noname.csv", "owner,location\nteam-a,s3://x\n")
		reg := NewRegistry()
		err := reg.AddCSV(path)
		require.Error(t, err)
		require.Contains(t, err.Error(), "missing required field: name")
	})

	t.Run("ragged row fails", func(t *testing.T) {
		path := writeFile(t, dir, "ragged.csv", "name,owner\norders\n")
		reg := NewRegistry()
		err := reg.AddCSV(path)
		require.Error(t, err)
	})

	t.Run("empty file fails", func(t *testing.T) {
		path := writeFile(t, dir, "empty.csv", "")
		reg := NewRegistry()
		err := reg.AddCSV(path)
		require.Error(t, err)
		require.Contains(t, err.Error(), "no header row")
	})

	t.Run("duplicate names rejected", func(t *testing.T) {
		path := writeFile(t, dir, "dups.csv", "name\norders\norders\n")
		reg := NewRegistry()
		err := reg.AddCSV(path)
		require.Error(t, err)
		require.Contains(t, err.Error(), "already registered: orders")
	})

	t.Run("missing file fails", func(t *testing.T) {
		reg := NewRegistry()
		require.Error(t, reg.AddCSV(filepath.Join(dir, "nope.csv")))
	})
}

func TestRegistry_LoadPath_CSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "catalog.csv", "name,owner\nclicks,team-web\n")
	writeFile(t, dir, "extra.yaml", "name: orders\n")

	reg := NewRegistry()
	require.NoError(t, reg.LoadPath(dir))
	require.Equal(t, 2, reg.Len())

	snaps := reg.List()
	require.Equal(t, "clicks", snaps[0].Name)
	require.Equal(t, "team-web", snaps[0].Owner)
	require.Equal(t, "orders", snaps[1].Name)
}
