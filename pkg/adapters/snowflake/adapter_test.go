package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/snowbridge/pkg/adapter"
	"github.com/leapstack-labs/snowbridge/pkg/core"
)

func TestAdapterRegistered(t *testing.T) {
	assert.True(t, adapter.IsRegistered("snowflake"))
}

func TestBuildDSN(t *testing.T) {
	cfg := core.TargetConfig{
		Type:      "snowflake",
		Account:   "myorg-myaccount",
		User:      "jdoe",
		Password:  "hunter2",
		Database:  "ANALYTICS",
		Schema:    "PUBLIC",
		Warehouse: "COMPUTE_WH",
		Role:      "ANALYST",
	}

	dsn, err := BuildDSN(cfg)
	require.NoError(t, err)
	assert.Contains(t, dsn, "myorg-myaccount")
	assert.Contains(t, dsn, "jdoe")
	assert.Contains(t, dsn, "ANALYTICS")
	assert.Contains(t, dsn, "COMPUTE_WH")
	assert.Contains(t, dsn, "ANALYST")
}

func TestBuildDSNTimezone(t *testing.T) {
	cfg := core.TargetConfig{
		Type:     "snowflake",
		Account:  "myorg-myaccount",
		User:     "jdoe",
		Password: "hunter2",
		Timezone: "UTC",
	}

	dsn, err := BuildDSN(cfg)
	require.NoError(t, err)
	assert.Contains(t, dsn, "timezone")
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "snowflake", New(nil).DriverName())
}

func TestNotConnectedFailsFast(t *testing.T) {
	a := New(nil)
	_, err := a.DB()
	assert.ErrorIs(t, err, adapter.ErrNotConnected)
}
