package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/snowbridge/pkg/adapter"
	"github.com/leapstack-labs/snowbridge/pkg/core"
)

func TestAdapterRegistration(t *testing.T) {
	assert.True(t, adapter.IsRegistered("postgres"))

	factory, ok := adapter.Get("postgres")
	assert.True(t, ok)
	assert.NotNil(t, factory)
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  core.TargetConfig
		want string
	}{
		{
			name: "defaults",
			cfg:  core.TargetConfig{Database: "dev"},
			want: "host=localhost port=5432 dbname=dev sslmode=disable",
		},
		{
			name: "full config",
			cfg: core.TargetConfig{
				Host:     "db.internal",
				Port:     5433,
				Database: "analytics",
				User:     "jdoe",
				Password: "secret",
				Options:  map[string]string{"sslmode": "require"},
			},
			want: "host=db.internal port=5433 dbname=analytics sslmode=require user=jdoe password=secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildDSN(tt.cfg))
		})
	}
}

func TestDriverName(t *testing.T) {
	a := New(nil)
	assert.Equal(t, "postgres", a.DriverName())
}

func TestNotConnectedFailsFast(t *testing.T) {
	a := New(nil)

	_, err := a.DB()
	assert.ErrorIs(t, err, adapter.ErrNotConnected)
	assert.False(t, a.IsConnected())
}
