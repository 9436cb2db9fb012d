package adapter

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/snowbridge/pkg/core"
)

type fakeAdapter struct {
	BaseSQLAdapter
}

func (f *fakeAdapter) Connect(_ context.Context, _ core.TargetConfig) error { return nil }
func (f *fakeAdapter) DriverName() string                                   { return "fake" }
func (f *fakeAdapter) TableMetadata(_ context.Context, _ string) (*core.TableMetadata, error) {
	return nil, sql.ErrNoRows
}

func TestRegistry(t *testing.T) {
	Register("fake", func(logger *slog.Logger) Adapter {
		a := &fakeAdapter{}
		a.Logger = logger
		return a
	})

	assert.True(t, IsRegistered("fake"))
	assert.Contains(t, ListAdapters(), "fake")

	factory, ok := Get("fake")
	require.True(t, ok)
	assert.Equal(t, "fake", factory(nil).DriverName())
}

func TestNewAdapter(t *testing.T) {
	Register("fake", func(logger *slog.Logger) Adapter {
		a := &fakeAdapter{}
		a.Logger = logger
		return a
	})

	a, err := NewAdapter(core.TargetConfig{Type: "fake"}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Equal(t, "fake", a.DriverName())
}

func TestNewAdapterUnknownType(t *testing.T) {
	_, err := NewAdapter(core.TargetConfig{Type: "oracle"}, nil)
	require.Error(t, err)

	var unknownErr *UnknownAdapterError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "oracle", unknownErr.Type)
}

func TestNewAdapterMissingType(t *testing.T) {
	_, err := NewAdapter(core.TargetConfig{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adapter type not specified")
}
