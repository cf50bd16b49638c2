package conda

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/snk/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectProtocol(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"7.32.4", "legacy"},
		{"v7.0.0", "legacy"},
		{"6.15.5", "legacy"},
		{"8.0.0", "current"},
		{"8.4.12", "current"},
		{"9.1.0", "current"},
		{"", "legacy"},
		{"garbage", "legacy"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectProtocol(tt.version).Name())
		})
	}
}

func TestLegacyProtocol_NewContext(t *testing.T) {
	ctx, err := LegacyProtocol{}.NewContext(filepath.Join(".snakemake", "conda"))
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(ctx.PrefixDir))
	assert.Equal(t, "conda", filepath.Base(ctx.PrefixDir))
	assert.Equal(t, filepath.Join(".snakemake", "conda-archive"), ctx.ArchiveDir)
}

func TestCurrentProtocol_IsUnimplemented(t *testing.T) {
	_, err := CurrentProtocol{}.NewContext("/tmp/prefix")
	assert.ErrorIs(t, err, domain.ErrUnimplemented)
}
