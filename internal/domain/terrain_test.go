package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Color
		wantErr  bool
	}{
		{name: "with hash", input: "#aad3df", expected: RGB(0xaa, 0xd3, 0xdf)},
		{name: "without hash", input: "ffffff", expected: RGB(0xff, 0xff, 0xff)},
		{name: "upper case", input: "#AAD3DF", expected: RGB(0xaa, 0xd3, 0xdf)},
		{name: "too short", input: "#fff", wantErr: true},
		{name: "not hex", input: "#gggggg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color, err := ParseHexColor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, color)
		})
	}
}

func TestColor_Hex(t *testing.T) {
	assert.Equal(t, "#0100fe", RGB(0x01, 0x00, 0xfe).Hex())
	assert.Equal(t, "#000000", RGB(0, 0, 0).Hex())
}

func TestDefaultColorCostTable(t *testing.T) {
	table := DefaultColorCostTable()

	assert.Equal(t, 75, table.Len())

	t.Run("passable color", func(t *testing.T) {
		class, err := table.Lookup(RGB(0x8d, 0xc5, 0x6c))
		require.NoError(t, err)
		assert.Equal(t, "Forest", class.Category)
		assert.Equal(t, TierPassable, class.Tier)
		assert.Equal(t, 2.25, class.Cost())
	})

	t.Run("infeasible color", func(t *testing.T) {
		class, err := table.Lookup(RGB(0xaa, 0xd3, 0xdf))
		require.NoError(t, err)
		assert.Equal(t, "Water", class.Category)
		assert.Equal(t, TierInfeasible, class.Tier)
		assert.Equal(t, InfeasibleCost, class.Cost())
	})

	t.Run("unclassified color", func(t *testing.T) {
		_, err := table.Lookup(RGB(0x12, 0x34, 0x56))
		assert.True(t, errors.Is(err, pkgerrors.ErrUnclassifiedColor))
	})

	t.Run("multipliers are within range", func(t *testing.T) {
		for _, entry := range table.Entries() {
			if entry.Tier == TierInfeasible {
				continue
			}
			assert.GreaterOrEqual(t, entry.Multiplier, 1.0, entry.Color)
			assert.Less(t, entry.Multiplier, InfeasibleCost, entry.Color)
		}
	})
}

func TestColorCostTable_WithOverrides(t *testing.T) {
	base := DefaultColorCostTable()

	overridden, err := base.WithOverrides([]ColorEntry{
		{Color: "#aad3df", TerrainClass: TerrainClass{Category: "Shallow Water", Multiplier: 3, Tier: TierPassable}},
		{Color: "#123456", TerrainClass: TerrainClass{Category: "Custom", Multiplier: 1.1}},
	})
	require.NoError(t, err)

	assert.Equal(t, base.Len()+1, overridden.Len())

	water, err := overridden.Lookup(RGB(0xaa, 0xd3, 0xdf))
	require.NoError(t, err)
	assert.Equal(t, 3.0, water.Cost())

	// base table is untouched
	water, err = base.Lookup(RGB(0xaa, 0xd3, 0xdf))
	require.NoError(t, err)
	assert.Equal(t, TierInfeasible, water.Tier)

	_, err = base.WithOverrides([]ColorEntry{{Color: "blue"}})
	assert.Error(t, err)
}

func TestNewColorCostTable_RejectsNegativeMultiplier(t *testing.T) {
	_, err := NewColorCostTable(map[string]TerrainClass{
		"#000000": {Category: "Broken", Multiplier: -1},
	})
	assert.Error(t, err)
}

func TestCostTier_Text(t *testing.T) {
	text, err := TierInfeasible.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "infeasible", string(text))

	var tier CostTier
	require.NoError(t, tier.UnmarshalText([]byte("infeasible")))
	assert.Equal(t, TierInfeasible, tier)
	require.NoError(t, tier.UnmarshalText([]byte("")))
	assert.Equal(t, TierPassable, tier)
	assert.Error(t, tier.UnmarshalText([]byte("swamp")))
}

func TestBoundingBox(t *testing.T) {
	bbox := BoundingBox{West: 80.0, South: 6.0, East: 81.0, North: 7.0}

	assert.True(t, bbox.Valid())
	assert.Equal(t, 1.0, bbox.Width())
	assert.Equal(t, 1.0, bbox.Height())
	assert.Equal(t, GeoPoint{Lat: 6.5, Lon: 80.5}, bbox.Center())
	assert.True(t, bbox.Contains(GeoPoint{Lat: 6.5, Lon: 80.5}))
	assert.False(t, bbox.Contains(GeoPoint{Lat: 7.0, Lon: 80.5}), "edge is not strictly inside")
	assert.False(t, BoundingBox{West: 1, East: 1, South: 0, North: 1}.Valid())
}

func TestRaster(t *testing.T) {
	_, err := NewRaster(2, 2, make([]Pixel, 3))
	assert.Error(t, err)

	_, err = NewRaster(0, 2, nil)
	assert.Error(t, err)

	pixels := []Pixel{{R: 1}, {R: 2}, {R: 3}, {R: 4}, {R: 5}, {R: 6}}
	raster, err := NewRaster(3, 2, pixels)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), raster.At(1, 2).R)
	assert.Equal(t, uint8(2), raster.At(0, 1).R)
	assert.Equal(t, RGB(4, 0, 0), raster.At(1, 0).Color())
}
