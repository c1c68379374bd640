package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutColumns(t *testing.T) {
	sigma := LayoutSigma.Columns()
	require.Len(t, sigma, 17)
	assert.Equal(t, []string{ColTime, ColLat, ColLon, ColHgt, ColType}, sigma[:5])
	assert.Equal(t, []string{ColEastSigma, ColNorthSigma, ColUpSigma}, sigma[5:8])
	assert.Equal(t, ColUTC, sigma[16])

	legacy := LayoutLegacy.Columns()
	require.Len(t, legacy, 16)
	assert.Equal(t, []string{ColHPrecision, ColVPrecision}, legacy[5:7])
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("legacy")
	require.NoError(t, err)
	assert.Equal(t, LayoutLegacy, l)

	_, err = ParseLayout("wide")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestFileRecord_RowKeepsColumnPositions(t *testing.T) {
	sparse := FileRecord{ColTime: "100", ColUTC: "12:00:00"}
	full := FileRecord{ColTime: "100", ColLat: "1", ColPDOP: "1.4", ColUTC: "12:00:00"}

	a := sparse.Row(LayoutSigma)
	b := full.Row(LayoutSigma)
	require.Len(t, a, len(b))
	assert.Equal(t, "100", a[0])
	assert.Empty(t, a[1])
	assert.Equal(t, "12:00:00", a[16])
	assert.Equal(t, "1.4", b[9])
}

func TestFileRecord_RowDropsUnknownColumns(t *testing.T) {
	row := FileRecord{ColUpSigma: "0.02", "Extra": "x"}.Row(LayoutLegacy)
	for _, v := range row {
		assert.Empty(t, v)
	}
}
