package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRawName = "R750_202409301600.T04"

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("rinexz")
	require.NoError(t, err)
	assert.Equal(t, FormatRinexZip, f)

	_, err = ParseFormat("GPX")
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "HATANAKA")
}

func TestFormats_DisplayOrder(t *testing.T) {
	all := Formats()
	require.Len(t, all, 8)
	assert.Equal(t, FormatHatanaka, all[0])
	assert.Equal(t, FormatRaw, all[7])

	all[0] = "mutated"
	assert.Equal(t, FormatHatanaka, Formats()[0])
}

func TestSpec_QueryPolicy(t *testing.T) {
	cases := []struct {
		format  OutputFormat
		version string
		query   string
		suffix  string
	}{
		{FormatRinex, "3.04", "?format=RNX&Ver=3.04", "RNX.3.04.obs"},
		{FormatRinex, "2.11", "?format=RNX&Ver=2.11", "RNX.2.11.obs"},
		{FormatRinexZip, "3.03", "?format=Zipped-RNX-MIX&Ver=3.03", "RNX.3.03.zip"},
		{FormatRinexZip, "3.04", "?format=Zipped-RNX-MIX&Ver=3.04", "RNX.3.04.zip"},
		{FormatRinexZip, "3.02", "?format=Zipped-RNX&Ver=3.02", "RNX.3.02.zip"},
		{FormatRinexZip, "2.12", "?format=Zipped-RNX&Ver=2.12", "RNX.2.12.zip"},
		{FormatHatanaka, "3.00", "?format=RNX-COMP&Ver=3.00", "HATANAKA.3.00.obs"},
		{FormatHatanakaZip, "3.04", "?format=Zipped-RNX-COMP&Ver=3.04", "HATANAKA.3.04.zip"},
		{FormatKMLLines, "", "?format=KMZ-Lines", "lines.kmz"},
		{FormatKMLPoints, "", "?format=KMZ-LinesPoints", "kmz"},
		{FormatCSV, "", "?format=KMZ-LinesPoints", "kmz"},
		{FormatRaw, "", "", ""},
	}

	for _, tc := range cases {
		t.Run(string(tc.format)+"_"+tc.version, func(t *testing.T) {
			spec, err := tc.format.Spec(tc.version)
			require.NoError(t, err)
			assert.Equal(t, tc.query, spec.Query)
			assert.Equal(t, tc.suffix, spec.Suffix)
		})
	}
}

func TestSpec_RinexVersionRequired(t *testing.T) {
	for _, f := range []OutputFormat{FormatRinex, FormatRinexZip, FormatHatanaka, FormatHatanakaZip} {
		_, err := f.Spec("")
		require.ErrorIs(t, err, ErrConfiguration, string(f))

		_, err = f.Spec("3.05")
		require.ErrorIs(t, err, ErrConfiguration, string(f))
		assert.Contains(t, err.Error(), "3.05")
	}
}

func TestSpec_NonRinexIgnoresVersion(t *testing.T) {
	spec, err := FormatKMLPoints.Spec("9.99")
	require.NoError(t, err)
	assert.Equal(t, "?format=KMZ-LinesPoints", spec.Query)
}

func TestDefaultFilename(t *testing.T) {
	spec, err := FormatRinex.Spec("3.04")
	require.NoError(t, err)
	assert.Equal(t, "R750_202409301600.RNX.3.04.obs", spec.DefaultFilename(testRawName))

	spec, err = FormatKMLLines.Spec("")
	require.NoError(t, err)
	assert.Equal(t, "R750_202409301600.lines.kmz", spec.DefaultFilename(testRawName))

	raw, err := FormatRaw.Spec("")
	require.NoError(t, err)
	assert.Equal(t, testRawName, raw.DefaultFilename(testRawName))
}

func TestForcesServerName(t *testing.T) {
	assert.True(t, FormatKMLLines.ForcesServerName())
	assert.True(t, FormatKMLPoints.ForcesServerName())
	assert.True(t, FormatCSV.ForcesServerName())
	assert.False(t, FormatRinex.ForcesServerName())
	assert.False(t, FormatRaw.ForcesServerName())
}

func TestDownloadRequest_SpecAppliesArchiveNaming(t *testing.T) {
	req := DownloadRequest{
		Server: "http://10.0.0.5:80",
		Path:   "/download/Internal/" + testRawName,
		Format: FormatCSV,
		Rename: RenameFixed,
	}
	spec, rename, err := req.Spec()
	require.NoError(t, err)
	assert.Equal(t, RenameFromServer, rename)
	assert.Equal(t, "http://10.0.0.5:80/download/Internal/"+testRawName+"?format=KMZ-LinesPoints", req.URL(spec))
	assert.Equal(t, testRawName, req.SourceName())

	req.Format = FormatRaw
	_, rename, err = req.Spec()
	require.NoError(t, err)
	assert.Equal(t, RenameFixed, rename)
}
