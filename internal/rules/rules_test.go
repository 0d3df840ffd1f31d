package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	f, err := LoadDefault()
	require.NoError(t, err)

	t.Run("gazetteer shape", func(t *testing.T) {
		gaz := f.Gazetteer()
		c, ok := gaz.Lookup("Pahalgam")
		require.True(t, ok)
		assert.Equal(t, 34.0159, c.Lat)
		assert.Equal(t, 75.3187, c.Lng)

		// First entry scans first: tier-1 order depends on it.
		assert.Equal(t, "Pahalgam", gaz.Names()[0])

		// Kupwara is listed twice in the dataset; the gazetteer collapses it.
		assert.Equal(t, 59, len(f.Places))
		assert.Equal(t, 58, gaz.Len())
	})

	t.Run("threat vocabulary", func(t *testing.T) {
		c := f.Classifier()
		assert.Equal(t, 2, c.Score("explosion at the depot"))
		assert.True(t, c.Unsafe("explosion at the depot"))
		assert.Equal(t, 20, len(f.Threat.Keywords))
	})

	t.Run("fallback tables", func(t *testing.T) {
		tables := f.FallbackTables()
		require.NotEmpty(t, tables.Region)
		assert.Equal(t, "kashmir", tables.Region[0].Keyword)
		assert.Equal(t, "Srinagar", tables.Region[0].Place)
		require.NotEmpty(t, tables.Context)
		assert.Equal(t, "terror", tables.Context[0].Keyword)
		assert.Equal(t, []string{"Pahalgam", "Anantnag", "Srinagar", "Gulmarg", "Baramulla"}, tables.DefaultPool)
	})
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			"empty gazetteer",
			`{threat: {threshold: 2, keywords: [{term: bomb, weight: 2}]}, resolver: {default_pool: [X]}}`,
			ErrEmptyGazetteer,
		},
		{
			"empty place name",
			`{gazetteer: [{name: "", lat: 1, lng: 1}], threat: {threshold: 2, keywords: [{term: bomb, weight: 2}]}, resolver: {default_pool: []}}`,
			ErrEmptyPlaceName,
		},
		{
			"no keywords",
			`{gazetteer: [{name: A, lat: 1, lng: 1}], threat: {threshold: 2}, resolver: {default_pool: [A]}}`,
			ErrNoKeywords,
		},
		{
			"zero weight",
			`{gazetteer: [{name: A, lat: 1, lng: 1}], threat: {threshold: 2, keywords: [{term: bomb, weight: 0}]}, resolver: {default_pool: [A]}}`,
			ErrBadKeywordWeight,
		},
		{
			"zero threshold",
			`{gazetteer: [{name: A, lat: 1, lng: 1}], threat: {threshold: 0, keywords: [{term: bomb, weight: 2}]}, resolver: {default_pool: [A]}}`,
			ErrBadThreshold,
		},
		{
			"unknown fallback target",
			`{gazetteer: [{name: A, lat: 1, lng: 1}], threat: {threshold: 2, keywords: [{term: bomb, weight: 2}]}, resolver: {region_keywords: [{keyword: north, place: Nowhere}], default_pool: [A]}}`,
			ErrUnknownPlace,
		},
		{
			"empty default pool",
			`{gazetteer: [{name: A, lat: 1, lng: 1}], threat: {threshold: 2, keywords: [{term: bomb, weight: 2}]}, resolver: {default_pool: []}}`,
			ErrEmptyDefaultPool,
		},
		{
			"default pool entry not in gazetteer",
			`{gazetteer: [{name: A, lat: 1, lng: 1}], threat: {threshold: 2, keywords: [{term: bomb, weight: 2}]}, resolver: {default_pool: [B]}}`,
			ErrUnknownPlace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_DuplicatePlaceAllowed(t *testing.T) {
	doc := `
gazetteer:
  - {name: A, lat: 30, lng: 74}
  - {name: A, lat: 31, lng: 75}
threat:
  threshold: 2
  keywords:
    - {term: bomb, weight: 2}
resolver:
  default_pool: [A]
`
	f, err := Parse([]byte(doc))
	require.NoError(t, err)

	c, ok := f.Gazetteer().Lookup("A")
	require.True(t, ok)
	assert.Equal(t, 31.0, c.Lat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("does/not/exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read rules file")
}
