package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCategory  = "Rachaduras"
	otherCategory = "Destelhamento"
	photoA        = "data:image/jpeg;base64,QQ=="
	photoB        = "data:image/jpeg;base64,Qg=="
	photoC        = "data:image/jpeg;base64,Qw=="
)

func newTestReport() Report {
	return NewReport(7, time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC), DefaultMunicipality, "Daniel")
}

func TestNewReport_Defaults(t *testing.T) {
	r := newTestReport()

	assert.Equal(t, 7, r.ID)
	assert.Equal(t, "07/03/2026", r.Date)
	assert.Equal(t, "Rio Bonito do Iguaçu", r.Municipality)
	assert.Equal(t, "Daniel", r.Engineer)
	assert.Equal(t, TypologyMasonry, r.Typology)
	assert.Equal(t, ClassificationMinimal, r.Classification)
	assert.Equal(t, "Sem Destruição", r.Label)
	assert.Equal(t, "10%", r.Percentage)
	assert.Empty(t, r.Damages)
	assert.NotNil(t, r.Damages)
}

func TestDerive(t *testing.T) {
	tests := []struct {
		classification Classification
		label          string
		percentage     string
	}{
		{ClassificationMinimal, "Sem Destruição", "10%"},
		{ClassificationPartial, "Destruição Parcial Leve", "40%"},
		{ClassificationSevere, "Destruição Parcial Grave", "70%"},
		{ClassificationRuin, "Destruição Total", "100%"},
	}
	for _, tt := range tests {
		t.Run(string(tt.classification), func(t *testing.T) {
			first := Derive(tt.classification)
			second := Derive(tt.classification)

			assert.Equal(t, first, second)
			assert.Equal(t, tt.label, first.Label)
			assert.Equal(t, tt.percentage, first.Percentage)
		})
	}
}

func TestDerive_Total(t *testing.T) {
	for _, c := range Classifications {
		s := Derive(c)
		assert.NotEmpty(t, s.Label, "classification %q has no label", c)
		assert.NotEmpty(t, s.Percentage, "classification %q has no percentage", c)
	}
}

func TestSetField(t *testing.T) {
	t.Run("free text leaves other fields alone", func(t *testing.T) {
		r := newTestReport()
		before := r.Clone()

		require.NoError(t, r.SetField("proprietario", "Maria Souza"))

		assert.Equal(t, "Maria Souza", r.Owner)
		r.Owner = before.Owner
		assert.Equal(t, before, r)
	})

	t.Run("classification re-derives severity", func(t *testing.T) {
		r := newTestReport()

		require.NoError(t, r.SetField("classificacao", "Danos Severos"))

		assert.Equal(t, ClassificationSevere, r.Classification)
		assert.Equal(t, "Destruição Parcial Grave", r.Label)
		assert.Equal(t, "70%", r.Percentage)
	})

	t.Run("invalid classification keeps previous pair", func(t *testing.T) {
		r := newTestReport()

		err := r.SetField("classificacao", "Catastrófico")

		require.ErrorIs(t, err, ErrInvalidValue)
		assert.Equal(t, ClassificationMinimal, r.Classification)
		assert.Equal(t, "Sem Destruição", r.Label)
	})

	t.Run("typology", func(t *testing.T) {
		r := newTestReport()

		require.NoError(t, r.SetField("tipologia", "Pavilhão Industrial"))
		assert.Equal(t, TypologyIndustrialShed, r.Typology)

		require.ErrorIs(t, r.SetField("tipologia", "Castelo"), ErrInvalidValue)
		assert.Equal(t, TypologyIndustrialShed, r.Typology)
	})

	t.Run("unknown key", func(t *testing.T) {
		r := newTestReport()
		require.ErrorIs(t, r.SetField("cor", "azul"), ErrUnknownField)
	})

	t.Run("coordinates are not field-settable", func(t *testing.T) {
		r := newTestReport()
		require.ErrorIs(t, r.SetField("latitude", "-25.0"), ErrUnknownField)
		assert.Empty(t, r.Latitude)
	})
}

func TestToggleDamage(t *testing.T) {
	t.Run("absent category appends empty entry", func(t *testing.T) {
		r := newTestReport()

		selected, err := r.ToggleDamage(testCategory)

		require.NoError(t, err)
		assert.True(t, selected)
		require.Len(t, r.Damages, 1)
		assert.Equal(t, DamageEntry{Category: testCategory, Description: "", Photos: []string{}}, r.Damages[0])
	})

	t.Run("toggle twice restores sequence and drops content", func(t *testing.T) {
		r := newTestReport()
		_, err := r.ToggleDamage(otherCategory)
		require.NoError(t, err)
		before := r.Clone()

		_, err = r.ToggleDamage(testCategory)
		require.NoError(t, err)
		r.SetDamageDescription(testCategory, "fissura diagonal na parede da cozinha")
		r.AppendPhotos(testCategory, []string{photoA})

		selected, err := r.ToggleDamage(testCategory)
		require.NoError(t, err)
		assert.False(t, selected)
		assert.Equal(t, before.Damages, r.Damages)

		_, err = r.ToggleDamage(testCategory)
		require.NoError(t, err)
		entry, ok := r.Damage(testCategory)
		require.True(t, ok)
		assert.Empty(t, entry.Description)
		assert.Empty(t, entry.Photos)
	})

	t.Run("re-adding moves entry to the end", func(t *testing.T) {
		r := newTestReport()
		_, _ = r.ToggleDamage(testCategory)
		_, _ = r.ToggleDamage(otherCategory)
		_, _ = r.ToggleDamage(testCategory)
		_, _ = r.ToggleDamage(testCategory)

		require.Len(t, r.Damages, 2)
		assert.Equal(t, otherCategory, r.Damages[0].Category)
		assert.Equal(t, testCategory, r.Damages[1].Category)
	})

	t.Run("unknown category", func(t *testing.T) {
		r := newTestReport()
		_, err := r.ToggleDamage("Meteoro")
		require.ErrorIs(t, err, ErrInvalidValue)
		assert.Empty(t, r.Damages)
	})
}

func TestSetDamageDescription_NoOpWhenAbsent(t *testing.T) {
	r := newTestReport()
	before := r.Clone()

	assert.False(t, r.SetDamageDescription(testCategory, "texto"))
	assert.Equal(t, before, r)
}

func TestPhotos(t *testing.T) {
	t.Run("append keeps previous photos in order", func(t *testing.T) {
		r := newTestReport()
		_, _ = r.ToggleDamage(testCategory)

		assert.True(t, r.AppendPhotos(testCategory, []string{photoA}))
		assert.True(t, r.AppendPhotos(testCategory, []string{photoB, photoC}))

		entry, _ := r.Damage(testCategory)
		assert.Equal(t, []string{photoA, photoB, photoC}, entry.Photos)
	})

	t.Run("append to deselected category is discarded", func(t *testing.T) {
		r := newTestReport()
		assert.False(t, r.AppendPhotos(testCategory, []string{photoA}))
		assert.Empty(t, r.Damages)
	})

	t.Run("remove shifts later indices down", func(t *testing.T) {
		r := newTestReport()
		_, _ = r.ToggleDamage(testCategory)
		r.AppendPhotos(testCategory, []string{photoA, photoB, photoC})

		assert.True(t, r.RemovePhoto(testCategory, 1))

		entry, _ := r.Damage(testCategory)
		assert.Equal(t, []string{photoA, photoC}, entry.Photos)

		assert.True(t, r.RemovePhoto(testCategory, 1))
		entry, _ = r.Damage(testCategory)
		assert.Equal(t, []string{photoA}, entry.Photos)
	})

	t.Run("out of range is a no-op", func(t *testing.T) {
		r := newTestReport()
		_, _ = r.ToggleDamage(testCategory)
		r.AppendPhotos(testCategory, []string{photoA})

		assert.False(t, r.RemovePhoto(testCategory, 1))
		assert.False(t, r.RemovePhoto(testCategory, -1))
		assert.False(t, r.RemovePhoto(otherCategory, 0))

		entry, _ := r.Damage(testCategory)
		assert.Equal(t, []string{photoA}, entry.Photos)
	})
}

func TestSetCoordinates(t *testing.T) {
	r := newTestReport()

	_, _, ok := r.Coordinates()
	assert.False(t, ok)

	require.NoError(t, r.SetCoordinates(-25.4925781234, -52.525791))
	assert.Equal(t, "-25.492578", r.Latitude)
	assert.Equal(t, "-52.525791", r.Longitude)

	lat, lon, ok := r.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, -25.492578, lat, 1e-9)
	assert.InDelta(t, -52.525791, lon, 1e-9)

	err := r.SetCoordinates(95, 10)
	require.ErrorIs(t, err, ErrInvalidCoordinates)
	assert.Equal(t, "-25.492578", r.Latitude, "pair must be left untouched")
	assert.Equal(t, "-52.525791", r.Longitude, "pair must be left untouched")
}

func snapshotWith(category string) Report {
	r := newTestReport()
	_, _ = r.ToggleDamage(category)
	r.AppendPhotos(category, []string{photoA})
	return r.Clone()
}

func TestDamage_OnReturnedValue(t *testing.T) {
	entry, ok := snapshotWith(testCategory).Damage(testCategory)
	require.True(t, ok)
	assert.Equal(t, []string{photoA}, entry.Photos)

	_, ok = snapshotWith(testCategory).Damage(otherCategory)
	assert.False(t, ok)
}

func TestClone_SharesNothing(t *testing.T) {
	r := newTestReport()
	_, _ = r.ToggleDamage(testCategory)
	r.AppendPhotos(testCategory, []string{photoA, photoB})

	c := r.Clone()
	r.RemovePhoto(testCategory, 0)
	r.SetDamageDescription(testCategory, "alterado")

	entry, _ := c.Damage(testCategory)
	assert.Equal(t, []string{photoA, photoB}, entry.Photos)
	assert.Empty(t, entry.Description)
}

func TestTypologyLabel(t *testing.T) {
	r := newTestReport()
	assert.Equal(t, "Casa de Alvenaria", r.TypologyLabel())

	r.Typology = TypologyOther
	assert.Equal(t, "Outro", r.TypologyLabel())

	r.TypologyOther = "Galpão agrícola"
	assert.Equal(t, "Outro (Galpão agrícola)", r.TypologyLabel())
}

func TestReport_JSONWireFormat(t *testing.T) {
	r := newTestReport()
	_, _ = r.ToggleDamage(testCategory)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "Danos Mínimos", wire["classificacao"])
	assert.Equal(t, "Sem Destruição", wire["nivelDestruicao"])
	assert.Equal(t, "10%", wire["percentualDestruicao"])
	assert.Equal(t, "Casa de Alvenaria", wire["tipologia"])
	assert.NotContains(t, wire, "tipologiaOutro")

	danos, ok := wire["danos"].([]any)
	require.True(t, ok)
	require.Len(t, danos, 1)
	assert.Equal(t, map[string]any{"tipo": testCategory, "descricao": "", "fotos": []any{}}, danos[0])
}
