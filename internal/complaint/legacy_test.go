package complaint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLegacyMapsOriginalPayload(t *testing.T) {
	legacy := map[string]interface{}{
		"NroCuenta":        "123",
		"NroServicioEJESA": "S-1",
		"Telefono":         "555-0100",
		"Categoria":        "Facturación",
		"Tipo":             "Operativo",
		"Referencia":       "REF1",
		"Descripcion":      "Sin luz",
	}

	record, err := Validate(FromLegacy(legacy))
	require.NoError(t, err)

	assert.Equal(t, "123", record.AccountNumber)
	assert.Equal(t, Operational, record.Type)
	assert.Equal(t, "Facturación", record.Category)
	require.NotNil(t, record.ServiceNumber)
	assert.Equal(t, "S-1", *record.ServiceNumber)
}

func TestFromLegacyCanonicalKeysWin(t *testing.T) {
	out := FromLegacy(map[string]interface{}{
		"AccountNumber": "canonical",
		"NroCuenta":     "legacy",
		"Extra":         1,
	})

	assert.Equal(t, "canonical", out["AccountNumber"])
	assert.Equal(t, 1, out["Extra"])
	assert.NotContains(t, out, "NroCuenta")
}

func TestFromLegacyKeepsUnknownTypeForValidation(t *testing.T) {
	out := FromLegacy(map[string]interface{}{"Tipo": "Mixto"})
	assert.Equal(t, "Mixto", out["Type"])
}
