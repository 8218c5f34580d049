package complaint

// legacyFields maps the field names used by the first deployment of the
// intake form onto the canonical names.
var legacyFields = map[string]string{
	"NroCuenta":        FieldAccountNumber,
	"NroServicioEJESA": FieldServiceNumber,
	"Telefono":         FieldPhone,
	"Categoria":        FieldCategory,
	"Tipo":             FieldType,
	"Referencia":       FieldReference,
	"Descripcion":      FieldDescription,
}

// legacyTypes maps the old type values onto Types.
var legacyTypes = map[string]Type{
	"Comercial": Commercial,
	"Operativo": Operational,
}

// FromLegacy returns a copy of candidate with legacy keys renamed to their
// canonical names. A canonical key that is already present is never
// overwritten. Unknown keys are kept so validation sees the full submission.
func FromLegacy(candidate map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(candidate))
	for k, v := range candidate {
		if _, legacy := legacyFields[k]; !legacy {
			out[k] = v
		}
	}

	for legacyKey, canonical := range legacyFields {
		v, ok := candidate[legacyKey]
		if !ok {
			continue
		}
		if _, taken := out[canonical]; taken {
			continue
		}
		if canonical == FieldType {
			if s, isString := v.(string); isString {
				if mapped, known := legacyTypes[s]; known {
					v = string(mapped)
				}
			}
		}
		out[canonical] = v
	}

	return out
}
