package complaint

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "reclamos/internal/errors"
)

// validate is shared; *validator.Validate is safe for concurrent use.
var validate = validator.New()

// typeRule is the validator tag accepting exactly the values in Types.
var typeRule = "oneof=" + strings.Join(typeNames(), " ")

// Validate turns an untyped submission into a Record.
//
// Rules:
//   - Every field in RequiredFields must be present, non-null and non-empty.
//     All offenders are reported together, in declared order.
//   - Only when that passes, Type must be one of Types (case-sensitive).
//   - ServiceNumber is optional and copied as-is.
//
// Strings are taken verbatim. JSON numbers and booleans count as their
// literal text; objects and arrays count as blank.
//
// Returns:
//   - Record: the accepted complaint
//   - error: *errors.ValidationError describing every problem found
func Validate(candidate map[string]interface{}) (Record, error) {
	values := make(map[string]string, len(RequiredFields))
	var missing []string

	for _, field := range RequiredFields {
		text, ok := scalarText(candidate[field])
		if !ok || validate.Var(text, "required") != nil {
			missing = append(missing, field)
			continue
		}
		values[field] = text
	}

	if len(missing) > 0 {
		return Record{}, apperrors.NewMissingFieldsError(missing)
	}

	if validate.Var(values[FieldType], typeRule) != nil {
		return Record{}, apperrors.NewInvalidValueError(FieldType, typeNames())
	}

	record := Record{
		AccountNumber: values[FieldAccountNumber],
		Phone:         values[FieldPhone],
		Category:      values[FieldCategory],
		Type:          Type(values[FieldType]),
		Reference:     values[FieldReference],
		Description:   values[FieldDescription],
	}

	if raw, present := candidate[FieldServiceNumber]; present {
		if text, ok := scalarText(raw); ok {
			record.ServiceNumber = &text
		}
	}

	return record, nil
}

// scalarText converts a decoded JSON scalar to its text form.
// The bool result is false for null, objects and arrays.
func scalarText(v interface{}) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case json.Number:
		return value.String(), true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case int:
		return strconv.Itoa(value), true
	case int64:
		return strconv.FormatInt(value, 10), true
	case bool:
		return strconv.FormatBool(value), true
	default:
		return "", false
	}
}

func typeNames() []string {
	names := make([]string, len(Types))
	for i, t := range Types {
		names[i] = string(t)
	}
	return names
}
