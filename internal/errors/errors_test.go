package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"testing"
)

func TestValidationErrorMessages(t *testing.T) {
	missing := NewMissingFieldsError([]string{"Phone", "Type"})
	expected := "Missing required fields: Phone, Type"
	if missing.Error() != expected {
		t.Errorf("expected %q but got %q", expected, missing.Error())
	}

	invalid := NewInvalidValueError("Type", []string{"Commercial", "Operational"})
	expected = "Invalid type. Must be one of: Commercial, Operational"
	if invalid.Error() != expected {
		t.Errorf("expected %q but got %q", expected, invalid.Error())
	}
}

func TestStoreError(t *testing.T) {
	err := NewWriteError("rename data/reclamo.json", os.ErrPermission)

	if err.Kind != WriteFailed {
		t.Errorf("expected kind %q but got %q", WriteFailed, err.Kind)
	}
	if !stderrors.Is(err, os.ErrPermission) {
		t.Error("expected wrapped error to be reachable through Unwrap")
	}
	if err.Error() == "" {
		t.Error("expected non-empty error string")
	}
}

func TestCorruptDataError(t *testing.T) {
	base := fmt.Errorf("unexpected end of JSON input")
	err := NewCorruptDataError("data/reclamo.json", base)

	if !stderrors.Is(err, base) {
		t.Error("expected wrapped error to be reachable through Unwrap")
	}
}

func TestClassificationHelpers(t *testing.T) {
	wrappedStore := fmt.Errorf("append: %w", NewWriteError("write", nil))
	if !IsStore(wrappedStore) {
		t.Error("expected IsStore to see through wrapping")
	}
	if IsValidation(wrappedStore) {
		t.Error("expected IsValidation to be false for a store error")
	}

	if !IsValidation(NewMissingFieldsError([]string{"Phone"})) {
		t.Error("expected IsValidation to return true for ValidationError")
	}
	if !IsCorruptData(NewCorruptDataError("x", nil)) {
		t.Error("expected IsCorruptData to return true for CorruptDataError")
	}
	if !IsDispatch(fmt.Errorf("send: %w", NewDispatchError("42", os.ErrDeadlineExceeded))) {
		t.Error("expected IsDispatch to see through wrapping")
	}
	if IsDispatch(nil) {
		t.Error("expected IsDispatch(nil) to be false")
	}
}
