package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestErrorCreation(t *testing.T) {
	err := New("test", "test message", nil, http.StatusBadRequest)
	if err.Type != "test" || err.Message != "test message" || err.Code != http.StatusBadRequest {
		t.Errorf("New() created incorrect error: %v", err)
	}

	cause := fmt.Errorf("original error")
	err = New("test", "test with cause", cause, http.StatusInternalServerError)
	if err.Cause != cause {
		t.Errorf("New() did not set cause correctly: %v", err)
	}

	expected := "test: test with cause: original error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestErrorWrapping(t *testing.T) {
	original := fmt.Errorf("original error")
	wrapped := Wrap(original, "wrapped", "wrapped message", http.StatusBadRequest)

	if wrapped.Type != "wrapped" || wrapped.Message != "wrapped message" {
		t.Errorf("Wrap() created incorrect error: %v", wrapped)
	}

	if wrapped.Cause != original {
		t.Errorf("Wrap() did not set cause correctly")
	}

	// Wrapping an AppError keeps its type and code.
	appErr := New("app", "app error", nil, http.StatusNotFound)
	rewrapped := Wrap(appErr, "ignored", "new message", http.StatusBadRequest)

	if rewrapped.Type != "app" {
		t.Errorf("Wrap() did not preserve original AppError type: got %s, want %s",
			rewrapped.Type, appErr.Type)
	}

	if rewrapped.Message != "new message" {
		t.Errorf("Wrap() did not update message: got %s, want %s",
			rewrapped.Message, "new message")
	}

	if rewrapped.Code != appErr.Code {
		t.Errorf("Wrap() did not preserve original status code: got %d, want %d",
			rewrapped.Code, appErr.Code)
	}
}

func TestErrorTypeChecking(t *testing.T) {
	storageErr := StorageIO("upsert favorite", nil)
	indexErr := IndexQueryFailed(nil)

	if !Is(storageErr, ErrTypeStorage) {
		t.Errorf("Is() failed to identify storage error")
	}

	if Is(storageErr, ErrTypeMediaIndex) {
		t.Errorf("Is() incorrectly identified storage error as media index error")
	}

	if !Is(indexErr, ErrTypeMediaIndex) {
		t.Errorf("Is() failed to identify media index error")
	}

	if GetType(storageErr) != ErrTypeStorage {
		t.Errorf("GetType() returned incorrect type: got %s, want %s",
			GetType(storageErr), ErrTypeStorage)
	}

	stdErr := fmt.Errorf("standard error")
	if GetType(stdErr) != "unknown" {
		t.Errorf("GetType() for standard error should return 'unknown', got %s",
			GetType(stdErr))
	}
}

func TestErrorUnwrapping(t *testing.T) {
	innermost := fmt.Errorf("innermost error")
	inner := Wrap(innermost, "inner", "inner error", http.StatusBadRequest)
	outer := Wrap(inner, "outer", "outer error", http.StatusInternalServerError)

	if unwrapped := outer.Unwrap(); unwrapped != inner.Cause {
		t.Errorf("Unwrap() did not return correct inner error")
	}

	if root := RootCause(outer); root != innermost {
		t.Errorf("RootCause() did not return innermost error")
	}
}

func TestDomainConstructors(t *testing.T) {
	permErr := PermissionDenied("denied")
	if permErr.Type != ErrTypePermission || permErr.Code != http.StatusForbidden {
		t.Errorf("PermissionDenied() created error with wrong type or code: %s, %d",
			permErr.Type, permErr.Code)
	}

	notFound := AlbumNotFound(42)
	if notFound.Type != ErrTypeNotFound || notFound.Code != http.StatusNotFound {
		t.Errorf("AlbumNotFound() created error with wrong type or code: %s, %d",
			notFound.Type, notFound.Code)
	}

	invalidArg := InvalidArg("page_size")
	if invalidArg.Type != ErrTypeInvalidArg {
		t.Errorf("InvalidArg() created error with wrong type: %s", invalidArg.Type)
	}
}

func TestErrorUtilityFunctions(t *testing.T) {
	err1 := fmt.Errorf("error 1")
	err2 := fmt.Errorf("error 2")

	if joined := JoinErrors(err1); joined != err1 {
		t.Errorf("JoinErrors() with single error should return that error")
	}

	joined := JoinErrors(err1, err2)
	if joined == nil {
		t.Errorf("JoinErrors() returned nil for multiple errors")
	}

	if joined := JoinErrors(nil, nil); joined != nil {
		t.Errorf("JoinErrors() with all nil should return nil")
	}

	if wrapped := WrapIfErr(nil, "test", "message", http.StatusOK); wrapped != nil {
		t.Errorf("WrapIfErr() with nil should return nil")
	}

	if wrapped := WrapIfErr(err1, "test", "message", http.StatusBadRequest); wrapped == nil {
		t.Errorf("WrapIfErr() with non-nil error should return non-nil")
	}
}
