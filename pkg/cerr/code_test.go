package cerr

import (
	"errors"
	"net/http"
	"testing"
)

func TestCodeHTTPCode(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{OK, http.StatusOK},
		{InvalidArgument, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{AlreadyExists, http.StatusConflict},
		{FailedPrecondition, http.StatusPreconditionFailed},
		{Aborted, http.StatusConflict},
		{Unauthenticated, http.StatusUnauthorized},
		{PermissionDenied, http.StatusForbidden},
		{Internal, http.StatusInternalServerError},
		{Unknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPCode(); got != tt.want {
			t.Errorf("%s.HTTPCode() = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestIsCode(t *testing.T) {
	err := NewError(NotFound, "task not found", nil)
	if !IsCode(err, NotFound) {
		t.Error("IsCode failed on direct error")
	}
	if IsCode(err, Internal) {
		t.Error("IsCode matched wrong code")
	}

	wrapped := errors.Join(errors.New("outer"), err)
	if !IsCode(wrapped, NotFound) {
		t.Error("IsCode failed on wrapped error")
	}

	if IsCode(errors.New("plain"), NotFound) {
		t.Error("IsCode matched non-cerr error")
	}
	if IsCode(nil, NotFound) {
		t.Error("IsCode matched nil")
	}
}

func TestErrorMetaAndDetails(t *testing.T) {
	err := NewError(FailedPrecondition, "cannot delete", nil).
		AddMeta("blockingCount", 3).
		AddDetail("stage", "still has tasks")

	if err.Meta["blockingCount"] != 3 {
		t.Errorf("meta not attached: %v", err.Meta)
	}
	if len(err.Details) != 1 || err.Details[0].Field != "stage" {
		t.Errorf("detail not attached: %v", err.Details)
	}
}

func TestStackCapturedForServerErrors(t *testing.T) {
	if err := NewError(Internal, "boom", nil); err.Stack == "" {
		t.Error("Internal error should capture a stack trace")
	}
	if err := NewError(NotFound, "missing", nil); err.Stack != "" {
		t.Error("NotFound error should not capture a stack trace")
	}
}
