package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/chainsafe/identity-oracle/pkg/app/errors"
)

func TestHandleErrorWritesServiceError(t *testing.T) {
	h := HandleError(func(http.ResponseWriter, *http.Request) error {
		return apperrors.UnAuthorizedError(errors.New("key not among signers"), "not a required signer")
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), `"error":"not a required signer"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "key not among signers") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
}

func TestHandleErrorHidesUnknownErrors(t *testing.T) {
	h := HandleError(func(http.ResponseWriter, *http.Request) error {
		return errors.New("db password is hunter2")
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
}

func TestDecodeJSONRejectsMalformedBody(t *testing.T) {
	var v struct{ A int }
	err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")), &v)
	if !apperrors.Is(err, apperrors.CategoryDataError) {
		t.Fatalf("expected data error, got %v", err)
	}
}

func TestReadErrorRestoresCategory(t *testing.T) {
	rec := httptest.NewRecorder()
	DefaultErrorHandler(rec, apperrors.ForbiddenError(nil, "fact rejected"))

	err := ReadError(rec.Result())
	if !apperrors.Is(err, apperrors.CategoryForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	var svcErr *apperrors.ServiceError
	if !errors.As(err, &svcErr) || svcErr.Message != "fact rejected" {
		t.Fatalf("unexpected error %v", err)
	}

	plain := httptest.NewRecorder()
	plain.WriteHeader(http.StatusBadGateway)
	if !apperrors.Is(ReadError(plain.Result()), apperrors.CategoryDependencyFailure) {
		t.Fatalf("expected dependency failure")
	}
}
