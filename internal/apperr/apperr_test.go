package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorString(t *testing.T) {
	plain := NotFound("friend not found")
	if plain.Error() != "friend not found" {
		t.Errorf("unexpected message: %q", plain.Error())
	}

	wrapped := Wrap(KindInternal, "load statuses", errors.New("connection refused"))
	if wrapped.Error() != "load statuses: connection refused" {
		t.Errorf("unexpected wrapped message: %q", wrapped.Error())
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("x"), KindNotFound},
		{"invalid state", InvalidState("x"), KindInvalidState},
		{"conflict", Conflict("x"), KindConflict},
		{"configuration", Configuration("x"), KindConfiguration},
		{"plain error", errors.New("boom"), KindInternal},
		{"nested", fmt.Errorf("outer: %w", InvalidState("inner")), KindInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{InvalidState("x"), http.StatusUnprocessableEntity},
		{Conflict("x"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("no rows")
	err := Wrap(KindNotFound, "invite not found", cause)
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
}
