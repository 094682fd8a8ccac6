package apperrors

import (
	"errors"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	sentinel := errors.New("category not found")

	err := NewNotFound("Category", "id", 999, sentinel)

	if got, want := err.Error(), "Category not found with id : 999"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should match the wrapped sentinel")
	}

	var nf *NotFoundError

	if !errors.As(error(err), &nf) {
		t.Fatal("errors.As should extract *NotFoundError")
	}

	if nf.Resource != "Category" || nf.Field != "id" || nf.Value != 999 {
		t.Errorf("unexpected fields: %+v", nf)
	}
}
