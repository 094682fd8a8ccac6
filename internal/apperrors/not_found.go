package apperrors

import "fmt"

// NotFoundError identifies which resource lookup failed and by what key, so
// the boundary can report "Post not found with id : 42" instead of a bare
// 404. It wraps the owning domain's sentinel, so errors.Is against
// post.ErrNotFound etc. keeps working.
type NotFoundError struct {
	Resource string
	Field    string
	Value    int64

	sentinel error
}

func NewNotFound(resource, field string, value int64, sentinel error) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Field:    field,
		Value:    value,
		sentinel: sentinel,
	}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s : %d", e.Resource, e.Field, e.Value)
}

func (e *NotFoundError) Unwrap() error {
	return e.sentinel
}
