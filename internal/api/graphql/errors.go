package graphql

import (
	"github.com/minsukang/accounts/internal/domain/shared"
)

// codedError carries the domain error code into GraphQL error
// extensions so clients can branch on it
type codedError struct {
	err  error
	code string
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

// Extensions is picked up by graphql-go and rendered under
// errors[].extensions
func (e *codedError) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code": e.code,
	}
}

func resolverError(err error) error {
	if err == nil {
		return nil
	}
	return &codedError{err: err, code: shared.CodeOf(err)}
}
