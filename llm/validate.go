package llm

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance used across the package.
var validate = validator.New()

// Validate checks that a request satisfies the sampling parameter bounds
// before any provider is attempted.
func Validate(req *Request) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
