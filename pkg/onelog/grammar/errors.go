package grammar

import "fmt"

// ValidationError represents a schema-level validation error, such as a
// missing pattern or an unsupported version.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}
