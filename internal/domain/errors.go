package domain

import "fmt"

// ValidationError reports a record field that failed a check. It is raised
// before anything leaves the process.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}
