package agent

import "fmt"

// ValidationError reports tool arguments that fail the declared schema.
type ValidationError struct {
	Tool string
	Msg  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, e.Msg)
}

func validationf(tool, format string, args ...any) error {
	return &ValidationError{Tool: tool, Msg: fmt.Sprintf(format, args...)}
}

// FeatureUnavailableError reports a tool whose backing schema has not been
// migrated in yet on this installation.
type FeatureUnavailableError struct {
	Feature string
}

func (e *FeatureUnavailableError) Error() string {
	return fmt.Sprintf("the %s feature is not enabled on this installation", e.Feature)
}
