package errors

import "fmt"

// ConfigurationError marks a malformed question payload discovered at load
// time. Sessions must not start while one of these is present.
type ConfigurationError struct {
	QuestionID string `json:"question_id"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

func (ce *ConfigurationError) Error() string {
	return fmt.Sprintf("question %s misconfigured: %s %s", ce.QuestionID, ce.Field, ce.Message)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(questionID, field, message string) *ConfigurationError {
	return &ConfigurationError{
		QuestionID: questionID,
		Field:      field,
		Message:    message,
	}
}
