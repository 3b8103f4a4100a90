package generation

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError lists every rejected parameter with all of its messages.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid parameters: " + strings.Join(names, ", ")
}

// ExtractionError means no JSON boundary was found in the model's text.
type ExtractionError struct {
	Raw string
}

func (e *ExtractionError) Error() string { return "no JSON payload found in model output" }

// MalformedJSONError carries the parser message and the candidate that failed.
type MalformedJSONError struct {
	Message string
	Raw     string
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("model output is not valid JSON: %s", e.Message)
}

type SchemaMismatchError struct {
	Reason string
	Raw    string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("model output does not match the expected shape: %s", e.Reason)
}

// NoValidContentError means every record was dropped during repair.
type NoValidContentError struct {
	Dropped int
	Raw     string
}

func (e *NoValidContentError) Error() string {
	return fmt.Sprintf("no valid records remain after repair (%d dropped)", e.Dropped)
}
