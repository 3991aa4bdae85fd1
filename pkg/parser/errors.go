package parser

import "fmt"

// InvalidDocumentError reports source input that is not valid YAML or does
// not conform to the minimal interview shape. It is fatal for the document:
// no partial graph is produced.
type InvalidDocumentError struct {
	Message  string
	FilePath string
	Err      error
}

func (e *InvalidDocumentError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	}
	return e.Message
}

func (e *InvalidDocumentError) Unwrap() error { return e.Err }

func invalidDocument(path, format string, args ...any) *InvalidDocumentError {
	return &InvalidDocumentError{Message: fmt.Sprintf(format, args...), FilePath: path}
}
