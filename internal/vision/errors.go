package vision

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse means no parseable JSON object was found in the
	// model output. Structurally bad, not transient: not retried here.
	ErrMalformedResponse = errors.New("no valid JSON object in model response")

	// ErrIncompleteReceipt means the model classified the image as a receipt
	// but omitted a required field.
	ErrIncompleteReceipt = errors.New("receipt is missing required fields")

	// ErrInvalidField means a numeric field could not be coerced or was
	// negative.
	ErrInvalidField = errors.New("invalid receipt field")
)

// ExtractionError wraps the last provider failure after the retry budget is
// exhausted.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return fmt.Sprintf("vision extraction failed: %v", e.Err) }
func (e *ExtractionError) Unwrap() error { return e.Err }
