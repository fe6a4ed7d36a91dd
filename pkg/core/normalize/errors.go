package normalize

import (
	"errors"
	"fmt"
)

// Reason is the machine-readable failure class of a normalization.
type Reason string

const (
	ReasonUnsupportedFormat  Reason = "unsupported_format"
	ReasonNoFinancialContent Reason = "no_financial_content_found"
	ReasonAmbiguousStandard  Reason = "ambiguous_standard"
)

// NormalizationError is surfaced to the caller when a document cannot be
// turned into a FinancialRecord at all. Partial extraction does not
// produce this error; a sparsely populated record is returned instead.
type NormalizationError struct {
	Reason Reason
	Detail string
}

func (e *NormalizationError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// IsNormalizationError reports whether err is (or wraps) a
// NormalizationError with the given reason.
func IsNormalizationError(err error, reason Reason) bool {
	var ne *NormalizationError
	return errors.As(err, &ne) && ne.Reason == reason
}
