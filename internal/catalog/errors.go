// internal/catalog/errors.go
package catalog

import "errors"

var (
	ErrInvalidCategory           = errors.New("invalid category")
	ErrInvalidDigitalFormat      = errors.New("invalid digital format")
	ErrInvalidShelfNumber        = errors.New("invalid shelf number")
	ErrInvalidSeries             = errors.New("invalid series")
	ErrInvalidBookFormat         = errors.New("invalid book format")
	ErrInvalidBookStatus         = errors.New("invalid book status")
	ErrInvalidBookCondition      = errors.New("invalid book condition")
	ErrInvalidStatusForFormat    = errors.New("status not allowed for book format")
	ErrInvalidConditionForFormat = errors.New("condition not allowed for book format")
	ErrInvalidAudiobookLength    = errors.New("invalid audiobook length")
	ErrInvalidCheckoutCount      = errors.New("invalid checkout count")
	ErrInvalidDate               = errors.New("invalid date")
	ErrInvalidRating             = errors.New("invalid rating")
	ErrBookNotFound              = errors.New("book not found")
)

// validationErrors pairs each input error with the code it carries on the
// wire. Codes are stable; messages are not.
var validationErrors = []struct {
	code string
	err  error
}{
	{"invalid_category", ErrInvalidCategory},
	{"invalid_digital_format", ErrInvalidDigitalFormat},
	{"invalid_shelf_number", ErrInvalidShelfNumber},
	{"invalid_series", ErrInvalidSeries},
	{"invalid_book_format", ErrInvalidBookFormat},
	{"invalid_book_status", ErrInvalidBookStatus},
	{"invalid_book_condition", ErrInvalidBookCondition},
	{"invalid_status_for_format", ErrInvalidStatusForFormat},
	{"invalid_condition_for_format", ErrInvalidConditionForFormat},
	{"invalid_audiobook_length", ErrInvalidAudiobookLength},
	{"invalid_checkout_count", ErrInvalidCheckoutCount},
	{"invalid_date", ErrInvalidDate},
	{"invalid_rating", ErrInvalidRating},
}

// IsValidationError reports whether err was caused by rejected input rather
// than by a storage or transport failure.
func IsValidationError(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v.err) {
			return true
		}
	}
	return false
}

// ErrorCode returns the wire code for err, or "" when err is not a catalog
// input or lookup error.
func ErrorCode(err error) string {
	for _, v := range validationErrors {
		if errors.Is(err, v.err) {
			return v.code
		}
	}
	if errors.Is(err, ErrBookNotFound) {
		return "book_not_found"
	}
	return ""
}

// ErrorForCode is the inverse of ErrorCode. It returns nil for unknown codes.
func ErrorForCode(code string) error {
	for _, v := range validationErrors {
		if v.code == code {
			return v.err
		}
	}
	if code == "book_not_found" {
		return ErrBookNotFound
	}
	return nil
}
