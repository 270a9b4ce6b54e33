// internal/catalog/format.go
package catalog

import "fmt"

// BookFormat is the medium a catalog item is published in.
type BookFormat string

const (
	FormatHardcover BookFormat = "Hardcover"
	FormatPaperback BookFormat = "Paperback"
	FormatAudiobook BookFormat = "Audiobook"
	FormatEbook     BookFormat = "E-book"
)

var bookFormats = []BookFormat{FormatHardcover, FormatPaperback, FormatAudiobook, FormatEbook}

// BookFormats returns every format in declaration order.
func BookFormats() []BookFormat {
	return append([]BookFormat(nil), bookFormats...)
}

func ParseBookFormat(s string) (BookFormat, error) {
	for _, f := range bookFormats {
		if foldLabel(string(f)) == foldLabel(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrInvalidBookFormat, s)
}

// IsPhysical reports whether the format is a tangible copy that can be
// shelved, lent and worn.
func (f BookFormat) IsPhysical() bool {
	return f == FormatHardcover || f == FormatPaperback
}

func (f BookFormat) IsValid() bool {
	for _, known := range bookFormats {
		if f == known {
			return true
		}
	}
	return false
}

func (f BookFormat) MarshalText() ([]byte, error) {
	if !f.IsValid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidBookFormat, string(f))
	}
	return []byte(f), nil
}

func (f *BookFormat) UnmarshalText(text []byte) error {
	parsed, err := ParseBookFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// BookStatus is the lending state of a catalog item.
type BookStatus string

const (
	StatusAvailable  BookStatus = "available"
	StatusCheckedOut BookStatus = "checked_out"
	StatusOnHold     BookStatus = "on_hold"
	StatusInRepair   BookStatus = "in_repair"
)

var bookStatuses = []BookStatus{StatusAvailable, StatusCheckedOut, StatusOnHold, StatusInRepair}

func ParseBookStatus(s string) (BookStatus, error) {
	for _, st := range bookStatuses {
		if foldLabel(string(st)) == foldLabel(s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrInvalidBookStatus, s)
}

func (s BookStatus) IsValid() bool {
	for _, known := range bookStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s BookStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidBookStatus, string(s))
	}
	return []byte(s), nil
}

func (s *BookStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseBookStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// BookCondition is the physical wear grade of a copy.
type BookCondition string

const (
	ConditionNew       BookCondition = "new"
	ConditionExcellent BookCondition = "excellent"
	ConditionGood      BookCondition = "good"
	ConditionFair      BookCondition = "fair"
	ConditionPoor      BookCondition = "poor"
)

var bookConditions = []BookCondition{ConditionNew, ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor}

func ParseBookCondition(s string) (BookCondition, error) {
	for _, c := range bookConditions {
		if foldLabel(string(c)) == foldLabel(s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrInvalidBookCondition, s)
}

func (c BookCondition) IsValid() bool {
	for _, known := range bookConditions {
		if c == known {
			return true
		}
	}
	return false
}

func (c BookCondition) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidBookCondition, string(c))
	}
	return []byte(c), nil
}

func (c *BookCondition) UnmarshalText(text []byte) error {
	parsed, err := ParseBookCondition(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ValidStatuses returns the statuses a book of format f may hold. Digital
// copies are never lent off a shelf or repaired, so they are only ever
// available.
func ValidStatuses(f BookFormat) []BookStatus {
	if f.IsPhysical() {
		return append([]BookStatus(nil), bookStatuses...)
	}
	return []BookStatus{StatusAvailable}
}

// ValidConditions returns the conditions a book of format f may be in.
func ValidConditions(f BookFormat) []BookCondition {
	if f.IsPhysical() {
		return append([]BookCondition(nil), bookConditions...)
	}
	return []BookCondition{ConditionNew}
}

func (f BookFormat) AllowsStatus(s BookStatus) bool {
	for _, v := range ValidStatuses(f) {
		if v == s {
			return true
		}
	}
	return false
}

func (f BookFormat) AllowsCondition(c BookCondition) bool {
	for _, v := range ValidConditions(f) {
		if v == c {
			return true
		}
	}
	return false
}
