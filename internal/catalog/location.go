// internal/catalog/location.go
package catalog

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// LibraryLocation is the shelf a physical copy lives on. It is an immutable
// value: a book that moves gets a new location, never a modified one.
type LibraryLocation struct {
	category Category
	shelf    int
}

// NewLibraryLocation validates category against the registry and requires a
// shelf number of at least one.
func NewLibraryLocation(category string, shelf int) (LibraryLocation, error) {
	if shelf < 1 {
		return LibraryLocation{}, fmt.Errorf("%w %d", ErrInvalidShelfNumber, shelf)
	}
	c, err := ResolveCategory(category)
	if err != nil {
		return LibraryLocation{}, err
	}
	return LibraryLocation{category: c, shelf: shelf}, nil
}

// ParseLibraryLocation decodes the canonical JSON form and validates it the
// same way NewLibraryLocation does.
func ParseLibraryLocation(text string) (LibraryLocation, error) {
	var loc LibraryLocation
	if err := loc.UnmarshalJSON([]byte(text)); err != nil {
		return LibraryLocation{}, err
	}
	return loc, nil
}

func (l LibraryLocation) Category() Category { return l.category }

func (l LibraryLocation) Shelf() int { return l.shelf }

func (l LibraryLocation) validate() error {
	if l.shelf < 1 {
		return fmt.Errorf("%w %d", ErrInvalidShelfNumber, l.shelf)
	}
	if l.category.IsZero() {
		return fmt.Errorf("%w: empty", ErrInvalidCategory)
	}
	return nil
}

// Map returns the canonical field mapping.
func (l LibraryLocation) Map() map[string]any {
	return map[string]any{
		"category": l.category.String(),
		"shelf":    l.shelf,
	}
}

func (l LibraryLocation) String() string {
	return fmt.Sprintf("%s - Shelf %d", l.category, l.shelf)
}

type locationJSON struct {
	Category string `json:"category"`
	Shelf    int    `json:"shelf"`
}

func (l LibraryLocation) MarshalJSON() ([]byte, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(locationJSON{Category: l.category.String(), Shelf: l.shelf})
}

func (l *LibraryLocation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Category json.RawMessage `json:"category"`
		Shelf    json.RawMessage `json:"shelf"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode library location: %w", err)
	}
	if isAbsent(raw.Category) {
		return fmt.Errorf("%w: category is required", ErrInvalidCategory)
	}
	if isAbsent(raw.Shelf) {
		return fmt.Errorf("%w: shelf is required", ErrInvalidShelfNumber)
	}

	var category string
	if err := json.Unmarshal(raw.Category, &category); err != nil {
		return fmt.Errorf("%w: category must be a string", ErrInvalidCategory)
	}
	shelf, err := strconv.Atoi(string(bytes.TrimSpace(raw.Shelf)))
	if err != nil {
		return fmt.Errorf("%w %s", ErrInvalidShelfNumber, raw.Shelf)
	}

	loc, err := NewLibraryLocation(category, shelf)
	if err != nil {
		return err
	}
	*l = loc
	return nil
}

// Value stores the location as its canonical JSON document.
func (l LibraryLocation) Value() (driver.Value, error) {
	return l.MarshalJSON()
}

func (l *LibraryLocation) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return l.UnmarshalJSON(v)
	case string:
		return l.UnmarshalJSON([]byte(v))
	}
	return fmt.Errorf("scan library location: unsupported type %T", src)
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
