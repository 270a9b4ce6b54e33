// internal/catalog/series.go
package catalog

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BookSeries places a book at a position within a named series.
type BookSeries struct {
	series string
	number int
}

func NewBookSeries(series string, number int) (BookSeries, error) {
	if strings.TrimSpace(series) == "" {
		return BookSeries{}, fmt.Errorf("%w: series name is required", ErrInvalidSeries)
	}
	return BookSeries{series: series, number: number}, nil
}

// ParseBookSeries decodes the canonical JSON form through NewBookSeries.
func ParseBookSeries(text string) (BookSeries, error) {
	var s BookSeries
	if err := s.UnmarshalJSON([]byte(text)); err != nil {
		return BookSeries{}, err
	}
	return s, nil
}

func (s BookSeries) Series() string { return s.series }

func (s BookSeries) Number() int { return s.number }

func (s BookSeries) validate() error {
	if strings.TrimSpace(s.series) == "" {
		return fmt.Errorf("%w: series name is required", ErrInvalidSeries)
	}
	return nil
}

func (s BookSeries) Map() map[string]any {
	return map[string]any{
		"series": s.series,
		"number": s.number,
	}
}

func (s BookSeries) String() string {
	return fmt.Sprintf("%s - Book %d", s.series, s.number)
}

type seriesJSON struct {
	Series string `json:"series"`
	Number int    `json:"number"`
}

func (s BookSeries) MarshalJSON() ([]byte, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(seriesJSON{Series: s.series, Number: s.number})
}

func (s *BookSeries) UnmarshalJSON(data []byte) error {
	var raw struct {
		Series json.RawMessage `json:"series"`
		Number json.RawMessage `json:"number"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode book series: %w", err)
	}
	if isAbsent(raw.Series) || isAbsent(raw.Number) {
		return fmt.Errorf("%w: series and number are required", ErrInvalidSeries)
	}

	var name string
	if err := json.Unmarshal(raw.Series, &name); err != nil {
		return fmt.Errorf("%w: series must be a string", ErrInvalidSeries)
	}
	number, err := strconv.Atoi(string(bytes.TrimSpace(raw.Number)))
	if err != nil {
		return fmt.Errorf("%w: number %s is not an integer", ErrInvalidSeries, raw.Number)
	}

	parsed, err := NewBookSeries(name, number)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s BookSeries) Value() (driver.Value, error) {
	return s.MarshalJSON()
}

func (s *BookSeries) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return s.UnmarshalJSON(v)
	case string:
		return s.UnmarshalJSON([]byte(v))
	}
	return fmt.Errorf("scan book series: unsupported type %T", src)
}
