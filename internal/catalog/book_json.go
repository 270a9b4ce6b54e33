// internal/catalog/book_json.go
package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

const dateLayout = time.DateOnly

// maxAudiobookSeconds is the longest length a time.Duration can hold.
const maxAudiobookSeconds = math.MaxInt64 / int64(time.Second)

type bookJSON struct {
	ID                      uuid.UUID        `json:"id"`
	Version                 int              `json:"version"`
	Title                   string           `json:"title"`
	Authors                 []string         `json:"authors"`
	ISBN                    string           `json:"isbn"`
	PublicationDate         string           `json:"publication_date,omitempty"`
	Publisher               string           `json:"publisher,omitempty"`
	Edition                 int              `json:"edition,omitempty"`
	Genres                  []Category       `json:"genres"`
	NumberOfPages           int              `json:"number_of_pages,omitempty"`
	Language                string           `json:"language,omitempty"`
	Format                  BookFormat       `json:"format"`
	Summary                 string           `json:"summary,omitempty"`
	CoverImageURL           string           `json:"cover_image_url,omitempty"`
	Status                  BookStatus       `json:"current_status"`
	Location                *LibraryLocation `json:"location_in_library,omitempty"`
	DateAdded               string           `json:"date_added,omitempty"`
	DateAvailable           *string          `json:"date_available,omitempty"`
	OriginalPublicationDate *string          `json:"orig_pub_date,omitempty"`
	PurchasePrice           float64          `json:"purchase_price"`
	ReplacementCost         float64          `json:"replacement_cost"`
	DeweyDecimal            string           `json:"dewey_decimal,omitempty"`
	Keywords                []string         `json:"keywords"`
	ReadingLevel            string           `json:"reading_level,omitempty"`
	Series                  *BookSeries      `json:"series,omitempty"`
	Translator              *string          `json:"translator,omitempty"`
	Illustrator             *string          `json:"illustrator,omitempty"`
	Condition               BookCondition    `json:"condition"`
	CheckoutCount           int              `json:"number_of_times_checked_out"`
	UserRatings             map[string]int   `json:"user_ratings"`
	Awards                  []string         `json:"awards"`
	Barcode                 string           `json:"barcode,omitempty"`
	DigitalFileFormat       *DigitalFormat   `json:"digital_file_format,omitempty"`
	DigitalFileSizeMB       *float64         `json:"digital_file_size_mb,omitempty"`
	AudiobookLengthSeconds  *int64           `json:"audiobook_length_seconds,omitempty"`
}

func (b *Book) MarshalJSON() ([]byte, error) {
	doc := bookJSON{
		ID:                      b.ID,
		Version:                 b.Version,
		Title:                   b.Title,
		Authors:                 nonNil(b.Authors),
		ISBN:                    b.ISBN,
		PublicationDate:         formatDate(b.PublicationDate),
		Publisher:               b.Publisher,
		Edition:                 b.Edition,
		Genres:                  nonNil(b.Genres),
		NumberOfPages:           b.NumberOfPages,
		Language:                b.Language,
		Format:                  b.format,
		Summary:                 b.Summary,
		CoverImageURL:           b.CoverImageURL,
		Status:                  b.status,
		Location:                b.location,
		DateAdded:               formatDate(b.DateAdded),
		DateAvailable:           formatDatePtr(b.DateAvailable),
		OriginalPublicationDate: formatDatePtr(b.OriginalPublicationDate),
		PurchasePrice:           b.PurchasePrice,
		ReplacementCost:         b.ReplacementCost,
		DeweyDecimal:            b.DeweyDecimal,
		Keywords:                nonNil(b.Keywords),
		ReadingLevel:            b.ReadingLevel,
		Series:                  b.series,
		Translator:              b.Translator,
		Illustrator:             b.Illustrator,
		Condition:               b.condition,
		CheckoutCount:           b.checkoutCount,
		UserRatings:             b.userRatings,
		Awards:                  nonNil(b.Awards),
		Barcode:                 b.Barcode,
		DigitalFileFormat:       b.digitalFormat,
		DigitalFileSizeMB:       b.DigitalFileSizeMB,
	}
	if doc.UserRatings == nil {
		doc.UserRatings = map[string]int{}
	}
	if b.audiobookLength != nil {
		secs := int64(*b.audiobookLength / time.Second)
		doc.AudiobookLengthSeconds = &secs
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a book document and validates it through NewBook.
func (b *Book) UnmarshalJSON(data []byte) error {
	p, err := ParseBookParams(data)
	if err != nil {
		return err
	}
	parsed, err := NewBook(p)
	if err != nil {
		return err
	}
	*b = *parsed
	return nil
}

// ParseBookParams decodes a book document without checking cross-field
// invariants. Unknown enum and registry values are still rejected.
func ParseBookParams(data []byte) (BookParams, error) {
	var doc bookJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return BookParams{}, fmt.Errorf("decode book: %w", err)
	}

	p := BookParams{
		ID:      doc.ID,
		Version: doc.Version,
		Details: Details{
			Title:             doc.Title,
			Authors:           doc.Authors,
			ISBN:              doc.ISBN,
			Publisher:         doc.Publisher,
			Edition:           doc.Edition,
			Genres:            doc.Genres,
			NumberOfPages:     doc.NumberOfPages,
			Language:          doc.Language,
			Summary:           doc.Summary,
			CoverImageURL:     doc.CoverImageURL,
			PurchasePrice:     doc.PurchasePrice,
			ReplacementCost:   doc.ReplacementCost,
			DeweyDecimal:      doc.DeweyDecimal,
			Keywords:          doc.Keywords,
			ReadingLevel:      doc.ReadingLevel,
			Translator:        doc.Translator,
			Illustrator:       doc.Illustrator,
			Awards:            doc.Awards,
			Barcode:           doc.Barcode,
			DigitalFileSizeMB: doc.DigitalFileSizeMB,
		},
		Format:            doc.Format,
		Status:            doc.Status,
		Condition:         doc.Condition,
		Location:          doc.Location,
		Series:            doc.Series,
		DigitalFileFormat: doc.DigitalFileFormat,
		CheckoutCount:     doc.CheckoutCount,
		UserRatings:       doc.UserRatings,
	}

	var err error
	if p.PublicationDate, err = parseDate("publication_date", doc.PublicationDate); err != nil {
		return BookParams{}, err
	}
	if p.DateAdded, err = parseDate("date_added", doc.DateAdded); err != nil {
		return BookParams{}, err
	}
	if p.DateAvailable, err = parseDatePtr("date_available", doc.DateAvailable); err != nil {
		return BookParams{}, err
	}
	if p.OriginalPublicationDate, err = parseDatePtr("orig_pub_date", doc.OriginalPublicationDate); err != nil {
		return BookParams{}, err
	}
	if doc.AudiobookLengthSeconds != nil {
		secs := *doc.AudiobookLengthSeconds
		if secs < 0 || secs > maxAudiobookSeconds {
			return BookParams{}, fmt.Errorf("%w: %d seconds is out of range", ErrInvalidAudiobookLength, secs)
		}
		d := time.Duration(secs) * time.Second
		p.AudiobookLength = &d
	}
	return p, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q", ErrInvalidDate, field, s)
	}
	return t, nil
}

func parseDatePtr(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidDate, field, *s)
	}
	return &t, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
