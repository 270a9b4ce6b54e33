// internal/catalog/domain.go
package catalog

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Details are the descriptive attributes of a book. They carry no cross-field
// invariants and are replaced wholesale by whoever owns the record.
type Details struct {
	Title                   string
	Authors                 []string
	ISBN                    string
	PublicationDate         time.Time
	Publisher               string
	Edition                 int
	Genres                  []Category
	NumberOfPages           int
	Language                string
	Summary                 string
	CoverImageURL           string
	DateAdded               time.Time
	DateAvailable           *time.Time
	OriginalPublicationDate *time.Time
	PurchasePrice           float64
	ReplacementCost         float64
	DeweyDecimal            string
	Keywords                []string
	ReadingLevel            string
	Translator              *string
	Illustrator             *string
	Awards                  []string
	Barcode                 string
	DigitalFileSizeMB       *float64
}

// BookParams is everything needed to create a Book.
type BookParams struct {
	ID      uuid.UUID
	Version int
	Details

	Format            BookFormat
	Status            BookStatus
	Condition         BookCondition
	Location          *LibraryLocation
	Series            *BookSeries
	DigitalFileFormat *DigitalFormat
	AudiobookLength   *time.Duration
	CheckoutCount     int
	UserRatings       map[string]int
}

// Book is a catalog item. Status and condition are kept legal for the format
// at all times; they change only through SetStatus and SetCondition.
type Book struct {
	ID      uuid.UUID
	Version int
	Details

	format          BookFormat
	status          BookStatus
	condition       BookCondition
	location        *LibraryLocation
	series          *BookSeries
	digitalFormat   *DigitalFormat
	audiobookLength *time.Duration
	checkoutCount   int
	userRatings     map[string]int
}

// NewBook validates p and returns the book it describes. Nothing is returned
// on failure.
func NewBook(p BookParams) (*Book, error) {
	if !p.Format.IsValid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidBookFormat, string(p.Format))
	}
	if !p.Format.AllowsStatus(p.Status) {
		return nil, fmt.Errorf("%w: %q for %s book", ErrInvalidStatusForFormat, string(p.Status), p.Format)
	}
	if !p.Format.AllowsCondition(p.Condition) {
		return nil, fmt.Errorf("%w: %q for %s book", ErrInvalidConditionForFormat, string(p.Condition), p.Format)
	}
	for i, g := range p.Genres {
		if g.IsZero() {
			return nil, fmt.Errorf("%w: genre %d is empty", ErrInvalidCategory, i)
		}
	}
	if p.Location != nil {
		if err := p.Location.validate(); err != nil {
			return nil, err
		}
	}
	if p.Series != nil {
		if err := p.Series.validate(); err != nil {
			return nil, err
		}
	}
	if p.DigitalFileFormat != nil && p.DigitalFileFormat.IsZero() {
		return nil, fmt.Errorf("%w: empty", ErrInvalidDigitalFormat)
	}
	if p.AudiobookLength != nil && *p.AudiobookLength < 0 {
		return nil, fmt.Errorf("%w: %s is negative", ErrInvalidAudiobookLength, *p.AudiobookLength)
	}
	if p.CheckoutCount < 0 {
		return nil, fmt.Errorf("%w: %d is negative", ErrInvalidCheckoutCount, p.CheckoutCount)
	}
	for user, stars := range p.UserRatings {
		if err := validateRating(user, stars); err != nil {
			return nil, err
		}
	}

	b := &Book{
		ID:              p.ID,
		Version:         p.Version,
		Details:         p.Details.clone(),
		format:          p.Format,
		status:          p.Status,
		condition:       p.Condition,
		location:        clonePtr(p.Location),
		series:          clonePtr(p.Series),
		digitalFormat:   clonePtr(p.DigitalFileFormat),
		audiobookLength: clonePtr(p.AudiobookLength),
		checkoutCount:   p.CheckoutCount,
		userRatings:     maps.Clone(p.UserRatings),
	}
	if b.userRatings == nil {
		b.userRatings = map[string]int{}
	}
	return b, nil
}

func (b *Book) Format() BookFormat { return b.format }

func (b *Book) Status() BookStatus { return b.status }

func (b *Book) Condition() BookCondition { return b.condition }

// Location returns a copy of the shelf location, or nil if the book is not
// shelved.
func (b *Book) Location() *LibraryLocation { return clonePtr(b.location) }

func (b *Book) Series() *BookSeries { return clonePtr(b.series) }

func (b *Book) DigitalFileFormat() *DigitalFormat { return clonePtr(b.digitalFormat) }

func (b *Book) AudiobookLength() *time.Duration { return clonePtr(b.audiobookLength) }

func (b *Book) CheckoutCount() int { return b.checkoutCount }

func (b *Book) UserRatings() map[string]int { return maps.Clone(b.userRatings) }

// AverageRating is the mean of all user ratings, or 0 when unrated.
func (b *Book) AverageRating() float64 {
	if len(b.userRatings) == 0 {
		return 0
	}
	var sum int
	for _, stars := range b.userRatings {
		sum += stars
	}
	return float64(sum) / float64(len(b.userRatings))
}

// SetStatus moves the book to status. The book is left untouched if the
// status is not legal for its format.
func (b *Book) SetStatus(status BookStatus) error {
	if !b.format.AllowsStatus(status) {
		return fmt.Errorf("%w: cannot set %q on %s book", ErrInvalidStatusForFormat, string(status), b.format)
	}
	b.status = status
	return nil
}

// SetCondition regrades the book. The book is left untouched if the
// condition is not legal for its format.
func (b *Book) SetCondition(condition BookCondition) error {
	if !b.format.AllowsCondition(condition) {
		return fmt.Errorf("%w: cannot set %q on %s book", ErrInvalidConditionForFormat, string(condition), b.format)
	}
	b.condition = condition
	return nil
}

// WithLocation returns a copy of b shelved at loc. A nil loc takes the copy
// off the shelf.
func (b *Book) WithLocation(loc *LibraryLocation) (*Book, error) {
	if loc != nil {
		if err := loc.validate(); err != nil {
			return nil, err
		}
	}
	out := b.Clone()
	out.location = clonePtr(loc)
	return out, nil
}

// WithCheckoutRecorded returns a copy of b that is checked out and has its
// checkout counter incremented.
func (b *Book) WithCheckoutRecorded() (*Book, error) {
	out := b.Clone()
	if err := out.SetStatus(StatusCheckedOut); err != nil {
		return nil, err
	}
	out.checkoutCount++
	return out, nil
}

// WithRating returns a copy of b carrying userID's rating. A later rating by
// the same user replaces the earlier one.
func (b *Book) WithRating(userID string, stars int) (*Book, error) {
	if err := validateRating(userID, stars); err != nil {
		return nil, err
	}
	out := b.Clone()
	out.userRatings[userID] = stars
	return out, nil
}

// FormatAudiobookLength renders the audiobook length as HH:MM:SS, or "N/A"
// when the book has none. Sub-second precision is dropped and hours are not
// capped.
func (b *Book) FormatAudiobookLength() string {
	if b.audiobookLength == nil {
		return "N/A"
	}
	total := int64(*b.audiobookLength / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Clone returns a deep copy of b.
func (b *Book) Clone() *Book {
	out := *b
	out.Details = b.Details.clone()
	out.location = clonePtr(b.location)
	out.series = clonePtr(b.series)
	out.digitalFormat = clonePtr(b.digitalFormat)
	out.audiobookLength = clonePtr(b.audiobookLength)
	out.userRatings = maps.Clone(b.userRatings)
	if out.userRatings == nil {
		out.userRatings = map[string]int{}
	}
	return &out
}

// Params returns the parameters that would recreate b through NewBook.
func (b *Book) Params() BookParams {
	return BookParams{
		ID:                b.ID,
		Version:           b.Version,
		Details:           b.Details.clone(),
		Format:            b.format,
		Status:            b.status,
		Condition:         b.condition,
		Location:          clonePtr(b.location),
		Series:            clonePtr(b.series),
		DigitalFileFormat: clonePtr(b.digitalFormat),
		AudiobookLength:   clonePtr(b.audiobookLength),
		CheckoutCount:     b.checkoutCount,
		UserRatings:       maps.Clone(b.userRatings),
	}
}

func (d Details) clone() Details {
	d.Authors = slices.Clone(d.Authors)
	d.Genres = slices.Clone(d.Genres)
	d.Keywords = slices.Clone(d.Keywords)
	d.Awards = slices.Clone(d.Awards)
	d.DateAvailable = clonePtr(d.DateAvailable)
	d.OriginalPublicationDate = clonePtr(d.OriginalPublicationDate)
	d.Translator = clonePtr(d.Translator)
	d.Illustrator = clonePtr(d.Illustrator)
	d.DigitalFileSizeMB = clonePtr(d.DigitalFileSizeMB)
	return d
}

func validateRating(userID string, stars int) error {
	if userID == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidRating)
	}
	if stars < 1 || stars > 5 {
		return fmt.Errorf("%w: %d stars is outside 1-5", ErrInvalidRating, stars)
	}
	return nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
