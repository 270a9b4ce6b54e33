// internal/catalog/events.go
package catalog

import "github.com/google/uuid"

// AggregateType is the event store aggregate type for books.
const AggregateType = "book"

// Event types appended to the event store.
const (
	EventBookAdded            = "BookAdded"
	EventBookStatusChanged    = "BookStatusChanged"
	EventBookConditionChanged = "BookConditionChanged"
	EventBookRelocated        = "BookRelocated"
	EventBookCheckedOut       = "BookCheckedOut"
	EventBookRated            = "BookRated"
)

// BookAddedEvent is published when a new book enters the catalog.
type BookAddedEvent struct {
	Book *Book `json:"book"`
}

// BookStatusChangedEvent is published when a book's lending status changes.
type BookStatusChangedEvent struct {
	ID   uuid.UUID  `json:"id"`
	From BookStatus `json:"from"`
	To   BookStatus `json:"to"`
}

// BookConditionChangedEvent is published when a copy is regraded.
type BookConditionChangedEvent struct {
	ID   uuid.UUID     `json:"id"`
	From BookCondition `json:"from"`
	To   BookCondition `json:"to"`
}

// BookRelocatedEvent is published when a book moves shelves. A nil Location
// means the book was taken off the shelf.
type BookRelocatedEvent struct {
	ID       uuid.UUID        `json:"id"`
	Location *LibraryLocation `json:"location"`
}

// BookCheckedOutEvent is published when a checkout is recorded against a copy.
type BookCheckedOutEvent struct {
	ID            uuid.UUID `json:"id"`
	CheckoutCount int       `json:"checkout_count"`
}

// BookRatedEvent is published when a user rates a book.
type BookRatedEvent struct {
	ID     uuid.UUID `json:"id"`
	UserID string    `json:"user_id"`
	Stars  int       `json:"stars"`
}
