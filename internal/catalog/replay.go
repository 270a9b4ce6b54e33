// internal/catalog/replay.go
package catalog

import (
	"fmt"

	"libracatalog/pkg/eventstore"
)

// ReplayBook rebuilds a book from its event stream. The stream must start
// with a BookAdded event; every later event is re-validated as it is applied.
func ReplayBook(events []eventstore.Event) (*Book, error) {
	if len(events) == 0 {
		return nil, ErrBookNotFound
	}

	var book *Book
	for _, event := range events {
		if book == nil && event.EventType != EventBookAdded {
			return nil, fmt.Errorf("replay book: stream starts with %s", event.EventType)
		}
		next, err := applyEvent(book, event)
		if err != nil {
			return nil, fmt.Errorf("replay book: apply %s v%d: %w", event.EventType, event.Version, err)
		}
		next.Version = event.Version
		book = next
	}
	return book, nil
}

func applyEvent(book *Book, event eventstore.Event) (*Book, error) {
	switch event.EventType {
	case EventBookAdded:
		if book != nil {
			return nil, fmt.Errorf("book already added")
		}
		var e BookAddedEvent
		if err := event.Decode(&e); err != nil {
			return nil, err
		}
		if e.Book == nil {
			return nil, fmt.Errorf("event has no book")
		}
		return e.Book, nil

	case EventBookStatusChanged:
		var e BookStatusChangedEvent
		if err := event.Decode(&e); err != nil {
			return nil, err
		}
		next := book.Clone()
		return next, next.SetStatus(e.To)

	case EventBookConditionChanged:
		var e BookConditionChangedEvent
		if err := event.Decode(&e); err != nil {
			return nil, err
		}
		next := book.Clone()
		return next, next.SetCondition(e.To)

	case EventBookRelocated:
		var e BookRelocatedEvent
		if err := event.Decode(&e); err != nil {
			return nil, err
		}
		return book.WithLocation(e.Location)

	case EventBookCheckedOut:
		var e BookCheckedOutEvent
		if err := event.Decode(&e); err != nil {
			return nil, err
		}
		next, err := book.WithCheckoutRecorded()
		if err != nil {
			return nil, err
		}
		if e.CheckoutCount < next.checkoutCount {
			return nil, fmt.Errorf("%w: %d after %d checkouts", ErrInvalidCheckoutCount, e.CheckoutCount, book.checkoutCount)
		}
		next.checkoutCount = e.CheckoutCount
		return next, nil

	case EventBookRated:
		var e BookRatedEvent
		if err := event.Decode(&e); err != nil {
			return nil, err
		}
		return book.WithRating(e.UserID, e.Stars)
	}
	return nil, fmt.Errorf("unknown event type %q", event.EventType)
}
