package catalog

import (
	"testing"

	"libracatalog/pkg/eventstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNewEvent(t *testing.T, eventType string, payload any, version int) eventstore.Event {
	t.Helper()
	e, err := eventstore.NewEvent(eventType, payload)
	require.NoError(t, err)
	e.Version = version
	return e
}

func TestReplayBook(t *testing.T) {
	added, err := NewBook(physicalParams(t))
	require.NoError(t, err)
	loc, err := NewLibraryLocation("Poetry", 4)
	require.NoError(t, err)

	events := []eventstore.Event{
		mustNewEvent(t, EventBookAdded, BookAddedEvent{Book: added}, 1),
		mustNewEvent(t, EventBookCheckedOut, BookCheckedOutEvent{ID: added.ID, CheckoutCount: 1}, 2),
		mustNewEvent(t, EventBookStatusChanged, BookStatusChangedEvent{ID: added.ID, From: StatusCheckedOut, To: StatusAvailable}, 3),
		mustNewEvent(t, EventBookConditionChanged, BookConditionChangedEvent{ID: added.ID, From: ConditionGood, To: ConditionFair}, 4),
		mustNewEvent(t, EventBookRelocated, BookRelocatedEvent{ID: added.ID, Location: &loc}, 5),
		mustNewEvent(t, EventBookRated, BookRatedEvent{ID: added.ID, UserID: "carl", Stars: 3}, 6),
	}

	b, err := ReplayBook(events)
	require.NoError(t, err)
	assert.Equal(t, added.ID, b.ID)
	assert.Equal(t, 6, b.Version)
	assert.Equal(t, StatusAvailable, b.Status())
	assert.Equal(t, ConditionFair, b.Condition())
	assert.Equal(t, 1, b.CheckoutCount())
	assert.Equal(t, "Poetry - Shelf 4", b.Location().String())
	assert.Equal(t, map[string]int{"ada": 5, "bob": 4, "carl": 3}, b.UserRatings())

	t.Run("relocated off shelf", func(t *testing.T) {
		off := append(events[:1:1], mustNewEvent(t, EventBookRelocated, BookRelocatedEvent{ID: added.ID}, 2))
		b, err := ReplayBook(off)
		require.NoError(t, err)
		assert.Nil(t, b.Location())
	})
}

func TestReplayBookRejectsBadStreams(t *testing.T) {
	added, err := NewBook(audiobookParams(t))
	require.NoError(t, err)
	first := mustNewEvent(t, EventBookAdded, BookAddedEvent{Book: added}, 1)

	_, err = ReplayBook(nil)
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = ReplayBook([]eventstore.Event{
		mustNewEvent(t, EventBookRated, BookRatedEvent{ID: added.ID, UserID: "ada", Stars: 4}, 1),
	})
	assert.Error(t, err)

	_, err = ReplayBook([]eventstore.Event{first, first})
	assert.Error(t, err)

	_, err = ReplayBook([]eventstore.Event{
		first,
		mustNewEvent(t, EventBookStatusChanged, BookStatusChangedEvent{ID: added.ID, To: StatusOnHold}, 2),
	})
	assert.ErrorIs(t, err, ErrInvalidStatusForFormat)

	_, err = ReplayBook([]eventstore.Event{first, {EventType: "BookBurned", Version: 2}})
	assert.ErrorContains(t, err, "BookBurned")
}

func TestReplayBookRejectsCheckoutCountGoingBack(t *testing.T) {
	added, err := NewBook(physicalParams(t))
	require.NoError(t, err)

	_, err = ReplayBook([]eventstore.Event{
		mustNewEvent(t, EventBookAdded, BookAddedEvent{Book: added}, 1),
		mustNewEvent(t, EventBookCheckedOut, BookCheckedOutEvent{ID: added.ID, CheckoutCount: -3}, 2),
	})
	assert.ErrorIs(t, err, ErrInvalidCheckoutCount)
}
