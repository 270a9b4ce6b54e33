package eventstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps event streams in process. It honours the same version
// rules as EventStore and is meant for tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	streams map[uuid.UUID][]Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[uuid.UUID][]Event)}
}

func (m *MemoryStore) AppendEvents(_ context.Context, aggregateID uuid.UUID, aggregateType string, expectedVersion int, events []Event) error {
	if expectedVersion < 0 {
		return ErrInvalidVersion
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stream := m.streams[aggregateID]
	if len(stream) != expectedVersion {
		return ErrConcurrencyConflict
	}
	for i, event := range events {
		m.nextID++
		event.ID = m.nextID
		event.AggregateID = aggregateID
		event.AggregateType = aggregateType
		event.Version = expectedVersion + i + 1
		event.CreatedAt = time.Now().UTC()
		event.EventData = slices.Clone(event.EventData)
		stream = append(stream, event)
	}
	m.streams[aggregateID] = stream
	return nil
}

func (m *MemoryStore) LoadEvents(_ context.Context, aggregateID uuid.UUID, fromVersion, toVersion int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Event
	for _, event := range m.streams[aggregateID] {
		if event.Version < fromVersion {
			continue
		}
		if toVersion > 0 && event.Version > toVersion {
			break
		}
		out = append(out, event)
	}
	return out, nil
}

func (m *MemoryStore) GetCurrentVersion(_ context.Context, aggregateID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.streams[aggregateID]), nil
}
