// Package events provides a central data-change event bus. CRUD services
// emit an event after every successful write; reaction logic (object
// change logs, cache invalidation) registers through OnDataChanged.
package events

import (
	"context"
	"sync"
	"sync/atomic"
)

// CRUD operation kinds carried by DataChangeEvent.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// DataChangeEvent describes one data change. Document is the record
// after the change, nil for deletes.
type DataChangeEvent struct {
	CollectionName string
	Operation      string
	Document       interface{}
}

// DataChangeHandler reacts to a data change.
type DataChangeHandler func(ctx context.Context, e DataChangeEvent)

var (
	handlers   []DataChangeHandler
	handlersMu sync.RWMutex

	droppedEvents atomic.Int64
)

// OnDataChanged registers a handler. Call during init.
func OnDataChanged(h DataChangeHandler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers = append(handlers, h)
}

// EmitDataChanged dispatches the event to all registered handlers. Each
// handler runs in its own goroutine; a panic in one handler is recovered
// and counted so the others are unaffected.
func EmitDataChanged(ctx context.Context, e DataChangeEvent) {
	handlersMu.RLock()
	list := make([]DataChangeHandler, len(handlers))
	copy(list, handlers)
	handlersMu.RUnlock()

	for _, h := range list {
		go func(fn DataChangeHandler) {
			defer func() {
				if r := recover(); r != nil {
					// The logger may not be initialized for early
					// events; counting is enough for diagnostics.
					droppedEvents.Add(1)
				}
			}()
			fn(ctx, e)
		}(h)
	}
}

// DroppedEvents returns how many handler invocations panicked and were
// discarded. Exposed on the system status endpoint.
func DroppedEvents() int64 {
	return droppedEvents.Load()
}
