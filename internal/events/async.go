package events

import (
	"context"
	"log"
	"time"
)

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not
// blocked. Use from request paths for fire-and-forget emission; errors are logged.
//
// emitter and event may be nil; EmitAsync returns immediately without starting a
// goroutine. The goroutine uses context.Background() so request cancellation does
// not abort an in-flight emit.
func EmitAsync(emitter Emitter, event *Event) {
	if emitter == nil || event == nil {
		return
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil {
			log.Printf("events: async emit failed: %v", err)
		}
	}()
}
