package usecase

import "context"

// EventSink abstracts the broadcast channel so use cases stay transport-agnostic.
// Publishing is fire-and-forget: callers treat failures as best-effort losses.
type EventSink interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// AttachmentStore accepts an uploaded blob and returns an opaque path
// reference that is stored on the task record.
type AttachmentStore interface {
	Save(ctx context.Context, ownerID, filename string, data []byte) (string, error)
}
