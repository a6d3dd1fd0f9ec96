package filestore

import (
	"context"
	"log/slog"
)

// Worker consumes blob write requests from a buffered queue so callers never
// block on the storage backend. A store failure is logged and dropped; the
// request that produced it has already returned success.
type Worker struct {
	store  Store
	queue  chan Request
	logger *slog.Logger
}

func NewWorker(store Store, queueSize int, logger *slog.Logger) *Worker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Worker{store: store, queue: make(chan Request, queueSize), logger: logger}
}

// Enqueue hands a write request to the worker without blocking. It reports
// false when the queue is saturated; the request is then dropped and logged.
func (w *Worker) Enqueue(filename, mimeType string, data []byte) bool {
	req := Request{Filename: filename, MimeType: mimeType, Data: data}
	select {
	case w.queue <- req:
		return true
	default:
		if w.logger != nil {
			w.logger.Error("attachment store queue full, dropping write", slog.String("filename", filename))
		}
		return false
	}
}

// Run drains the queue until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.queue:
			w.process(ctx, req)
		}
	}
}

func (w *Worker) process(ctx context.Context, req Request) {
	if err := w.store.Store(ctx, req); err != nil {
		if w.logger != nil {
			w.logger.Error("attachment store failed",
				slog.String("filename", req.Filename),
				slog.String("mime_type", req.MimeType),
				slog.String("error", err.Error()))
		}
		return
	}
	if w.logger != nil {
		w.logger.Debug("attachment stored", slog.String("filename", req.Filename))
	}
}
