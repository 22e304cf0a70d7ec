package api

import (
	"context"
	"sync"
)

type contextKey string

const (
	ctxKeyRequestID contextKey = "request_id"
	ctxKeyMetadata  contextKey = "metadata"
)

// requestMeta collects non-sensitive request details for the request log.
type requestMeta struct {
	mu     sync.Mutex
	values map[string]any
}

func withRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyRequestID, id)
	return context.WithValue(ctx, ctxKeyMetadata, &requestMeta{values: map[string]any{}})
}

func requestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

// setMeta records a metadata value for the current request.
func setMeta(ctx context.Context, key string, value any) {
	m, ok := ctx.Value(ctxKeyMetadata).(*requestMeta)
	if !ok {
		return
	}
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}

func metadataFromCtx(ctx context.Context) map[string]any {
	m, ok := ctx.Value(ctxKeyMetadata).(*requestMeta)
	if !ok {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
