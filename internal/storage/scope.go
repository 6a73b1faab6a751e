package storage

import "context"

type scopeKey struct{}

// WithScope returns a context whose storage operations are namespaced by
// scope. The HTTP layer sets it to the client id of the caller.
func WithScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFromContext returns the scope set by WithScope, or "".
func ScopeFromContext(ctx context.Context) string {
	scope, _ := ctx.Value(scopeKey{}).(string)
	return scope
}

type scopedBackend struct {
	inner Backend
}

// NewScopedBackend prefixes every key with the scope carried by the context
// of each call. Calls without a scope use the bare key.
func NewScopedBackend(inner Backend) Backend {
	return &scopedBackend{inner: inner}
}

func scopedKey(ctx context.Context, key string) string {
	scope := ScopeFromContext(ctx)
	if scope == "" {
		return key
	}
	return scope + ":" + key
}

func (s *scopedBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, scopedKey(ctx, key))
}

func (s *scopedBackend) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, scopedKey(ctx, key), value)
}

func (s *scopedBackend) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, scopedKey(ctx, key))
}

func (s *scopedBackend) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return s.inner.Update(ctx, scopedKey(ctx, key), fn)
}
