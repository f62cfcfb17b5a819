package session

import "context"

type ctxKey struct{}

// WithSession marca el request como autenticado para el resto de la respuesta.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext retorna la sesión del request, si hay.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
