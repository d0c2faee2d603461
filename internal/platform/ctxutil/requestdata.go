package ctxutil

import "context"

type requestDataKey struct{}

// RequestData is the caller identity attached by the auth middleware.
// OwnerID is opaque to everything below the HTTP layer.
type RequestData struct {
	TokenString string
	OwnerID     string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// OwnerID returns the caller identity or "" when the request is anonymous.
func OwnerID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if rd := GetRequestData(ctx); rd != nil {
		return rd.OwnerID
	}
	return ""
}
