package logging

import "context"

// RequestInfo carries per-request attributes that every log record emitted
// while serving the request should include.
type RequestInfo struct {
	RequestID  string
	Path       string
	RemoteAddr string
	CustomerID string
}

type requestKey struct{}

// WithRequest stores info on ctx.  The pointer is kept so later middleware
// (e.g. authentication) can fill in CustomerID.
func WithRequest(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, requestKey{}, info)
}

// RequestFrom returns the RequestInfo stored on ctx, if any.
func RequestFrom(ctx context.Context) (*RequestInfo, bool) {
	if ctx == nil {
		return nil, false
	}
	info, ok := ctx.Value(requestKey{}).(*RequestInfo)
	return info, ok && info != nil
}

func withRequest(ctx context.Context, args []any) []any {
	info, ok := RequestFrom(ctx)
	if !ok {
		return args
	}
	out := make([]any, 0, len(args)+8)
	out = append(out, args...)
	out = append(out,
		"request_id", info.RequestID,
		"path", info.Path,
		"remote_addr", info.RemoteAddr,
	)
	if info.CustomerID != "" {
		out = append(out, "customer_id", info.CustomerID)
	}
	return out
}
