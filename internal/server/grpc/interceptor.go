// Package grpc is the transport-collaborator seam: it extracts the bearer
// token from inbound metadata, resolves it to a principal, and maps the
// core's error taxonomy onto wire status codes. It never makes authorization
// decisions itself; those stay in the service layer.
package grpc

import (
	"context"
	"strings"

	"github.com/dstepanenko/tasktrack/internal/common"
	"github.com/dstepanenko/tasktrack/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const principalKey ctxKey = "principal"

// publicMethods lists full method names reachable without a token. Anything
// not listed requires a resolvable access token.
var publicMethods = map[string]struct{}{
	"/tasktrack.service.TaskTrackService/Register":     {},
	"/tasktrack.service.TaskTrackService/Login":        {},
	"/tasktrack.service.TaskTrackService/RefreshToken": {},
	"/grpc.health.v1.Health/Check":                     {},
	"/grpc.health.v1.Health/Watch":                     {},
}

// bearerToken pulls the token string out of incoming metadata. Both the
// dedicated access_token key and a standard "authorization: Bearer x" header
// are accepted; the bare token is returned either way.
func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		return values[0]
	}
	if values := md.Get("authorization"); len(values) > 0 {
		return strings.TrimPrefix(values[0], "Bearer ")
	}
	return ""
}

func (s *GRPCServer) authInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if _, ok := publicMethods[info.FullMethod]; ok {
		return handler(ctx, req)
	}

	token := bearerToken(ctx)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	// Every resolver failure (bad signature, expiry, wrong kind, unknown
	// subject) collapses to the same response so callers cannot probe which
	// check failed.
	principal, err := s.identity.Resolve(ctx, token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return handler(context.WithValue(ctx, principalKey, principal), req)
}

// PrincipalFromContext returns the authenticated user injected by the
// interceptor, or nil for unauthenticated calls.
func PrincipalFromContext(ctx context.Context) *models.User {
	principal, _ := ctx.Value(principalKey).(*models.User)
	return principal
}
