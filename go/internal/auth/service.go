package auth

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"connectrpc.com/connect"

	"github.com/0xpratik010/tridev/go/internal/connectjson"
)

const AuthServiceName = "auth.v1.AuthService"

var (
	LoginProcedure  = connectjson.Procedure(AuthServiceName, "Login")
	LogoutProcedure = connectjson.Procedure(AuthServiceName, "Logout")
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Session *Session `json:"session"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

// Service implements AuthService
type Service struct {
	app            *App
	clientIPHeader string
}

type ServiceOption func(*Service)

// WithClientIPHeader keys the login throttle on the last address in the named
// header (for example X-Forwarded-For) instead of the connection peer. Set it
// only when a trusted reverse proxy writes that header.
func WithClientIPHeader(name string) ServiceOption {
	return func(s *Service) { s.clientIPHeader = name }
}

func NewService(app *App, opts ...ServiceOption) *Service {
	s := &Service{app: app}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates the operator. A throttled call fails with
// ResourceExhausted and carries retry-after-seconds in its metadata.
func (s *Service) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	session, err := s.app.Login(ctx, s.clientKey(req.Header(), req.Peer().Addr), req.Msg.Email, req.Msg.Password)
	if err != nil {
		var throttled *ThrottledError
		switch {
		case errors.As(err, &throttled):
			cerr := connect.NewError(connect.CodeResourceExhausted, err)
			cerr.Meta().Set("Retry-After", formatSeconds(throttled.RetryAfter.Seconds()))
			return nil, cerr
		case errors.Is(err, ErrInvalidCredential):
			return nil, connect.NewError(connect.CodeUnauthenticated, err)
		default:
			return nil, connect.NewError(connect.CodeInternal, err)
		}
	}
	return connect.NewResponse(&LoginResponse{Session: session}), nil
}

// Logout revokes the caller's bearer token.
func (s *Service) Logout(ctx context.Context, req *connect.Request[LogoutRequest]) (*connect.Response[LogoutResponse], error) {
	if token, ok := bearerToken(req.Header().Get("Authorization")); ok {
		s.app.Logout(ctx, token)
	}
	return connect.NewResponse(&LogoutResponse{}), nil
}

// NewAuthServiceHandler mounts the auth service.
func NewAuthServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	login := connect.NewUnaryHandler(LoginProcedure, svc.Login, opts...)
	logout := connect.NewUnaryHandler(LogoutProcedure, svc.Logout, opts...)
	return "/" + AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LoginProcedure:
			login.ServeHTTP(w, r)
		case LogoutProcedure:
			logout.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// clientKey picks the throttle key for a login. Without a configured header
// every client behind one proxy shares the proxy's key.
func (s *Service) clientKey(header http.Header, peerAddr string) string {
	if s.clientIPHeader != "" {
		if ip := lastForwarded(header.Values(s.clientIPHeader)); ip != "" {
			return hostOnly(ip)
		}
	}
	return hostOnly(peerAddr)
}

// lastForwarded returns the right-most entry, the one the nearest proxy added.
func lastForwarded(values []string) string {
	for i := len(values) - 1; i >= 0; i-- {
		parts := strings.Split(values[i], ",")
		for j := len(parts) - 1; j >= 0; j-- {
			if p := strings.TrimSpace(parts[j]); p != "" {
				return p
			}
		}
	}
	return ""
}

// hostOnly drops the ephemeral port.
func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func formatSeconds(s float64) string {
	return strconv.FormatInt(int64(math.Ceil(s)), 10)
}
