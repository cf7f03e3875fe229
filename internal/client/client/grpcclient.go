package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/authpb"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *authpb.AuthServiceClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+" "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient prepares a client for endpointURL. The connection is
// established lazily on the first call.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = authpb.NewAuthServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) call(ctx context.Context, method string, fields map[string]any) (map[string]any, error) {
	in, err := authpb.Fields(fields)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	out, err := s.client.Call(ctx, method, in)
	if err != nil {
		return nil, s.mapError(err)
	}
	return out.AsMap(), nil
}

func (s *GRPCClient) Signup(ctx context.Context, username, email, password string) (map[string]any, error) {
	return s.call(ctx, authpb.MethodSignup, map[string]any{
		"username": username, "email": email, "password": password,
	})
}

// LoginByEmail authenticates and keeps the returned token for later calls.
func (s *GRPCClient) LoginByEmail(ctx context.Context, email, password string) (map[string]any, error) {
	res, err := s.call(ctx, authpb.MethodLoginByEmail, map[string]any{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	s.rememberToken(res)
	return res, nil
}

// LoginByUsername authenticates and keeps the returned token for later calls.
func (s *GRPCClient) LoginByUsername(ctx context.Context, username, password string) (map[string]any, error) {
	res, err := s.call(ctx, authpb.MethodLoginByUsername, map[string]any{"username": username, "password": password})
	if err != nil {
		return nil, err
	}
	s.rememberToken(res)
	return res, nil
}

func (s *GRPCClient) rememberToken(res map[string]any) {
	if token, ok := res["token"].(string); ok {
		s.SetAccessToken(token)
	}
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (map[string]any, error) {
	if s.token() == "" {
		return nil, fmt.Errorf("%w: no access token", ErrUnauthorized)
	}
	return s.call(ctx, authpb.MethodWhoAmI, nil)
}

func (s *GRPCClient) ListUsers(ctx context.Context) ([]any, error) {
	res, err := s.call(ctx, authpb.MethodListUsers, nil)
	if err != nil {
		return nil, err
	}
	users, _ := res["users"].([]any)
	if users == nil {
		users = []any{}
	}
	return users, nil
}

func (s *GRPCClient) GetUser(ctx context.Context, id int64) (map[string]any, error) {
	return s.call(ctx, authpb.MethodGetUser, map[string]any{"id": id})
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrConflict, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
