package grpc

import (
	"context"
	"math"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/authpb"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func newUserService(t *testing.T) *services.UserService {
	t.Helper()
	svc, err := services.NewUserService(users.NewMemoryRepository(),
		auth.NewArgon2idHasher(auth.Argon2Params{MemoryKiB: 64, Iterations: 1, Parallelism: 1}),
		auth.NewTokenManager([]byte("test-secret"), "gophauth", time.Hour),
		logging.Nop(), nil)
	require.NoError(t, err)
	return svc
}

// startBufServer serves us over an in-memory listener and returns a connected
// client.
func startBufServer(t *testing.T, us UserService) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("bufnet", logging.Nop(), us)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return conn
}

func call(t *testing.T, c *authpb.AuthServiceClient, ctx context.Context, method string, fields map[string]any) (map[string]any, error) {
	t.Helper()
	in, err := authpb.Fields(fields)
	require.NoError(t, err)
	out, err := c.Call(ctx, method, in)
	if err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func TestAliceScenarioOverGRPC(t *testing.T) {
	conn := startBufServer(t, newUserService(t))
	c := authpb.NewAuthServiceClient(conn)
	ctx := context.Background()

	out, err := call(t, c, ctx, authpb.MethodSignup, map[string]any{
		"username": "alice", "email": "alice@x.com", "password": "pw123",
	})
	require.NoError(t, err)
	alice := map[string]any{"id": float64(1), "username": "alice", "email": "alice@x.com"}
	assert.Equal(t, "User created successfully", out["message"])
	assert.Equal(t, alice, out["user"])

	_, err = call(t, c, ctx, authpb.MethodSignup, map[string]any{
		"username": "alice2", "email": "alice@x.com", "password": "pw456",
	})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
	assert.Equal(t, "username or email already exists", status.Convert(err).Message())

	out, err = call(t, c, ctx, authpb.MethodLoginByEmail, map[string]any{"email": "alice@x.com", "password": "pw123"})
	require.NoError(t, err)
	assert.Equal(t, alice, out["user"])
	token := out["token"].(string)

	authed := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	out, err = call(t, c, authed, authpb.MethodWhoAmI, nil)
	require.NoError(t, err)
	assert.Equal(t, alice, out)

	_, err = call(t, c, ctx, authpb.MethodGetUser, map[string]any{"id": 999})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestLoginByUsernameAndLists(t *testing.T) {
	conn := startBufServer(t, newUserService(t))
	c := authpb.NewAuthServiceClient(conn)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		_, err := call(t, c, ctx, authpb.MethodSignup, map[string]any{
			"username": name, "email": name + "@x.com", "password": "pw",
		})
		require.NoError(t, err)
	}

	out, err := call(t, c, ctx, authpb.MethodLoginByUsername, map[string]any{"username": "bob", "password": "pw"})
	require.NoError(t, err)
	assert.Equal(t, float64(2), out["user_id"])
	assert.Equal(t, "bob", out["username"])
	assert.NotEmpty(t, out["token"])

	// bare token without the Bearer prefix is accepted too
	authed := metadata.AppendToOutgoingContext(ctx, "authorization", out["token"].(string))
	me, err := call(t, c, authed, authpb.MethodWhoAmI, nil)
	require.NoError(t, err)
	assert.Equal(t, "bob", me["username"])

	out, err = call(t, c, ctx, authpb.MethodListUsers, nil)
	require.NoError(t, err)
	list := out["users"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[0].(map[string]any)["username"])
	assert.Equal(t, "alice", list[1].(map[string]any)["username"])

	out, err = call(t, c, ctx, authpb.MethodGetUser, map[string]any{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, "alice", out["username"])
}

func TestErrorCodes(t *testing.T) {
	conn := startBufServer(t, newUserService(t))
	c := authpb.NewAuthServiceClient(conn)
	ctx := context.Background()

	_, err := call(t, c, ctx, authpb.MethodSignup, map[string]any{"username": "a", "password": "pw"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "email is required", status.Convert(err).Message())

	_, err = call(t, c, ctx, authpb.MethodLoginByEmail, map[string]any{"email": "ghost@x.com", "password": "pw"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "invalid credentials", status.Convert(err).Message())

	_, err = call(t, c, ctx, authpb.MethodWhoAmI, nil)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())

	authed := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer junk")
	_, err = call(t, c, authed, authpb.MethodWhoAmI, nil)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = call(t, c, ctx, authpb.MethodGetUser, map[string]any{"id": "one"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGetUser_RejectsNonIntegralID(t *testing.T) {
	conn := startBufServer(t, newUserService(t))
	c := authpb.NewAuthServiceClient(conn)
	ctx := context.Background()

	_, err := call(t, c, ctx, authpb.MethodSignup, map[string]any{
		"username": "alice", "email": "alice@x.com", "password": "pw",
	})
	require.NoError(t, err)

	for _, id := range []float64{1.9, math.Inf(1), math.Inf(-1), 1e300} {
		_, err = call(t, c, ctx, authpb.MethodGetUser, map[string]any{"id": id})
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "id=%v", id)
	}
}

func TestHealthService(t *testing.T) {
	conn := startBufServer(t, newUserService(t))

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: authpb.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop(), newUserService(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), newUserService(t))
	assert.Error(t, srv.Run(context.Background()))
}
