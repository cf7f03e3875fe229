// Package authpb describes the gophauth.v1.AuthService gRPC contract. Messages
// are google.protobuf.Struct values carrying the same fields as the HTTP API,
// so no generated code is needed on either side.
package authpb

import (
	"context"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "gophauth.v1.AuthService"

const (
	MethodSignup          = "Signup"
	MethodLoginByEmail    = "LoginByEmail"
	MethodLoginByUsername = "LoginByUsername"
	MethodWhoAmI          = "WhoAmI"
	MethodListUsers       = "ListUsers"
	MethodGetUser         = "GetUser"
)

// FullMethod returns the /service/method path used on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AuthServiceServer is implemented by the server side of the contract.
type AuthServiceServer interface {
	Signup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoginByEmail(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoginByUsername(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WhoAmI(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type call func(AuthServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, fn call) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(AuthServiceServer)
		if interceptor == nil {
			return fn(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return fn(s, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodSignup, Handler: unaryHandler(MethodSignup, AuthServiceServer.Signup)},
		{MethodName: MethodLoginByEmail, Handler: unaryHandler(MethodLoginByEmail, AuthServiceServer.LoginByEmail)},
		{MethodName: MethodLoginByUsername, Handler: unaryHandler(MethodLoginByUsername, AuthServiceServer.LoginByUsername)},
		{MethodName: MethodWhoAmI, Handler: unaryHandler(MethodWhoAmI, AuthServiceServer.WhoAmI)},
		{MethodName: MethodListUsers, Handler: unaryHandler(MethodListUsers, AuthServiceServer.ListUsers)},
		{MethodName: MethodGetUser, Handler: unaryHandler(MethodGetUser, AuthServiceServer.GetUser)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/v1/auth.proto",
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

// AuthServiceClient invokes the contract over a client connection.
type AuthServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) *AuthServiceClient {
	return &AuthServiceClient{cc: cc}
}

// Call invokes method with in and returns the decoded response.
func (c *AuthServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Fields builds a request from plain Go values (see structpb.NewStruct for
// the accepted types).
func Fields(m map[string]any) (*structpb.Struct, error) {
	return structpb.NewStruct(m)
}

// String returns the string field key of s, or "" when absent.
func String(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// Int returns the numeric field key of s truncated to int64 and whether it
// was present as a number.
func Int(s *structpb.Struct, key string) (int64, bool) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, false
	}
	if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
		return 0, false
	}
	f := v.GetNumberValue()
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
