package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/authpb"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Signup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := s.users.Signup(ctx,
		authpb.String(req, "username"), authpb.String(req, "email"), authpb.String(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}

	return response(map[string]any{
		"message": "User created successfully",
		"user":    viewFields(user),
	})
}

func (s *GRPCServer) LoginByEmail(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.users.LoginByEmail(ctx, authpb.String(req, "email"), authpb.String(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}

	return response(map[string]any{
		"message": "login ok",
		"token":   res.Token,
		"user":    viewFields(&res.User),
	})
}

func (s *GRPCServer) LoginByUsername(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.users.LoginByUsername(ctx, authpb.String(req, "username"), authpb.String(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}

	return response(map[string]any{
		"token":    res.Token,
		"user_id":  res.UserID,
		"username": res.Username,
	})
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	user, err := s.users.WhoAmI(ctx, accessTokenFromContext(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return response(viewFields(user))
}

func (s *GRPCServer) ListUsers(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	list := make([]any, 0, len(users))
	for i := range users {
		list = append(list, viewFields(&users[i]))
	}
	return response(map[string]any{"users": list})
}

func (s *GRPCServer) GetUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, ok := authpb.Int(req, "id")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return response(viewFields(user))
}

func viewFields(v *models.UserView) map[string]any {
	return map[string]any{"id": v.ID, "username": v.Username, "email": v.Email}
}

func response(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// toStatus maps service errors onto gRPC status codes. Internal causes are
// never sent to the client.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrMissingField):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrDuplicateIdentity):
		return status.Error(codes.AlreadyExists, common.ErrDuplicateIdentity.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, common.ErrInvalidCredentials.Error())
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "User not found")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
