// Package client contains the client side of gophauth.
//
// # Overview
//
// Client is the transport-agnostic contract the CLI talks to. GRPCClient
// implements it over gophauth.v1.AuthService: it manages the connection,
// injects the access token into outgoing calls via an interceptor and maps
// gRPC status codes to sentinel errors.
//
// # Error Handling
//
// Callers match failures with errors.Is against ErrUnavailable,
// ErrUnauthorized, ErrInvalidInput, ErrConflict and ErrNotFound. The server's
// message is kept in the error text.
package client
