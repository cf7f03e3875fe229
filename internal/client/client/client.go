package client

import "context"

// Client is the account API as seen by the CLI. Responses are the decoded
// JSON-shaped objects returned by the server.
type Client interface {
	Close() error
	SetAccessToken(token string)
	Signup(ctx context.Context, username, email, password string) (map[string]any, error)
	LoginByEmail(ctx context.Context, email, password string) (map[string]any, error)
	LoginByUsername(ctx context.Context, username, password string) (map[string]any, error)
	WhoAmI(ctx context.Context) (map[string]any, error)
	ListUsers(ctx context.Context) ([]any, error)
	GetUser(ctx context.Context, id int64) (map[string]any, error)
}
