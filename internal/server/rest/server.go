package rest

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/gofiber/fiber/v2"
)

type Server struct {
	addr   string
	app    *fiber.App
	logger logging.Logger
}

func NewServer(addr string, app *fiber.App, logger logging.Logger) *Server {
	return &Server{addr: addr, app: app, logger: logger.With("module", "rest.server")}
}

// Run serves HTTP on s.addr until ctx is cancelled, then shuts the app down
// and waits for in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "HTTP server started", "addr", lis.Addr().String())
		errCh <- s.app.Listener(lis)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Shutting down HTTP server")
		if err := s.app.Shutdown(); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}
