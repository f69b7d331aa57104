package preview

import (
	"context"
	"fmt"

	"github.com/mchmarny/navmenu/pkg/server"
)

// Run serves the preview routes and blocks until the context is canceled or
// an error occurs. The options come first so the caller can set the port,
// registry and probes; the service routes are registered last.
func (s *Service) Run(ctx context.Context, opt ...server.Option) error {
	if err := s.Ready(ctx); err != nil {
		return fmt.Errorf("preview not ready: %w", err)
	}
	s.log.Info("starting preview", "outline", s.outline.Title)

	opt = append(opt,
		server.WithReadinessCheck(s),
		server.WithRoutes(s.Register),
	)

	return server.New(opt...).Serve(ctx)
}
