package serve

import (
	"context"
	"os"
	"os/signal"

	"github.com/diggyk/gatehouse/internal/logging"
	"github.com/diggyk/gatehouse/pkg/decisionpoint"
	"github.com/diggyk/gatehouse/pkg/decisionpoint/rpc"
	"github.com/diggyk/gatehouse/pkg/gatehouse/admin"
	"github.com/diggyk/gatehouse/pkg/gatehouse/config"
	"github.com/diggyk/gatehouse/pkg/gatehouse/storage"
	"github.com/urfave/cli/v3"
)

var logger = logging.GetLogger("gatehouse")

const agent string = "serve"

// Execute runs the serve command: it opens the configured storage driver,
// loads the registry, starts the HTTP decision point, and blocks until an
// interrupt signal triggers a graceful shutdown.
func Execute(ctx context.Context, cmd *cli.Command) error {
	if err := config.Load(); err != nil {
		return err
	}

	storageURL := config.VConfig.GetString(config.StorageURL)
	if u := cmd.String("storage"); u != "" {
		storageURL = u
	}
	driver, err := storage.Open(storageURL)
	if err != nil {
		return err
	}

	svc, err := admin.NewService(ctx, driver)
	if err != nil {
		return err
	}

	addr := config.VConfig.GetString(config.ListenAddr)
	if a := cmd.String("addr"); a != "" {
		addr = a
	}

	var server decisionpoint.Server
	server, err = rpc.CreateServer(svc, addr)
	if err != nil {
		_ = svc.Close()
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info(agent, "shutdown", "Shutting down server...")

	if err := server.Stop(ctx); err != nil {
		return err
	}
	if err := svc.Close(); err != nil {
		return err
	}

	logger.Info(agent, "shutdown", "Server exited gracefully.")
	return nil
}
