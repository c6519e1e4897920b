package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/revise/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the review API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			rt.cfg.HTTP.Addr = addr
		}
		if rt.cfg.Env == "production" || rt.cfg.Env == "prod" {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		repo, closeStore, err := openStore(ctx, rt.cfg, rt.log)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer closeStore()

		srv := httpapi.NewServer(httpapi.RouterConfig{
			ReviewHandler: httpapi.NewReviewHandler(httpapi.ReviewHandlerConfig{
				Scheduler:          rt.sched,
				Repository:         repo,
				RepositoryTimeout:  rt.cfg.HTTP.RepositoryTimeout,
				DefaultLimit:       rt.cfg.Scheduler.DefaultLimit,
				DefaultHorizonDays: rt.cfg.Scheduler.DefaultHorizonDays,
				Logger:             rt.log,
			}),
			HealthHandler: httpapi.NewHealthHandler(),
			CORSOrigins:   rt.cfg.HTTP.CORSOrigins,
			Logger:        rt.log.Named("http"),
		})
		return srv.Run(ctx, rt.cfg.HTTP.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
}
