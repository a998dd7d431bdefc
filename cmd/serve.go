package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/studypath/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = e.cfg.Server.Addr
		}
		if e.cfg.Log.Mode == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		srv := httpapi.New(httpapi.Deps{
			Store:     e.store,
			Quiz:      e.quiz,
			Recommend: e.recommend,
			Progress:  e.progress,
			Extractor: e.extractor,
			Ingester:  e.ingester,
			Log:       e.log,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx, addr, e.cfg.Server.ReadTimeout, e.cfg.Server.WriteTimeout)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
