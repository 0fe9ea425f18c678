package main

import (
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/certhub/examdesk/internal/config"
	"github.com/certhub/examdesk/internal/db"
	"github.com/certhub/examdesk/internal/services"
)

// app is the state shared by every subcommand once the store is open.
type app struct {
	dsn     string
	verbose bool

	conn *gorm.DB
	svc  *services.Service
	loc  *time.Location
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "examctl",
		Short:         "Back-office reports for the exam desk",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			conn, err := db.Open(a.dsn, cfg.DatabaseKey, log)
			if err != nil {
				return err
			}
			a.conn = conn
			a.svc = services.New(conn, log)
			a.loc = cfg.Location()
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.conn == nil {
				return nil
			}
			return db.Close(a.conn)
		},
	}
	root.PersistentFlags().StringVar(&a.dsn, "db", cfg.DatabaseURL, "postgres URL or sqlite file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log SQL and debug output")

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				// db.Open already migrated.
				heading(cmd.OutOrStdout(), "Schema is up to date")
				return nil
			},
		},
		roomsCmd(a),
		rosterCmd(a),
		upcomingCmd(a),
		ledgerCmd(a),
	)
	return root
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
