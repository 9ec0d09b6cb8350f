package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/operatorhq/creditwatch/bootstrap"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Record one spend snapshot and exit",
	Long: `Fetch the current 30 day infrastructure spend and upsert one row
per service for today's date, then exit. The serve command runs the
same job on a schedule.`,
	RunE: runSnapshot,
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath:     configPath,
		Version:        version,
		DisableMetrics: true,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return app.Snapshot.Run(ctx)
}
