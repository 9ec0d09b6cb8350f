package main

import (
	"github.com/spf13/cobra"

	"github.com/operatorhq/creditwatch/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server and the snapshot scheduler",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: configPath,
		Version:    version,
	})
	if err != nil {
		return err
	}
	return app.Run()
}
