package main

import (
	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"github.com/deevus/gtnh-translator-tui/app"
	"github.com/deevus/gtnh-translator-tui/config"
	"github.com/deevus/gtnh-translator-tui/internal/session"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cc := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "gtnh-translator-tui",
		Short:         "Monitor and drive a GTNH translation server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, cc)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cc.configPath, "config", "c", config.DefaultPath(), "path to config file")
	flags.StringVarP(&cc.serverName, "server", "s", "", "server profile name from config")
	flags.StringVar(&cc.url, "url", "", "server URL, bypasses the config file")
	flags.StringVar(&cc.logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(
		newStatsCommand(cc),
		newStartCommand(cc),
		newTranslateCommand(cc),
		newWatchCommand(cc),
		newHealthCommand(cc),
		newHostKeyCommand(cc),
	)
	return rootCmd
}

func runTUI(cmd *cobra.Command, cc *commandContext) error {
	ctx := cmd.Context()
	conn, err := cc.connect(ctx, true)
	if err != nil {
		return err
	}
	defer conn.Close()

	sess := session.New(session.Params{API: conn.svc.API, Logger: conn.log})
	defer sess.Close()

	root := app.New(app.Params{
		Controller: sess,
		ServerName: conn.name,
		URL:        conn.svc.WebsocketURL(),
		Context:    ctx,
		Logger:     conn.log,
	})

	vxApp, err := vxfw.NewApp(vaxis.Options{})
	if err != nil {
		return err
	}
	root.SetPostEvent(vxApp.PostEvent)
	stopWatch := root.Watch()
	defer stopWatch()

	if err := sess.Start(ctx, conn.svc.Channel(sess.ConnectionChanged)); err != nil {
		return err
	}
	return vxApp.Run(root)
}
