package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deevus/gtnh-translator-tui/internal/api"
	"github.com/deevus/gtnh-translator-tui/internal/session"
	"github.com/deevus/gtnh-translator-tui/internal/state"
	"github.com/deevus/gtnh-translator-tui/internal/tunnel"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newStatsCommand(cc *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the server's translation statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := cc.connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer conn.Close()

			stats, err := conn.svc.API.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, stats)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(stats))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func renderStats(s state.StatisticsSnapshot) string {
	pct := "–"
	if s.TotalEntries > 0 {
		p := state.ProgressSnapshot{Completed: s.CompletedCount, Total: s.TotalEntries}
		pct = strconv.Itoa(p.Percent()) + "%"
	}
	return renderTable(
		[]string{"Metric", "Value"},
		[][]string{
			{"Total entries", humanize.Comma(int64(s.TotalEntries))},
			{"Dictionary size", humanize.Comma(int64(s.DictionarySize))},
			{"Completed", humanize.Comma(int64(s.CompletedCount))},
			{"Completed %", pct},
		},
		2,
	)
}

func newStartCommand(cc *commandContext) *cobra.Command {
	var opts api.StartOptions
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a full translation run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := cc.connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer conn.Close()

			sess := session.New(session.Params{API: conn.svc.API, Logger: conn.log})
			if err := sess.StartTranslationRun(cmd.Context(), &opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Translation run started on %s\n", conn.name)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.InputFile, "input", "", "source language file on the server")
	cmd.Flags().StringVar(&opts.OutputFile, "output", "", "output file on the server")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "translate without writing the output file")
	return cmd
}

func newTranslateCommand(cc *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "translate TEXT...",
		Short: "Translate one string",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := cc.connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer conn.Close()

			sess := session.New(session.Params{API: conn.svc.API, Logger: conn.log})
			resp, err := sess.Translate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Text())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	return cmd
}

func newWatchCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Log progress and status changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := cc.connect(ctx, false)
			if err != nil {
				return err
			}
			defer conn.Close()

			sess := session.New(session.Params{API: conn.svc.API, Logger: conn.log})
			var last state.ViewState
			cancel := sess.Model().Subscribe(func(v state.ViewState) {
				logChange(conn, last, v)
				last = v
			})
			defer cancel()

			if err := sess.Start(ctx, conn.svc.Channel(sess.ConnectionChanged)); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
			case <-sess.ChannelDone():
				conn.log.Info("push channel ended, stopping watch")
			}
			return sess.Close()
		},
	}
}

// logChange logs the fields that differ between two snapshots. It runs on
// the session's apply goroutine, so prev is never shared.
func logChange(conn *connection, prev, v state.ViewState) {
	log := conn.log
	if v.Connection != prev.Connection {
		log.Info("channel", "state", v.Connection.String())
	}
	if v.Statistics != prev.Statistics {
		log.Info("statistics", "total_entries", v.Statistics.TotalEntries,
			"dictionary_size", v.Statistics.DictionarySize, "completed", v.Statistics.CompletedCount)
	}
	if v.Status != prev.Status {
		if v.Status.IsError() {
			log.Error("status", "message", v.Status.String())
		} else {
			log.Info("status", "message", v.Status.String())
		}
	}
	if v.Progress.Completed != prev.Progress.Completed || v.Progress.Total != prev.Progress.Total {
		args := []any{"completed", v.Progress.Completed, "total", v.Progress.Total, "percent", v.ProgressPercent()}
		if v.LastPair != nil && v.LastPair != prev.LastPair {
			args = append(args, "pair", v.LastPair.String())
		}
		log.Info("progress", args...)
	}
}

func newHealthCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := cc.connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer conn.Close()

			status, err := conn.svc.API.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", conn.name, status)
			return nil
		},
	}
}

func newHostKeyCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "host-key",
		Short: "Print the SSH host key fingerprint of the server's tunnel host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, name, server, err := cc.profile()
			if err != nil {
				return err
			}
			if server.SSH == nil {
				return fmt.Errorf("server %q has no [servers.%s.ssh] section", name, name)
			}

			fingerprint, err := tunnel.ScanHostKey(server.SSH.Host, server.SSH.Port)
			if err != nil {
				return fmt.Errorf("%w\nGet it with: ssh-keyscan -p %d %s 2>/dev/null | ssh-keygen -lf -", err, server.SSH.Port, server.SSH.Host)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Detected fingerprint for %s:\n\n", server.SSH.Host)
			fmt.Fprintf(out, "  host_key_fingerprint = %q\n\n", fingerprint)
			fmt.Fprintf(out, "Add this to [servers.%s.ssh] in your config.\n", name)
			return nil
		},
	}
}
