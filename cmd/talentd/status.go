package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"talentd/internal/hiring"
	"talentd/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(out, line)
			}
			pid, running := daemonPID(filepath.Join(cfg.Paths.LogDir, "talentd.pid"))
			if running {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, fmt.Sprintf("running (pid %d)", pid), colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "not running", colorize))
			}
			fmt.Fprintln(out, renderStatusLine("API bind", statusInfo, cfg.Paths.APIBind, colorize))
			fmt.Fprintln(out, renderStatusLine("Database", statusInfo, cfg.DatabasePath(), colorize))

			return ctx.withStore(func(st *store.Store) error {
				for _, line := range renderSectionHeader("Applications", colorize) {
					fmt.Fprintln(out, line)
				}
				stats, err := st.Stats(cmd.Context())
				if err != nil {
					return err
				}
				total := 0
				for _, stage := range hiring.AllStages() {
					count := stats[stage]
					total += count
					fmt.Fprintln(out, renderStatusLine(string(stage), statusInfo, strconv.Itoa(count), colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Total", statusInfo, strconv.Itoa(total), colorize))

				deadLetters, err := st.DeadLetterCount(cmd.Context())
				if err != nil {
					return err
				}
				kind := statusOK
				if deadLetters > 0 {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Dead letters", kind, strconv.Itoa(deadLetters), colorize))
				return nil
			})
		},
	}
}

// daemonPID reads the pid file and reports whether the process still exists.
func daemonPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, false
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return pid, false
	}
	return pid, true
}
