package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"talentd/internal/hiring"
	"talentd/internal/notify"
	"talentd/internal/store"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the notification pipeline",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newDeadLetterListCommand(ctx))
	queueCmd.AddCommand(newDeadLetterRetryCommand(ctx))
	queueCmd.AddCommand(newDeadLetterRemoveCommand(ctx))

	return queueCmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show application counts per stage and dead-letter totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				stats, err := st.Stats(cmd.Context())
				if err != nil {
					return err
				}
				deadLetters, err := st.DeadLetterCount(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(stats)+1)
				for _, stage := range hiring.AllStages() {
					if count, ok := stats[stage]; ok {
						rows = append(rows, []string{string(stage), strconv.Itoa(count)})
					}
				}
				rows = append(rows, []string{"dead letters", strconv.Itoa(deadLetters)})

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Stage", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newDeadLetterListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dead-letters",
		Short: "List notifications that exhausted delivery retries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				letters, err := st.ListDeadLetters(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(letters) == 0 {
					fmt.Fprintln(out, "No dead letters")
					return nil
				}

				rows := make([][]string, 0, len(letters))
				for _, letter := range letters {
					rows = append(rows, []string{
						letter.ID,
						letter.Recipient,
						letter.Subject,
						strconv.Itoa(letter.Attempts),
						letter.LastError,
						letter.FailedAt.Format(time.RFC3339),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Recipient", "Subject", "Attempts", "Last Error", "Failed"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newDeadLetterRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>",
		Short: "Resend a dead-lettered notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				letter, err := st.GetDeadLetter(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if letter == nil {
					return fmt.Errorf("dead letter %s not found", args[0])
				}

				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				sender := notify.NewSender(cfg)
				job := letter.Job()

				sendCtx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Worker.SendTimeout)*time.Second)
				defer cancel()
				if err := sender.Send(sendCtx, job); err != nil {
					return fmt.Errorf("resend notification: %w", err)
				}
				if _, err := st.RemoveDeadLetter(cmd.Context(), letter.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Delivered notification %s to %s\n", letter.ID, letter.Recipient)
				return nil
			})
		},
	}
}

func newDeadLetterRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Discard a dead-lettered notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				removed, err := st.RemoveDeadLetter(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("dead letter %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed dead letter %s\n", args[0])
				return nil
			})
		},
	}
}
