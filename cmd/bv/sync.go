package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/groblegark/beadviz/internal/gitops"
	"github.com/groblegark/beadviz/internal/syncer"
	"github.com/groblegark/beadviz/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Stage, commit, and sync the tracker's storage now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")
		noPush, _ := cmd.Flags().GetBool("no-push")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		ctrl := syncer.New(workDir, newGateway(), gitops.New(workDir), syncer.Options{
			Debounce:    time.Hour, // flushed explicitly below
			SyncTimeout: timeout,
			NoPush:      noPush,
			Logger:      logger,
		})
		defer ctrl.Stop()

		ctrl.Enqueue(message)
		if err := ctrl.Flush(); err != nil {
			fmt.Printf("sync %s: %v\n", ui.RenderError("failed"), err)
			return err
		}

		st := ctrl.State()
		when := ""
		if st.LastSync != nil {
			when = st.LastSync.Format(time.RFC3339)
		}
		fmt.Printf("sync %s at %s\n", ui.RenderOK("complete"), when)
		return nil
	},
}

func init() {
	syncCmd.Flags().String("message", "", "commit message (defaults to a generic one)")
	syncCmd.Flags().Bool("no-push", false, "skip the tracker's push step")
	syncCmd.Flags().Duration("timeout", 0, "bound the whole sync (0 = unbounded)")
}
