package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/groblegark/beadviz/internal/gitops"
	"github.com/groblegark/beadviz/internal/model"
	"github.com/groblegark/beadviz/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the tracker's issues and pending local changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		gw := newGateway()

		issues, err := gw.ListIssues(ctx)
		if err != nil {
			return err
		}

		counts := map[model.Status]int{}
		blocked := 0
		for _, iss := range issues {
			counts[iss.Status]++
			if len(iss.Dependencies) > 0 && iss.Status != model.StatusClosed {
				blocked++
			}
		}

		staged, err := gitops.New(workDir).HasStagedChanges(ctx)
		if err != nil {
			// Not fatal: the directory may not be a git repository.
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}

		if jsonOutput {
			return printJSON(map[string]any{
				"total":       len(issues),
				"open":        counts[model.StatusOpen],
				"in_progress": counts[model.StatusInProgress],
				"closed":      counts[model.StatusClosed],
				"blocked":     blocked,
				"staged":      staged,
			})
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "issues:\t%d\n", len(issues))
		fmt.Fprintf(w, "open:\t%s\n", ui.RenderOK(fmt.Sprint(counts[model.StatusOpen])))
		fmt.Fprintf(w, "in progress:\t%s\n", ui.RenderAccent(fmt.Sprint(counts[model.StatusInProgress])))
		fmt.Fprintf(w, "closed:\t%s\n", ui.RenderMuted(fmt.Sprint(counts[model.StatusClosed])))
		fmt.Fprintf(w, "blocked:\t%d\n", blocked)
		if staged {
			fmt.Fprintf(w, "staged changes:\t%s\n", ui.RenderError("yes (run 'bv sync')"))
		} else {
			fmt.Fprintf(w, "staged changes:\tnone\n")
		}
		return w.Flush()
	},
}
