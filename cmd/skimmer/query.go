package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/skimmer/models"
)

func queryCMD() *cobra.Command {
	var cfgPath, topic, depth string
	var query = &cobra.Command{
		Use:   "query",
		Short: "Summarize a topic once and print the Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(topic) == "" {
				return errors.New("no topic provided")
			}
			if _, err := models.ParseDepth(depth); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Invalid depth. Defaulting to 'medium'.")
				depth = string(models.DepthMedium)
			}

			a, err := bootstrap(cmd.Context(), cfgPath, validateAll)
			if err != nil {
				return err
			}
			defer a.Close()

			orch, err := a.orchestrator(cmd.Context())
			if err != nil {
				return err
			}
			res, err := orch.HandleResult(cmd.Context(), topic, depth)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Cached {
				fmt.Fprintf(out, "<!-- cached %s -->\n", res.Record.CreatedAt.Format("2006-01-02 15:04 MST"))
			}
			fmt.Fprintln(out, res.Record.Summary)
			return nil
		},
	}
	query.Flags().StringVarP(&topic, "topic", "t", "", "topic to research")
	query.Flags().StringVarP(&depth, "depth", "d", "medium", "less, medium or high")
	query.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return query
}
