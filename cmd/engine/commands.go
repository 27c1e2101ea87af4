package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"leadhunt-engine/internal/discover"
	"leadhunt-engine/internal/store"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <url>",
		Short: "Classify a single URL without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.pipeline.Check(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <domain>",
		Short: "Add a site as a lead and enrich it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			lead, err := a.pipeline.Process(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), lead)
		},
	}
}

func newDiscoverCmd(opts *rootOptions) *cobra.Command {
	var num int

	cmd := &cobra.Command{
		Use:   "discover <query>",
		Short: "Search for sites and store every one found",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			d, err := a.newDiscoverer(a.config())
			if err != nil {
				return err
			}

			req := discover.Request{Query: strings.Join(args, " ")}
			if cmd.Flags().Changed("num") {
				req.Num = &num
			}
			res, err := d.Discover(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&num, "num", discover.DefaultNum, "number of search results to request (1-20)")
	return cmd
}

func newLeadsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "leads",
		Short: "List stored leads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			leads, err := store.ListLeads(cmd.Context(), a.db.Pool)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), leads)
		},
	}
}
