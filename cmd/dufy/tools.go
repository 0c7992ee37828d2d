package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/preeyankakc037/dufy/internal/catalog"
	"github.com/preeyankakc037/dufy/internal/search"
)

func indexCmd() *cobra.Command {
	var reindex bool
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the search index, persist the vector cache and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			store := catalog.NewStore(e.cfg.CatalogPath, e.log)
			cat := store.Load()
			if err := store.Err(); err != nil {
				return err
			}

			enc, _ := e.encoder()
			ix, err := e.buildIndex(cmd.Context(), cat, enc, reindex)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d songs with %s\n", ix.Len(), ix.EncoderName())
			return nil
		},
	}
	cmd.Flags().BoolVar(&reindex, "reindex", false, "ignore the vector cache and re-encode every song")
	return cmd
}

type searchOutput struct {
	Query     string        `json:"query"`
	Mode      search.Mode   `json:"mode"`
	Corrected string        `json:"corrected,omitempty"`
	Cause     string        `json:"cause,omitempty"`
	Results   []search.Item `json:"results"`
}

func searchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Run one query against the catalog and print the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			cat := e.loadCatalog()
			enc, _ := e.encoder()
			eng, _ := e.engine(cmd.Context(), cat, enc)

			if !cmd.Flags().Changed("limit") {
				limit = eng.DefaultTopK()
			}
			res := eng.Search(cmd.Context(), strings.Join(args, " "), limit)

			out := searchOutput{
				Query:     res.Query,
				Mode:      res.Mode,
				Corrected: res.Corrected,
				Results:   res.Items,
			}
			if res.Cause != nil {
				out.Cause = res.Cause.Error()
			}
			w := json.NewEncoder(cmd.OutOrStdout())
			w.SetIndent("", "  ")
			return w.Encode(out)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of results (default from config)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import SRC DST",
		Short: "Copy a CSV catalog into a SQLite catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := catalog.Import(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d songs into %s\n", n, args[1])
			return nil
		},
	}
}
