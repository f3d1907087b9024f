package main

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/gamesim/internal/domain/search/criteria"
	"github.com/kailas-cloud/gamesim/internal/usecase/similarity"
)

func newSimilarCmd(a *app) *cobra.Command {
	var (
		args    similarity.FindSimilarArgs
		id      int64
		filters string
	)
	cmd := &cobra.Command{
		Use:   "similar",
		Short: "Run find_similar once and print the JSON response",
		Example: `  gamesim similar --type game --name "counterstrik" --limit 5
  gamesim similar --type developer --id 10 --filters '{"is_indie":true}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("id") {
				args.ReferenceID = &id
			}
			spec, err := parseFilters(filters)
			if err != nil {
				return err
			}
			args.Filters = spec

			d, err := wire(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer d.Close()

			return printResponse(cmd.OutOrStdout(), d.similarity.FindSimilar(cmd.Context(), args))
		},
	}
	cmd.Flags().StringVarP(&args.EntityType, "type", "t", "game", "entity type: game, publisher or developer")
	cmd.Flags().Int64Var(&id, "id", 0, "reference id")
	cmd.Flags().StringVarP(&args.ReferenceName, "name", "n", "", "reference name")
	cmd.Flags().IntVarP(&args.Limit, "limit", "l", 0, "number of results (default 10, max 50)")
	cmd.Flags().StringVar(&filters, "filters", "", "filters as a JSON object")
	return cmd
}

func newConceptCmd(a *app) *cobra.Command {
	var (
		args    similarity.ConceptArgs
		filters string
	)
	cmd := &cobra.Command{
		Use:     "concept [description]",
		Short:   "Run search_by_concept once and print the JSON response",
		Example: `  gamesim concept "cozy farming sim with relationships" --filters '{"platforms":["linux"]}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			args.Description = posArgs[0]
			spec, err := parseFilters(filters)
			if err != nil {
				return err
			}
			args.Filters = spec

			d, err := wire(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer d.Close()

			return printResponse(cmd.OutOrStdout(), d.similarity.SearchByConcept(cmd.Context(), args))
		},
	}
	cmd.Flags().IntVarP(&args.Limit, "limit", "l", 0, "number of results (default 10, max 50)")
	cmd.Flags().StringVar(&filters, "filters", "", "filters as a JSON object")
	return cmd
}

func parseFilters(raw string) (*criteria.Spec, error) {
	if raw == "" {
		return nil, nil
	}
	var spec criteria.Spec
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return nil, fmt.Errorf("parse --filters: %w", err)
	}
	return &spec, nil
}

// printResponse writes resp as indented JSON. A failed tool call is a command error.
func printResponse(w io.Writer, resp similarity.Response) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("%s: %s", resp.ErrorCode, resp.Error)
	}
	return nil
}
