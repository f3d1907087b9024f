package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesim/internal/domain/entity"
	collectionrepo "github.com/kailas-cloud/gamesim/internal/repository/collection"
)

func newIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the vector indexes of the games, publishers and developers collections",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "ensure",
			Short: "Create missing indexes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withCollections(cmd.Context(), a, func(repo *collectionrepo.Repo) error {
					statuses, err := repo.EnsureAll(cmd.Context())
					printStatuses(cmd.OutOrStdout(), statuses)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which indexes exist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withCollections(cmd.Context(), a, func(repo *collectionrepo.Repo) error {
					statuses, err := repo.Check(cmd.Context())
					if err != nil {
						return err
					}
					printStatuses(cmd.OutOrStdout(), statuses)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:       "drop <game|publisher|developer>",
			Short:     "Drop the index of one collection, keeping stored points",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{string(entity.Game), string(entity.Publisher), string(entity.Developer)},
			RunE: func(cmd *cobra.Command, args []string) error {
				t, err := entity.ParseType(args[0])
				if err != nil {
					return err
				}
				return withCollections(cmd.Context(), a, func(repo *collectionrepo.Repo) error {
					if err := repo.Drop(cmd.Context(), t); err != nil {
						return err
					}
					a.logger.Info("Index dropped", zap.String("entity_type", string(t)))
					return nil
				})
			},
		},
	)
	return cmd
}

// withCollections runs fn against the collection repo. Only the vector store is opened.
func withCollections(ctx context.Context, a *app, fn func(*collectionrepo.Repo) error) error {
	store, err := connectStore(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	repo := collectionrepo.New(store, a.cfg.Search.KeyPrefix, a.cfg.VectorConfig()).
		WithHNSW(collectionrepo.HNSWConfig{
			M:           a.cfg.Search.HNSWM,
			EFConstruct: a.cfg.Search.HNSWEFConstruct,
		})
	return fn(repo)
}

func printStatuses(w io.Writer, statuses []collectionrepo.Status) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tINDEX\tEXISTS\tCREATED")
	for _, st := range statuses {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%t\n", st.Type.Collection(), st.Index, st.Exists, st.Created)
	}
	_ = tw.Flush()
}
