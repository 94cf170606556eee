package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ytget/bili-audio/internal/model"
)

func newCreatorsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creators",
		Short: "Manage the followed creators",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List followed creators",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				lib, err := g.library()
				if err != nil {
					return err
				}
				creators, err := lib.Creators()
				if err != nil {
					return err
				}
				if len(creators) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no creators")
					return nil
				}
				for _, c := range creators {
					synced := "never"
					if t := c.LastSync(); !t.IsZero() {
						synced = humanize.Time(t)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tsynced %s\n", c.Mid, c.DisplayName(), synced)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <mid>",
			Short: "Follow a creator",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				lib, err := g.library()
				if err != nil {
					return err
				}
				ctx := cmd.Context()

				c, err := lib.AddCreator(ctx, args[0], g.cookieValue())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", c.DisplayName(), c.Mid)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <mid>",
			Short: "Stop following a creator",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				lib, err := g.library()
				if err != nil {
					return err
				}
				if err := lib.RemoveCreator(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func newSyncCmd(g *globals) *cobra.Command {
	var (
		dryRun   bool
		download bool
		dir      string
	)

	cmd := &cobra.Command{
		Use:   "sync <mid>",
		Short: "Show a creator's uploads since the last sync",
		Long: `List the uploads published since the creator was last synced and
record the sync time. With --download the new uploads are saved as MP3s first;
the sync time is only recorded when every download succeeds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := g.library()
			if err != nil {
				return err
			}
			mid := args[0]
			creator, ok, err := lib.Creator(mid)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("creator %s is not followed", mid)
			}

			// Uploads published while this sync runs belong to the next one.
			started := time.Now()
			videos, err := lib.NewVideos(cmd.Context(), mid, g.cookieValue())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(videos) == 0 {
				fmt.Fprintf(out, "no new videos from %s\n", creator.DisplayName())
			} else {
				fmt.Fprintf(out, "%d new videos from %s\n", len(videos), creator.DisplayName())
				printVideos(out, videos)
			}
			if dryRun {
				return nil
			}

			if download && len(videos) > 0 {
				if dir == "" {
					dir = g.cfg.GetDownloadDir()
				}
				refs := make([]model.VideoRef, 0, len(videos))
				for _, v := range videos {
					refs = append(refs, model.VideoRef{Bvid: v.Bvid, Title: v.Title, Creator: creator.DisplayName(), Dir: dir})
				}
				if err := g.runDownloads(cmd, refs); err != nil {
					return err
				}
			}
			return lib.MarkSynced(mid, started)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not record the sync time")
	cmd.Flags().BoolVar(&download, "download", false, "download the new uploads")
	cmd.Flags().StringVar(&dir, "dir", "", "target directory (default from config)")
	return cmd
}
