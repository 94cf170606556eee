package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ytget/bili-audio/internal/bili"
)

func newSignCmd(g *globals) *cobra.Command {
	var imgKey, subKey string
	var wts int64

	cmd := &cobra.Command{
		Use:   "sign [key=value ...]",
		Short: "Print a signed query string",
		Long: `Sign the given parameters the way listing requests are signed.

Without --img and --sub the current keys are fetched from the platform.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := bili.Params{}
			for _, arg := range args {
				k, v, ok := strings.Cut(arg, "=")
				if !ok || k == "" {
					return fmt.Errorf("invalid parameter %q (want key=value)", arg)
				}
				params[k] = v
			}

			keys := bili.SigningKeys{ImgKey: imgKey, SubKey: subKey}
			if keys.ImgKey == "" || keys.SubKey == "" {
				fetched, err := g.client().FetchSigningKeys(cmd.Context())
				if err != nil {
					return err
				}
				keys = fetched
			}

			signer := bili.Signer{Salt: g.cfg.SaltMode.Func()}
			if wts > 0 {
				signer.Now = func() time.Time { return time.Unix(wts, 0) }
			}
			signed, err := signer.Sign(params, keys)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&imgKey, "img", "", "image key")
	cmd.Flags().StringVar(&subKey, "sub", "", "sub key")
	cmd.Flags().Int64Var(&wts, "wts", 0, "fixed timestamp instead of the current time")
	return cmd
}

func newResolveCmd(g *globals) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "resolve <bvid>",
		Short: "Look up a video's content id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			info, err := g.bridge().ResolveVideo(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if raw {
				return writeRaw(out, info.Raw)
			}
			fmt.Fprintf(out, "bvid:     %s\n", info.VideoID)
			fmt.Fprintf(out, "cid:      %d\n", info.ContentID)
			fmt.Fprintf(out, "title:    %s\n", info.Title)
			fmt.Fprintf(out, "owner:    %s (%d)\n", info.Owner.Name, info.Owner.Mid)
			fmt.Fprintf(out, "duration: %s\n", time.Duration(info.Duration)*time.Second)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the response body")
	return cmd
}

func newStreamsCmd(g *globals) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "streams <bvid> <cid>",
		Short: "List the stream URLs of a video part",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			set, err := g.bridge().ResolveStreams(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if raw {
				return writeRaw(cmd.OutOrStdout(), set.Raw)
			}
			for _, u := range set.URLs() {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the response body")
	return cmd
}

func newListingCmd(g *globals) *cobra.Command {
	var params bili.ListingParams
	var tid int
	var raw bool

	cmd := &cobra.Command{
		Use:   "listing",
		Short: "List one page of a creator's uploads",
		RunE: func(cmd *cobra.Command, args []string) error {
			if params.Mid <= 0 {
				return fmt.Errorf("--mid is required")
			}
			params.Cookie = g.cookieValue()
			params.Tid = bili.Category(tid)

			ctx := cmd.Context()

			listing, err := g.bridge().FetchListing(ctx, params)
			if err != nil {
				return err
			}
			if raw {
				return writeRaw(cmd.OutOrStdout(), listing.Raw)
			}
			printVideos(cmd.OutOrStdout(), listing.Videos)

			pages := 1
			if listing.Page.Ps > 0 {
				pages = (listing.Page.Count + listing.Page.Ps - 1) / listing.Page.Ps
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %s videos\n", listing.Page.Pn, pages, humanize.Comma(int64(listing.Page.Count)))
			return nil
		},
	}

	f := cmd.Flags()
	f.Int64Var(&params.Mid, "mid", 0, "creator id")
	f.IntVar(&params.Pn, "pn", bili.DefaultPage, "page number")
	f.IntVar(&params.Ps, "ps", bili.DefaultPageSize, "page size")
	f.IntVar(&tid, "tid", bili.DefaultTid, "category id (0 for all categories)")
	f.StringVar(&params.Keyword, "keyword", "", "search keyword")
	f.StringVar(&params.Order, "order", bili.DefaultOrder, "sort order (pubdate, click, stow)")
	f.BoolVar(&raw, "raw", false, "print the response body")
	return cmd
}

func printVideos(w io.Writer, videos []bili.ListedVideo) {
	for _, v := range videos {
		created := "-"
		if v.Created > 0 {
			created = time.Unix(v.Created, 0).Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s  %6s  %s  %s\n", v.Bvid, v.Length, created, v.Title)
	}
}

func writeRaw(w io.Writer, raw []byte) error {
	_, err := fmt.Fprintln(w, string(raw))
	return err
}
