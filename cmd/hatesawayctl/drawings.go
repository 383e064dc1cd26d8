package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"hatesaway-server/canvas"
	"hatesaway-server/gallery"
	"hatesaway-server/identity"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *app) listCmd() *cobra.Command {
	var sort string
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List drawings, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := gallery.FeedQuery{Sort: gallery.SortOrder(sort), Page: page, PageSize: pageSize}
			p, err := a.svc.FeedPage(cmd.Context(), "", q)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tAUTHOR\tLIKES\tSIZE\tCREATED")
			for _, it := range p.Drawings {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					it.ID,
					it.AuthorName,
					it.Likes,
					canvas.FormatFileSize(canvas.Base64Size(it.ImageURL)),
					humanize.Time(time.UnixMilli(it.CreatedAt)),
				)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d, %d of %d drawings\n", p.Page, len(p.Drawings), p.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&sort, "sort", string(gallery.SortLatest), "latest or popular")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", gallery.DefaultPageSize, "drawings per page")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [drawing-id]",
		Short: "Show one drawing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, found, err := a.svc.GetDrawing(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("drawing %s not found", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:       %s\n", d.ID)
			fmt.Fprintf(out, "author:   %s (%s)\n", identity.DisplayName(d.UserID), d.UserID)
			fmt.Fprintf(out, "likes:    %d\n", d.Likes)
			fmt.Fprintf(out, "created:  %s\n", time.UnixMilli(d.CreatedAt).UTC().Format(time.RFC3339))
			fmt.Fprintf(out, "image:    %s\n", canvas.FormatFileSize(canvas.Base64Size(d.ImageURL)))
			if w, h, err := canvas.ImageDimensions(d.ImageURL); err == nil {
				fmt.Fprintf(out, "size:     %dx%d\n", w, h)
			}
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [drawing-id]",
		Short: "Delete a drawing (likes and comments stay until the next sweep)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.DeleteDrawing(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func (a *app) likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like [drawing-id] [user-id]",
		Short: "Toggle a user's like on a drawing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.Like(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			state := "unliked"
			if res.IsLiked {
				state = "liked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s, %d likes\n", state, res.Likes)
			return nil
		},
	}
}

func (a *app) commentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comments [drawing-id]",
		Short: "List comments, for one drawing or all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drawingID := ""
			if len(args) == 1 {
				drawingID = args[0]
			}
			comments, err := a.svc.GetComments(cmd.Context(), drawingID)
			if err != nil {
				return err
			}
			for _, c := range comments {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s: %s\n", c.DrawingID, identity.DisplayName(c.UserID), c.Content)
			}
			return nil
		},
	}
}

func nameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "name [user-id]",
		Short: "Print the display name for a user id",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), identity.DisplayName(args[0]))
		},
	}
}

func (a *app) sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove likes and comments of deleted drawings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.svc.SweepOrphans(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d likes, %d comments\n", report.LikesRemoved, report.CommentsRemoved)
			return nil
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all drawings, likes and comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			if err := a.svc.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "gallery cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}
