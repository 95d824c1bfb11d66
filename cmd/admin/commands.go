package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"socialvibe/internal/bootstrap"
	"socialvibe/internal/models"

	"github.com/spf13/cobra"
)

type opener func(ctx context.Context) (*bootstrap.Runtime, error)

// withRuntime opens the runtime for one command and closes it afterwards.
func withRuntime(open opener, fn func(cmd *cobra.Command, rt *bootstrap.Runtime, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close(cmd.Context()) }()
		return fn(cmd, rt, args)
	}
}

// resolveUser accepts either a user id or a username.
func resolveUser(ctx context.Context, rt *bootstrap.Runtime, ref string) (*models.User, error) {
	u, err := rt.Users.GetByID(ctx, ref)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	return rt.Users.GetByUsername(ctx, ref)
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "Moderate a socialvibe store",
		SilenceUsage: true,
	}

	root.AddCommand(
		banCmd(open, true),
		banCmd(open, false),
		removeCmd(open),
		roleCmd(open, "promote", models.RoleAdmin),
		roleCmd(open, "demote", models.RoleUser),
		deletePostCmd(open),
		statsCmd(open),
		reportsCmd(open),
		recountCmd(open),
	)
	return root
}

func banCmd(open opener, banned bool) *cobra.Command {
	use, short := "ban", "Ban a user"
	if !banned {
		use, short = "unban", "Lift a user's ban"
	}
	return &cobra.Command{
		Use:   use + " <user>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(open, func(cmd *cobra.Command, rt *bootstrap.Runtime, args []string) error {
			u, err := resolveUser(cmd.Context(), rt, args[0])
			if err != nil {
				return err
			}
			if _, err := rt.Moderation.SetBanned(cmd.Context(), u.ID, banned); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: banned=%v\n", u.Username, banned)
			return nil
		}),
	}
}

func removeCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <user>",
		Short: "Delete a user and every post they authored",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(open, func(cmd *cobra.Command, rt *bootstrap.Runtime, args []string) error {
			u, err := resolveUser(cmd.Context(), rt, args[0])
			if err != nil {
				return err
			}
			removed, err := rt.Moderation.RemoveUser(cmd.Context(), u.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s and %d posts\n", u.Username, removed)
			return nil
		}),
	}
}

func roleCmd(open opener, use string, role models.Role) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user>",
		Short: fmt.Sprintf("Set a user's role to %s", role),
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(open, func(cmd *cobra.Command, rt *bootstrap.Runtime, args []string) error {
			u, err := resolveUser(cmd.Context(), rt, args[0])
			if err != nil {
				return err
			}
			if u.Role == role {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already has role %s\n", u.Username, role)
				return nil
			}
			if _, err := rt.Users.SetRole(cmd.Context(), u.ID, role); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: role=%s\n", u.Username, role)
			return nil
		}),
	}
}

func deletePostCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-post <post-id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(open, func(cmd *cobra.Command, rt *bootstrap.Runtime, args []string) error {
			if err := rt.Moderation.DeletePost(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted post %s\n", args[0])
			return nil
		}),
	}
}

func statsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard counters",
		Args:  cobra.NoArgs,
		RunE: withRuntime(open, func(cmd *cobra.Command, rt *bootstrap.Runtime, _ []string) error {
			stats, err := rt.Moderation.Stats(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "users\t%d\n", stats.TotalUsers)
			fmt.Fprintf(w, "posts\t%d\n", stats.TotalPosts)
			fmt.Fprintf(w, "reports\t%d\n", stats.TotalReports)
			fmt.Fprintf(w, "banned\t%d\n", stats.BannedUsers)
			return w.Flush()
		}),
	}
}

func reportsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List reported posts, newest first",
		Args:  cobra.NoArgs,
		RunE: withRuntime(open, func(cmd *cobra.Command, rt *bootstrap.Runtime, _ []string) error {
			views, err := rt.Moderation.Reports(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "REPORT\tPOST\tAUTHOR\tREASON")
			for _, v := range views {
				author := "(deleted)"
				if v.Post != nil {
					author = v.Post.Author.Username
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.ID, v.PostID, author, v.Reason)
			}
			return w.Flush()
		}),
	}
}

func recountCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "recount [user]",
		Short: "Reconcile post counters with the posts collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: withRuntime(open, func(cmd *cobra.Command, rt *bootstrap.Runtime, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				u, err := resolveUser(ctx, rt, args[0])
				if err != nil {
					return err
				}
				n, err := rt.Moderation.RecountPosts(ctx, u.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d posts\n", u.Username, n)
				return nil
			}

			counts, err := rt.Moderation.RecountAll(ctx)
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(counts))
			for id := range counts {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d posts\n", id, counts[id])
			}
			return nil
		}),
	}
}
