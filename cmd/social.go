package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moasaja/moasaja/api"
)

var (
	replyTo string
	rating  int
)

var commentsCmd = &cobra.Command{
	Use:     "comments",
	Aliases: []string{"comment"},
	Short:   "Read and write comments on a post",
}

var commentsListCmd = &cobra.Command{
	Use:   "list <post-id>",
	Short: "List comments on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		comments, err := client.ListComments(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(comments, func() string { return formatter.FormatComments(comments) })
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <post-id> <text>...",
	Short: "Comment on a post",
	Example: `  moasaja comments add 12 "Still open?"
  moasaja comments add 12 --reply-to 40 "Yes, two spots left"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCommentsAdd,
}

var commentsDeleteCmd = &cobra.Command{
	Use:   "delete <comment-id>",
	Short: "Delete one of your comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		res, err := client.DeleteComment(cmd.Context(), id)
		if err != nil {
			return err
		}
		return success(res, "Deleted comment "+id.String())
	},
}

var reviewsCmd = &cobra.Command{
	Use:     "reviews",
	Aliases: []string{"review"},
	Short:   "Write and read reviews",
}

var reviewsWriteCmd = &cobra.Command{
	Use:     "write <post-id> [text]...",
	Short:   "Review a finished post",
	Example: `  moasaja reviews write 12 --rating 5 "Quick and friendly"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runReviewsWrite,
}

var reviewsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List reviews you received",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reviews, err := client.MyReviews(cmd.Context())
		if err != nil {
			return err
		}
		return render(reviews, func() string { return formatter.FormatReviews(reviews) })
	},
}

var reviewsUserCmd = &cobra.Command{
	Use:   "user <user-id>",
	Short: "List reviews of another user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		reviews, err := client.UserReviews(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(reviews, func() string { return formatter.FormatReviews(reviews) })
	},
}

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Manage your wishlist",
}

var wishlistAddCmd = &cobra.Command{
	Use:   "add <post-id>",
	Short: "Add a post to your wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		res, err := client.AddToWishlist(cmd.Context(), id)
		if err != nil {
			return err
		}
		return success(res, "Added post "+id.String()+" to wishlist")
	},
}

var wishlistRemoveCmd = &cobra.Command{
	Use:   "remove <post-id>",
	Short: "Remove a post from your wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		res, err := client.RemoveFromWishlist(cmd.Context(), id)
		if err != nil {
			return err
		}
		return success(res, "Removed post "+id.String()+" from wishlist")
	},
}

var wishlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wishlisted posts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		posts, err := client.MyWishlist(cmd.Context())
		if err != nil {
			return err
		}
		return render(posts, func() string { return formatter.FormatPostList(posts, len(posts)) })
	},
}

func init() {
	commentsAddCmd.Flags().StringVar(&replyTo, "reply-to", "", "reply to this comment id")
	reviewsWriteCmd.Flags().IntVarP(&rating, "rating", "r", 0, "rating from 1 to 5")
	_ = reviewsWriteCmd.MarkFlagRequired("rating")

	commentsCmd.AddCommand(commentsListCmd, commentsAddCmd, commentsDeleteCmd)
	reviewsCmd.AddCommand(reviewsWriteCmd, reviewsMineCmd, reviewsUserCmd)
	wishlistCmd.AddCommand(wishlistAddCmd, wishlistRemoveCmd, wishlistListCmd)
	rootCmd.AddCommand(commentsCmd, reviewsCmd, wishlistCmd)
}

func runCommentsAdd(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	content := strings.TrimSpace(strings.Join(args[1:], " "))
	if content == "" {
		return fmt.Errorf("comment must not be empty")
	}

	var parent *api.ID
	if replyTo != "" {
		p, err := parseID(replyTo)
		if err != nil {
			return fmt.Errorf("invalid --reply-to: %w", err)
		}
		parent = &p
	}

	comment, err := client.CreateComment(cmd.Context(), id, content, parent)
	if err != nil {
		return err
	}
	if jsonOutput {
		return render(comment, nil)
	}
	notifier.Success("Comment posted")
	return nil
}

func runReviewsWrite(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	review, err := client.CreateReview(cmd.Context(), id, rating, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if jsonOutput {
		return render(review, nil)
	}
	notifier.Success(fmt.Sprintf("Reviewed post %s", id))
	return nil
}
