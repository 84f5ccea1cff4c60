package cmd

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/moasaja/moasaja/api"
	"github.com/moasaja/moasaja/filter"
)

// Search origin used when no location is given
const (
	defaultLatitude  = 37.5665
	defaultLongitude = 126.978
	defaultDistance  = 10
)

var (
	// list flags
	filterExpr string
	preset     string
	postType   string
	latitude   float64
	longitude  float64
	distance   float64
	page       int
	limit      int
	anywhere   bool

	// create flags
	createType   string
	title        string
	description  string
	totalPrice   string
	participants int
	pickupAt     string
	endDate      string
	location     string

	noConfirm bool
)

var postsCmd = &cobra.Command{
	Use:     "posts",
	Aliases: []string{"post"},
	Short:   "Browse and manage group-buying posts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts near a location",
	Long: `List posts near a location, optionally narrowed with a filter expression
or a preset from the config file.`,
	Example: `  moasaja posts list --filter 'status:recruiting and spots:>0'
  moasaja posts list --filter 'PerPersonPrice < 10000 and daysUntil(EndDate) <= 2'
  moasaja posts list --preset open`,
	Args: cobra.NoArgs,
	RunE: runPostsList,
}

var postsGetCmd = &cobra.Command{
	Use:   "get <post-id>",
	Short: "Show a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsGet,
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	Long: `Create a group-buying post. The per-person price is derived from the total
price and the number of participants.`,
	Example: `  moasaja posts create --title "Salt bread" --total-price 30000 --participants 4 \
    --pickup "2025-11-05 18:00" --end "2025-11-05 12:00" --location "Student hall"`,
	Args: cobra.NoArgs,
	RunE: runPostsCreate,
}

var postsUpdateCmd = &cobra.Command{
	Use:     "update <post-id>",
	Short:   "Update fields of a post",
	Example: `  moasaja posts update 12 --set title="Salt bread x2" --set target_participants=6`,
	Args:    cobra.ExactArgs(1),
	RunE:    runPostsUpdate,
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsDelete,
}

var joinCmd = &cobra.Command{
	Use:   "join <post-id>",
	Short: "Join a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		res, err := client.Participate(cmd.Context(), id)
		if err != nil {
			return err
		}
		return success(res, "Joined post "+id.String())
	},
}

var leaveCmd = &cobra.Command{
	Use:   "leave <post-id>",
	Short: "Cancel your participation in a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		res, err := client.CancelParticipation(cmd.Context(), id)
		if err != nil {
			return err
		}
		return success(res, "Left post "+id.String())
	},
}

func init() {
	postsListCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	postsListCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	postsListCmd.Flags().StringVarP(&postType, "type", "t", "", "only posts of this type")
	postsListCmd.Flags().Float64Var(&latitude, "lat", defaultLatitude, "search latitude")
	postsListCmd.Flags().Float64Var(&longitude, "lng", defaultLongitude, "search longitude")
	postsListCmd.Flags().Float64Var(&distance, "distance", defaultDistance, "search radius in km")
	postsListCmd.Flags().BoolVar(&anywhere, "anywhere", false, "don't send a search location")
	postsListCmd.Flags().IntVar(&page, "page", 0, "page number")
	postsListCmd.Flags().IntVar(&limit, "limit", 0, "posts per page")

	postsCreateCmd.Flags().StringVar(&title, "title", "", "post title")
	postsCreateCmd.Flags().StringVar(&description, "description", "", "post description")
	postsCreateCmd.Flags().StringVarP(&createType, "type", "t", api.DefaultPostType, "post type")
	postsCreateCmd.Flags().StringVar(&totalPrice, "total-price", "0", "total price in won")
	postsCreateCmd.Flags().IntVar(&participants, "participants", 0, "number of participants wanted")
	postsCreateCmd.Flags().StringVar(&pickupAt, "pickup", "", "pickup date and time")
	postsCreateCmd.Flags().StringVar(&endDate, "end", "", "recruiting end date")
	postsCreateCmd.Flags().StringVar(&location, "location", "", "pickup location")
	postsCreateCmd.Flags().StringVar(&imageURL, "image", "", "main image URL")
	_ = postsCreateCmd.MarkFlagRequired("title")
	_ = postsCreateCmd.MarkFlagRequired("participants")

	postsUpdateCmd.Flags().StringArrayVar(&setFields, "set", nil, "field as key=value (repeatable)")

	postsDeleteCmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "skip confirmation prompt")

	postsCmd.AddCommand(postsListCmd, postsGetCmd, postsCreateCmd, postsUpdateCmd, postsDeleteCmd)
	rootCmd.AddCommand(postsCmd, joinCmd, leaveCmd)
}

// getFilter determines the filter to apply, if any
func getFilter() (filter.CompiledFilter, error) {
	// Priority: command line filter > preset
	if filterExpr != "" {
		f, err := filters.Compile(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return f, nil
	}

	if preset != "" {
		f, ok := filters.GetFilter(preset)
		if !ok {
			return nil, fmt.Errorf("preset '%s' not found in config (available: %v)", preset, filters.ListFilters())
		}
		return f, nil
	}

	return nil, nil
}

func runPostsList(cmd *cobra.Command, args []string) error {
	f, err := getFilter()
	if err != nil {
		return err
	}

	params := api.ListPostsParams{
		Type:     postType,
		Distance: distance,
		Page:     page,
		Limit:    limit,
	}
	if !anywhere {
		params.Latitude = &latitude
		params.Longitude = &longitude
	}

	list, err := client.ListPosts(cmd.Context(), params)
	if err != nil {
		return err
	}

	posts := list.Posts
	if f != nil {
		logger.Debug().Str("filter", f.Expression()).Int("posts", len(posts)).Msg("Applying filter")
		if posts, err = filter.Apply(cmd.Context(), f, posts); err != nil {
			return err
		}
	}

	return render(posts, func() string {
		out := formatter.FormatPostList(posts, list.Total)
		if list.HasMore() {
			out += fmt.Sprintf("More posts available, use --page %d\n", list.Page+1)
		}
		return out
	})
}

func runPostsGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	post, err := client.GetPost(cmd.Context(), id)
	if err != nil {
		return err
	}
	return render(post, func() string { return formatter.FormatPost(post) })
}

func runPostsCreate(cmd *cobra.Command, args []string) error {
	total, err := decimal.NewFromString(totalPrice)
	if err != nil {
		return fmt.Errorf("invalid total price %q: %w", totalPrice, err)
	}

	in := api.PostInput{
		PostType:           createType,
		Title:              title,
		Description:        description,
		TotalPrice:         total,
		TargetParticipants: participants,
		PickupLocationText: location,
	}
	if imageURL != "" {
		in.MainImageURL = &imageURL
	}
	if pickupAt != "" {
		if in.PickupDatetime, err = api.ParseTime(pickupAt); err != nil {
			return fmt.Errorf("invalid pickup time: %w", err)
		}
	}
	if endDate != "" {
		if in.EndDate, err = api.ParseTime(endDate); err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
	}

	post, err := client.CreatePost(cmd.Context(), in)
	if err != nil {
		return err
	}

	if !jsonOutput {
		notifier.Success(fmt.Sprintf("Created post %s", post.PostID))
	}
	return render(post, func() string { return formatter.FormatPost(post) })
}

func runPostsUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	patch, err := parseFields(setFields)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return fmt.Errorf("nothing to update, use --set key=value")
	}

	post, err := client.UpdatePost(cmd.Context(), id, patch)
	if err != nil {
		return err
	}
	return render(post, func() string { return formatter.FormatPost(post) })
}

func runPostsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if !noConfirm && !confirm(stdin, fmt.Sprintf("Delete post %s?", id)) {
		fmt.Fprintln(os.Stderr, "Deletion cancelled.")
		return nil
	}

	res, err := client.DeletePost(cmd.Context(), id)
	if err != nil {
		return err
	}
	return success(res, "Deleted post "+id.String())
}
