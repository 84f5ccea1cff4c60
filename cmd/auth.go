package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moasaja/moasaja/api"
)

var (
	email       string
	password    string
	nickname    string
	phoneNumber string
	imageURL    string
	setFields   []string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and keep the session token",
	Long:  `Sign in with email and password. Missing values are prompted for.`,
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.Logout(); err != nil {
			return fmt.Errorf("failed to log out: %w", err)
		}
		notifier.Success("Logged out")
		return nil
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE:  runMe,
}

var updateMeCmd = &cobra.Command{
	Use:   "update-me",
	Short: "Update your profile",
	Example: `  moasaja update-me --nickname kim
  moasaja update-me --set profile_image_url=null`,
	Args: cobra.NoArgs,
	RunE: runUpdateMe,
}

func init() {
	loginCmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")

	signupCmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	signupCmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	signupCmd.Flags().StringVarP(&nickname, "nickname", "n", "", "display name")
	signupCmd.Flags().StringVar(&phoneNumber, "phone", "", "phone number")

	updateMeCmd.Flags().StringVarP(&nickname, "nickname", "n", "", "new display name")
	updateMeCmd.Flags().StringVar(&phoneNumber, "phone", "", "new phone number")
	updateMeCmd.Flags().StringVar(&imageURL, "image", "", "new profile image URL")
	updateMeCmd.Flags().StringArrayVar(&setFields, "set", nil, "raw field as key=value (repeatable)")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, meCmd, updateMeCmd)
}

// credentials prompts for whatever wasn't given on the command line
func credentials() error {
	var err error
	if email == "" {
		if email, err = prompt(stdin, "Email: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = readPassword(stdin, "Password: "); err != nil {
			return err
		}
	}
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	if err := credentials(); err != nil {
		return err
	}

	res, err := client.Login(cmd.Context(), email, password)
	if errors.Is(err, api.ErrNoAccessToken) {
		return fmt.Errorf("login succeeded but the server sent no token")
	}
	if err != nil {
		return err
	}

	logger.Info().Str("user_id", res.UserID.String()).Msg("Logged in")

	name := res.Nickname
	if name == "" {
		name = email
	}
	notifier.Success(fmt.Sprintf("Logged in as %s", name))
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	if err := credentials(); err != nil {
		return err
	}
	if nickname == "" {
		var err error
		if nickname, err = prompt(stdin, "Nickname: "); err != nil {
			return err
		}
	}

	res, err := client.Signup(cmd.Context(), email, password, nickname, phoneNumber)
	if err != nil {
		return err
	}

	if res.AccessToken == "" {
		notifier.Success("Account created. Run 'moasaja login' to sign in.")
		return nil
	}
	notifier.Success(fmt.Sprintf("Account created, logged in as %s", nickname))
	return nil
}

func runMe(cmd *cobra.Command, args []string) error {
	user, err := client.Me(cmd.Context())
	if errors.Is(err, api.ErrNotLoggedIn) {
		return fmt.Errorf("not logged in, run 'moasaja login' first")
	}
	if err != nil {
		return err
	}
	return render(user, func() string { return formatter.FormatUser(user) })
}

func runUpdateMe(cmd *cobra.Command, args []string) error {
	patch, err := parseFields(setFields)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("nickname") {
		patch["nickname"] = nickname
	}
	if cmd.Flags().Changed("phone") {
		patch["phone_number"] = phoneNumber
	}
	if cmd.Flags().Changed("image") {
		patch["profile_image_url"] = imageURL
	}
	if len(patch) == 0 {
		return fmt.Errorf("nothing to update")
	}

	user, err := client.UpdateMe(cmd.Context(), patch)
	if err != nil {
		return err
	}
	return render(user, func() string { return formatter.FormatUser(user) })
}
