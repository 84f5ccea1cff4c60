package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// releaseRepository hosts the release binaries
const releaseRepository = "moasaja/moasaja"

var (
	version   = "dev"
	buildTime = "unknown"

	checkOnly bool
)

// SetVersion records build information for the version and self-update commands
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print version information",
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("moasaja %s (built %s, %s/%s)\n", version, buildTime, runtime.GOOS, runtime.GOARCH)
	},
}

var selfUpdateCmd = &cobra.Command{
	Use:               "self-update",
	Short:             "Update moasaja to the latest release",
	Args:              cobra.NoArgs,
	PersistentPreRunE: initializeConfig,
	RunE:              runSelfUpdate,
}

func init() {
	selfUpdateCmd.Flags().BoolVar(&checkOnly, "check", false, "only report whether an update is available")
	rootCmd.AddCommand(versionCmd, selfUpdateCmd)
}

// newerRelease reports whether latest is a newer version than current
func newerRelease(current, latest string) (bool, error) {
	cur, err := semver.ParseTolerant(current)
	if err != nil {
		return false, fmt.Errorf("current version %q is not a release version: %w", current, err)
	}
	lat, err := semver.ParseTolerant(latest)
	if err != nil {
		return false, fmt.Errorf("invalid release version %q: %w", latest, err)
	}
	return lat.GT(cur), nil
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if _, err := semver.ParseTolerant(version); err != nil {
		return fmt.Errorf("self-update is only available for release builds (this is %s)", version)
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(releaseRepository))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	newer, err := newerRelease(version, latest.Version())
	if err != nil {
		return err
	}
	if !newer {
		fmt.Printf("moasaja %s is up to date\n", version)
		return nil
	}

	if checkOnly {
		fmt.Printf("moasaja %s is available (current %s)\n", latest.Version(), version)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	logger.Info().
		Str("from", version).
		Str("to", latest.Version()).
		Str("asset", latest.AssetName).
		Msg("Updating")

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Printf("Updated to moasaja %s\n", latest.Version())
	return nil
}
