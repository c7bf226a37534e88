package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/update"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

const releaseRepo = "ShadowStrikeHQ/vao-vulnexposedsecrets"

var flagCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vao %s (commit: %s)\n", Version, Commit)

		if !flagCheck {
			return
		}
		r := update.CheckLatest(Version, releaseRepo)
		switch {
		case r == nil:
			fmt.Println("could not check for updates")
		case r.NeedsUpdate():
			fmt.Printf("update available: %s (installed %s)\n  %s\n", r.Latest, r.Current, r.UpdateURL)
		default:
			fmt.Println("up to date")
		}
	},
}

func init() {
	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}
