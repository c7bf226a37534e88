package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/discover"
)

var listToolsCmd = &cobra.Command{
	Use:   "list-tools",
	Short: "List the external scanning tools and their availability",
	RunE:  runListTools,
}

func init() {
	rootCmd.AddCommand(listToolsCmd)
}

func runListTools(cmd *cobra.Command, args []string) error {
	result := discover.Probe()
	w := cmd.OutOrStdout()

	if strings.ToLower(flagFormat) == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "NAME\tCATEGORY\tAVAILABLE\tVERSION\tHINT\n")
	fmt.Fprintf(tw, "----\t--------\t---------\t-------\t----\n")
	for _, t := range result.Tools {
		available := "no"
		hint := t.InstallHint
		if t.Available {
			available = "yes"
			hint = ""
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.Name, t.Category, available, t.Version, hint)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d/%d tools available\n", result.Available(), len(result.Tools))

	return nil
}
