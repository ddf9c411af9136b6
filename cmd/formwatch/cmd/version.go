package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iiroan/formwatch/internal/ui"
	"github.com/iiroan/formwatch/internal/version"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information about formwatch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if versionJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		fmt.Println(ui.Banner())
		fmt.Printf("Version:    %s\n", info.Short())
		if info.Commit != "" {
			fmt.Printf("Commit:     %s\n", info.Commit)
		}
		if !info.BuildDate.IsZero() {
			fmt.Printf("Build Date: %s\n", info.BuildDate.Format("2006-01-02 15:04:05 MST"))
		}
		fmt.Printf("Go Version: %s\n", info.GoVersion)
		fmt.Printf("OS/Arch:    %s\n", info.Platform)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version information as JSON")
}
