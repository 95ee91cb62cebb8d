package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version will be set by the main package
	Version = "dev"
)

var versionRemote bool

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sorokit",
	Long: `Display the current version of the sorokit CLI tool.

With --remote, also query the configured RPC server for its release and
protocol versions and check that this client supports it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("sorokit version %s\n", Version)
		if !versionRemote {
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := rpcClient(cfg)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		info, err := client.GetVersionInfo(ctx)
		if err != nil {
			return fmt.Errorf("querying server version: %w", err)
		}
		fmt.Printf("server version %s (protocol %d)\n", info.Version, info.ProtocolVersion)

		if err := client.CheckServerVersion(ctx, ""); err != nil {
			fmt.Printf("%s %v\n", color.YellowString("!"), err)
			return nil
		}
		fmt.Printf("%s server release is supported\n", color.GreenString("✓"))
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionRemote, "remote", false, "Also report the RPC server's version")
	rootCmd.AddCommand(versionCmd)
}
