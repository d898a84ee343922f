package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"mockcheck.dev/pkg/mockcheck/internal/domain"
)

var strictFlag bool

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Report test files with incomplete mocks",
		Long:  scanLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			return workflow.Check(cmd.Context(), domain.CheckArgs{
				ScanArgs: scanArgsFromConfig(args),
				Strict:   viper.GetBool(strictConfigKey),
			})
		},
	}

	configureScanFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func configureScanFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&strictFlag, strictFlagName, defaultStrict, "exit with an error when any incomplete mock is found")
	bindFlagToConfig(cmd.Flags().Lookup(strictFlagName), strictConfigKey)
}
