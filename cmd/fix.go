package cmd

import (
	"github.com/spf13/cobra"
	"mockcheck.dev/pkg/mockcheck/internal/domain"
)

var (
	dryRunFlag bool
	anchorFlag string
	stubFlag   string
)

// fixCmd represents the fix command.
var fixCmd = newFixCmd()

func newFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [root]",
		Short: "Insert missing members into incomplete mocks",
		Long:  fixLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			return workflow.Fix(cmd.Context(), domain.FixArgs{
				ScanArgs: scanArgsFromConfig(args),
				DryRun:   dryRunFlag,
			})
		},
	}

	configureFixFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(fixCmd)
}

func configureFixFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&dryRunFlag, dryRunFlagName, false, "print a unified diff instead of writing files")

	cmd.Flags().StringVar(&anchorFlag, anchorFlagName, defaultAnchor, "member after which missing members are inserted")
	bindFlagToConfig(cmd.Flags().Lookup(anchorFlagName), anchorConfigKey)

	cmd.Flags().StringVar(&stubFlag, stubFlagName, defaultStub, "expression used as the value of inserted members")
	bindFlagToConfig(cmd.Flags().Lookup(stubFlagName), stubConfigKey)
}
