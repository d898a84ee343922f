// Package cmd provides the root command and CLI setup for mockcheck.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"mockcheck.dev/pkg/mockcheck/internal/adapter"
	"mockcheck.dev/pkg/mockcheck/internal/controller"
	"mockcheck.dev/pkg/mockcheck/internal/domain"
	m "mockcheck.dev/pkg/mockcheck/internal/model"
)

var fsAdapter adapter.SourceFSAdapter

var (
	moduleFlag   string
	calleeFlags  []string
	memberFlags  []string
	accessorFlag string
	policyFlag   string
	extFlags     []string
	excludeFlags []string
	parallelFlag int
	formatFlag   string
	logFileFlag  string
	logLevelFlag string
	verboseFlag  bool
)

func init() {
	fsAdapter = adapter.NewLocalSourceFSAdapter()
}

const rootHelp = `The root directory defaults to "tests" and may be given as the
first argument. Candidate files are matched by extension (--ext) and
filtered with doublestar globs relative to the root (--exclude).`

const rootLongDescription = `Mockcheck finds test files that mock a module but leave out members the
code under test relies on, such as a singleton mock that forgets
addChangeListener.

Policies:
  - substring   any occurrence of the member anywhere in the file counts
  - singleton   like substring, but only files whose mock exposes the accessor
  - scoped      the member must appear inside the mock call itself (default)

` + rootHelp

const scanLongDescription = `Scan the test tree and print every file with an incomplete mock, one
path per line. A summary and read errors go to stderr.

` + rootHelp

const listLongDescription = `List the files that mock the target module and how many mock
declarations each contains.

` + rootHelp

const fixLongDescription = `Insert the missing members into every incomplete mock, right after the
anchor member (getState by default). Mocks without the anchor are left
unchanged and reported.

` + rootHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mockcheck",
		Short:        "Find incomplete module mocks in test files",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), logLevelFromConfig())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVar(&moduleFlag, moduleFlagName, defaultModule, "module specifier whose mocks are checked")
	bindFlagToConfig(flags.Lookup(moduleFlagName), moduleConfigKey)

	flags.StringSliceVar(&calleeFlags, calleeFlagName, defaultCallees, "functions that declare a module mock")
	bindFlagToConfig(flags.Lookup(calleeFlagName), calleesConfigKey)

	flags.StringSliceVar(&memberFlags, memberFlagName, defaultMembers, "members every mock must define")
	bindFlagToConfig(flags.Lookup(memberFlagName), membersConfigKey)

	flags.StringVar(&accessorFlag, accessorFlagName, defaultAccessor, "singleton accessor used by the singleton policy")
	bindFlagToConfig(flags.Lookup(accessorFlagName), accessorConfigKey)

	flags.StringVar(&policyFlag, policyFlagName, defaultPolicy, "detection policy: substring, singleton or scoped")
	bindFlagToConfig(flags.Lookup(policyFlagName), policyConfigKey)

	flags.StringSliceVar(&extFlags, extFlagName, defaultExtensions, "file name suffixes of candidate files")
	bindFlagToConfig(flags.Lookup(extFlagName), extensionsConfigKey)

	flags.StringArrayVarP(&excludeFlags, excludeFlagName, "x", nil, "exclude files matching a glob relative to the root (can be repeated)")
	bindFlagToConfig(flags.Lookup(excludeFlagName), excludeConfigKey)

	flags.IntVarP(&parallelFlag, parallelFlagName, "p", defaultParallel, "number of files checked in parallel")
	bindFlagToConfig(flags.Lookup(parallelFlagName), parallelConfigKey)

	flags.StringVarP(&formatFlag, formatFlagName, "f", defaultFormat, "output format: text, table, json or yaml")
	bindFlagToConfig(flags.Lookup(formatFlagName), formatConfigKey)

	flags.StringVar(&logFileFlag, logFileFlagName, defaultLogFilename, "log file path")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)

	flags.StringVar(&logLevelFlag, logLevelFlagName, defaultLogLevel, "log level: debug, info, warn or error, with an optional offset")
	bindFlagToConfig(flags.Lookup(logLevelFlagName), logLevelKey)

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", defaultLogVerbose, "log at debug level, overriding --log-level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// ruleFromConfig assembles the detection rule from flags, env and config.
func ruleFromConfig() (m.Rule, error) {
	policy, err := m.ParsePolicy(viper.GetString(policyConfigKey))
	if err != nil {
		return m.Rule{}, err
	}

	return m.Rule{
		Module:   viper.GetString(moduleConfigKey),
		Callees:  configStringSlice(calleesConfigKey),
		Required: configStringSlice(membersConfigKey),
		Accessor: viper.GetString(accessorConfigKey),
		Policy:   policy,
	}, nil
}

// scanArgsFromConfig resolves the scan root from the first argument or the root key.
func scanArgsFromConfig(args []string) domain.ScanArgs {
	root := viper.GetString(rootConfigKey)
	if len(args) > 0 {
		root = args[0]
	}

	return domain.ScanArgs{
		Root:       m.Path(root),
		Extensions: configStringSlice(extensionsConfigKey),
		Exclude:    viper.GetStringSlice(excludeConfigKey),
		Threads:    viper.GetInt(parallelConfigKey),
	}
}

// newWorkflow wires the detector, scanner, fixer and UI for one command run.
func newWorkflow(cmd *cobra.Command) (domain.Workflow, error) {
	rule, err := ruleFromConfig()
	if err != nil {
		return nil, err
	}

	detector, err := domain.NewDetector(rule)
	if err != nil {
		return nil, err
	}

	fixer, err := domain.NewFixer(detector, viper.GetString(anchorConfigKey), viper.GetString(stubConfigKey))
	if err != nil {
		return nil, err
	}

	format, err := controller.ParseFormat(viper.GetString(formatConfigKey))
	if err != nil {
		return nil, err
	}

	ui := controller.NewUI(cmd, controller.IsTTY(os.Stdout), controller.WithFormat(format))

	return domain.NewWorkflow(fsAdapter, ui, domain.NewScanner(fsAdapter, detector), fixer), nil
}
