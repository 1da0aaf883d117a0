package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gnana997/stylebind/pkg/util"
)

// app holds state shared by every command.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool

	cfg    *ProjectConfig // nil when no config file exists
	logger *slog.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// rootCommand creates the root cobra command with all subcommands registered.
func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "stylebind",
		Short: "stylebind rebinds legacy paint styles to color variables",
		Long: `stylebind walks a design document and rebinds every fill and stroke that uses
a "M3/sys/light/..." paint style to the matching "Schemes/..." color variable.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetVersionTemplate("stylebind {{.Version}}\n")

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "path to the project config file")

	root.AddCommand(a.mapCommand())
	root.AddCommand(a.countCommand())
	root.AddCommand(a.convertCommand())
	root.AddCommand(a.variablesCommand())
	root.AddCommand(a.uiCommand())
	root.AddCommand(a.serveCommand())
	root.AddCommand(a.watchCommand())
	root.AddCommand(a.setupCommand())
	root.AddCommand(a.versionCommand())

	return root
}

// setup loads the project config and builds the stderr logger.
func (a *app) setup() error {
	cfg, err := loadProjectConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := util.DefaultLoggerConfig()
	logCfg.Level = cfg.logLevel(a.verbose)
	logCfg.Output = a.stderr
	a.logger = util.NewLogger(logCfg)
	return nil
}
