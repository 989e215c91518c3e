package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/born-ml/seqnn/internal/envconfig"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI builds the root command with every subcommand attached.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "seqnn",
		Short:         "Sequence encoders for token batches",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: envconfig.LogLevel()})
			slog.SetDefault(slog.New(handler))
		},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Print(cmd.UsageString())
		},
	}

	encodeCmd := newEncodeCmd()
	inspectCmd := newInspectCmd()

	envVars := envconfig.AsMap()
	appendEnvDocs(encodeCmd, []envconfig.EnvVar{
		envVars["SEQNN_DEBUG"],
		envVars["SEQNN_NUM_THREADS"],
		envVars["SEQNN_SEED"],
		envVars["SEQNN_TOKENIZER"],
	})
	appendEnvDocs(inspectCmd, []envconfig.EnvVar{envVars["SEQNN_DEBUG"]})

	rootCmd.AddCommand(
		encodeCmd,
		inspectCmd,
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the seqnn version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("seqnn %s\n", version)
		},
	}
}

// openInput returns the named file, or the command's stdin when path is
// empty or "-".
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}

	//nolint:gosec // G304: reading the user's input file is the point of the command
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
