package commands

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kingrea/thoughtline/internal/config"
)

var projectDir string

// NewRootCmd builds the command tree. The root command itself runs the TUI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "thoughtline",
		Short: "Watch agent transcripts with inline reasoning translation",
		Long: `thoughtline listens for transcript events posted by coding agents and
renders one tab per thread. Reasoning blocks can be translated inline; each
translation appears directly under its source, before anything that followed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveProjectDir()
			if err != nil {
				return err
			}
			projectDir = dir
			_ = godotenv.Load(config.EnvFile(projectDir))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&projectDir, "project", "p", "", "project directory (default: current directory)")

	root.AddCommand(NewConfigCmd())
	root.AddCommand(NewTranslateCmd())
	root.AddCommand(NewProvidersCmd())
	root.AddCommand(NewVersionCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func resolveProjectDir() (string, error) {
	if projectDir != "" {
		return filepath.Abs(projectDir)
	}
	return os.Getwd()
}

func loadConfig() (*config.Config, error) {
	return config.NewConfig(projectDir)
}
