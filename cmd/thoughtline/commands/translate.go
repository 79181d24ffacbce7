package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/thoughtline/internal/translation"
)

// NewTranslateCmd creates the translate command.
func NewTranslateCmd() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text once with the configured provider",
		Long: `Translate the arguments, or stdin when none are given, using the provider
from the project config. Useful for checking an API key before starting the TUI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("nothing to translate")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			settings := translation.SettingsFromConfig(cfg)
			client, err := translation.NewClient(cmd.Context(), settings)
			if err != nil {
				return err
			}
			out, err := client.Translate(cmd.Context(), text, target)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "to", "t", "", "target language (default: translation.target_language)")
	return cmd
}
