package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/kingrea/thoughtline/internal/translation"
)

var (
	providerCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	providerBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

// NewProvidersCmd lists the supported translation providers.
func NewProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List translation providers",
		Long:  `List every translation provider with its default model. The configured provider is marked with *.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			current := translation.SettingsFromConfig(cfg).Provider

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(providerBorderStyle).
				StyleFunc(func(row, col int) lipgloss.Style { return providerCellStyle }).
				Headers("", "ID", "NAME", "MODEL", "KEY")
			for _, def := range translation.Providers() {
				mark := ""
				if def.ID == current {
					mark = "*"
				}
				key := "required"
				if !def.RequiresAPIKey {
					key = "none"
				}
				t.Row(mark, string(def.ID), def.Name, def.DefaultModel, key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}
