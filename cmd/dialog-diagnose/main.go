// Command dialog-diagnose is an offline inspector: it loads a CSV of
// artifacts into an in-memory index and lets you browse the resulting
// facts and the prolly tree shape they built, without touching a real
// replica or network.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dialogdb/dialog/pkg/log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dialog-diagnose <csv>",
	Short: "Browse a CSV of artifacts as facts and as a prolly tree",
	Long: `dialog-diagnose reads a CSV of artifacts (the,of,is,cause columns),
commits them into an in-memory triple index, and opens a terminal UI
with two tabs: Facts (a scrollable table of decoded artifacts) and
Tree (an indented render of the entity-ordered index's node shape).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startOnTree, _ := cmd.Flags().GetBool("tree")

		log.Init(log.Config{Level: log.ErrorLevel, Output: os.Stderr})

		loaded, err := loadCSV(args[0])
		if err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}

		m := newModel(loaded)
		if startOnTree {
			m.activeTab = tabTree
		}

		p := tea.NewProgram(m)
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run ui: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().Bool("tree", false, "Start on the Tree tab instead of Facts")
}
