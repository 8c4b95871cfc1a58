/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/longkey1/ragchat/internal/tui"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat",
	Long: `Open the interactive chat screen.

The current session is restored from local storage and its history is loaded
from the backend. Answers are typed out as they stream in.

Keys:
  enter    send the question
  ctrl+n   start a new chat (forgets the current session)
  ctrl+b   show or hide the sidebar
  ctrl+y   copy the last answer to the clipboard
  pgup     scroll up
  pgdown   scroll down
  esc      quit

Logs are written to the log file (log_file, default next to the session store).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) || !isatty.IsTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("chat needs a terminal; use 'ragchat ask' for scripted use")
		}

		env, err := newEnvironment(true)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		model := tui.New(ctx, env.app, tui.Options{
			RevealInterval: env.cfg.RevealInterval(),
			MarkdownStyle:  env.cfg.MarkdownStyle,
			Logger:         env.logger,
		})

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running chat: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
