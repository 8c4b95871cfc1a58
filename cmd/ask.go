/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/longkey1/ragchat/internal/ragchat"
	"github.com/longkey1/ragchat/internal/ragchat/transcript"
	"github.com/longkey1/ragchat/internal/tui"
)

var askRender bool

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question and print the answer",
	Long: `Ask one question in the current session and print the answer as it streams in.

If no question is provided as an argument, it reads from stdin.
With --render the complete answer is printed as formatted Markdown instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var question string
		if len(args) > 0 {
			question = strings.Join(args, " ")
		} else {
			input, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			question = string(input)
		}
		question = strings.TrimSpace(question)
		if question == "" {
			return fmt.Errorf("no question given")
		}

		env, err := newEnvironment(false)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		if _, err := env.app.EnsureSession(); err != nil {
			return err
		}

		store := env.app.Transcript()
		answerIndex := len(store.Snapshot().Messages) + 1
		done := make(chan struct{})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer close(done)
			return env.app.Send(gctx, question)
		})
		if !askRender {
			g.Go(func() error {
				return printAnswer(os.Stdout, store, answerIndex, done)
			})
		}
		sendErr := g.Wait()

		if askRender {
			answer := answerAt(store.Snapshot(), answerIndex)
			style := env.cfg.MarkdownStyle
			if !isatty.IsTerminal(os.Stdout.Fd()) {
				style = "notty"
			}
			r, err := tui.NewRenderer(style, 100)
			if err != nil {
				return err
			}
			out, err := r.Render(answer)
			if err != nil {
				return fmt.Errorf("rendering answer: %w", err)
			}
			fmt.Print(out)
		}

		if sendErr != nil {
			fmt.Fprintln(os.Stderr, ragchat.StreamErrorText)
			return sendErr
		}
		return nil
	},
}

// printAnswer writes the answer at index as it grows until done is closed.
func printAnswer(w io.Writer, store *transcript.Store, index int, done <-chan struct{}) error {
	printed := 0
	flush := func() error {
		answer := answerAt(store.Snapshot(), index)
		if len(answer) <= printed {
			return nil
		}
		if _, err := io.WriteString(w, answer[printed:]); err != nil {
			return fmt.Errorf("writing answer: %w", err)
		}
		printed = len(answer)
		return nil
	}

	for {
		select {
		case <-store.Changed():
			if err := flush(); err != nil {
				return err
			}
		case <-done:
			if err := flush(); err != nil {
				return err
			}
			if printed > 0 {
				_, _ = io.WriteString(w, "\n")
			}
			return nil
		}
	}
}

func answerAt(state transcript.State, index int) string {
	if index < len(state.Messages) && state.Messages[index].IsAssistant() {
		return state.Messages[index].Content
	}
	return ""
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().BoolVarP(&askRender, "render", "r", false, "Render the complete answer as Markdown")
}
