package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/longkey1/ragchat/internal/ragchat"
)

var (
	sessionForce bool
	historyJSON  bool
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the chat session",
	Long: `Manage the chat session kept in local storage.

The same session is shared by 'ragchat chat' and 'ragchat ask'.`,
}

// sessionShowCmd represents the session show command
var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current session ID",
	Long:  `Print the current session ID, creating one if none is stored yet.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnvironment(false)
		if err != nil {
			return err
		}
		defer env.Close()

		id, err := env.app.EnsureSession()
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

// sessionNewCmd represents the session new command
var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new session",
	Long: `Forget the current session and start a new one.

The backend is asked to delete the old session. If that fails the new session
is started anyway.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnvironment(false)
		if err != nil {
			return err
		}
		defer env.Close()

		if !sessionForce {
			fmt.Print("Are you sure you want to start a new session? The current conversation will be lost. [y/N]: ")
			var response string
			fmt.Scanln(&response)

			if response != "y" && response != "Y" {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		id, err := env.app.NewChat(cmd.Context())
		if err != nil {
			return fmt.Errorf("starting new session: %w", err)
		}
		fmt.Printf("Started session %s.\n", ragchat.ShortID(id))
		return nil
	},
}

// sessionHistoryCmd represents the session history command
var sessionHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the conversation of the current session",
	Long:  `Load the conversation of the current session from the backend and print it.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnvironment(false)
		if err != nil {
			return err
		}
		defer env.Close()

		messages, err := env.app.LoadHistory(cmd.Context())
		if err != nil {
			return err
		}

		if historyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(messages)
		}

		if len(messages) == 0 {
			fmt.Println("No messages in this session.")
			return nil
		}

		fmt.Printf("Session: %s\n", env.app.SessionID())
		fmt.Println("Message History:")
		fmt.Println("----------------")
		for i, msg := range messages {
			label := "You"
			if msg.IsAssistant() {
				label = "Assistant"
			}
			fmt.Printf("\n[%d] %s:\n%s\n", i+1, label, msg.Content)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionNewCmd)
	sessionCmd.AddCommand(sessionHistoryCmd)

	sessionNewCmd.Flags().BoolVarP(&sessionForce, "force", "f", false, "Do not ask for confirmation")
	sessionHistoryCmd.Flags().BoolVar(&historyJSON, "json", false, "Print messages as JSON")
}
