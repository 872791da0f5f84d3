package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the schedchat application
var rootCmd = &cobra.Command{
	Use:   "schedchat",
	Short: "Conversational scheduling assistant for Google Calendar",
	Long: `schedchat is a conversational scheduling assistant. It sends your
messages, enriched with your upcoming Google Calendar events, to a
completion endpoint and applies the calendar changes the model proposes.

It can run as:
  - An interactive chat session in the terminal (default)
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "schedchat version %s\n" .Version}}`)

	// If no subcommand is provided, start an interactive chat by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "chat")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
