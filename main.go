// reclamos receives customer complaints over HTTP, keeps them in a durable
// collection and delivers the latest one through a Telegram bot.
//
// Usage:
//
//	reclamos serve
//	reclamos latest [--detail]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "reclamos",
	Short: "Complaint intake service with a Telegram bot",
	Long: "reclamos accepts complaints on an HTTP API, stores them in a JSON collection\n" +
		"(file or Redis) and answers the bot keyword with the latest one.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(latestCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
