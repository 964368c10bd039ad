package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aduanatrack/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aduanatrack",
		Short: "AduanaTrack API Server",
		Long:  `AduanaTrack tracks maintenance tasks for customs-facility infrastructure: scheduling, assignment, invoice attachments and optional AI maintenance advice.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
