package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardwall/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cardwall",
		Short: "Card board API server",
		Long:  `Backend for the visual card board: whole-board persistence, contacts, color legends, documents and offline map tiles.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
