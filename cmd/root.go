package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "user",
	Short: "User provisioning microservice",
	Long:  `A microservice that provisions user accounts: uniqueness validation, credential derivation, activation emails, and the schema migrations behind them.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
