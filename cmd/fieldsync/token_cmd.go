package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/atelierppf/fieldsync/internal/credential"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the backend API token",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set <token>",
	Short: "Store the backend API token in the system keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credential.Set(credential.TokenKey, args[0]); err != nil {
			return err
		}
		fmt.Println("token stored")
		return nil
	},
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the backend API token from the system keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credential.Delete(credential.TokenKey); err != nil {
			return err
		}
		fmt.Println("token removed")
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Verify backend connectivity and credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		name, err := a.tasks.ValidateConnection(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("connected as %s\n", name)
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenDeleteCmd)
}
