package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mootosamy/backend-chronopost/internal/modules/auth"
)

var (
	createEmail    string
	createPassword string
	createAdmin    bool
)

var createCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create an active operator",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

var disableCmd = &cobra.Command{
	Use:   "disable <username>",
	Short: "Deactivate an operator; existing tokens stop working",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setActive(cmd, args[0], false)
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable <username>",
	Short: "Re-activate a disabled operator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setActive(cmd, args[0], true)
	},
}

func init() {
	createCmd.Flags().StringVar(&createEmail, "email", "", "operator email (required)")
	createCmd.Flags().StringVar(&createPassword, "password", "", "initial password (required)")
	createCmd.Flags().BoolVar(&createAdmin, "admin", true, "grant admin rights")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")
}

func runCreate(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}

	op, err := svc.Register(cmd.Context(), auth.RegisterInput{
		Username: args[0],
		Email:    createEmail,
		Password: createPassword,
		IsAdmin:  createAdmin,
	})
	if errors.Is(err, auth.ErrDuplicate) {
		return fmt.Errorf("operator %q or email %q already exists", args[0], createEmail)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created operator %s (id %s, admin=%t)\n", op.Username, op.ID, op.IsAdmin)
	return nil
}

func setActive(cmd *cobra.Command, username string, active bool) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	if err := svc.SetActive(cmd.Context(), username, active); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return fmt.Errorf("no operator named %q", username)
		}
		return err
	}

	state := "disabled"
	if active {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "operator %s %s\n", username, state)
	return nil
}
