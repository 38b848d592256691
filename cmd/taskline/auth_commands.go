package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskline/internal/taskapi"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the task service",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if strings.TrimSpace(email) == "" {
				if email, err = promptLine(cmd, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptLine(cmd, "Password: "); err != nil {
					return err
				}
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if _, err := client.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", strings.TrimSpace(email))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	return cmd
}

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var req taskapi.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if strings.TrimSpace(req.Email) == "" {
				if req.Email, err = promptLine(cmd, "Email: "); err != nil {
					return err
				}
			}
			if req.Password == "" {
				if req.Password, err = promptLine(cmd, "Password: "); err != nil {
					return err
				}
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if _, err := client.Register(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", strings.TrimSpace(req.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "Account email address")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Account password")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := ctx.sessionStore()
			if err != nil {
				return err
			}
			if err := sessions.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and endpoint status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sessions, err := ctx.sessionStore()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Endpoint: %s\n", cfg.API.BaseURL)
			if _, ok := sessions.Token(); ok {
				fmt.Fprintln(out, "Session:  active")
			} else {
				fmt.Fprintln(out, "Session:  none (run `taskline login`)")
			}
			return nil
		},
	}
}
