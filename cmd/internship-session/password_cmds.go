package main

import (
	"context"
	"errors"

	"github.com/jrsteele09/go-internship-session/apiclient"
	"github.com/spf13/cobra"
)

func registerCmd() *cobra.Command {
	var (
		registration apiclient.Registration
		department   string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a student account",
		Long: `Create a student account. The backend e-mails the initial password.

Examples:
  internship-session register -e ana@uni.edu --name Ana --surname Kovač`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if registration.Email == "" || registration.Name == "" || registration.Surname == "" {
				return errors.New("--email, --name and --surname are required")
			}
			if department != "" {
				registration.DepartmentID = &department
			}
			return withSession(cmd.Context(), func(ctx context.Context, a *app) error {
				if err := a.manager.Register(ctx, registration); err != nil {
					return err
				}
				success("account created, check %s for the initial password", registration.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&registration.Email, "email", "e", "", "Account e-mail")
	cmd.Flags().StringVar(&registration.Name, "name", "", "First name")
	cmd.Flags().StringVar(&registration.Surname, "surname", "", "Last name")
	cmd.Flags().StringVar(&department, "department", "", "Department id")

	return cmd
}

func forgotPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			return withSession(cmd.Context(), func(ctx context.Context, a *app) error {
				if err := a.manager.ForgotPassword(ctx, email); err != nil {
					return err
				}
				success("if %s has an account, a reset token is on its way", email)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account e-mail")

	return cmd
}

func resetPasswordCmd() *cobra.Command {
	var reset apiclient.PasswordReset

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with a reset token",
		Long: `Set a new password with the token received by e-mail.

Examples:
  internship-session reset-password -e ana@uni.edu --token 3f2a... --password N3wSecret --confirm N3wSecret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset.Email == "" || reset.Token == "" {
				return errors.New("--email and --token are required")
			}
			return withSession(cmd.Context(), func(ctx context.Context, a *app) error {
				if err := a.manager.ResetPassword(ctx, reset); err != nil {
					return err
				}
				success("password changed, sign in with `internship-session login`")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&reset.Email, "email", "e", "", "Account e-mail")
	cmd.Flags().StringVar(&reset.Token, "token", "", "Reset token from the e-mail")
	cmd.Flags().StringVar(&reset.NewPassword, "password", "", "New password")
	cmd.Flags().StringVar(&reset.ConfirmPassword, "confirm", "", "New password again")

	return cmd
}
