package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/jrsteele09/go-internship-session/internal/errors"
	"github.com/jrsteele09/go-internship-session/internal/utils"
	"github.com/jrsteele09/go-internship-session/users"
	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var (
		email    string
		password string
		remember bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in with an e-mail and password. The access token is stored and
used by every later command until it expires or the backend rejects it.

Examples:
  internship-session login -e ana@uni.edu
  internship-session login -e ana@uni.edu --remember`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, a *app) error {
				if email == "" {
					if remembered, ok := a.store.RememberedEmail(ctx); ok {
						email = remembered
						info("using remembered e-mail %s", email)
					}
				}
				if email == "" {
					return errors.New("an e-mail is required (--email)")
				}
				if password == "" {
					var err error
					if password, err = readLine(cmd.InOrStdin(), cmd.OutOrStdout(), "Password: "); err != nil {
						return err
					}
				}

				if err := a.manager.Login(ctx, email, password); err != nil {
					if errors.Is(err, apperrors.ErrInvalidCredentials) {
						return errors.New("invalid e-mail or password")
					}
					return err
				}
				if remember {
					a.store.RememberEmail(ctx, email)
				}

				user, _ := a.manager.CurrentUser()
				success("signed in as %s (%s)", user.FullName(), user.Role)
				if user.RequiresProfileCompletion() {
					warn("your profile is incomplete, run `internship-session update`")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account e-mail (default: the remembered one)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when empty)")
	cmd.Flags().BoolVar(&remember, "remember", false, "Remember the e-mail for the next login")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, a *app) error {
				if err := a.manager.Logout(ctx); err != nil {
					return err
				}
				success("signed out")
				return nil
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, a *app) error {
				user, ok := a.manager.CurrentUser()
				if !ok {
					info("not signed in")
					return nil
				}
				printUser(user)
				return nil
			})
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Re-check the stored session against the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, a *app) error {
				if err := a.manager.Verify(ctx); err != nil {
					return fmt.Errorf("session is not valid: %w", err)
				}
				user, _ := a.manager.CurrentUser()
				success("session valid for %s", user.Email)
				return nil
			})
		},
	}
}

func updateCmd() *cobra.Command {
	var fields struct {
		name, surname, email, phone, department, faculty string
	}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the signed in user's profile",
		Long: `Update profile fields of the signed in user. Only the flags given are sent.

Examples:
  internship-session update --department dep-cs --faculty fac-eng`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var update users.ProfileUpdate
			set := func(flag string, value string, target **string) {
				if cmd.Flags().Changed(flag) {
					*target = utils.Ptr(value)
				}
			}
			set("name", fields.name, &update.Name)
			set("surname", fields.surname, &update.Surname)
			set("email", fields.email, &update.Email)
			set("phone", fields.phone, &update.Phone)
			set("department", fields.department, &update.DepartmentID)
			set("faculty", fields.faculty, &update.FacultyID)
			if update.Empty() {
				return errors.New("nothing to update, pass at least one field flag")
			}

			return withSession(cmd.Context(), func(ctx context.Context, a *app) error {
				user, ok := a.manager.CurrentUser()
				if !ok {
					return apperrors.ErrNoSession
				}
				if err := a.manager.UpdateUser(ctx, user.ID, update); err != nil {
					return err
				}
				updated, _ := a.manager.CurrentUser()
				success("profile updated")
				printUser(updated)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&fields.name, "name", "", "First name")
	cmd.Flags().StringVar(&fields.surname, "surname", "", "Last name")
	cmd.Flags().StringVar(&fields.email, "email", "", "E-mail")
	cmd.Flags().StringVar(&fields.phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&fields.department, "department", "", "Department id")
	cmd.Flags().StringVar(&fields.faculty, "faculty", "", "Faculty id")

	return cmd
}

func printUser(user *users.User) {
	if user == nil {
		return
	}
	info("ID:          %s", user.ID)
	info("Name:        %s", user.FullName())
	info("E-mail:      %s", user.Email)
	info("Role:        %s", user.Role)
	if len(user.Permissions) > 0 {
		permissions := make([]string, len(user.Permissions))
		for i, p := range user.Permissions {
			permissions[i] = string(p)
		}
		info("Permissions: %s", strings.Join(permissions, ", "))
	}
	if user.DepartmentID != "" {
		info("Department:  %s", user.DepartmentID)
	}
	if user.FacultyID != "" {
		info("Faculty:     %s", user.FacultyID)
	}
}

func readLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
