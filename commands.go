package main

import (
	"fmt"
	"strings"

	"taskboard/dao/model"
	"taskboard/dao/query"
	"taskboard/errs"
	"taskboard/util"

	"github.com/spf13/cobra"
	"gorm.io/datatypes"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(*configPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newUserCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd(configPath))
	cmd.AddCommand(newUserPromoteCmd(configPath))
	return cmd
}

func newUserCreateCmd(configPath *string) *cobra.Command {
	var (
		username string
		email    string
		operator bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an active user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(*configPath); err != nil {
				return err
			}
			u, err := createUser(username, email, operator)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "login name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().BoolVar(&operator, "operator", false, "grant the site operator role")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func createUser(username, email string, operator bool) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" {
		return nil, errs.Validation("username and email are required")
	}
	u := &model.User{
		Username:   username,
		Email:      email,
		Role:       model.RoleUser,
		Status:     model.StatusActive,
		Attributes: datatypes.NewJSONType(model.UserAttribute{Nickname: username}),
	}
	if operator {
		u.Role = model.RoleOperator
	}
	if err := query.DB.Create(u).Error; err != nil {
		return nil, errs.FromStore(err, "User")
	}
	return u, nil
}

func newUserPromoteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <username>",
		Short: "Grant the site operator role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(*configPath); err != nil {
				return err
			}
			res := query.DB.Model(&model.User{}).Where("username = ?", args[0]).Update("role", model.RoleOperator)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errs.NotFound("User %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an operator\n", args[0])
			return nil
		},
	}
}

func newTokenCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Token utilities",
	}
	var username string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Print an access and refresh token pair for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(*configPath); err != nil {
				return err
			}
			var u model.User
			if err := query.DB.Where("username = ?", username).Take(&u).Error; err != nil {
				return errs.FromStore(err, "User")
			}
			access, refresh, err := util.GetTokenMgr().CreateTokens(&util.JWTMessage{
				UserID:       u.ID,
				Username:     u.Username,
				RolePlatform: u.Role,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "access: %s\nrefresh: %s\n", access, refresh)
			return nil
		},
	}
	issue.Flags().StringVarP(&username, "user", "u", "", "username")
	_ = issue.MarkFlagRequired("user")
	cmd.AddCommand(issue)
	return cmd
}
