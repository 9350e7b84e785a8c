package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/librarydb/librarydb/internal/model"
	"github.com/librarydb/librarydb/internal/repository"
	"github.com/librarydb/librarydb/internal/service"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage member accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		user     model.User
		password string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a member account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			repo, err := repository.New(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %s", sanitizeError(err, cfg.DatabaseURL))
			}
			defer repo.Close()

			// Account creation never touches sessions.
			accounts := service.NewAuthService(repo, nil, logger)
			if err := accounts.CreateUser(cmd.Context(), &user, password); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %d <%s>\n", user.ID, user.Email)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&user.Email, "email", "", "login email")
	f.StringVar(&user.Name, "name", "", "first name")
	f.StringVar(&user.Surname, "surname", "", "last name")
	f.StringVar(&user.Birthday, "birthday", "", "birthday, YYYY-MM-DD")
	f.StringVar(&user.UserType, "type", model.UserTypeMember, "user type")
	f.StringVar(&password, "password", "", "initial password")
	for _, name := range []string{"email", "birthday", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
