package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/neptgadgets/school-nexus-final-sub000/app/database"
	"github.com/neptgadgets/school-nexus-final-sub000/app/models"
	"github.com/spf13/cobra"
)

func newAddUserCmd() *cobra.Command {
	var (
		user   models.User
		role   string
		school string
	)
	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user.ID = uuid.NewString()
			user.Role = models.Role(role)
			user.IsActive = true
			if school != "" {
				user.SchoolID = &school
			}
			if err := validator.New().Struct(&user); err != nil {
				return fmt.Errorf("invalid user: %w", err)
			}
			if user.SchoolID == nil && !user.Role.CrossTenant() {
				return fmt.Errorf("--school is required for role %s", user.Role)
			}

			hash, err := database.HashPassword(user.Password)
			if err != nil {
				return err
			}
			user.Password = hash

			cfg, closeFn, err := connect()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := database.CreateUser(cfg.DB, &user); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User created successfully: %s (%s, %s)\n", user.FullName(), user.Email, user.Role)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&user.Email, "email", "", "login email")
	f.StringVar(&user.Password, "password", "", "initial password, at least 8 characters")
	f.StringVar(&user.FirstName, "first-name", "", "first name")
	f.StringVar(&user.LastName, "last-name", "", "last name")
	f.StringVar(&user.Phone, "phone", "", "phone number")
	f.StringVar(&role, "role", string(models.Teacher), "super_admin, school_admin, teacher, student or parent")
	f.StringVar(&school, "school", "", "school id the user belongs to")
	for _, name := range []string{"email", "password", "first-name", "last-name"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}
