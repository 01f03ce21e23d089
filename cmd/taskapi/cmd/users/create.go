package users

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/taskapi/internal/config"
	"github.com/terraconstructs/taskapi/internal/db/bunx"
	"github.com/terraconstructs/taskapi/internal/logging"
	"github.com/terraconstructs/taskapi/internal/repository"
	"github.com/terraconstructs/taskapi/internal/services/user"
	"github.com/terraconstructs/taskapi/internal/services/validation"
)

var (
	emailFlag     string
	usernameFlag  string
	firstNameFlag string
	lastNameFlag  string
	passwordFlag  string
	stdinFlag     bool
)

type createInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a local user",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}

		if err := validation.Struct(createInput{Email: emailFlag, Username: usernameFlag, Password: password}); err != nil {
			return fmt.Errorf("invalid input: %w", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := bunx.NewDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		svc := user.NewService(repository.NewBunUserRepository(db), logging.Component("users"))
		u, err := svc.Create(cmd.Context(), user.NewUser{
			FirstName: firstNameFlag,
			LastName:  lastNameFlag,
			Username:  usernameFlag,
			Email:     emailFlag,
			Password:  password,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Println("User created successfully!")
		fmt.Println("----------------------------------------")
		fmt.Printf("User ID: %s\n", u.ID)
		fmt.Printf("Username: %s\n", u.Username)
		fmt.Printf("Email: %s\n", u.Email)
		fmt.Println("----------------------------------------")

		return nil
	},
}
