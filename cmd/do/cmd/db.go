package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/momager/momager-core/internal/config"
	"github.com/momager/momager-core/internal/db"
	"github.com/momager/momager-core/internal/repository"
	"github.com/momager/momager-core/internal/service"
)

func DBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database commands",
	}

	cmd.AddCommand(dbSetupCmd())
	cmd.AddCommand(dbMigrateCmd())
	cmd.AddCommand(dbDownCmd())
	cmd.AddCommand(dbVersionCmd())
	cmd.AddCommand(dbSeedCmd())
	return cmd
}

func dbSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Drop every table and re-apply all migrations (all data is lost)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				fmt.Println("Reloading the core database, all current data will be lost...")
				return db.Reset(database.DB, cfg.DBDriver)
			})
		},
	}
}

func dbMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				return db.RunMigrations(database.DB, cfg.DBDriver)
			})
		},
	}
}

func dbDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				return db.MigrateDown(database.DB, cfg.DBDriver)
			})
		},
	}
}

func dbVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				v, err := db.Version(database.DB, cfg.DBDriver)
				if err != nil {
					return err
				}
				fmt.Println("migration version:", v)
				return nil
			})
		},
	}
}

func dbSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load mock accounts for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				if cfg.IsProduction() {
					return errors.New("refusing to seed a production database")
				}
				err := db.RunMigrations(database.DB, cfg.DBDriver)
				if err != nil {
					return err
				}
				return seed(cmd.Context(), database)
			})
		},
	}
}

func withDB(fn func(cfg *config.Config, database *sqlx.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer database.Close()

	return fn(cfg, database)
}

type mockUser struct {
	email, password, fname, lname, dob, address string
}

var mockUsers = []mockUser{
	{"mom@example.com", "password1", "Martha", "Ortiz", "1986-03-14", `{"street":"12 Elm St","city":"Portland","state":"OR"}`},
	{"dad@example.com", "password2", "Daniel", "Ortiz", "1984-11-02", `{"street":"12 Elm St","city":"Portland","state":"OR"}`},
	{"grandma@example.com", "password3", "Rosa", "Lima", "1958-07-21", ""},
}

// seed signs up the mock accounts through the user service so passwords are
// hashed exactly as in production. Existing accounts are left alone.
func seed(ctx context.Context, database *sqlx.DB) error {
	if ctx == nil {
		ctx = context.Background()
	}

	users := repository.NewUserRepository(database)
	sessions := service.NewSessionService(repository.NewSessionRepository(database), users)
	userService := service.NewUserService(users, repository.NewPasswordResetRepository(database), sessions)

	start := time.Now()
	created := 0
	for _, m := range mockUsers {
		in := service.SignUpInput{
			Email:       m.email,
			Password:    m.password,
			FName:       m.fname,
			LName:       m.lname,
			DateOfBirth: m.dob,
		}
		if m.address != "" {
			in.Address = []byte(m.address)
		}

		_, _, err := userService.SignUp(ctx, in)
		if errors.Is(err, repository.ErrDuplicateEmail) {
			fmt.Printf("[seed] %s exists, skipped\n", m.email)
			continue
		}
		if err != nil {
			return fmt.Errorf("seed %s: %w", m.email, err)
		}
		created++
		fmt.Printf("[seed] %s / %s\n", m.email, m.password)
	}

	fmt.Printf("mock data loaded: %d accounts (%s)\n", created, time.Since(start).Round(time.Millisecond))
	return nil
}
