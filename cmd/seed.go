package cmd

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sipalaciosv/inspeccion-vehicular/config"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/db"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
)

var (
	seedAdminName  string
	seedAdminEmail string
)

// seedCmd prepares a fresh database: the correlative counters must exist
// before any submission can be accepted.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed correlative counters and an optional admin user",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}

		dbConn, err := db.Connect(&cfg.Database)
		if err != nil {
			logrus.Fatalf("Failed to connect to database: %v", err)
		}

		if err := db.Migrate(dbConn); err != nil {
			logrus.Fatalf("Failed to run database migrations: %v", err)
		}

		ctx := context.Background()
		counterRepo := repository.NewCounterRepository(dbConn)

		for _, kind := range []model.CounterKind{model.ChecklistCounter, model.FatigueCounter} {
			if err := counterRepo.Seed(ctx, kind); err != nil {
				logrus.Fatalf("Failed to seed %s counter: %v", kind, err)
			}
			logrus.Infof("Seeded %s counter", kind)
		}

		if seedAdminEmail != "" {
			userRepo := repository.NewUserRepository(dbConn)

			existing, err := userRepo.FindByEmail(ctx, seedAdminEmail)
			if err == nil && existing != nil {
				logrus.Infof("Admin user %s already exists", seedAdminEmail)
				return
			}

			user := &model.User{
				Base:  model.Base{UUID: uuid.New().String()},
				Name:  seedAdminName,
				Email: seedAdminEmail,
				Role:  model.RoleAdmin,
			}
			if _, err := userRepo.Create(ctx, user); err != nil {
				logrus.Fatalf("Failed to create admin user: %v", err)
			}
			logrus.Infof("Created admin user %s (%s)", seedAdminEmail, user.UUID)
		}
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminName, "admin-name", "", "display name for the seeded admin user")
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "", "email for the seeded admin user")
}
