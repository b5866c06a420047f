package main

import (
	"fmt"

	"github.com/gartstein/backoffice/internal/backoffice/auth"
	"github.com/gartstein/backoffice/internal/backoffice/controller"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer repo.Close()
		logger.Info("Database schema is up to date", zap.String("driver", cfg.DBDriver))
		return nil
	},
}

var (
	newUsername string
	newPassword string
	newRole     string
	newModules  []string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a dashboard account",
	Long: `Creates an active dashboard account.

Staff accounts only see the modules granted with --module; admins see all.

Example:
  backoffice create-user --username alice --password 's3cret-pass' --role staff --module orders --module warehouse`,
	RunE: runCreateUser,
}

func init() {
	createUserCmd.Flags().StringVar(&newUsername, "username", "", "login name")
	createUserCmd.Flags().StringVar(&newPassword, "password", "", "initial password (at least 8 characters)")
	createUserCmd.Flags().StringVar(&newRole, "role", string(models.RoleStaff), "admin or staff")
	createUserCmd.Flags().StringSliceVar(&newModules, "module", nil, "granted module: orders, warehouse, personnel or logs")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")

	purgeLogsCmd.Flags().IntVar(&purgeDays, "days", controller.DefaultRetentionDays, "keep entries from the last N days")
}

func runCreateUser(cmd *cobra.Command, _ []string) error {
	repo, err := openRepository(cmd.Context())
	if err != nil {
		return err
	}
	defer repo.Close()

	modules := make([]models.Module, 0, len(newModules))
	for _, m := range newModules {
		modules = append(modules, models.Module(m))
	}

	producer, err := newProducer()
	if err != nil {
		return err
	}
	defer producer.Close()

	audit := controller.NewAuditor(repo, producer, logger)
	users := controller.NewUserService(repo, auth.NewHasher(0), audit, logger)
	user, err := users.Create(cmd.Context(), models.SystemActor, controller.NewUser{
		Username: newUsername,
		Password: newPassword,
		Role:     models.Role(newRole),
		Modules:  modules,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %q (id %d)\n", user.Role, user.Username, user.ID)
	return nil
}

var purgeDays int

var purgeLogsCmd = &cobra.Command{
	Use:   "purge-logs",
	Short: "Delete activity log entries older than --days",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer repo.Close()

		producer, err := newProducer()
		if err != nil {
			return err
		}
		defer producer.Close()

		logs := controller.NewLogService(repo, controller.NewAuditor(repo, producer, logger), logger)
		removed, err := logs.Purge(cmd.Context(), models.SystemActor, purgeDays)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d log entries\n", removed)
		return nil
	},
}
