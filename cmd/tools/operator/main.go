package main

import (
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Mootosamy/backend-chronopost/internal/config"
	"github.com/Mootosamy/backend-chronopost/internal/database"
	"github.com/Mootosamy/backend-chronopost/internal/modules/auth"
)

var rootCmd = &cobra.Command{
	Use:   "operator",
	Short: "Manage back-office operators",
	Long: `Create, disable and re-enable the operators who issue payment links.

The first operator has to be created here; after that operators can
register colleagues through POST /api/auth/register.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(createCmd, disableCmd, enableCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openService() (*auth.Service, error) {
	cfg, err := config.LoadDB()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&auth.Operator{}); err != nil {
		return nil, err
	}
	return newService(db), nil
}

// tokens are never issued from the CLI, so no signing secret is needed
func newService(db *gorm.DB) *auth.Service {
	return auth.NewService(db, "", 0)
}
