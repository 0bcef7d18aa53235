package main

import (
	"fmt"
	"log"

	"github.com/carelog/internal/config"
	"github.com/carelog/internal/db"
	"github.com/carelog/internal/router"
	"github.com/carelog/internal/service"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "carelog",
		Short: "Local backend for the CareLog caregiving companion",
	}

	root.AddCommand(serveCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if err := db.Init(cfg.DatabasePath); err != nil {
				return fmt.Errorf("initialize database: %w", err)
			}

			r := router.Setup(db.DB, cfg)
			return r.Run(cfg.ListenAddr)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the example contacts into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if err := db.Init(cfg.DatabasePath); err != nil {
				return fmt.Errorf("initialize database: %w", err)
			}

			seeded, err := service.NewContactService(db.DB).SeedIfEmpty()
			if err != nil {
				return err
			}
			if seeded {
				cmd.Println("seeded example contacts")
			} else {
				cmd.Println("contacts already present, nothing to do")
			}
			return nil
		},
	}
}
