package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"newsletter_subscriptions", "members", "donations"} {
				if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		members := []struct {
			FullName string
			Email    string
			Status   string
		}{
			{"Amina Yusuf", "amina@mail.com", "approved"},
			{"Ben Carter", "ben@mail.com", "approved"},
			{"Chloe Nguyen", "chloe@mail.com", "pending"},
		}

		for _, m := range members {
			var exists int
			row := db.Raw("SELECT 1 FROM members WHERE email = ?", m.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Println("member already exists:", m.Email)
				continue
			}
			if err := db.Exec("INSERT INTO members (full_name, email, status, created_at, updated_at) VALUES (?, ?, ?, now(), now())", m.FullName, m.Email, m.Status).Error; err != nil {
				log.Fatalf("failed to insert member %s: %v", m.Email, err)
			}
			fmt.Println("Seeded member:", m.Email)
		}

		subscribers := []string{
			"news1@mail.com",
			"news2@mail.com",
			"amina@mail.com",
		}

		for _, email := range subscribers {
			var exists int
			row := db.Raw("SELECT 1 FROM newsletter_subscriptions WHERE email = ?", email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Println("subscription already exists:", email)
				continue
			}
			if err := db.Exec("INSERT INTO newsletter_subscriptions (email, subscribed_at, created_at, updated_at) VALUES (?, now(), now(), now())", email).Error; err != nil {
				log.Fatalf("failed to insert subscription %s: %v", email, err)
			}
			fmt.Println("Seeded subscription:", email)
		}

		fmt.Println("Seeding complete")
	},
}
