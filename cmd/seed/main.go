// Command main runs the database seeder for TekBlog.
package main

import (
	"flag"
	"log"

	"tekblog/internal/config"
	"tekblog/internal/database"
	"tekblog/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	adminName := flag.String("admin", "sysadmin", "Username for the seeded admin account")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if _, err := s.CreateAdmin(*adminName); err != nil {
		log.Fatalf("Admin seeding failed: %v", err)
	}

	if err := s.SeedAll(*numUsers, *numPosts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("All done. Every seeded account uses the password %q.", seed.DefaultPassword)
}
