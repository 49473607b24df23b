package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edumark/examly-backend/internal/config"
	"github.com/edumark/examly-backend/internal/database"
	"github.com/edumark/examly-backend/internal/logger"
	"github.com/edumark/examly-backend/internal/model"
	"github.com/edumark/examly-backend/internal/repository"
	"github.com/edumark/examly-backend/internal/service"
	"github.com/jackc/pgx/v5"
)

// Seeds a demo class with 30 students, all using the password "changeme".
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	catalogRepo := repository.NewCatalogRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)

	fmt.Println("=== Seeding Demo Class ===")

	className := "10 A"
	gradeLevel := "10"

	var classID int
	err = pool.QueryRow(ctx,
		`SELECT id FROM classes WHERE name = $1 AND grade_level = $2`,
		className, gradeLevel,
	).Scan(&classID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Fatal().Err(err).Msg("Failed to check existing class")
		}
		fmt.Printf("Class %s not found. Creating it...\n", className)
		class := &model.Class{Name: className, GradeLevel: gradeLevel}
		if err := catalogRepo.CreateClass(ctx, class); err != nil {
			log.Fatal().Err(err).Msg("Failed to create class")
		}
		classID = class.ID
		fmt.Printf("Created class with ID: %d\n", classID)
	} else {
		fmt.Printf("Found existing class with ID: %d\n", classID)
	}

	names := []string{
		"Alice Carter", "Ben Okafor", "Chloe Kim", "Daniel Reyes", "Emma Walsh",
		"Felix Nguyen", "Grace Adeyemi", "Hassan Malik", "Isla Murray", "Jonas Berg",
		"Keira Doyle", "Liam Novak", "Mia Fischer", "Noah Haddad", "Olivia Santos",
		"Priya Sharma", "Quentin Dubois", "Rosa Alvarez", "Samuel Mensah", "Tara Singh",
		"Umar Farouk", "Vera Kovacs", "William Chen", "Ximena Torres", "Yusuf Demir",
		"Zoe Armstrong", "Aaron Blake", "Bianca Rossi", "Caleb Stone", "Diana Petrova",
	}

	hash, err := service.HashPassword("changeme", cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash seed password")
	}

	created := 0
	for i, name := range names {
		student := &model.Student{
			Name:         name,
			StudentNo:    fmt.Sprintf("S%05d", i+1),
			ClassID:      classID,
			PasswordHash: hash,
		}
		if err := studentRepo.Create(ctx, student); err != nil {
			fmt.Printf("Skipping %s: %v\n", student.StudentNo, err)
			continue
		}
		created++
	}

	fmt.Printf("\nDone. Created %d of %d students in class %d.\n", created, len(names), classID)
}
