package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/edumark/examly-backend/internal/config"
	"github.com/edumark/examly-backend/internal/database"
	"github.com/edumark/examly-backend/internal/logger"
	"github.com/edumark/examly-backend/internal/model"
	"github.com/edumark/examly-backend/internal/repository"
	"github.com/edumark/examly-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	staffRepo := repository.NewStaffRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Staff User ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println()
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	fmt.Print("Enter Role (TEACHER/PRINCIPAL, default TEACHER): ")
	roleStr, _ := reader.ReadString('\n')
	roleStr = strings.ToUpper(strings.TrimSpace(roleStr))
	role := model.StaffRoleTeacher
	switch roleStr {
	case "", "TEACHER":
	case "PRINCIPAL":
		role = model.StaffRolePrincipal
	default:
		fmt.Println("Error: Role must be TEACHER or PRINCIPAL")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hash, err := service.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	staff := &model.Staff{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	}

	if err := staffRepo.Create(ctx, staff); err != nil {
		log.Fatal().Err(err).Msg("Failed to create staff user")
	}

	fmt.Printf("\nSuccess! Staff '%s' (%s, %s) created with ID: %d\n", staff.Name, staff.Email, staff.Role, staff.ID)
}
