package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dvpgiftcenter/giftshop-backend/pkg/config"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/db"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/db/models"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/enums"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/logger"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/security"
)

// Creates a login-capable user. Meant for bootstrapping fresh environments.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	username := flag.String("username", "", "login username")
	password := flag.String("password", "", "plaintext password, hashed before storage")
	fullName := flag.String("full-name", "", "display name")
	role := flag.String("role", string(enums.UserRoleCashier), "user role: admin|cashier|customer")
	email := flag.String("email", "", "optional email")
	flag.Parse()

	if strings.TrimSpace(*username) == "" || *password == "" || strings.TrimSpace(*fullName) == "" {
		fmt.Fprintln(os.Stderr, "-username, -password, and -full-name are required")
		os.Exit(1)
	}

	parsedRole, err := enums.ParseUserRole(*role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid role: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	hash, err := security.HashPassword(*password, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	user := models.User{
		Username:     strings.TrimSpace(*username),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(*fullName),
		Role:         parsedRole,
		IsActive:     true,
	}
	if trimmed := strings.TrimSpace(*email); trimmed != "" {
		user.Email = &trimmed
	}

	if err := dbClient.DB().WithContext(ctx).Create(&user).Error; err != nil {
		logg.Error(ctx, "failed to create user", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"user_id": user.ID.String(),
		"role":    string(user.Role),
	})
	logg.Info(ctx, "user created")
}
