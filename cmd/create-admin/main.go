// create-admin bootstraps a staff account; the portal has no sign-up flow.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/CaMy395/ReadyPortal-sub001/config"
	"github.com/CaMy395/ReadyPortal-sub001/internal/model"
	"github.com/CaMy395/ReadyPortal-sub001/internal/repository"
	"github.com/CaMy395/ReadyPortal-sub001/pkg/database"
	applogger "github.com/CaMy395/ReadyPortal-sub001/pkg/logger"
)

const minPasswordLen = 8

func main() {
	configPath := flag.String("config", "", "path to config file")
	name := flag.String("name", "", "display name")
	email := flag.String("email", "", "login email")
	role := flag.String("role", model.RoleAdmin, "admin or staff")
	flag.Parse()

	// password comes from the environment so it stays out of shell history
	password := os.Getenv("READY_ADMIN_PASSWORD")

	if err := validate(*name, *email, *role, password); err != nil {
		fmt.Fprintf(os.Stderr, "create-admin: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepo(db)
	if _, err := users.GetByEmail(ctx, *email); err == nil {
		logger.Fatal("user already exists", zap.String("email", *email))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Fatal("lookup user failed", zap.Error(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("hash password failed", zap.Error(err))
	}

	user := &model.User{
		Name:         strings.TrimSpace(*name),
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		PasswordHash: string(hash),
		Role:         *role,
	}
	if err := users.Create(ctx, user); err != nil {
		logger.Fatal("create user failed", zap.Error(err))
	}

	logger.Info("user created",
		zap.String("user_id", user.UserID),
		zap.String("email", user.Email),
		zap.String("role", user.Role),
	)
}

func validate(name, email, role, password string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("-name is required")
	case !strings.Contains(email, "@"):
		return errors.New("-email must be an email address")
	case role != model.RoleAdmin && role != model.RoleStaff:
		return fmt.Errorf("-role must be %q or %q", model.RoleAdmin, model.RoleStaff)
	case len(password) < minPasswordLen:
		return fmt.Errorf("READY_ADMIN_PASSWORD must be at least %d characters", minPasswordLen)
	}
	return nil
}
