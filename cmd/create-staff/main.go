package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"finid.backend/internal/config"
	"finid.backend/internal/domain/entities"
	"finid.backend/internal/infrastructure/datasources"
	"finid.backend/internal/infrastructure/repositories"
	"finid.backend/internal/infrastructure/storage"
	"finid.backend/internal/usecases"
)

var openStaffDB = datasources.Open

var openStaffSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type staffRuntime interface {
	EnsureStaff(ctx context.Context, username, email, password string) (*entities.User, bool, error)
	DeleteUser(ctx context.Context, username string) error
}

type staffDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (staffRuntime, io.Closer, error)
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultStaffDeps() staffDeps {
	return staffDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (staffRuntime, io.Closer, error) {
			db, err := openStaffDB(cfg.Database, false)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}

			sqlDB, err := openStaffSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}

			if cfg.Database.AutoMigrate {
				if err := datasources.Migrate(db); err != nil {
					_ = sqlDB.Close()
					return nil, nil, err
				}
			}

			admin := usecases.NewAdminUsecase(
				repositories.NewUserRepository(db),
				repositories.NewProfileRepository(db),
				repositories.NewDocumentRepository(db),
				repositories.NewUnitOfWork(db),
				storage.NewLocalFileStore(cfg.Media.Root, cfg.Media.URL),
			)
			return admin, sqlDB, nil
		},
		out: os.Stdout,
	}
}

func runCreateStaff(args []string, deps staffDeps) error {
	def := defaultStaffDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("create-staff", flag.ContinueOnError)
	fs.SetOutput(deps.out)
	username := fs.String("username", "", "staff username (required)")
	email := fs.String("email", "", "email address for a new account")
	password := fs.String("password", "", "password, falls back to $STAFF_PASSWORD")
	remove := fs.Bool("delete", false, "delete the account and its uploaded files instead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		return fmt.Errorf("--username is required")
	}
	if *password == "" {
		*password = os.Getenv("STAFF_PASSWORD")
	}
	if !*remove && *password == "" {
		return fmt.Errorf("--password or STAFF_PASSWORD is required")
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	runtime, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx := context.Background()
	if *remove {
		if err := runtime.DeleteUser(ctx, *username); err != nil {
			return fmt.Errorf("failed to delete %s: %w", *username, err)
		}
		_, _ = fmt.Fprintf(deps.out, "Deleted user %s\n", *username)
		return nil
	}

	user, created, err := runtime.EnsureStaff(ctx, *username, *email, *password)
	if err != nil {
		return fmt.Errorf("failed to ensure staff user %s: %w", *username, err)
	}

	if created {
		_, _ = fmt.Fprintln(deps.out, "Created staff user")
	} else {
		_, _ = fmt.Fprintln(deps.out, "Promoted existing user to staff and reset password")
	}
	_, _ = fmt.Fprintf(deps.out, "user_id=%s\n", user.ID.String())
	_, _ = fmt.Fprintf(deps.out, "username=%s\n", user.Username)
	return nil
}

func main() {
	if err := runCreateStaff(os.Args[1:], defaultStaffDeps()); err != nil {
		log.Fatal(err)
	}
}
