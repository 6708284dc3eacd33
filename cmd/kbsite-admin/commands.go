package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/techinsights/kbsite/internal/bootstrap"
	"github.com/techinsights/kbsite/internal/data"
	"github.com/techinsights/kbsite/internal/devseed"
	"github.com/techinsights/kbsite/internal/service"
)

const defaultCommandTimeout = 2 * time.Minute

// withDB connects to the database, runs fn, and closes the connection.
func withDB(cmdCtx *commandContext, fn func(ctx context.Context, db *sql.DB) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.DB,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	return fn(ctx, db)
}

func runMigrate(cmdCtx *commandContext, _ []string) error {
	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
	})
}

func runDBSeed(cmdCtx *commandContext, _ []string) error {
	if !cmdCtx.Config.IsDevelopment() {
		return errors.New("db-seed is only allowed when APP_ENV=development")
	}
	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		if err := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); err != nil {
			return err
		}
		return devseed.Run(ctx, db, cmdCtx.Logger)
	})
}

func runGrantAdmin(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("grant-admin", flag.ContinueOnError)
	email := fs.String("email", "", "email of the user to promote")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" && fs.NArg() > 0 {
		*email = fs.Arg(0)
	}
	if *email == "" {
		return errors.New("grant-admin requires an email (use --email or a positional argument)")
	}

	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		roleSvc := service.NewRoleService(service.RoleServiceOptions{
			Roles:    data.NewRoleRepo(db),
			Profiles: data.NewProfileRepo(db),
			Logger:   cmdCtx.Logger,
		})

		asg, err := roleSvc.GrantAdminByEmail(ctx, *email)
		if err != nil {
			return fmt.Errorf("grant admin to %q: %w", *email, err)
		}

		cmdCtx.Logger.InfoContext(ctx, "admin role granted",
			"email", *email,
			"user_id", asg.UserID,
		)
		return nil
	})
}

func runListUsers(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	limit := fs.Int("limit", 100, "maximum number of users to list")
	offset := fs.Int("offset", 0, "number of users to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		roleSvc := service.NewRoleService(service.RoleServiceOptions{
			Roles:    data.NewRoleRepo(db),
			Profiles: data.NewProfileRepo(db),
			Logger:   cmdCtx.Logger,
		})

		users, err := roleSvc.ListUsers(ctx, *limit, *offset)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		if err := writef(tw, "ID\tEMAIL\tNAME\tROLE\n"); err != nil {
			return err
		}
		for _, u := range users {
			if err := writef(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.FullName, u.Role); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}
