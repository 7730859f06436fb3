package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fullhouse_client/internal/analytics"
	"fullhouse_client/internal/api/client"
	"fullhouse_client/internal/auth"
	"fullhouse_client/platform/config"
	"fullhouse_client/platform/logger"
	"fullhouse_client/platform/validator"
)

const usage = `usage: agent <command>

commands:
  login <email>   sign in (password read from FULLHOUSE_PASSWORD)
  logout          drop the stored session token
  whoami          print the signed-in user
  dashboard       print the agent dashboard as JSON`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := auth.NewTokenStore(cfg)
	if err != nil {
		log.Error("failed to open token store", "error", err)
		panic("failed to open token store: " + err.Error())
	}
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; session token is not kept between runs")
	}

	apiClient := client.NewClient(cfg, log)
	session := auth.NewSession(apiClient, store, validator.New(), log)

	if err := run(ctx, session, analytics.NewService(apiClient, log), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, session *auth.Session, dashboards *analytics.Service, args []string) error {
	switch args[0] {
	case "login":
		if len(args) < 2 {
			return errors.New("login requires an email")
		}
		if err := session.Login(ctx, args[1], os.Getenv("FULLHOUSE_PASSWORD")); err != nil {
			return errors.New(session.Error())
		}
		return printUser(session)

	case "logout":
		return session.Logout(ctx)

	case "whoami":
		if err := session.Hydrate(ctx); err != nil {
			return err
		}
		return printUser(session)

	case "dashboard":
		if err := session.Hydrate(ctx); err != nil {
			return err
		}
		if session.Token() == "" {
			return auth.ErrNotAuthenticated
		}
		d, err := dashboards.LoadDashboard(ctx, session.Token())
		if err != nil {
			return err
		}
		return printJSON(d)

	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
}

func printUser(session *auth.Session) error {
	user := session.User()
	if user == nil {
		return auth.ErrNotAuthenticated
	}
	return printJSON(user)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
