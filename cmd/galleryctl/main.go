package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
	"github.com/tendant/simple-gallery/pkg/simplegallery/config"
)

const usage = `Simple Gallery Admin CLI

A lightweight admin tool for gallery management that only requires database access.

USAGE:
  galleryctl <command> [options]

COMMANDS:
  users              List registered users
  bootstrap          Provision the admin account from ADMIN_USERNAME/ADMIN_SECRET
  export             Write the full document as JSON to stdout
  import <file>      Replace all state with the document in <file>
  snapshot-save      Export the document into the snapshot store
  snapshot-restore   Restore the latest snapshot from the snapshot store

ENVIRONMENT VARIABLES:
  DATABASE_URL       PostgreSQL connection string, or "memory" (default: memory)
  SNAPSHOT_URL       Snapshot store: memory://, file://<dir>, or s3://bucket/prefix
  ADMIN_USERNAME     Admin account username (bootstrap only)
  ADMIN_SECRET       Admin account secret (bootstrap only)`

// Env is the CLI environment configuration
type Env struct {
	DatabaseURL   string `env:"DATABASE_URL" env-default:""`
	SnapshotURL   string `env:"SNAPSHOT_URL" env-default:""`
	AdminUsername string `env:"ADMIN_USERNAME" env-default:""`
	AdminSecret   string `env:"ADMIN_SECRET" env-default:""`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "help" || command == "--help" || command == "-h" {
		fmt.Println(usage)
		os.Exit(0)
	}

	var env Env
	if err := cleanenv.ReadEnv(&env); err != nil {
		slog.Error("Failed to read environment", "err", err)
		os.Exit(1)
	}

	serverConfig, err := config.Load(config.WithEnv(""))
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	repo, err := serverConfig.BuildRepository(ctx)
	if err != nil {
		slog.Error("Failed to build repository", "err", err)
		os.Exit(1)
	}

	svc, err := serverConfig.BuildServiceWithRepository(repo)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	switch command {
	case "users":
		err = handleUsers(ctx, svc)
	case "bootstrap":
		err = handleBootstrap(ctx, svc, env)
	case "export":
		err = handleExport(ctx, svc)
	case "import":
		if len(os.Args) < 3 {
			fmt.Println(usage)
			os.Exit(1)
		}
		err = handleImport(ctx, svc, os.Args[2])
	case "snapshot-save":
		err = handleSnapshotSave(ctx, svc, serverConfig)
	case "snapshot-restore":
		err = handleSnapshotRestore(ctx, svc, serverConfig)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}

	if err != nil {
		slog.Error("Command failed", "command", command, "err", err)
		os.Exit(1)
	}
}

func handleUsers(ctx context.Context, svc simplegallery.Service) error {
	users, err := svc.ListUsers(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, u.CreatedAt)
	}
	return w.Flush()
}

func handleBootstrap(ctx context.Context, svc simplegallery.Service, env Env) error {
	if env.AdminUsername == "" || env.AdminSecret == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_SECRET are required")
	}
	admin, err := svc.EnsureBootstrapAdmin(ctx, simplegallery.BootstrapAdminRequest{
		Username: env.AdminUsername,
		Secret:   env.AdminSecret,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Admin account ready: %s (%s)\n", admin.Username, admin.ID)
	return nil
}

func handleExport(ctx context.Context, svc simplegallery.Service) error {
	doc, err := svc.ExportDocument(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func handleImport(ctx context.Context, svc simplegallery.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc simplegallery.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", simplegallery.ErrMalformedImport, err)
	}
	if err := svc.ImportDocument(ctx, &doc); err != nil {
		return err
	}
	fmt.Println("Import complete")
	return nil
}

func handleSnapshotSave(ctx context.Context, svc simplegallery.Service, serverConfig *config.ServerConfig) error {
	manager, err := serverConfig.BuildSnapshotManager()
	if err != nil {
		return err
	}
	doc, err := svc.ExportDocument(ctx)
	if err != nil {
		return err
	}
	key, err := manager.Save(ctx, doc)
	if err != nil {
		return err
	}
	fmt.Printf("Snapshot saved: %s\n", key)
	return nil
}

func handleSnapshotRestore(ctx context.Context, svc simplegallery.Service, serverConfig *config.ServerConfig) error {
	manager, err := serverConfig.BuildSnapshotManager()
	if err != nil {
		return err
	}
	doc, key, err := manager.Latest(ctx)
	if err != nil {
		return err
	}
	if err := svc.ImportDocument(ctx, doc); err != nil {
		return err
	}
	fmt.Printf("Restored snapshot: %s\n", key)
	return nil
}
