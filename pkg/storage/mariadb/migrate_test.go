package mariadb

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestMigrate_UnknownCommand(t *testing.T) {
	err := Migrate(context.Background(), nil, "sideways", zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "sideways") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationsFS, migrationsDir+"/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) < 2 {
		t.Fatalf("expected embedded migrations, got %v", files)
	}
	for _, f := range files {
		raw, err := fs.ReadFile(migrationsFS, f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		body := string(raw)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Errorf("%s must declare goose Up and Down sections", f)
		}
	}
}
