package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPath != "famdo.db" || cfg.StorageKey != "famdo_data" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.RefreshInterval != time.Minute {
		t.Errorf("refresh interval = %v, want 1m", cfg.RefreshInterval)
	}
	if cfg.Backup.ScheduleHour != -1 {
		t.Errorf("backup hour = %d, want -1", cfg.Backup.ScheduleHour)
	}
	if cfg.UsePostgres() {
		t.Error("postgres should not be selected by default")
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("FAMDO_PORT", "9090")
	t.Setenv("FAMDO_DATABASE_URL", "postgres://famdo@localhost/famdo")
	t.Setenv("FAMDO_FAMILY_NAME", "The Parkers")
	t.Setenv("FAMDO_REFRESH_INTERVAL", "30s")
	t.Setenv("FAMDO_BACKUP_S3_BUCKET", "family-backups")
	t.Setenv("FAMDO_BACKUP_HOUR", "3")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "9090" || cfg.FamilyName != "The Parkers" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if !cfg.UsePostgres() {
		t.Error("expected postgres to be selected")
	}
	if cfg.RefreshInterval != 30*time.Second {
		t.Errorf("refresh interval = %v, want 30s", cfg.RefreshInterval)
	}
	if cfg.Backup.Bucket != "family-backups" || cfg.Backup.ScheduleHour != 3 {
		t.Errorf("unexpected backup config: %+v", cfg.Backup)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"bad duration", "FAMDO_REFRESH_INTERVAL", "soon", "parse env"},
		{"short interval", "FAMDO_REFRESH_INTERVAL", "10ms", "below 1s"},
		{"bad hour", "FAMDO_BACKUP_HOUR", "24", "out of range"},
		{"negative rate", "FAMDO_COMMAND_RATE", "-1", "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Parse()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
