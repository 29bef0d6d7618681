package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestQuoteMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_quote_negotiation_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no quote migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE quote_request_status AS ENUM",
		"CREATE TABLE IF NOT EXISTS quote_requests",
		"CREATE TABLE IF NOT EXISTS quote_responses",
		"CREATE TABLE IF NOT EXISTS counter_offers",
		"FOREIGN KEY (quote_request_id) REFERENCES quote_requests(id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_quote_responses_accepted",
		"WHERE is_accepted",
		"CHECK (NOT (is_accepted AND is_rejected))",
		"DROP TABLE IF EXISTS counter_offers",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
