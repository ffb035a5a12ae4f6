package postgres

import "testing"

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/growlify?sslmode=disable":   "pgx5://u:p@localhost:5432/growlify?sslmode=disable",
		"postgresql://u:p@localhost:5432/growlify?sslmode=disable": "pgx5://u:p@localhost:5432/growlify?sslmode=disable",
		"pgx5://already/converted":                                 "pgx5://already/converted",
	}
	for in, want := range tests {
		if got := migrateURL(in); got != want {
			t.Errorf("migrateURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, name := range []string{"migrations/000001_init.up.sql", "migrations/000001_init.down.sql"} {
		data, err := migrationsFS.ReadFile(name)
		if err != nil {
			t.Fatalf("Expected embedded %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("Expected %s to be non-empty", name)
		}
	}
}
