package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpExtractsPostgresDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_partners_email", TableName: "partners", Detail: "Key (email)=(a@x.com) already exists."}
	err := Wrap(CodeConflict, fmt.Errorf("insert: %w", pgErr), "create partner")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", d.Code)
	}
	if d.PGCode != "23505" || d.PGConstraint != "idx_partners_email" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) < 3 {
		t.Fatalf("expected full chain, got %v", d.Chain)
	}
	if _, ok := d.Fields()["pg_table"]; !ok {
		t.Fatalf("expected pg_table in fields")
	}
}

func TestDumpPlainError(t *testing.T) {
	d := Dump(fmt.Errorf("boom"))
	if d.TopMessage != "boom" || d.Code != "" {
		t.Fatalf("unexpected dump %+v", d)
	}
	if _, ok := d.Fields()["pg_code"]; ok {
		t.Fatalf("pg fields should be omitted for non-pg errors")
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("nil error should dump empty")
	}
}
