package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/chainkb/pkg/chainkb/store"
)

// TestSQLiteIntegrationBasic round-trips expressions and derivations
// through a real database file.
func TestSQLiteIntegrationBasic(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.AppendExpression(ctx, "Mother(ANN,BOB)", store.KindFact); err != nil {
		t.Fatalf("AppendExpression: %v", err)
	}
	if err := st.AppendExpression(ctx, "Mother(x,y) => Parent(x,y)", store.KindRule); err != nil {
		t.Fatalf("AppendExpression: %v", err)
	}
	// Re-telling the same expression must stay a no-op
	if err := st.AppendExpression(ctx, "Mother(ANN,BOB)", store.KindFact); err != nil {
		t.Fatalf("AppendExpression dup: %v", err)
	}

	entries, err := st.ListExpressions(ctx)
	if err != nil {
		t.Fatalf("ListExpressions: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	if entries[0].Expression != "Mother(ANN,BOB)" || entries[0].Kind != store.KindFact {
		t.Errorf("entries[0]: got %+v", entries[0])
	}
	if entries[1].Expression != "Mother(x,y) => Parent(x,y)" || entries[1].Kind != store.KindRule {
		t.Errorf("entries[1]: got %+v", entries[1])
	}
	if entries[0].ToldAt.IsZero() {
		t.Error("ToldAt not persisted")
	}

	d := store.Derivation{
		ID:      "01HZX0000000000000000000A1",
		Rule:    "Mother(x,y) => Parent(x,y)",
		Matched: []string{"Mother(ANN,BOB)"},
		Derived: "Parent(ANN,BOB)",
		At:      time.Now().UTC(),
	}
	if err := st.RecordDerivation(ctx, d); err != nil {
		t.Fatalf("RecordDerivation: %v", err)
	}

	got, err := st.ListDerivations(ctx, d.Rule)
	if err != nil {
		t.Fatalf("ListDerivations: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("derivations: got %d, want 1", len(got))
	}
	if got[0].Derived != d.Derived || got[0].ID != d.ID {
		t.Errorf("derivation: got %+v", got[0])
	}
	if len(got[0].Matched) != 1 || got[0].Matched[0] != "Mother(ANN,BOB)" {
		t.Errorf("matched: got %v", got[0].Matched)
	}
}

// TestSQLiteReopen verifies the data survives a close/reopen cycle.
func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.AppendExpression(ctx, "Father(BOB,CARL)", store.KindFact); err != nil {
		t.Fatalf("AppendExpression: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err = Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	entries, err := st.ListExpressions(ctx)
	if err != nil {
		t.Fatalf("ListExpressions: %v", err)
	}
	if len(entries) != 1 || entries[0].Expression != "Father(BOB,CARL)" {
		t.Errorf("entries after reopen: got %+v", entries)
	}
}
