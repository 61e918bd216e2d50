package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadDatabase_Unknown(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadDatabase(context.Background(), "missing")
	if !errors.Is(err, ErrUnknownDatabase) {
		t.Errorf("ReadDatabase() error = %v, want ErrUnknownDatabase", err)
	}
}

func TestListDatabases(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	recs, err := s.ListDatabases(ctx)
	if err != nil {
		t.Fatalf("ListDatabases() failed: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("ListDatabases() = %v, want empty non-nil slice", recs)
	}

	writeTestDatabase(t, s, "b")
	writeTestDatabase(t, s, "a")
	recs, err = s.ListDatabases(ctx)
	if err != nil {
		t.Fatalf("ListDatabases() failed: %v", err)
	}
	if len(recs) != 2 || recs[0].Token != "a" || recs[1].Token != "b" {
		t.Errorf("ListDatabases() = %+v, want tokens [a b]", recs)
	}
}

func TestReadEdits_Empty(t *testing.T) {
	s := createTestStore(t)
	writeTestDatabase(t, s, "tok")

	edits, err := s.ReadEdits(context.Background(), "tok")
	if err != nil {
		t.Fatalf("ReadEdits() failed: %v", err)
	}
	if edits == nil || len(edits) != 0 {
		t.Errorf("ReadEdits() = %v, want empty non-nil slice", edits)
	}

	seq, err := s.LatestSeq(context.Background(), "tok")
	if err != nil {
		t.Fatalf("LatestSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("LatestSeq() = %d, want 0", seq)
	}
}

func TestReadEdits_RoundTripAndOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestDatabase(t, s, "a")
	writeTestDatabase(t, s, "b")

	want := []Edit{
		testEdit("a", OpAdd, 1, "p"),
		testEdit("a", OpAdd, 3, "q"),
		testEdit("a", OpRemove, 1, "p"),
	}
	if _, err := s.AppendEdit(ctx, testEdit("b", OpAdd, 1, "other")); err != nil {
		t.Fatalf("AppendEdit() failed: %v", err)
	}
	for i := range want {
		seq, err := s.AppendEdit(ctx, want[i])
		if err != nil {
			t.Fatalf("AppendEdit() failed: %v", err)
		}
		want[i].Seq = seq
	}

	got, err := s.ReadEdits(ctx, "a")
	if err != nil {
		t.Fatalf("ReadEdits() failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadEdits() mismatch (-want +got):\n%s", diff)
	}

	latest, err := s.LatestSeq(ctx, "a")
	if err != nil {
		t.Fatalf("LatestSeq() failed: %v", err)
	}
	if latest != want[2].Seq {
		t.Errorf("LatestSeq() = %d, want %d", latest, want[2].Seq)
	}

	history, err := s.ReadElementHistory(ctx, "a", 1)
	if err != nil {
		t.Fatalf("ReadElementHistory() failed: %v", err)
	}
	if len(history) != 2 || history[0].Op != OpAdd || history[1].Op != OpRemove {
		t.Errorf("ReadElementHistory() = %+v, want add then remove", history)
	}
}

func TestReadEdits_CorruptPayload(t *testing.T) {
	s := createTestStore(t)
	writeTestDatabase(t, s, "tok")

	_, err := s.db.Exec(`
		INSERT INTO vocab_edits (db_token, op, element_id, element_name, payload, spec_hash, db_string, last_id)
		VALUES ('tok', 'add', 1, 'p', '{"kind":"predicate","name":"p","args":[],"extra":1}', 'h', '', 2)
	`)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := s.ReadEdits(context.Background(), "tok"); err == nil {
		t.Error("expected error for payload with unknown field")
	}
}
