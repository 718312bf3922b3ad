package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/scrypster/banyan/internal/storage"
	"github.com/scrypster/banyan/pkg/types"
)

// Tests in this package need a live PostgreSQL instance and are skipped
// unless BANYAN_TEST_POSTGRES is set to a connection string.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	connStr := os.Getenv("BANYAN_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("BANYAN_TEST_POSTGRES not set")
	}

	st, err := NewStore(connStr)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		st.db.Exec(`DELETE FROM notifications`)
		st.db.Exec(`DELETE FROM relations`)
		st.db.Exec(`DELETE FROM persons`)
		st.Close()
	})
	return st
}

func TestPersonRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	p := &types.Person{
		ID:               "per:pg1",
		Phone:            "9876543210",
		FirstName:        "Suresh",
		Gender:           types.GenderMale,
		ProfileCompleted: true,
	}
	if err := st.StorePerson(ctx, p); err != nil {
		t.Fatalf("StorePerson failed: %v", err)
	}

	got, err := st.GetPersonByPhone(ctx, "9876543210")
	if err != nil {
		t.Fatalf("GetPersonByPhone failed: %v", err)
	}
	if got.ID != "per:pg1" || got.FirstName != "Suresh" {
		t.Errorf("unexpected person: %+v", got)
	}
}

func TestUpsertRelation_ConflictUpdates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, p := range []*types.Person{
		{ID: "per:a", Phone: "9000000001", FirstName: "A"},
		{ID: "per:b", Phone: "9000000002", FirstName: "B"},
	} {
		if err := st.StorePerson(ctx, p); err != nil {
			t.Fatalf("StorePerson failed: %v", err)
		}
	}

	first, err := st.UpsertRelation(ctx, &types.Relation{
		ID: "rel:1", FromID: "per:a", ToID: "per:b", Code: "KAKA",
		Status: types.RelationPending, CreatedBy: "per:a",
	})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	second, err := st.UpsertRelation(ctx, &types.Relation{
		ID: "rel:2", FromID: "per:a", ToID: "per:b", Code: "KAKA",
		Status: types.RelationConfirmed,
	})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected original row ID %s, got %s", first.ID, second.ID)
	}
	if second.Status != types.RelationConfirmed {
		t.Errorf("expected CONFIRMED, got %s", second.Status)
	}
	if second.CreatedBy != "per:a" {
		t.Errorf("expected creator preserved, got %q", second.CreatedBy)
	}
}

func TestGetRelation_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetRelation(context.Background(), "rel:missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
