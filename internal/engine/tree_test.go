package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/scrypster/banyan/internal/storage"
	"github.com/scrypster/banyan/internal/storage/sqlite"
	"github.com/scrypster/banyan/pkg/types"
)

func newTreeFixture(t *testing.T) (*TreeBuilder, storage.Store) {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewTreeBuilder(st), st
}

func addEdge(t *testing.T, st storage.Store, fromID, toID, code, createdBy string, status types.RelationStatus) *types.Relation {
	t.Helper()
	rel, err := st.UpsertRelation(context.Background(), &types.Relation{
		ID:        types.NewRelationID(),
		FromID:    fromID,
		ToID:      toID,
		Code:      code,
		Status:    status,
		CreatedBy: createdBy,
	})
	if err != nil {
		t.Fatalf("failed to add edge %s→%s: %v", fromID, toID, err)
	}
	return rel
}

func levelNodes(tree *types.Tree, level int) []types.TreeNode {
	for _, l := range tree.Levels {
		if l.Level == level {
			return l.Nodes
		}
	}
	return nil
}

func TestBuild_AbsoluteLevels(t *testing.T) {
	b, st := newTreeFixture(t)
	ctx := context.Background()

	addPerson(t, st, "per:me", "9000000001", "Suresh")
	addPerson(t, st, "per:kaka", "9000000002", "Ramesh")
	addPerson(t, st, "per:son", "9000000003", "Rohan")
	addPerson(t, st, "per:bhau", "9000000004", "Mahesh")

	addEdge(t, st, "per:me", "per:kaka", "KAKA", "per:me", types.RelationConfirmed)
	addEdge(t, st, "per:me", "per:son", "MULGA", "per:me", types.RelationConfirmed)
	addEdge(t, st, "per:me", "per:bhau", "BHAU", "per:me", types.RelationConfirmed)

	tree, err := b.Build(ctx, "per:me", 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if tree.Root.ID != "per:me" {
		t.Errorf("expected root per:me, got %s", tree.Root.ID)
	}

	if nodes := levelNodes(tree, 1); len(nodes) != 1 || nodes[0].Person.ID != "per:kaka" {
		t.Errorf("expected uncle on level +1, got %v", nodes)
	}
	if nodes := levelNodes(tree, -1); len(nodes) != 1 || nodes[0].Person.ID != "per:son" {
		t.Errorf("expected son on level -1, got %v", nodes)
	}
	if nodes := levelNodes(tree, 0); len(nodes) != 1 || nodes[0].Person.ID != "per:bhau" {
		t.Errorf("expected brother on level 0, got %v", nodes)
	}

	// Levels sorted ascending.
	for i := 1; i < len(tree.Levels); i++ {
		if tree.Levels[i-1].Level >= tree.Levels[i].Level {
			t.Errorf("levels not sorted ascending: %v then %v", tree.Levels[i-1].Level, tree.Levels[i].Level)
		}
	}
}

func TestBuild_MultiHopLevelsAreAbsolute(t *testing.T) {
	b, st := newTreeFixture(t)
	ctx := context.Background()

	addPerson(t, st, "per:me", "9000000001", "Suresh")
	addPerson(t, st, "per:kaka", "9000000002", "Ramesh")
	addPerson(t, st, "per:cousin", "9000000003", "Rohan")

	// The uncle's son, added on the uncle's behalf, is leveled by his
	// own MULGA edge's metadata, not by a hop count through the uncle.
	addEdge(t, st, "per:me", "per:kaka", "KAKA", "per:me", types.RelationConfirmed)
	addEdge(t, st, "per:kaka", "per:cousin", "MULGA", "per:me", types.RelationConfirmed)

	tree, err := b.Build(ctx, "per:me", 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if nodes := levelNodes(tree, -1); len(nodes) != 1 || nodes[0].Person.ID != "per:cousin" {
		t.Errorf("expected cousin on level -1, got %v", nodes)
	}
}

func TestBuild_UncleClassAlwaysLevelOne(t *testing.T) {
	b, st := newTreeFixture(t)
	ctx := context.Background()

	addPerson(t, st, "per:me", "9000000001", "Suresh")
	addPerson(t, st, "per:father", "9000000002", "Vasant")
	addPerson(t, st, "per:granduncle", "9000000003", "Ramesh")

	// The father's KAKA sits two hops out, but a KAKA-coded relative
	// carries the code's own level wherever the traversal finds him.
	addEdge(t, st, "per:me", "per:father", "VADIL", "per:me", types.RelationConfirmed)
	addEdge(t, st, "per:father", "per:granduncle", "KAKA", "per:me", types.RelationConfirmed)

	tree, err := b.Build(ctx, "per:me", 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var found bool
	for _, l := range tree.Levels {
		for _, n := range l.Nodes {
			if n.Person.ID == "per:granduncle" {
				found = true
				if l.Level != 1 {
					t.Errorf("KAKA-coded relative must sit on level 1, got %d", l.Level)
				}
			}
		}
	}
	if !found {
		t.Error("granduncle missing from the tree")
	}
}

func TestBuild_DepthBound(t *testing.T) {
	b, st := newTreeFixture(t)
	ctx := context.Background()

	addPerson(t, st, "per:me", "9000000001", "Suresh")
	addPerson(t, st, "per:kaka", "9000000002", "Ramesh")
	addPerson(t, st, "per:cousin", "9000000003", "Rohan")

	addEdge(t, st, "per:me", "per:kaka", "KAKA", "per:me", types.RelationConfirmed)
	addEdge(t, st, "per:kaka", "per:cousin", "MULGA", "per:me", types.RelationConfirmed)

	tree, err := b.Build(ctx, "per:me", 1)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	total := 0
	for _, l := range tree.Levels {
		total += len(l.Nodes)
	}
	if total != 1 {
		t.Errorf("expected only the first hop at depth 1, got %d nodes", total)
	}
}

func TestBuild_HidesEdgesOfStrangers(t *testing.T) {
	b, st := newTreeFixture(t)
	ctx := context.Background()

	addPerson(t, st, "per:me", "9000000001", "Suresh")
	addPerson(t, st, "per:kaka", "9000000002", "Ramesh")
	addPerson(t, st, "per:private", "9000000003", "Mahesh")

	addEdge(t, st, "per:me", "per:kaka", "KAKA", "per:me", types.RelationConfirmed)
	// The uncle's own edge: viewer is neither participant nor creator.
	addEdge(t, st, "per:kaka", "per:private", "MULGA", "per:kaka", types.RelationConfirmed)

	tree, err := b.Build(ctx, "per:me", 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, l := range tree.Levels {
		for _, n := range l.Nodes {
			if n.Person.ID == "per:private" {
				t.Error("stranger's edge leaked into the tree")
			}
		}
	}
}

func TestBuild_SuppressesIncomingPending(t *testing.T) {
	b, st := newTreeFixture(t)
	ctx := context.Background()

	addPerson(t, st, "per:me", "9000000001", "Suresh")
	addPerson(t, st, "per:stranger", "9000000002", "Mahesh")

	addEdge(t, st, "per:stranger", "per:me", "BHAU", "per:stranger", types.RelationPending)

	tree, err := b.Build(ctx, "per:me", 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(tree.Levels) != 0 {
		t.Errorf("incoming pending request must not appear in the tree, got %v", tree.Levels)
	}
}

func TestBuild_OwnPendingOutgoingVisible(t *testing.T) {
	b, st := newTreeFixture(t)
	ctx := context.Background()

	addPerson(t, st, "per:me", "9000000001", "Suresh")
	addPerson(t, st, "per:kaka", "9000000002", "Ramesh")

	addEdge(t, st, "per:me", "per:kaka", "KAKA", "per:me", types.RelationPending)

	tree, err := b.Build(ctx, "per:me", 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	nodes := levelNodes(tree, 1)
	if len(nodes) != 1 || nodes[0].Person.ID != "per:kaka" {
		t.Errorf("own pending request must appear, got %v", nodes)
	}
	if nodes[0].Relation.Status != types.RelationPending {
		t.Errorf("expected PENDING status on node, got %s", nodes[0].Relation.Status)
	}
}

func TestBuild_StubAuthoredPendingVisible(t *testing.T) {
	b, st := newTreeFixture(t)
	ctx := context.Background()

	addPerson(t, st, "per:me", "9000000001", "Suresh")
	addPerson(t, st, "per:kaka", "9000000002", "Ramesh")

	// An unclaimed stub added as the uncle's brother, edge authored from
	// the stub's side on the viewer's behalf.
	stub := &types.Person{ID: "per:stub", Phone: "9000000003", FirstName: "Dinesh"}
	if err := st.StorePerson(ctx, stub); err != nil {
		t.Fatalf("StorePerson failed: %v", err)
	}

	addEdge(t, st, "per:me", "per:kaka", "KAKA", "per:me", types.RelationConfirmed)
	addEdge(t, st, "per:stub", "per:kaka", "BHAU", "per:me", types.RelationPending)

	tree, err := b.Build(ctx, "per:me", 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var found bool
	for _, l := range tree.Levels {
		for _, n := range l.Nodes {
			if n.Person.ID == "per:stub" {
				found = true
				if l.Level != 0 {
					t.Errorf("expected stub on the BHAU code's level 0, got %d", l.Level)
				}
			}
		}
	}
	if !found {
		t.Error("stub-authored pending edge must be visible to its creator")
	}
}

func TestBuild_MirrorPairYieldsOneNode(t *testing.T) {
	b, st := newTreeFixture(t)
	ctx := context.Background()

	addPerson(t, st, "per:me", "9000000001", "Suresh")
	addPerson(t, st, "per:kaka", "9000000002", "Ramesh")

	addEdge(t, st, "per:me", "per:kaka", "KAKA", "per:me", types.RelationConfirmed)
	addEdge(t, st, "per:kaka", "per:me", "PUTANYA", "per:kaka", types.RelationConfirmed)

	tree, err := b.Build(ctx, "per:me", 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	total := 0
	for _, l := range tree.Levels {
		total += len(l.Nodes)
	}
	if total != 1 {
		t.Errorf("mirror pair must produce a single node, got %d", total)
	}
}

func TestBuild_RootNotFound(t *testing.T) {
	b, _ := newTreeFixture(t)

	_, err := b.Build(context.Background(), "per:missing", 3)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}
