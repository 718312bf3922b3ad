package engine

import (
	"context"
	"errors"
	"sort"

	"github.com/scrypster/banyan/internal/kinship"
	"github.com/scrypster/banyan/internal/storage"
	"github.com/scrypster/banyan/pkg/types"
)

const (
	// DefaultTreeDepth is the hop limit used when the caller does not ask
	// for one.
	DefaultTreeDepth = 3

	// MaxTreeDepth caps the hop limit to keep traversal cost bounded.
	MaxTreeDepth = 10
)

// TreeBuilder assembles generation-leveled tree views of the kinship
// graph.
type TreeBuilder struct {
	store storage.Store
}

// NewTreeBuilder creates a tree builder over the given store.
func NewTreeBuilder(store storage.Store) *TreeBuilder {
	return &TreeBuilder{store: store}
}

// Build runs a breadth-first traversal from the viewer, up to maxDepth
// hops, and groups the discovered relatives by absolute generation level.
//
// A person's level is the signed generation level of the code on the
// edge that discovered them, taken from the directory metadata alone,
// so every uncle-class relative lands on level 1 regardless of how many
// hops the traversal needed to reach them. Each person appears once, at
// the level of their first discovery.
//
// Visibility: an edge is walked only when the viewer is one of its
// endpoints or its creator. Incoming pending requests are suppressed, and
// another person's outgoing edges toward the frontier are walked only
// once confirmed, unless their author is still an unclaimed stub.
func (b *TreeBuilder) Build(ctx context.Context, viewerID string, maxDepth int) (*types.Tree, error) {
	root, err := b.store.GetPerson(ctx, viewerID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &NotFoundError{Kind: "person", ID: viewerID}
	}
	if err != nil {
		return nil, dependency("failed to load tree root", err)
	}

	if maxDepth <= 0 {
		maxDepth = DefaultTreeDepth
	}
	if maxDepth > MaxTreeDepth {
		maxDepth = MaxTreeDepth
	}

	visited := map[string]bool{viewerID: true}
	frontier := []string{viewerID}
	nodesByLevel := make(map[int][]types.TreeNode)

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		edges, err := b.store.ListTouching(ctx, frontier)
		if err != nil {
			return nil, dependency("failed to expand tree frontier", err)
		}
		if len(edges) == 0 {
			break
		}

		inFrontier := make(map[string]bool, len(frontier))
		for _, id := range frontier {
			inFrontier[id] = true
		}

		ids := make([]string, 0, 2*len(edges))
		seen := make(map[string]bool, 2*len(edges))
		for _, rel := range edges {
			for _, id := range []string{rel.FromID, rel.ToID} {
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
		persons, err := b.store.GetPersons(ctx, ids)
		if err != nil {
			return nil, dependency("failed to load tree persons", err)
		}

		var next []string
		for _, rel := range edges {
			sourceID := rel.FromID
			if !inFrontier[sourceID] {
				sourceID = rel.ToID
			}
			neighborID := otherEndpoint(rel, sourceID)
			if visited[neighborID] {
				continue
			}

			if !rel.IsParticipant(viewerID) && rel.CreatedBy != viewerID {
				continue
			}
			if rel.Status == types.RelationPending && rel.ToID == viewerID {
				continue
			}

			outgoing := rel.FromID == sourceID
			if !outgoing && rel.Status != types.RelationConfirmed {
				// A pending edge authored toward the frontier is shown
				// only while its author is an unclaimed stub.
				author := persons[rel.FromID]
				if author == nil || author.ProfileCompleted {
					continue
				}
			}

			neighbor := persons[neighborID]
			if neighbor == nil {
				continue
			}

			// The level comes from the traversed code's metadata alone,
			// not from a running sum: a KAKA-coded relative sits on
			// level 1 no matter how many hops away they were found.
			code := rel.Code
			if !outgoing {
				code = kinship.Reciprocal(rel.Code)
			}
			level := kinship.SignedLevel(code)

			visited[neighborID] = true
			next = append(next, neighborID)

			nodesByLevel[level] = append(nodesByLevel[level], types.TreeNode{
				Person:   ResolveDisplayPerson(neighbor, rel, viewerID),
				Relation: ResolveView(rel, viewerID, sourceID),
			})
		}
		frontier = next
	}

	levels := make([]int, 0, len(nodesByLevel))
	for level := range nodesByLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	tree := &types.Tree{Root: root, Levels: make([]types.TreeLevel, 0, len(levels))}
	for _, level := range levels {
		tree.Levels = append(tree.Levels, types.TreeLevel{Level: level, Nodes: nodesByLevel[level]})
	}
	return tree, nil
}
