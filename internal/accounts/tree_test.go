package accounts

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func fixtureForest(t *testing.T) (*Tree, map[string]uuid.UUID) {
	t.Helper()
	guids := map[string]uuid.UUID{}
	for _, name := range []string{"root", "assets", "bank", "checking", "expenses"} {
		guids[name] = uuid.New()
	}
	ref := func(name string) *uuid.UUID {
		g := guids[name]
		return &g
	}
	tree, err := NewTree([]Account{
		{GUID: guids["checking"], Name: "Checking", Type: TypeBank, ParentGUID: ref("bank")},
		{GUID: guids["root"], Name: "Root Account", Type: TypeRoot},
		{GUID: guids["assets"], Name: "Assets", Type: TypeAsset, ParentGUID: ref("root"), Placeholder: true},
		{GUID: guids["bank"], Name: "Bank", Type: TypeAsset, ParentGUID: ref("assets"), Placeholder: true},
		{GUID: guids["expenses"], Name: "Expenses", Type: TypeExpense, ParentGUID: ref("root")},
	})
	require.NoError(t, err)
	return tree, guids
}

func TestTreePostOrderChildrenBeforeParents(t *testing.T) {
	tree, guids := fixtureForest(t)
	root, ok := tree.Root()
	require.True(t, ok)
	require.Equal(t, guids["root"], tree.At(root).GUID)

	order := tree.PostOrder(root)
	require.Len(t, order, tree.Len())
	seen := map[uuid.UUID]bool{}
	for _, i := range order {
		for _, c := range tree.Children(i) {
			require.True(t, seen[tree.At(c).GUID], "child %s must precede parent %s", tree.At(c).Name, tree.At(i).Name)
		}
		seen[tree.At(i).GUID] = true
	}
}

func TestTreeFullNameExcludesRoot(t *testing.T) {
	tree, guids := fixtureForest(t)
	i, ok := tree.Lookup(guids["checking"])
	require.True(t, ok)
	require.Equal(t, "Assets:Bank:Checking", tree.FullName(i))
	require.Equal(t, 3, tree.Depth(i))
}

func TestTreeRejectsUnknownParent(t *testing.T) {
	stray := uuid.New()
	_, err := NewTree([]Account{{GUID: uuid.New(), Name: "Orphan", Type: TypeAsset, ParentGUID: &stray}})
	require.Error(t, err)
}

func TestSubtreeScopesDescendantsOnly(t *testing.T) {
	tree, guids := fixtureForest(t)
	i, ok := tree.Lookup(guids["assets"])
	require.True(t, ok)
	sub := tree.Subtree(i)
	names := map[string]bool{}
	for _, j := range sub {
		names[tree.At(j).Name] = true
	}
	require.Equal(t, map[string]bool{"Assets": true, "Bank": true, "Checking": true}, names)
}
