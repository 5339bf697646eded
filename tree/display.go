package tree

import "github.com/pterm/pterm"

// LeveledList flattens a tree into a pterm leveled list, ready for
// pterm.NewTreeFromLeveledList. Each node occupies one item, indented by its
// depth.
func (t *Tree) LeveledList() pterm.LeveledList {
	ll := pterm.LeveledList{}
	if t == nil {
		return ll
	}
	t.Walk(func(node *Tree, depth int) bool {
		ll = append(ll, pterm.LeveledListItem{
			Level: depth,
			Text:  node.Label,
		})
		return true
	})
	return ll
}

// Render prints a tree to the terminal.
func (t *Tree) Render() {
	root := pterm.NewTreeFromLeveledList(t.LeveledList())
	pterm.DefaultTree.WithRoot(root).Render()
}
