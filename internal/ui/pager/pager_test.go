package pager

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/hnflat/internal/thread"
)

func c(author string, children ...*thread.Comment) *thread.Comment {
	return &thread.Comment{ID: author, Author: author, Paragraphs: []string{"said " + author}, Children: children}
}

// a
//
//	b
//	  c
//	d
//
// e
func sample() thread.Forest {
	return thread.Forest{
		c("a", c("b", c("c")), c("d")),
		c("e"),
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func sized() Model {
	next, _ := New(thread.Post{Title: "T"}, sample(), "5 comments").Update(tea.WindowSizeMsg{Width: 100, Height: 60})
	return next.(Model)
}

func authorsOf(list []FlatComment) []string {
	out := make([]string, 0, len(list))
	for _, fc := range list {
		out = append(out, fc.Comment.Author)
	}
	return out
}

// Expectation: The flat list should follow pre-order with depths and descendant counts.
func Test_FlattenTree_Success(t *testing.T) {
	flat := FlattenTree(sample(), CollapseState{})

	require.Equal(t, []string{"a", "b", "c", "d", "e"}, authorsOf(flat))
	require.Equal(t, []int{0, 1, 2, 1, 0}, []int{flat[0].Depth, flat[1].Depth, flat[2].Depth, flat[3].Depth, flat[4].Depth})
	require.Equal(t, 3, flat[0].ChildCount)
	require.Equal(t, 0, flat[4].ChildCount)
}

// Expectation: Collapsed comments should hide their replies but keep their count.
func Test_FlattenTree_Collapsed_Success(t *testing.T) {
	forest := sample()
	flat := FlattenTree(forest, CollapseState{forest[0]: true})

	require.Equal(t, []string{"a", "e"}, authorsOf(flat))
	require.True(t, flat[0].IsCollapsed)
	require.Equal(t, 3, flat[0].ChildCount)
}

// Expectation: Parent and sibling lookups should respect depth.
func Test_FindIndexes_Success(t *testing.T) {
	flat := FlattenTree(sample(), CollapseState{})

	require.Equal(t, 1, FindParentIndex(flat, 2))
	require.Equal(t, 0, FindParentIndex(flat, 3))
	require.Equal(t, -1, FindParentIndex(flat, 0))
	require.Equal(t, -1, FindParentIndex(flat, 9))

	require.Equal(t, 3, FindNextSiblingIndex(flat, 1))
	require.Equal(t, 4, FindNextSiblingIndex(flat, 0))
	require.Equal(t, -1, FindNextSiblingIndex(flat, 3))
	require.Equal(t, -1, FindNextSiblingIndex(flat, 4))
}

// Expectation: j/k should move the selection and stop at the ends.
func Test_Model_Move_Success(t *testing.T) {
	m := press(t, sized(), "j", "j")
	require.Equal(t, 2, m.Selected())

	m = press(t, m, "k", "k", "k")
	require.Equal(t, 0, m.Selected())

	m = press(t, m, "G")
	require.Equal(t, 4, m.Selected())
	m = press(t, m, "j")
	require.Equal(t, 4, m.Selected())

	m = press(t, m, "g")
	require.Equal(t, 0, m.Selected())
}

// Expectation: [ and ] should jump to the parent and the next sibling.
func Test_Model_Navigate_Success(t *testing.T) {
	m := press(t, sized(), "j", "j")
	m = press(t, m, "[")
	require.Equal(t, 1, m.Selected())

	m = press(t, m, "]")
	require.Equal(t, 3, m.Selected())
}

// Expectation: Space should toggle a subtree and z should fold everything.
func Test_Model_Collapse_Success(t *testing.T) {
	m := press(t, sized(), "space")
	require.Equal(t, []string{"a", "e"}, authorsOf(m.Comments()))

	m = press(t, m, "space")
	require.Len(t, m.Comments(), 5)

	m = press(t, m, "z")
	require.Equal(t, []string{"a", "e"}, authorsOf(m.Comments()))

	m = press(t, m, "z")
	require.Len(t, m.Comments(), 5)
}

// Expectation: The view should show the title, summary and comment authors.
func Test_Model_View_Success(t *testing.T) {
	view := sized().View()

	require.Contains(t, view, "T")
	require.Contains(t, view, "5 comments")
	require.Contains(t, view, "@a")
	require.Contains(t, view, "[+3]")
}

// Expectation: An empty discussion should still render.
func Test_Model_Empty_Success(t *testing.T) {
	next, _ := New(thread.Post{Title: "T"}, nil, "").Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m := press(t, next.(Model), "j", "space", "z", "[", "]")

	require.Equal(t, 0, m.Selected())
	require.Contains(t, m.View(), "No comments.")
}

// Expectation: q should quit.
func Test_Model_Quit_Success(t *testing.T) {
	_, cmd := sized().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}
