// Package pager is an interactive viewer for a flattened discussion.
package pager

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/hnflat/internal/thread"
)

const (
	scrollStep = 3
	maxIndent  = 30
	minBody    = 20
)

type commentOffset struct {
	startLine int
	endLine   int
}

// Model is the discussion viewer.
type Model struct {
	viewport    viewport.Model
	post        thread.Post
	summary     string
	forest      thread.Forest
	comments    []FlatComment
	offsets     []commentOffset
	selectedIdx int
	collapse    CollapseState
	width       int
	height      int
}

// New creates a viewer for forest. summary is shown under the title.
func New(post thread.Post, forest thread.Forest, summary string) Model {
	m := Model{
		viewport: viewport.New(0, 0),
		post:     post,
		summary:  summary,
		forest:   forest,
		collapse: make(CollapseState),
	}
	m.rebuildComments()
	return m
}

// Run shows the viewer full screen until the user quits.
func Run(post thread.Post, forest thread.Forest, summary string) error {
	p := tea.NewProgram(New(post, forest, summary), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetSize updates viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.resizeViewport()
	m.rebuildContent()
}

func (m *Model) resizeViewport() {
	header := m.renderHeader()
	headerLines := strings.Count(header, "\n") + 1
	m.viewport.Height = max(1, m.height-headerLines)
}

// Selected returns the index of the selected comment in Comments.
func (m Model) Selected() int {
	return m.selectedIdx
}

// Comments returns the currently visible comments.
func (m Model) Comments() []FlatComment {
	return m.comments
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, Keys.Down):
			if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
				off := m.offsets[m.selectedIdx]
				if off.endLine >= m.viewport.YOffset+m.viewport.Height {
					// Comment extends below viewport, scroll within it.
					m.viewport.SetYOffset(m.viewport.YOffset + scrollStep)
					return m, nil
				}
			}
			if m.selectedIdx < len(m.comments)-1 {
				m.selectedIdx++
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case key.Matches(msg, Keys.Up):
			if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
				off := m.offsets[m.selectedIdx]
				if off.startLine < m.viewport.YOffset {
					m.viewport.SetYOffset(max(off.startLine, m.viewport.YOffset-scrollStep))
					return m, nil
				}
			}
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case key.Matches(msg, Keys.Collapse):
			if m.selectedIdx >= 0 && m.selectedIdx < len(m.comments) {
				c := m.comments[m.selectedIdx].Comment
				if !c.IsLeaf() {
					m.collapse[c] = !m.collapse[c]
					m.rebuildComments()
					m.rebuildContent()
				}
			}
			return m, nil
		case key.Matches(msg, Keys.CollapseAll):
			// If any are expanded, collapse all; otherwise expand all.
			anyExpanded := false
			for _, fc := range m.comments {
				if !fc.IsCollapsed && !fc.Comment.IsLeaf() {
					anyExpanded = true
					break
				}
			}
			m.forest.Walk(func(c, _ *thread.Comment) bool {
				if !c.IsLeaf() {
					m.collapse[c] = anyExpanded
				}
				return true
			})
			m.rebuildComments()
			m.rebuildContent()
			if anyExpanded {
				m.selectedIdx = 0
				m.viewport.GotoTop()
			}
			return m, nil
		case key.Matches(msg, Keys.Parent):
			if idx := FindParentIndex(m.comments, m.selectedIdx); idx >= 0 {
				m.selectedIdx = idx
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case key.Matches(msg, Keys.NextSib):
			if idx := FindNextSiblingIndex(m.comments, m.selectedIdx); idx >= 0 {
				m.selectedIdx = idx
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case key.Matches(msg, Keys.Home):
			m.selectedIdx = 0
			m.rebuildContent()
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, Keys.End):
			if len(m.comments) > 0 {
				m.selectedIdx = len(m.comments) - 1
				m.rebuildContent()
				m.viewport.GotoBottom()
			}
			return m, nil
		case key.Matches(msg, Keys.PageDown):
			m.viewport.HalfViewDown()
			return m, nil
		case key.Matches(msg, Keys.PageUp):
			m.viewport.HalfViewUp()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.viewport.View())
}

func (m *Model) rebuildComments() {
	m.comments = FlattenTree(m.forest, m.collapse)
	if m.selectedIdx >= len(m.comments) {
		m.selectedIdx = len(m.comments) - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
}

func (m *Model) rebuildContent() {
	if len(m.comments) == 0 {
		m.offsets = nil
		m.viewport.SetContent("  No comments.")
		return
	}

	var sb strings.Builder
	m.offsets = make([]commentOffset, len(m.comments))
	availWidth := max(minBody, m.width-4)

	lineCount := 0
	for i, fc := range m.comments {
		startLine := lineCount
		indentStr := strings.Repeat(" ", min(fc.Depth*2, maxIndent))

		barColor := depthColors[fc.Depth%len(depthColors)]
		selected := i == m.selectedIdx
		if selected {
			barColor = hnOrange
		}
		bar := lipgloss.NewStyle().Foreground(barColor).Render("│")

		header := authorStyle.Render("@" + fc.Comment.Author)
		if fc.ChildCount > 0 {
			header += " " + metaStyle.Render(fmt.Sprintf("[+%d]", fc.ChildCount))
		}
		if fc.IsCollapsed {
			header += " " + metaStyle.Render("(collapsed)")
		}

		headerLine := indentStr + bar + " " + header
		if selected {
			headerLine = selectedStyle.Render(headerLine)
		}
		sb.WriteString(headerLine + "\n")
		lineCount++

		if !fc.IsCollapsed {
			bodyWidth := max(minBody, availWidth-len(indentStr)-2)
			body := lipgloss.NewStyle().Width(bodyWidth).Render(strings.Join(fc.Comment.Paragraphs, "\n\n"))
			for _, line := range strings.Split(body, "\n") {
				bodyLine := indentStr + bar + " " + line
				if selected {
					bodyLine = selectedStyle.Render(bodyLine)
				}
				sb.WriteString(bodyLine + "\n")
				lineCount++
			}
		}
		sb.WriteString("\n")
		lineCount++

		m.offsets[i] = commentOffset{startLine: startLine, endLine: lineCount - 1}
	}

	m.viewport.SetContent(sb.String())
}

func (m *Model) scrollToCursor() {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.offsets) {
		return
	}
	off := m.offsets[m.selectedIdx]
	if off.startLine < m.viewport.YOffset || off.startLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(off.startLine)
	}
}

func (m Model) renderHeader() string {
	parts := []string{titleStyle.Render(m.post.Title)}
	if m.post.LinkURL != "" {
		parts = append(parts, headerMeta.Render(m.post.LinkURL))
	}
	if m.summary != "" {
		parts = append(parts, headerMeta.Render(m.summary))
	}
	parts = append(parts, separatorStyle.Render(strings.Repeat("─", max(0, m.width))))
	parts = append(parts, metaStyle.Render("j/k:move  [:parent  ]:sibling  space:collapse  z:fold all  g/G:top/bottom  q:quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
