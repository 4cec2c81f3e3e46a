package cli

import (
	"fmt"
	"math"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/wikigraph/pkg/errors"
	"github.com/matzehuels/wikigraph/pkg/explore"
	"github.com/matzehuels/wikigraph/pkg/geom"
	"github.com/matzehuels/wikigraph/pkg/graph"
	"github.com/matzehuels/wikigraph/pkg/store"
	"github.com/matzehuels/wikigraph/pkg/wiki"
)

// Screen geometry.
const (
	panelWidth    = 36
	statusHeight  = 2
	cellAspect    = 0.5 // terminal cells are about twice as tall as wide
	dragCells     = 2   // canvas cells moved per arrow press
	maxLabelRunes = 24
	maxLinksShown = 12
	minZoom       = 0.05
	maxZoom       = 20
)

const helpText = "enter expand · c collapse · ↑↓ roots · ←→ links · o open · m move · +/- zoom · q quit"

// Messages delivered to the model.
type (
	frameMsg        graph.Graph
	framesClosedMsg struct{}
	exploreEventMsg explore.Event
	statusMsg       string
)

// exploreModel is the bubbletea model of an interactive session. It only
// reads published frames and talks to the session through its inbound
// methods, so it never blocks the simulation.
//
// The selection cursor has two levels. Roots are the expanded articles in
// the order they were expanded, starting with the seed; within a root the
// cursor walks the root and its outgoing links.
type exploreModel struct {
	loop   *explore.Loop
	frames <-chan graph.Graph
	events <-chan explore.Event

	frame    graph.Graph
	roots    []string
	root     string
	selected string
	zoom     float64
	moving   bool
	dragPos  geom.Vec
	status   string

	width, height int
}

func newExploreModel(loop *explore.Loop, frames <-chan graph.Graph, events <-chan explore.Event) exploreModel {
	m := exploreModel{
		loop:   loop,
		frames: frames,
		events: events,
		zoom:   1,
		status: helpText,
		width:  100,
		height: 30,
	}
	m.setFrame(loop.Snapshot())
	return m
}

// setFrame installs a new frame, keeping the cursor on nodes that still
// exist.
func (m *exploreModel) setFrame(g graph.Graph) {
	m.frame = g
	if _, ok := g.Node(m.selected); !ok {
		m.selected = g.Seed
		m.moving = false
	}

	roots := make([]string, 0, len(m.roots)+1)
	roots = append(roots, g.Seed)
	for _, id := range m.roots {
		if n, ok := g.Node(id); ok && n.Expanded && id != g.Seed {
			roots = append(roots, id)
		}
	}
	for _, n := range g.Nodes {
		if !n.Expanded || slices.Contains(roots, n.ID) {
			continue
		}
		roots = append(roots, n.ID)
		// Expanding the selection makes it the current root.
		if n.ID == m.selected {
			m.root = n.ID
		}
	}
	m.roots = roots
	if !slices.Contains(m.roots, m.root) {
		m.root = m.rootOf(m.selected)
	}
}

// rootOf returns the root whose links contain id, preferring earlier roots.
func (m exploreModel) rootOf(id string) string {
	if slices.Contains(m.roots, id) {
		return id
	}
	for _, r := range m.roots {
		if slices.Contains(m.frame.Neighbors(r), id) {
			return r
		}
	}
	return m.frame.Seed
}

func waitFrame(ch <-chan graph.Graph) tea.Cmd {
	return func() tea.Msg {
		g, ok := <-ch
		if !ok {
			return framesClosedMsg{}
		}
		return frameMsg(g)
	}
}

func waitEvent(ch <-chan explore.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return exploreEventMsg(ev)
	}
}

func (m exploreModel) Init() tea.Cmd {
	return tea.Batch(waitFrame(m.frames), waitEvent(m.events))
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case frameMsg:
		m.setFrame(graph.Graph(msg))
		return m, waitFrame(m.frames)
	case framesClosedMsg:
		return m, tea.Quit
	case exploreEventMsg:
		m.status = explore.Event(msg).String()
		return m, waitEvent(m.events)
	case statusMsg:
		m.status = string(msg)
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m exploreModel) handleKey(key string) (tea.Model, tea.Cmd) {
	if m.moving {
		if d, ok := arrowDelta(key); ok {
			step := dragCells / m.viewport().scale
			m.dragPos = m.dragPos.Add(geom.Vec{X: d.X * step, Y: d.Y * step / cellAspect})
			m.loop.OnDragMove(m.selected, m.dragPos)
			return m, nil
		}
	}

	switch key {
	case "q", "ctrl+c":
		if m.moving {
			m.loop.OnDragEnd(m.selected)
		}
		return m, tea.Quit
	case "tab", "n":
		m.step(1)
	case "shift+tab", "p":
		m.step(-1)
	case "down", "j", "J":
		m.stepRoot(1)
	case "up", "k", "K":
		m.stepRoot(-1)
	case "l":
		m.stepChild(1, false)
	case "h":
		m.stepChild(-1, false)
	case "right":
		m.stepChild(1, true)
	case "left":
		m.stepChild(-1, true)
	case "o":
		return m, openArticle(m.articleURL(m.selected))
	case "enter":
		m.loop.OnExpandRequested(m.selected)
	case "c":
		if m.selected == m.frame.Seed {
			m.status = "the seed cannot be collapsed"
			break
		}
		m.loop.OnCollapseRequested(m.selected)
	case "m", "esc":
		m.toggleMove(key == "esc")
	case "+", "=":
		m.zoom = min(m.zoom*1.25, maxZoom)
	case "-", "_":
		m.zoom = max(m.zoom/1.25, minZoom)
	case "0":
		m.zoom = 1
	}
	return m, nil
}

func (m *exploreModel) toggleMove(releaseOnly bool) {
	if m.moving {
		m.moving = false
		m.loop.OnDragEnd(m.selected)
		m.status = helpText
		return
	}
	if releaseOnly {
		return
	}
	n, ok := m.frame.Node(m.selected)
	if !ok {
		return
	}
	m.moving = true
	m.dragPos = n.Pos()
	m.loop.OnDragStart(m.selected)
	m.status = "move mode: arrows drag " + m.selected + " · m to release"
}

// step moves the selection through all nodes in insertion order.
func (m *exploreModel) step(dir int) {
	if m.moving || len(m.frame.Nodes) == 0 {
		return
	}
	i := 0
	for j, n := range m.frame.Nodes {
		if n.ID == m.selected {
			i = j
			break
		}
	}
	m.selected = m.frame.Nodes[wrap(i+dir, len(m.frame.Nodes))].ID
	m.root = m.rootOf(m.selected)
}

// stepRoot moves to the next or previous root and selects it.
func (m *exploreModel) stepRoot(dir int) {
	if m.moving || len(m.roots) == 0 {
		return
	}
	i := max(slices.Index(m.roots, m.root), 0)
	m.root = m.roots[wrap(i+dir, len(m.roots))]
	m.selected = m.root
}

// stepChild cycles through the current root and its links. With
// articlesOnly set, titles that are not articles are skipped.
func (m *exploreModel) stepChild(dir int, articlesOnly bool) {
	if m.moving {
		return
	}
	ring := append([]string{m.root}, m.frame.Neighbors(m.root)...)
	i := max(slices.Index(ring, m.selected), 0)
	for k := 1; k <= len(ring); k++ {
		id := ring[wrap(i+dir*k, len(ring))]
		if !articlesOnly || m.isArticle(id) {
			m.selected = id
			return
		}
	}
}

// isArticle reports whether id names a main-namespace article the link
// source did not reject as missing.
func (m exploreModel) isArticle(id string) bool {
	if wiki.HasNamespace(id) {
		return false
	}
	n, ok := m.frame.Node(id)
	return ok && n.ErrorCode != string(errors.ErrCodeArticleNotFound)
}

func (m exploreModel) articleURL(id string) string {
	return wiki.ArticleURL(m.frame.Language, id)
}

// openArticle opens link in the browser off the update goroutine.
func openArticle(link string) tea.Cmd {
	return func() tea.Msg {
		if err := openURL(link); err != nil {
			return statusMsg("cannot open " + link + ": " + err.Error())
		}
		return statusMsg("opened " + link)
	}
}

func wrap(i, n int) int {
	return (i%n + n) % n
}

func arrowDelta(key string) (geom.Vec, bool) {
	switch key {
	case "up":
		return geom.Vec{Y: -1}, true
	case "down":
		return geom.Vec{Y: 1}, true
	case "left":
		return geom.Vec{X: -1}, true
	case "right":
		return geom.Vec{X: 1}, true
	}
	return geom.Vec{}, false
}

// =============================================================================
// Rendering
// =============================================================================

// viewport maps layout coordinates onto canvas cells.
type viewport struct {
	center geom.Vec
	scale  float64
	w, h   int
}

func (m exploreModel) viewport() viewport {
	w := max(m.width-panelWidth, 10)
	h := max(m.height-statusHeight, 5)
	lo, hi := m.frame.Bounds()
	span := hi.Sub(lo)
	fit := min(float64(w-4)/max(span.X, 1), float64(h-2)/max(span.Y*cellAspect, 1))
	return viewport{
		center: lo.Add(span.Scale(0.5)),
		scale:  fit * m.zoom,
		w:      w,
		h:      h,
	}
}

func (v viewport) project(p geom.Vec) (int, int) {
	x := (p.X-v.center.X)*v.scale + float64(v.w)/2
	y := (p.Y-v.center.Y)*v.scale*cellAspect + float64(v.h)/2
	return int(math.Round(x)), int(math.Round(y))
}

// Cell styles, indexes into cellStyles.
const (
	paintNone = iota
	paintEdge
	paintLabel
	paintSelected
	paintUnexpanded
	paintFetching
	paintExpanded
	paintFailed
)

var cellStyles = []lipgloss.Style{
	paintNone:       lipgloss.NewStyle(),
	paintEdge:       lipgloss.NewStyle().Foreground(colorDim),
	paintLabel:      lipgloss.NewStyle().Foreground(colorGray),
	paintSelected:   lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Reverse(true),
	paintUnexpanded: stateStyles[store.StateUnexpanded],
	paintFetching:   stateStyles[store.StateFetching],
	paintExpanded:   stateStyles[store.StateExpanded],
	paintFailed:     stateStyles[store.StateFetchFailed],
}

var statePaint = map[store.State]int{
	store.StateUnexpanded:  paintUnexpanded,
	store.StateFetching:    paintFetching,
	store.StateExpanded:    paintExpanded,
	store.StateFetchFailed: paintFailed,
}

type cell struct {
	r     rune
	paint int
}

type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

func (c *canvas) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return nil
	}
	return &c.cells[y*c.w+x]
}

// line draws a Bresenham line of edge dots, leaving painted cells alone.
func (c *canvas) line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for steps := 0; steps < 4*(c.w+c.h); steps++ {
		if cl := c.at(x0, y0); cl != nil && cl.paint == paintNone {
			*cl = cell{r: '·', paint: paintEdge}
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		if e2 := 2 * e; e2 >= dy {
			e += dy
			x0 += sx
		} else {
			e += dx
			y0 += sy
		}
	}
}

// text writes s from (x, y), overwriting edges but not nodes.
func (c *canvas) text(x, y int, s string, paint int) {
	for _, r := range s {
		if cl := c.at(x, y); cl != nil && cl.paint <= paintLabel {
			*cl = cell{r: r, paint: paint}
		}
		x++
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y := range c.h {
		row := c.cells[y*c.w : (y+1)*c.w]
		for start := 0; start < len(row); {
			end := start
			var run strings.Builder
			for end < len(row) && row[end].paint == row[start].paint {
				run.WriteRune(row[end].r)
				end++
			}
			if row[start].paint == paintNone {
				b.WriteString(run.String())
			} else {
				b.WriteString(cellStyles[row[start].paint].Render(run.String()))
			}
			start = end
		}
		if y < c.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m exploreModel) renderCanvas() string {
	v := m.viewport()
	c := newCanvas(v.w, v.h)

	pos := make(map[string][2]int, len(m.frame.Nodes))
	for _, n := range m.frame.Nodes {
		x, y := v.project(n.Pos())
		pos[n.ID] = [2]int{x, y}
	}
	for _, e := range m.frame.Edges {
		a, b := pos[e.From], pos[e.To]
		c.line(a[0], a[1], b[0], b[1])
	}
	for _, n := range m.frame.Nodes {
		p := pos[n.ID]
		state := store.ParseState(n.State)
		paint := statePaint[state]
		if n.ID == m.selected {
			paint = paintSelected
		}
		if cl := c.at(p[0], p[1]); cl != nil {
			*cl = cell{r: []rune(stateIcons[state])[0], paint: paint}
		}
	}
	// Labels go last so every icon is placed before text avoids it.
	for _, n := range m.frame.Nodes {
		if n.ID != m.selected && !n.Expanded && n.ID != m.frame.Seed {
			continue
		}
		p := pos[n.ID]
		paint := paintLabel
		if n.ID == m.selected {
			paint = paintSelected
		}
		c.text(p[0]+2, p[1], truncate(n.ID, maxLabelRunes), paint)
	}
	return c.String()
}

func (m exploreModel) renderPanel(height int) string {
	var b strings.Builder
	n, ok := m.frame.Node(m.selected)
	if !ok {
		return ""
	}
	state := store.ParseState(n.State)
	width := panelWidth - 4

	b.WriteString(StyleTitle.Render(truncate(n.ID, width)))
	b.WriteString("\n")
	b.WriteString(stateStyles[state].Render(stateIcons[state] + " " + n.State))
	if n.Pinned {
		b.WriteString(StyleWarning.Render("  pinned"))
	}
	if n.ID == m.frame.Seed {
		b.WriteString(StyleDim.Render("  seed"))
	}
	b.WriteString("\n")

	link := m.articleURL(n.ID)
	kind := wiki.KindOther.String()
	if u, err := wiki.ParseURL(link); err == nil {
		kind = u.Kind.String()
	}
	if n.ErrorCode == string(errors.ErrCodeArticleNotFound) {
		kind = "missing article"
	}
	b.WriteString(StyleDim.Render(kind))
	if m.root != n.ID {
		b.WriteString(StyleDim.Render(" · in " + truncate(m.root, width-20)))
	}
	b.WriteString("\n")
	b.WriteString(StyleLink.Width(width).Render(link))
	b.WriteString("\n")
	if n.Error != "" {
		b.WriteString("\n")
		b.WriteString(StyleError.Width(width).Render(n.Error))
		b.WriteString("\n")
	}

	if links := m.frame.Neighbors(n.ID); len(links) > 0 {
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(fmt.Sprintf("links (%d)", len(links))))
		b.WriteString("\n")
		for i, l := range links {
			if i == maxLinksShown {
				b.WriteString(StyleDim.Render(fmt.Sprintf("  … %d more", len(links)-maxLinksShown)))
				b.WriteString("\n")
				break
			}
			b.WriteString("  " + iconArrow + " " + truncate(l, width-4) + "\n")
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorDim).
		Padding(0, 1).
		Width(panelWidth - 2).
		Height(max(height-2, 1)).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (m exploreModel) renderStatus() string {
	stats := fmt.Sprintf("tick %d · %d articles · %d links · %d fetching · zoom %.2fx",
		m.frame.Tick, len(m.frame.Nodes), len(m.frame.Edges), m.frame.InFlight, m.zoom)
	if m.frame.Stats != nil {
		stats += fmt.Sprintf(" · energy %.1f", m.frame.Stats.Energy)
	}
	line := StyleDim.Render(stats)
	if m.moving {
		line = StyleWarning.Render("MOVE ") + line
	}
	return line + "\n" + StyleHighlight.Render(truncate(m.status, max(m.width-1, 10)))
}

func (m exploreModel) View() string {
	v := m.viewport()
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderCanvas(), m.renderPanel(v.h))
	return body + "\n" + m.renderStatus()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
