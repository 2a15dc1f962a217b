package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	next    key.Binding
	search  key.Binding
	keyword key.Binding
	play    key.Binding
	like    key.Binding
	open    key.Binding
	preview key.Binding
	sort    key.Binding
	more    key.Binding
	less    key.Binding
	clear   key.Binding
	left    key.Binding
	right   key.Binding
	yes     key.Binding
	no      key.Binding
	unlike  key.Binding
	reload  key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		keyword: key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "keyword search")),
		play:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		like:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "like/unlike")),
		open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		preview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview only")),
		sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		more:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "limit")),
		less:    key.NewBinding(key.WithKeys("-")),
		clear:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear history")),
		left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "drag left")),
		right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "drag right")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "like")),
		no:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "skip")),
		unlike:  key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "unlike")),
		reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.keyword, k.play, k.like, k.open},
		{k.preview, k.sort, k.more, k.clear},
		{k.left, k.right, k.yes, k.no, k.reload},
		{k.unlike, k.next, k.quit},
	}
}
