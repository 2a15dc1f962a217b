package ui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/swipebeats/internal/discovery"
	"github.com/desertthunder/swipebeats/internal/likes"
	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/player"
	"github.com/desertthunder/swipebeats/internal/shared"
	"github.com/desertthunder/swipebeats/internal/swipe"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ExploreView ViewState = iota
	SwipeView
	LikedView
)

var viewNames = []string{"Explore", "Swipe", "Liked"}

func (v ViewState) String() string { return viewNames[v] }

const (
	cardWidth  = 44
	cardSlack  = 12   // columns the card can travel each way
	dragNudge  = 40.0 // points per h/l press
	dragScale  = 10.0 // points per column of card travel
	limitStep  = 25
	listMargin = 12
)

// Options configures a [Model].
type Options struct {
	Presets     []models.SearchPreset
	SwipePreset models.SearchPreset
	SwipeLimit  int
	InitialView ViewState
	OpenURL     func(string) error // defaults to [shared.OpenBrowser]
	Logger      *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	explore *discovery.Session
	swipe   *swipe.Session
	likes   *likes.Store
	player  *player.Player
	opts    Options
	logger  *log.Logger

	width   int
	height  int
	input   textinput.Model
	typing  bool
	results list.Model
	liked   list.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	exploreSnap discovery.Snapshot
	swipeSnap   swipe.Snapshot
	likesSnap   likes.Snapshot
	playerSnap  player.Snapshot

	exploreCh <-chan discovery.Snapshot
	swipeCh   <-chan swipe.Snapshot
	likesCh   <-chan likes.Snapshot
	playerCh  <-chan player.Snapshot
	cancels   []func()

	status string
	err    error
}

// NewModel creates a new TUI model over the provided sessions and subscribes to their snapshots.
//
// Call [Model.Close] once the program exits to release the subscriptions.
func NewModel(ctx context.Context, explore *discovery.Session, sw *swipe.Session, store *likes.Store, pl *player.Player, opts Options) *Model {
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	input := textinput.New()
	input.Placeholder = "Search tracks, artists, genres"
	input.Prompt = "🔍 "
	input.CharLimit = 120

	m := &Model{
		ctx:     ctx,
		view:    opts.InitialView,
		explore: explore,
		swipe:   sw,
		likes:   store,
		player:  pl,
		opts:    opts,
		logger:  shared.WithLogger(opts.Logger, "component", "ui"),
		input:   input,
		results: newList("Presets & recent searches"),
		liked:   newList("Liked tracks"),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys:    newKeyMap(),
	}

	var cancel func()
	m.exploreCh, cancel = explore.Subscribe(shared.DefaultSubscriberBuffer)
	m.cancels = append(m.cancels, cancel)
	m.swipeCh, cancel = sw.Subscribe(shared.DefaultSubscriberBuffer)
	m.cancels = append(m.cancels, cancel)
	m.likesCh, cancel = store.Subscribe(shared.DefaultSubscriberBuffer)
	m.cancels = append(m.cancels, cancel)
	m.playerCh, cancel = pl.Subscribe(shared.DefaultSubscriberBuffer)
	m.cancels = append(m.cancels, cancel)

	m.exploreSnap = explore.Snapshot()
	m.swipeSnap = sw.Snapshot()
	m.likesSnap = store.Snapshot()
	m.playerSnap = pl.Snapshot()
	m.refreshResults()
	m.refreshLiked()
	return m
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()
	return l
}

// Close releases the snapshot subscriptions.
func (m *Model) Close() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
}

// ActiveView returns the view currently shown.
func (m *Model) ActiveView() ViewState { return m.view }

// Init starts the snapshot listeners and loads the first swipe deck.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		listen(m.exploreCh, exploreUpdatedMsg),
		listen(m.swipeCh, swipeUpdatedMsg),
		listen(m.likesCh, likesUpdatedMsg),
		listen(m.playerCh, playerUpdatedMsg),
		m.spinner.Tick,
		m.loadSwipe(),
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.SetSize(msg.Width-4, max(msg.Height-listMargin, 4))
		m.liked.SetSize(msg.Width-4, max(msg.Height-listMargin+2, 4))
		m.input.Width = max(msg.Width-8, 20)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.typing {
			return m.handleInputKeys(msg)
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.next):
			m.switchView((m.view + 1) % ViewState(len(viewNames)))
			return m, nil
		}
		switch msg.String() {
		case "1", "2", "3":
			m.switchView(ViewState(msg.String()[0] - '1'))
			return m, nil
		}

		switch m.view {
		case ExploreView:
			return m.handleExploreKeys(msg)
		case SwipeView:
			return m.handleSwipeKeys(msg)
		case LikedView:
			return m.handleLikedKeys(msg)
		}
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgExploreUpdated:
		m.exploreSnap = msg.data.(discovery.Snapshot)
		m.refreshResults()
		return m, listen(m.exploreCh, exploreUpdatedMsg)
	case MsgSwipeUpdated:
		m.swipeSnap = msg.data.(swipe.Snapshot)
		return m, listen(m.swipeCh, swipeUpdatedMsg)
	case MsgLikesUpdated:
		m.likesSnap = msg.data.(likes.Snapshot)
		m.refreshResults()
		m.refreshLiked()
		return m, listen(m.likesCh, likesUpdatedMsg)
	case MsgPlayerUpdated:
		m.playerSnap = msg.data.(player.Snapshot)
		return m, listen(m.playerCh, playerUpdatedMsg)
	case MsgActionFailed:
		m.err = msg.data.(error)
		m.status = ""
	case MsgStatus:
		m.status = msg.data.(string)
		m.err = nil
	}
	return m, nil
}

func (m *Model) switchView(v ViewState) {
	m.view = v
	m.status = ""
	m.err = nil
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.typing = false
		m.input.Blur()
		m.explore.SetQuery(m.input.Value())
		return m, m.search("search", func(ctx context.Context) error {
			return m.explore.SearchCurrentQuery(ctx, false)
		})
	case "esc":
		m.typing = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.explore.SetQuery(m.input.Value())
	return m, cmd
}

func (m *Model) handleExploreKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.exploreSnap

	switch {
	case key.Matches(msg, m.keys.search):
		m.typing = true
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.enter):
		switch item := m.results.SelectedItem().(type) {
		case presetItem:
			m.input.SetValue(item.preset.Term)
			return m, m.search("preset", func(ctx context.Context) error {
				return m.explore.LoadPreset(ctx, item.preset)
			})
		case recentItem:
			m.input.SetValue(item.entry.Term)
			return m, m.search("recent", func(ctx context.Context) error {
				return m.explore.UseRecent(ctx, item.entry.Term)
			})
		case trackItem:
			return m, m.togglePreview(item.track)
		}
		return m, nil

	case key.Matches(msg, m.keys.keyword):
		m.explore.SetQuery(m.input.Value())
		return m, m.search("keyword search", func(ctx context.Context) error {
			return m.explore.SearchCurrentQuery(ctx, true)
		})

	case key.Matches(msg, m.keys.reload):
		if snap.State.Is(models.ViewIdle) {
			return m, nil
		}
		return m, m.search("retry", func(ctx context.Context) error {
			return m.explore.SearchCurrentQuery(ctx, false)
		})

	case key.Matches(msg, m.keys.back):
		m.input.SetValue("")
		m.explore.SetQuery("")
		return m, m.search("reset", func(ctx context.Context) error {
			return m.explore.SearchCurrentQuery(ctx, false)
		})

	case key.Matches(msg, m.keys.play):
		if t, ok := m.selectedTrack(); ok {
			return m, m.togglePreview(t)
		}
		return m, nil

	case key.Matches(msg, m.keys.like):
		if t, ok := m.selectedTrack(); ok {
			return m, m.toggleLike(t)
		}
		return m, nil

	case key.Matches(msg, m.keys.open):
		if t, ok := m.selectedTrack(); ok {
			return m, m.openURL(t.CollectionViewURL)
		}
		return m, nil

	case key.Matches(msg, m.keys.preview):
		m.explore.SetOnlyWithPreview(!snap.OnlyWithPreview)
		return m, nil

	case key.Matches(msg, m.keys.sort):
		m.explore.SetSortOption(nextSort(snap.Sort))
		return m, nil

	case key.Matches(msg, m.keys.more), key.Matches(msg, m.keys.less):
		limit := snap.Limit + limitStep
		if key.Matches(msg, m.keys.less) {
			limit = snap.Limit - limitStep
		}
		if !m.explore.SetLimit(limit) || snap.LastSearchedTerm == "" {
			return m, nil
		}
		return m, m.search("limit", func(ctx context.Context) error {
			return m.explore.SearchCurrentQuery(ctx, false)
		})

	case key.Matches(msg, m.keys.clear):
		if !snap.State.Is(models.ViewIdle) {
			return m, nil
		}
		return m, m.action("clear history", func(ctx context.Context) error {
			return m.explore.ClearHistory(ctx)
		})
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) handleSwipeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.swipeSnap

	switch {
	case key.Matches(msg, m.keys.left):
		m.swipe.DragBy(-dragNudge)
	case key.Matches(msg, m.keys.right):
		m.swipe.DragBy(dragNudge)
	case key.Matches(msg, m.keys.back):
		m.swipe.Commit(m.ctx, models.DecisionNone)
	case key.Matches(msg, m.keys.enter):
		return m, func() tea.Msg {
			switch m.swipe.Release(m.ctx) {
			case models.DecisionLike:
				return statusMsg("♥ Liked " + snap.Track.TrackName)
			case models.DecisionSkip:
				return statusMsg("Skipped " + snap.Track.TrackName)
			}
			return nil
		}
	case key.Matches(msg, m.keys.yes):
		if !snap.HasTrack {
			return m, nil
		}
		return m, func() tea.Msg {
			m.swipe.Like(m.ctx)
			return statusMsg("♥ Liked " + snap.Track.TrackName)
		}
	case key.Matches(msg, m.keys.no):
		m.swipe.Skip()
	case key.Matches(msg, m.keys.play):
		if snap.HasTrack {
			return m, m.togglePreview(snap.Track)
		}
	case key.Matches(msg, m.keys.open):
		if snap.HasTrack {
			return m, m.openURL(snap.Track.CollectionViewURL)
		}
	case key.Matches(msg, m.keys.reload):
		if snap.Term == "" {
			return m, m.loadSwipe()
		}
		return m, m.search("swipe reload", m.swipe.Reload)
	}
	return m, nil
}

func (m *Model) handleLikedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item, ok := m.liked.SelectedItem().(likedItem)

	switch {
	case key.Matches(msg, m.keys.play), key.Matches(msg, m.keys.enter):
		if ok {
			return m, m.togglePreview(item.record.Track())
		}
		return m, nil
	case key.Matches(msg, m.keys.unlike):
		if ok {
			id := item.record.TrackID()
			return m, m.action("unlike", func(ctx context.Context) error {
				return m.likes.Unlike(ctx, id)
			})
		}
		return m, nil
	case key.Matches(msg, m.keys.open):
		if ok {
			return m, m.openURL(item.record.CollectionViewURL())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.liked, cmd = m.liked.Update(msg)
	return m, cmd
}

func (m *Model) selectedTrack() (models.Track, bool) {
	item, ok := m.results.SelectedItem().(trackItem)
	return item.track, ok
}

func nextSort(o models.SortOption) models.SortOption {
	for i, opt := range models.SortOptions {
		if opt == o {
			return models.SortOptions[(i+1)%len(models.SortOptions)]
		}
	}
	return models.SortRelevance
}

func (m *Model) refreshResults() {
	snap := m.exploreSnap
	if snap.State.Is(models.ViewIdle) {
		m.results.Title = "Presets & recent searches"
		m.results.SetItems(homeItems(m.opts.Presets, snap.Recent))
		return
	}
	m.results.Title = fmt.Sprintf("Results for “%s” (%d of %d)", snap.LastSearchedTerm, len(snap.Results), len(snap.AllResults))
	m.results.SetItems(trackItems(snap.Results, m.likesSnap.Contains))
}

func (m *Model) refreshLiked() {
	records := m.likes.List()
	m.liked.Title = fmt.Sprintf("Liked tracks (%d)", len(records))
	m.liked.SetItems(likedItems(records))
}

func (m *Model) loadSwipe() tea.Cmd {
	preset, limit := m.opts.SwipePreset, m.opts.SwipeLimit
	if strings.TrimSpace(preset.Term) == "" {
		return nil
	}
	return m.search("swipe load", func(ctx context.Context) error {
		return m.swipe.LoadPreset(ctx, preset, limit)
	})
}

// search runs a session search in the background. Failures surface through the session's
// error state, so they are only logged here.
func (m *Model) search(name string, fn func(context.Context) error) tea.Cmd {
	ctx, logger := m.ctx, m.logger
	return func() tea.Msg {
		err := fn(ctx)
		switch {
		case err == nil:
		case errors.Is(err, discovery.ErrSuperseded), errors.Is(err, swipe.ErrSuperseded):
			logger.Debug("search superseded", "action", name)
		default:
			logger.Warn("search failed", "action", name, "error", err)
		}
		return nil
	}
}

// action runs fn in the background and reports a failure on the status line.
func (m *Model) action(name string, fn func(context.Context) error) tea.Cmd {
	ctx, logger := m.ctx, m.logger
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			logger.Error("action failed", "action", name, "error", err)
			return actionFailedMsg(err)
		}
		return nil
	}
}

func (m *Model) toggleLike(track models.Track) tea.Cmd {
	ctx, store := m.ctx, m.likes
	return func() tea.Msg {
		liked, err := store.Toggle(ctx, track)
		if err != nil {
			return actionFailedMsg(err)
		}
		if liked {
			return statusMsg("♥ Liked " + track.TrackName)
		}
		return statusMsg("Removed " + track.TrackName + " from likes")
	}
}

// togglePreview pauses or resumes the track's preview when it is the current source and plays it otherwise.
func (m *Model) togglePreview(track models.Track) tea.Cmd {
	ctx, pl := m.ctx, m.player
	return func() tea.Msg {
		if !track.HasPreview() {
			return statusMsg("No preview available for " + track.TrackName)
		}
		var err error
		if pl.Snapshot().URL == track.PreviewURL {
			err = pl.Toggle(ctx, track.PreviewURL)
		} else {
			err = pl.PlayTrack(ctx, track)
		}
		if err != nil {
			return actionFailedMsg(err)
		}
		return nil
	}
}

func (m *Model) openURL(link string) tea.Cmd {
	open := m.opts.OpenURL
	return func() tea.Msg {
		if link == "" {
			return statusMsg("No link available")
		}
		if err := open(link); err != nil {
			return actionFailedMsg(err)
		}
		return statusMsg("Opened " + link)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	var helpKeys []key.Binding

	switch m.view {
	case ExploreView:
		body = m.renderExplore()
		helpKeys = []key.Binding{m.keys.search, m.keys.enter, m.keys.play, m.keys.like, m.keys.preview, m.keys.sort, m.keys.more}
		if m.exploreSnap.State.Is(models.ViewIdle) {
			helpKeys = append(helpKeys, m.keys.clear)
		} else {
			helpKeys = append(helpKeys, m.keys.back)
		}
		if m.typing {
			helpKeys = []key.Binding{key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")), m.keys.back}
		}
	case SwipeView:
		body = m.renderSwipe()
		helpKeys = []key.Binding{m.keys.left, m.keys.right, m.keys.enter, m.keys.yes, m.keys.no, m.keys.play, m.keys.reload}
	case LikedView:
		body = m.renderLiked()
		helpKeys = []key.Binding{m.keys.play, m.keys.unlike, m.keys.open}
	}
	helpKeys = append(helpKeys, m.keys.next, m.keys.quit)

	parts := []string{m.renderTabs(), body}
	if np := m.renderNowPlaying(); np != "" {
		parts = append(parts, np)
	}
	if m.err != nil {
		parts = append(parts, styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.status != "" {
		parts = append(parts, styles.ok.Render(m.status))
	}
	parts = append(parts, m.help.ShortHelpView(helpKeys))
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if ViewState(i) == LikedView {
			label = fmt.Sprintf("%s (%d)", label, len(m.likesSnap.IDs))
		}
		if ViewState(i) == m.view {
			tabs[i] = styles.active.Render(label)
		} else {
			tabs[i] = styles.tab.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderExplore() string {
	snap := m.exploreSnap
	preview := "off"
	if snap.OnlyWithPreview {
		preview = "on"
	}
	info := styles.help.Render(fmt.Sprintf("mode: %s • sort: %s • preview only: %s • limit: %d",
		snap.Mode, snap.Sort, preview, snap.Limit))

	var content string
	switch snap.State.Kind {
	case models.ViewLoading:
		content = fmt.Sprintf("%s Searching “%s”…", m.spinner.View(), snap.LastSearchedTerm)
	case models.ViewEmpty:
		content = styles.warn.Render(fmt.Sprintf("No tracks found for “%s”.", snap.LastSearchedTerm))
		if snap.OnlyWithPreview && len(snap.AllResults) > 0 {
			content += "\n" + styles.help.Render("Press p to include tracks without a preview.")
		}
	case models.ViewError:
		content = styles.err.Render(snap.State.Message) + "\n" + styles.help.Render("Press r to retry.")
	default:
		content = m.results.View()
	}

	return fmt.Sprintf("%s\n%s\n\n%s", m.input.View(), info, content)
}

func (m *Model) renderSwipe() string {
	snap := m.swipeSnap

	switch snap.State.Kind {
	case models.ViewIdle:
		return styles.help.Render("Press r to load a deck.")
	case models.ViewLoading:
		return fmt.Sprintf("%s Loading “%s”…", m.spinner.View(), snap.Term)
	case models.ViewError:
		return styles.err.Render(snap.State.Message) + "\n" + styles.help.Render("Press r to retry.")
	case models.ViewEmpty:
		if snap.Total == 0 {
			return styles.warn.Render(fmt.Sprintf("No tracks found for “%s”.", snap.Term))
		}
		return styles.ok.Render("That was the last card.") + "\n" + styles.help.Render("Press r to reload the deck.")
	}

	return renderCard(snap)
}

func renderCard(snap swipe.Snapshot) string {
	t := snap.Track

	var overlay string
	switch {
	case snap.DragX > 0:
		overlay = styles.overlay("LIKE", snap.Opacity, styles.ok)
	case snap.DragX < 0:
		overlay = styles.overlay("NOPE", snap.Opacity, styles.err)
	}

	lines := []string{
		overlay,
		styles.title.Render(t.DisplayTitle()),
		t.DisplaySubtitle(),
	}
	if t.PrimaryGenreName != "" {
		lines = append(lines, styles.help.Render(t.PrimaryGenreName))
	}
	if snap.Liked {
		lines = append(lines, styles.ok.Render("♥ already liked"))
	}
	if !t.HasPreview() {
		lines = append(lines, styles.warn.Render("no preview"))
	}
	lines = append(lines, styles.help.Render(fmt.Sprintf("card %d of %d", snap.Cursor+1, snap.Total)))

	offset := cardSlack + int(math.Round(snap.DragX/dragScale))
	offset = max(0, min(offset, 2*cardSlack))
	card := styles.card.MarginLeft(offset).Render(strings.Join(lines, "\n"))

	meter := styles.help.Render(fmt.Sprintf("drag %+.0f • tilt %+.1f° • %s", snap.DragX, snap.Rotation, decisionHint(snap)))
	return card + "\n" + meter
}

func decisionHint(snap swipe.Snapshot) string {
	switch snap.Pending {
	case models.DecisionLike:
		return "release to like"
	case models.DecisionSkip:
		return "release to skip"
	default:
		return "drag past the threshold or press y/n"
	}
}

func (m *Model) renderLiked() string {
	if len(m.likesSnap.IDs) == 0 {
		return styles.help.Render("No liked tracks yet. Swipe right or press L on a result.")
	}
	return m.liked.View()
}

func (m *Model) renderNowPlaying() string {
	snap := m.playerSnap
	np := snap.NowPlaying
	label := np.Title
	if np.Artist != "" {
		label = fmt.Sprintf("%s • %s", np.Title, np.Artist)
	}

	switch snap.State {
	case player.StatePlaying:
		return styles.ok.Render("▶ " + label)
	case player.StatePaused:
		return styles.warn.Render("⏸ " + label)
	case player.StateFailed:
		return styles.err.Render("✗ playback failed: " + label)
	default:
		return ""
	}
}
