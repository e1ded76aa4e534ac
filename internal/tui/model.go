// Package tui provides the Bubble Tea counter interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/tasbih/internal/catalog"
	"github.com/verte-zerg/tasbih/internal/feedback"
	"github.com/verte-zerg/tasbih/internal/model"
	"github.com/verte-zerg/tasbih/internal/reminder"
	"github.com/verte-zerg/tasbih/internal/session"
	"github.com/verte-zerg/tasbih/internal/stats"
	"github.com/verte-zerg/tasbih/internal/theme"
)

const (
	maxContentWidth = 72
	flashHold       = 120 * time.Millisecond
)

// History records taps and favorites alongside the session.
type History interface {
	RecordTap(ctx context.Context, dhikrID string, delta int, at time.Time) error
	RecordCompletion(ctx context.Context, c model.Completion) (int64, error)
	ToggleFavorite(ctx context.Context, dhikrID string) (bool, error)
	ListFavorites(ctx context.Context) ([]string, error)
}

// Entitlement reports whether custom dhikr may be used.
type Entitlement interface {
	IsPremiumUnlocked(ctx context.Context) (bool, error)
}

// Deps are the collaborators of the counter screen. Reminders may be nil.
// A nil Premium keeps custom dhikr locked.
type Deps struct {
	Session   *session.Session
	Catalog   *catalog.Catalog
	History   History
	KV        session.KV
	Premium   Entitlement
	Player    *feedback.Player
	Theme     theme.Theme
	Reminders *reminder.Engine
	Daily     reminder.Daily
	Logger    *zap.Logger
}

type flashMsg struct {
	seq       int
	intensity feedback.Intensity
}

type reminderMsg reminder.Event

// Model implements the Bubble Tea counter UI.
type Model struct {
	sess      *session.Session
	cat       *catalog.Catalog
	history   History
	kv        session.KV
	premium   Entitlement
	player    *feedback.Player
	reminders *reminder.Engine
	daily     reminder.Daily
	log       *zap.Logger
	now       func() time.Time

	theme  theme.Theme
	styles theme.Styles
	bar    progress.Model
	help   help.Model
	keys   keyMap

	width  int
	height int

	favorites    map[string]bool
	confirmReset bool
	flash        feedback.Intensity
	flashSeq     int
	banner       string
	reminderNote string
	note         string
}

// NewModel constructs a counter TUI model.
func NewModel(deps Deps) *Model {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	player := deps.Player
	if player == nil {
		player = feedback.NewPlayer(nil, feedback.Settings{}, log)
	}
	m := &Model{
		sess:      deps.Session,
		cat:       deps.Catalog,
		history:   deps.History,
		kv:        deps.KV,
		premium:   deps.Premium,
		player:    player,
		reminders: deps.Reminders,
		daily:     deps.Daily,
		log:       log,
		now:       time.Now,
		help:      help.New(),
		keys:      defaultKeyMap(),
		favorites: map[string]bool{},
	}
	t := deps.Theme
	if t.Background == nil {
		t = theme.Default()
	}
	m.applyTheme(t)
	m.loadFavorites()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.reminders == nil {
		return nil
	}
	return waitForReminder(m.reminders.C())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = max(min(msg.Width-4, maxContentWidth), 10)
		return m, nil
	case flashMsg:
		if msg.seq == m.flashSeq {
			m.flash = msg.intensity
		}
		return m, nil
	case reminderMsg:
		return m, m.handleReminder(reminder.Event(msg))
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.confirmReset {
		m.confirmReset = false
		if msg.String() == "y" || msg.String() == "Y" {
			return m.reset()
		}
		m.banner = "Reset cancelled."
		return nil
	}
	m.reminderNote = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Increment):
		return m.increment()
	case key.Matches(msg, m.keys.Undo):
		return m.undo()
	case key.Matches(msg, m.keys.Reset):
		m.confirmReset = true
		return nil
	case key.Matches(msg, m.keys.Next):
		m.step(1)
	case key.Matches(msg, m.keys.Prev):
		m.step(-1)
	case key.Matches(msg, m.keys.Theme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.Sound):
		s := m.player.Settings()
		s.Sound = !s.Sound
		m.saveSettings(s)
	case key.Matches(msg, m.keys.Haptic):
		s := m.player.Settings()
		s.Haptic = !s.Haptic
		m.saveSettings(s)
	case key.Matches(msg, m.keys.Favorite):
		m.toggleFavorite()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) increment() tea.Cmd {
	ctx := context.Background()
	m.note = ""
	step, err := m.sess.Increment(ctx)
	m.warn(err)
	dhikr := m.sess.Dhikr()
	at := m.now()
	if m.history != nil {
		m.warn(m.history.RecordTap(ctx, dhikr.ID, 1, at))
		if step.Completed {
			_, cerr := m.history.RecordCompletion(ctx, model.Completion{
				DhikrID:     dhikr.ID,
				Total:       step.Total,
				Target:      m.sess.Target(),
				CompletedAt: at,
			})
			m.warn(cerr)
		}
	}
	cue := feedback.Classify(step)
	switch cue {
	case feedback.CueSetComplete:
		m.banner = fmt.Sprintf("Set %s complete. Alhamdulillah!", stats.FormatCount(step.Progress.CompletedSets))
	case feedback.CueMilestone:
		m.banner = fmt.Sprintf("MashaAllah! %s reached.", stats.FormatCount(step.Total))
	default:
		m.banner = ""
	}
	return m.play(cue)
}

func (m *Model) undo() tea.Cmd {
	ctx := context.Background()
	m.note = ""
	step, err := m.sess.Decrement(ctx)
	m.warn(err)
	if step.Changed && m.history != nil {
		m.warn(m.history.RecordTap(ctx, m.sess.Dhikr().ID, -1, m.now()))
	}
	m.banner = ""
	return m.play(feedback.ClassifyUndo(step))
}

func (m *Model) reset() tea.Cmd {
	m.note = ""
	m.warn(m.sess.Reset(context.Background()))
	m.banner = "Counter reset."
	return m.play(feedback.CueReset)
}

// step moves to the neighbouring dhikr, skipping custom entries while
// premium is locked.
func (m *Model) step(delta int) {
	allowCustom := m.premiumUnlocked()
	next := m.cat.Neighbor(m.sess.Dhikr().ID, delta)
	for i := 0; next.Custom && !allowCustom && i < m.cat.Len(); i++ {
		next = m.cat.Neighbor(next.ID, delta)
	}
	if err := m.sess.SelectDhikr(context.Background(), next); err != nil {
		m.warn(err)
	}
	m.banner = ""
}

func (m *Model) premiumUnlocked() bool {
	if m.premium == nil {
		return false
	}
	ok, err := m.premium.IsPremiumUnlocked(context.Background())
	if err != nil {
		m.log.Warn("premium status unavailable", zap.Error(err))
		return false
	}
	return ok
}

func (m *Model) cycleTheme() {
	next := theme.Next(m.theme.Name)
	m.applyTheme(next)
	if m.kv != nil {
		m.warn(m.kv.Set(context.Background(), theme.KeySelected, next.Name))
	}
	m.banner = "Theme: " + next.Name
}

func (m *Model) applyTheme(t theme.Theme) {
	m.theme = t
	m.styles = t.Styles()
	from, to := t.ProgressColors()
	width := m.bar.Width
	m.bar = progress.New(progress.WithGradient(from, to), progress.WithoutPercentage())
	if width > 0 {
		m.bar.Width = width
	}
}

func (m *Model) saveSettings(s feedback.Settings) {
	m.player.SetSettings(s)
	if m.kv != nil {
		m.warn(feedback.SaveSettings(context.Background(), m.kv, s))
	}
	m.banner = fmt.Sprintf("Sound %s, flash %s", onOff(s.Sound), onOff(s.Haptic))
}

func (m *Model) toggleFavorite() {
	if m.history == nil {
		return
	}
	id := m.sess.Dhikr().ID
	fav, err := m.history.ToggleFavorite(context.Background(), id)
	if err != nil {
		m.warn(err)
		return
	}
	m.favorites[id] = fav
	if fav {
		m.banner = "Added to favorites."
	} else {
		m.banner = "Removed from favorites."
	}
}

func (m *Model) loadFavorites() {
	if m.history == nil {
		return
	}
	ids, err := m.history.ListFavorites(context.Background())
	if err != nil {
		m.warn(err)
		return
	}
	for _, id := range ids {
		m.favorites[id] = true
	}
}

func (m *Model) handleReminder(ev reminder.Event) tea.Cmd {
	n := reminder.DailyNotification()
	m.reminderNote = n.Title + ": " + n.Body
	if err := m.reminders.Schedule(m.daily.Event(ev.TriggerAt)); err != nil {
		m.log.Warn("reminder reschedule failed", zap.Error(err))
	}
	return tea.Batch(m.play(feedback.CueMilestone), waitForReminder(m.reminders.C()))
}

func waitForReminder(ch <-chan reminder.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return reminderMsg(ev)
	}
}

// play rings the cue and schedules its visual beats. A new cue supersedes
// any beats still pending from the previous one.
func (m *Model) play(c feedback.Cue) tea.Cmd {
	effect := m.player.Play(c)
	m.flashSeq++
	if len(effect.Pulses) == 0 {
		m.flash = feedback.FlashNone
		return nil
	}
	seq := m.flashSeq
	m.flash = effect.Pulses[0].Intensity
	var cmds []tea.Cmd
	last := time.Duration(0)
	for _, p := range effect.Pulses[1:] {
		cmds = append(cmds, flashAfter(p.Delay, seq, p.Intensity))
		last = max(last, p.Delay)
	}
	cmds = append(cmds, flashAfter(last+flashHold, seq, feedback.FlashNone))
	return tea.Batch(cmds...)
}

func flashAfter(d time.Duration, seq int, intensity feedback.Intensity) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return flashMsg{seq: seq, intensity: intensity}
	})
}

// warn surfaces a non-fatal error as a status note and logs it.
func (m *Model) warn(err error) {
	if err == nil {
		return
	}
	m.log.Warn("counter operation failed", zap.Error(err))
	switch {
	case errors.Is(err, session.ErrPersist):
		m.note = "Not saved: " + err.Error()
	case errors.Is(err, session.ErrInvalidTarget):
		m.note = "This dhikr has no valid count."
	default:
		m.note = err.Error()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderContent()
	if m.width == 0 || m.height == 0 {
		return content
	}
	body := lipgloss.Place(m.width, max(m.height-2, 1), lipgloss.Center, lipgloss.Center, content)
	strip := m.theme.Background.Strip(m.width)
	frame := m.styles.Frame.Width(m.width)
	return frame.Render(strip) + "\n" + body + "\n" + frame.Render(strip)
}

func (m *Model) renderContent() string {
	width := maxContentWidth
	if m.width > 0 {
		width = min(m.width-4, maxContentWidth)
	}
	width = max(width, 10)
	st := m.styles
	d := m.sess.Dhikr()
	p := m.sess.Progress()
	target := m.sess.Target()

	var lines []string
	header := fmt.Sprintf("%s · %s", d.Category, m.theme.Name)
	if m.favorites[d.ID] {
		header = "★ " + header
	}
	lines = append(lines, st.Header.Render(centerLine(header, width)), "")
	lines = append(lines, st.Phrase.Render(centerLine(d.Phrase, width)))
	for _, line := range wrapText(d.Transliteration, width) {
		lines = append(lines, st.Accent.Render(centerLine(line, width)))
	}
	for _, line := range wrapText(d.Translation, width) {
		lines = append(lines, st.Subtle.Render(centerLine(line, width)))
	}
	lines = append(lines, "")

	count := m.countStyle().Render(stats.FormatCount(m.sess.Total()))
	lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Center, count))

	inSet := p.InSet
	if p.SetComplete {
		inSet = target
	}
	setLine := fmt.Sprintf("%s / %s · Set %s", stats.FormatCount(inSet), stats.FormatCount(target), stats.FormatCount(p.CompletedSets+1))
	if p.SetComplete {
		setLine = fmt.Sprintf("%s / %s · Set %s done", stats.FormatCount(target), stats.FormatCount(target), stats.FormatCount(p.CompletedSets))
	}
	lines = append(lines, st.Subtle.Render(centerLine(setLine, width)))
	lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Center, m.bar.ViewAs(float64(inSet)/float64(max(target, 1)))), "")

	switch {
	case m.confirmReset:
		lines = append(lines, st.Warning.Render(centerLine("Reset the counter to 0? (y/n)", width)))
	case m.banner != "":
		lines = append(lines, st.Celebrate.Render(centerLine(m.banner, width)))
	}
	if m.reminderNote != "" {
		lines = append(lines, st.Accent.Render(centerLine(m.reminderNote, width)))
	}
	if m.note != "" {
		lines = append(lines, st.Warning.Render(centerLine(m.note, width)))
	}
	lines = append(lines, "", m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func (m *Model) countStyle() lipgloss.Style {
	st := m.styles.Count.Padding(0, 2)
	switch m.flash {
	case feedback.FlashLight:
		return st.Underline(true)
	case feedback.FlashMedium:
		return st.Reverse(true)
	case feedback.FlashHeavy:
		return st.Reverse(true).Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color(string(m.theme.Primary)))
	default:
		return st
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
