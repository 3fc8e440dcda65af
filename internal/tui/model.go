package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/domain"
	"docqa/internal/service"
	"docqa/internal/textutil"
)

const openCommand = "/open "

// SessionPort is the TUI-facing subset of a pipeline session.
type SessionPort interface {
	Ingest(ctx context.Context, name string, data []byte) (service.IngestResult, error)
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
	Summarize(ctx context.Context) (service.Summary, error)
}

type ingestDoneMsg struct {
	result service.IngestResult
	err    error
	// unchanged is set when the session kept its previous document.
	unchanged bool
}

type searchDoneMsg struct {
	query   string
	results []domain.SearchResult
	err     error
}

type summaryDoneMsg struct {
	answer string
	err    error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	session   SessionPort
	input     textinput.Model
	viewport  viewport.Model
	results   []domain.SearchResult
	document  string
	overview  string
	answer    string
	status    string
	cursor    int
	topK      int
	maxTopK   int
	busy      bool
	ready     bool
	lastQuery string
}

// New creates a TUI for a session that already holds doc.
func New(session SessionPort, doc service.IngestResult, topK, maxTopK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type query and press Enter (/open <file> to load another document)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	if maxTopK <= 0 {
		maxTopK = service.DefaultMaxTopK
	}
	if topK < 1 || topK > maxTopK {
		topK = 1
	}
	m := Model{session: session, input: ti, viewport: vp, topK: topK, maxTopK: maxTopK}
	m.setDocument(doc)
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + overview
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.refresh()
		return m, nil

	case ingestDoneMsg:
		m.busy = false
		if msg.err != nil {
			if !msg.unchanged {
				m.setDocument(service.IngestResult{})
			}
			m.status = "Error: " + msg.err.Error()
		} else {
			m.setDocument(msg.result)
			m.status = fmt.Sprintf("Loaded %s: %d chunks.", msg.result.File, msg.result.Chunks)
		}
		m.refresh()
		return m, nil

	case searchDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.results, m.cursor, m.lastQuery, m.answer = msg.results, 0, msg.query, ""
		if len(msg.results) == 0 {
			m.status = fmt.Sprintf("No results for %q", msg.query)
		} else {
			m.status = fmt.Sprintf("%d results for %q (ctrl+s to summarize)", len(msg.results), msg.query)
		}
		m.refresh()
		return m, nil

	case summaryDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.answer = msg.answer
		m.status = fmt.Sprintf("Answer for %q", m.lastQuery)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			if m.busy {
				m.status = "Busy, please wait..."
				return m, nil
			}
			m.busy = true
			m.input.SetValue("")
			if strings.HasPrefix(line, openCommand) {
				path := strings.TrimSpace(strings.TrimPrefix(line, openCommand))
				m.status = "Loading " + path + "..."
				return m, ingestCmd(m.session, path)
			}
			m.status = fmt.Sprintf("Searching %q (top %d)...", line, m.topK)
			return m, searchCmd(m.session, line, m.topK)
		case "ctrl+s":
			if m.busy {
				m.status = "Busy, please wait..."
				return m, nil
			}
			m.busy = true
			m.status = "Generating answer..."
			return m, summarizeCmd(m.session)
		case "tab":
			m.topK = m.topK%m.maxTopK + 1
			m.status = fmt.Sprintf("top_k = %d", m.topK)
			return m, nil
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.refresh()
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.refresh()
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := "Document Search"
	if m.document != "" {
		title += " - " + m.document
	}
	header := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s  [top_k=%d]", title, m.topK))
	overview := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.overview)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + overview + "\n" + results + "\n" + input + "\n" + status
}

func (m *Model) setDocument(doc service.IngestResult) {
	m.document, m.overview = doc.File, doc.Overview
	m.results, m.cursor, m.lastQuery, m.answer = nil, 0, "", ""
	if doc.File == "" {
		m.status = "No document loaded. Use /open <file>."
	} else if m.status == "" {
		m.status = "Loaded. Type to search."
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderCurrentResult())
}

func (m Model) renderCurrentResult() string {
	var sb strings.Builder
	if m.answer != "" {
		sb.WriteString(answerStyle.Render("Answer"))
		sb.WriteString("\n")
		sb.WriteString(m.answer)
		sb.WriteString("\n\n")
	}
	if len(m.results) == 0 {
		sb.WriteString("No results yet.")
		return sb.String()
	}
	r := m.results[m.cursor]
	sb.WriteString(fmt.Sprintf("Result %d/%d  chunk=%d  distance=%.4f", m.cursor+1, len(m.results), r.Chunk.Index, r.Distance))
	sb.WriteString("\n\n")
	sb.WriteString(highlightBestSentence(r.Chunk.Text, m.lastQuery))
	return sb.String()
}

func ingestCmd(session SessionPort, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return ingestDoneMsg{err: err, unchanged: true}
		}
		res, err := session.Ingest(context.Background(), filepath.Base(path), data)
		return ingestDoneMsg{result: res, err: err, unchanged: errors.Is(err, domain.ErrUnsupportedFileType)}
	}
}

func searchCmd(session SessionPort, query string, topK int) tea.Cmd {
	return func() tea.Msg {
		res, err := session.Search(context.Background(), query, topK)
		return searchDoneMsg{query: query, results: res, err: err}
	}
}

func summarizeCmd(session SessionPort) tea.Cmd {
	return func() tea.Msg {
		summary, err := session.Summarize(context.Background())
		return summaryDoneMsg{answer: summary.Answer, err: err}
	}
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	sentenceRe     = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := textutil.ContentWords(s)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range textutil.Words(sentence) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
