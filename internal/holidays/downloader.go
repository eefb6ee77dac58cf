package holidays

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoURL is returned when no download location is configured.
var ErrNoURL = errors.New("holidays: no download URL configured")

// Progress receives the byte count so far and the expected total, which is
// -1 when the server does not send a length.
type Progress func(downloaded, total int64)

// Result describes a finished download.
type Result struct {
	Path     string
	Size     int64
	ModTime  time.Time
	Coverage *Coverage
}

// Download fetches url into dest. The file is written next to dest and
// renamed into place only after it parses as holiday data.
func Download(ctx context.Context, client *http.Client, url, dest string, progress Progress) (*Result, error) {
	if url == "" {
		return nil, ErrNoURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to start download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download %s: HTTP %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".holidays-*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	var body io.Reader = resp.Body
	if progress != nil {
		var downloaded int64
		total := resp.ContentLength
		body = io.TeeReader(resp.Body, writerFunc(func(p []byte) (int, error) {
			progress(atomic.AddInt64(&downloaded, int64(len(p))), total)
			return len(p), nil
		}))
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	coverage, err := ExtractCoverage(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("downloaded data is unusable: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return nil, fmt.Errorf("install %s: %w", dest, err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return &Result{
		Path:     dest,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Coverage: coverage,
	}, nil
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

type downloadProgressMsg struct {
	downloaded int64
	total      int64
	speed      float64
}

type downloadCompleteMsg struct {
	result *Result
	err    error
}

type downloadModel struct {
	ctx        context.Context
	url        string
	destPath   string
	downloaded int64
	total      int64
	speed      float64
	done       bool
	result     *Result
	err        error
	progressCh chan downloadProgressMsg
	completeCh chan downloadCompleteMsg
}

func newDownloadModel(ctx context.Context, url, destPath string) downloadModel {
	return downloadModel{
		ctx:        ctx,
		url:        url,
		destPath:   destPath,
		progressCh: make(chan downloadProgressMsg, 10),
		completeCh: make(chan downloadCompleteMsg, 1),
	}
}

func (m downloadModel) Init() tea.Cmd {
	return tea.Batch(m.startDownload, m.listen)
}

func (m downloadModel) listen() tea.Msg {
	select {
	case msg := <-m.progressCh:
		return msg
	case msg := <-m.completeCh:
		return msg
	}
}

func (m downloadModel) startDownload() tea.Msg {
	start := time.Now()
	go func() {
		res, err := Download(m.ctx, nil, m.url, m.destPath, func(downloaded, total int64) {
			select {
			case m.progressCh <- downloadProgressMsg{
				downloaded: downloaded,
				total:      total,
				speed:      float64(downloaded) / time.Since(start).Seconds(),
			}:
			default:
			}
		})
		m.completeCh <- downloadCompleteMsg{result: res, err: err}
	}()
	return nil
}

func (m downloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.done {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.err = context.Canceled
			return m, tea.Quit
		}
	case downloadCompleteMsg:
		m.done = true
		m.err = msg.err
		m.result = msg.result
		return m, nil
	case downloadProgressMsg:
		m.downloaded = msg.downloaded
		m.total = msg.total
		m.speed = msg.speed
		return m, m.listen
	}
	return m, nil
}

func (m downloadModel) View() string {
	if m.done {
		if m.err != nil {
			var b strings.Builder
			fmt.Fprintf(&b, "Download failed\n\n%v\n\n", m.err)
			fmt.Fprintf(&b, "You can fetch %s by hand and save it as %s\n\n", m.url, m.destPath)
			b.WriteString("Press any key to exit...\n")
			return b.String()
		}
		return Summary(m.result) + "\nPress any key to exit...\n"
	}

	const barWidth = 50
	var bar, info string
	if m.total > 0 {
		percent := float64(m.downloaded) / float64(m.total)
		if percent > 1 {
			percent = 1
		}
		filled := int(percent * barWidth)
		bar = strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		info = fmt.Sprintf("%s / %s  %s  %.1f%%", formatBytes(m.downloaded), formatBytes(m.total), formatSpeed(m.speed), percent*100)
	} else {
		bar = strings.Repeat("░", barWidth)
		info = formatBytes(m.downloaded)
		if m.speed > 0 {
			info += "  " + formatSpeed(m.speed)
		}
	}
	return fmt.Sprintf("Downloading holiday data...\n\n[%s]\n%s\n\nPress Ctrl+C to cancel\n", bar, info)
}

// Summary formats a finished download for the terminal.
func Summary(r *Result) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Downloaded %s to %s (%s)\n", formatBytes(r.Size), r.Path, r.ModTime.Format("2006-01-02 15:04:05"))
	if c := r.Coverage; c != nil {
		fmt.Fprintf(&b, "Jalali years %d to %d, %d in total\n", c.MinYear, c.MaxYear, c.Count)
	}
	return b.String()
}

// DownloadInteractive runs Download behind a terminal progress bar.
func DownloadInteractive(ctx context.Context, url, dest string) (*Result, error) {
	if url == "" {
		return nil, ErrNoURL
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newDownloadModel(ctx, url, dest), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(downloadModel)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatSpeed(speed float64) string {
	return formatBytes(int64(speed)) + "/s"
}
