package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	Bold  = color.New(color.Bold)
	Green = color.New(color.FgGreen, color.Bold)
	Cyan  = color.New(color.FgCyan)
	Red   = color.New(color.FgRed, color.Bold)
)

// ErrorText and SuccessText prefix result lines.
var (
	ErrorText   = Red.Sprint("ERR")
	SuccessText = Green.Sprint("SUCCESS")
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func PrintHeader(w io.Writer, name, version string) {
	Bold.Fprintf(w, "%s v%s\n", name, version)
}

func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", ErrorText, err)
}

func PrintInstallSuccess(w io.Writer, name string, onlyPeers bool) {
	if onlyPeers {
		fmt.Fprintf(w, "%s The peerDeps of %s were installed successfully.\n", SuccessText, name)
		return
	}
	fmt.Fprintf(w, "%s %s and its peerDeps were installed successfully.\n", SuccessText, name)
}

// Spinner provides a CRA-style animated spinner.
type Spinner struct {
	w       io.Writer
	message string
	enabled bool
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner returns a spinner writing to w. A disabled spinner only prints
// its final line.
func NewSpinner(w io.Writer, message string, enabled bool) *Spinner {
	return &Spinner{
		w:       w,
		message: message,
		enabled: enabled,
		done:    make(chan struct{}),
	}
}

func (s *Spinner) Start() {
	if !s.enabled {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			Cyan.Fprintf(s.w, "\r  %s %s", frames[i%len(frames)], s.message)
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *Spinner) Stop(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.done)
	s.wg.Wait()

	if s.enabled {
		// Clear the line.
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+10))
	}

	if success {
		Green.Fprintf(s.w, "  ✓ %s\n", s.message)
	} else {
		Red.Fprintf(s.w, "  ✗ %s\n", s.message)
	}
}

func StepInfo(w io.Writer, msg string) {
	Cyan.Fprintf(w, "  ℹ %s\n", msg)
}
