package ui

import (
	"context"
	"io"
	"os"
	"runtime"
	"time"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/opx/pkg/opcode"
)

// RunOptions configures one interactive session.
type RunOptions struct {
	Browser      BrowserOptions
	InitialQuery string

	// Input and Output override the program's terminal I/O, for tests.
	Input  io.Reader
	Output io.Writer
}

// Swappable for tests.
var (
	stdinIsPiped = func() bool {
		stat, _ := os.Stdin.Stat()
		return (stat.Mode() & os.ModeCharDevice) == 0
	}
	openTerminalIOFn = openTerminalIO
	termGetSize      = term.GetSize
	sendWindowSize   = func(p *tea.Program, msg tea.WindowSizeMsg) { p.Send(msg) }
)

// Run starts the browser over the dataset and blocks until the user quits.
func Run(ctx context.Context, ds *opcode.Dataset, opts RunOptions) error {
	m := NewBrowser(ds, opts.Browser)
	if opts.InitialQuery != "" {
		m.Search.SetQuery(opts.InitialQuery)
	}

	ttyOpts, cleanup := programOptions(ctx)
	defer cleanup()

	progOpts := append([]tea.ProgramOption{tea.WithContext(ctx)}, ttyOpts...)
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	_, err := tea.NewProgram(m, progOpts...).Run()
	return err
}

// programOptions returns terminal attachment options. With piped stdin the
// dataset occupied the real stdin, so the program opens the terminal device
// directly; when no terminal is available (CI), the zero options fall back
// to the piped descriptors and the UI runs without key repeat or resize.
func programOptions(ctx context.Context) ([]tea.ProgramOption, func()) {
	if !stdinIsPiped() {
		return nil, func() {}
	}

	ttyIn, ttyOut, err := openTerminalIOFn()
	if err != nil {
		return nil, func() {}
	}
	closeTTY := func() {
		_ = ttyIn.Close()
		if ttyOut != nil && ttyOut != ttyIn {
			_ = ttyOut.Close()
		}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	opts := []tea.ProgramOption{tea.WithInput(ttyIn)}
	if ttyOut != nil {
		opts = append(opts, tea.WithOutput(ttyOut), withResizeWatcher(watchCtx, ttyOut))
	}
	return opts, func() {
		cancel()
		closeTTY()
	}
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if out == "" || out == in {
		return input, input, nil
	}

	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, err
	}
	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}

// withResizeWatcher polls the terminal size and forwards changes as window
// size messages. Needed where resize signals are unreliable, notably piped
// stdin on Windows. Stops when ctx is canceled.
func withResizeWatcher(ctx context.Context, out *os.File) tea.ProgramOption {
	return func(p *tea.Program) {
		go func() {
			t := time.NewTicker(250 * time.Millisecond)
			defer t.Stop()

			lastW, lastH := 0, 0
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					w, h, err := termGetSize(int(out.Fd()))
					if err != nil {
						continue
					}
					if w == lastW && h == lastH {
						continue
					}
					lastW, lastH = w, h
					sendWindowSize(p, tea.WindowSizeMsg{Width: w, Height: h})
				}
			}
		}()
	}
}
