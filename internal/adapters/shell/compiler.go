// Package shell compiles entrypoints with an external esbuild-compatible command.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/creack/pty"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Compiler)(nil)

// Compiler implements ports.Compiler by running a command such as `bunx esbuild`.
// The command runs inside a pseudo-terminal so its diagnostics keep their formatting.
type Compiler struct {
	command []string
	logger  ports.Logger
}

// NewCompiler creates a Compiler for the given argv prefix.
func NewCompiler(command []string, logger ports.Logger) (*Compiler, error) {
	if len(command) == 0 {
		return nil, domain.ErrMissingCompilerCommand
	}
	return &Compiler{command: command, logger: logger}, nil
}

// Compile runs the command once for the spec's entrypoint.
func (c *Compiler) Compile(ctx context.Context, spec domain.BuildTargetSpec) error {
	name := c.command[0]
	args := append(append([]string{}, c.command[1:]...), arguments(spec)...)

	env := resolveEnvironment(os.Environ())

	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // user provided command
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}
	cmd.Env = env

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCompileFailed.Error()), "entrypoint", spec.Entrypoint)
	}

	out := &lineWriter{logger: c.logger}
	var wg sync.WaitGroup
	wg.Go(func() {
		defer func() { _ = ptmx.Close() }()
		_, _ = io.Copy(out, ptmx)
	})

	waitErr := cmd.Wait()
	wg.Wait()
	out.Flush()

	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		err := zerr.Wrap(waitErr, domain.ErrCompileFailed.Error())
		err = zerr.With(err, "entrypoint", spec.Entrypoint)
		err = zerr.With(err, "exit_code", exitCode)
		if output := out.Tail(); output != "" {
			err = zerr.With(err, "output", output)
		}
		return err
	}

	return nil
}

// arguments maps a spec onto esbuild CLI flags.
func arguments(spec domain.BuildTargetSpec) []string {
	args := []string{
		spec.Entrypoint,
		"--bundle",
		"--outdir=" + spec.OutputDir,
		"--entry-names=" + spec.Name(),
		"--format=esm",
		"--platform=browser",
		"--log-level=warning",
	}
	if spec.Options.External == domain.ExternalAll {
		args = append(args, "--external:*")
	}
	if spec.Options.Splitting {
		args = append(args, "--splitting")
	}
	if spec.Options.Minify {
		args = append(args, "--minify")
	}
	return args
}

const tailLines = 20

// lineWriter forwards complete lines to the logger and keeps the last few for error reports.
type lineWriter struct {
	logger ports.Logger
	mu     sync.Mutex
	buf    []byte
	tail   []string
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.line(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush emits a trailing line without newline.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.line(w.buf)
		w.buf = nil
	}
}

// Tail returns the last captured lines.
func (w *lineWriter) Tail() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.Join(w.tail, "\n")
}

func (w *lineWriter) line(raw []byte) {
	// PTYs may introduce \r.
	msg := strings.TrimRight(string(raw), "\r")
	if strings.TrimSpace(msg) == "" {
		return
	}
	w.logger.Debug(msg)
	w.tail = append(w.tail, msg)
	if len(w.tail) > tailLines {
		w.tail = w.tail[len(w.tail)-tailLines:]
	}
}

// allowListedEnvVars are the system environment variables inherited by the compiler command.
var allowListedEnvVars = map[string]struct{}{
	"HOME":      {},
	"TERM":      {},
	"USER":      {},
	"PATH":      {},
	"TMPDIR":    {},
	"NODE_PATH": {},
}

func resolveEnvironment(sysEnv []string) []string {
	result := make([]string, 0, len(allowListedEnvVars))
	for _, entry := range sysEnv {
		k, _, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			result = append(result, entry)
		}
	}
	return result
}

// lookPath searches for an executable in the directories named by PATH in env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
