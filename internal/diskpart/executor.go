package diskpart

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	// DefaultTimeout bounds ordinary list and query operations.
	DefaultTimeout = 30 * time.Second
	// DestructiveTimeout bounds wipe, create, delete, format, extend and shrink.
	DestructiveTimeout = 60 * time.Second

	defaultToolPath = "diskpart"
)

// ElevationProbe reports whether the current process runs with the privileges
// the external tool requires. Queried before every invocation.
type ElevationProbe interface {
	IsElevated() bool
}

// Runner is the subprocess invocation surface. The production implementation
// shells out; tests substitute their own.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.SysProcAttr = sysProcAttr()
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return []byte(stdout.String()), []byte(stderr.String()), err
}

// ExecutorConfig carries the tunable parts of an Executor. Zero values fall
// back to package defaults.
type ExecutorConfig struct {
	ToolPath           string
	DefaultTimeout     time.Duration
	DestructiveTimeout time.Duration
	// OutputCodepage names the console codepage the tool emits on localized
	// systems (cp437, cp850, cp866, cp1252). Empty means UTF-8/ANSI as-is.
	OutputCodepage string
}

// Executor runs one script per invocation: privilege check, temp script
// materialization, bounded subprocess run, output classification, cleanup.
// It holds no cross-call state; concurrent invocations are independent and
// are not serialized against each other.
type Executor struct {
	toolPath           string
	defaultTimeout     time.Duration
	destructiveTimeout time.Duration
	probe              ElevationProbe
	runner             Runner
	classifier         *Classifier
	outputEncoding     encoding.Encoding
}

// NewExecutor creates an executor with the platform elevation probe and the
// real subprocess runner.
func NewExecutor(cfg ExecutorConfig) *Executor {
	e := &Executor{
		toolPath:           cfg.ToolPath,
		defaultTimeout:     cfg.DefaultTimeout,
		destructiveTimeout: cfg.DestructiveTimeout,
		probe:              platformProbe(),
		runner:             execRunner{},
		classifier:         NewClassifier(),
	}
	if e.toolPath == "" {
		e.toolPath = defaultToolPath
	}
	if e.defaultTimeout <= 0 {
		e.defaultTimeout = DefaultTimeout
	}
	if e.destructiveTimeout <= 0 {
		e.destructiveTimeout = DestructiveTimeout
	}
	if cfg.OutputCodepage != "" {
		enc, err := codepageEncoding(cfg.OutputCodepage)
		if err != nil {
			log.Printf("Warning: %v, decoding output as UTF-8", err)
		} else {
			e.outputEncoding = enc
		}
	}
	return e
}

// Available reports whether the external tool resolves on the search path.
// Independent of privilege.
func (e *Executor) Available() bool {
	_, err := exec.LookPath(e.toolPath)
	return err == nil
}

// Execute runs one script through the tool and classifies the outcome. A zero
// timeout selects the default. The raw combined output is preserved in the
// result's Details on both paths. Execute never leaves the temp script behind
// and never lets a failure escape the CommandResult envelope.
func (e *Executor) Execute(ctx context.Context, script string, timeout time.Duration) *CommandResult {
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}

	if !e.probe.IsElevated() {
		return failureResult(ErrPrivilege)
	}

	scriptPath, err := e.writeScript(script)
	if err != nil {
		return failureResult(ErrCommandExecution.WithMessagef("write script file: %v", err))
	}
	defer e.removeScript(scriptPath)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout, stderr, runErr := e.runner.Run(runCtx, e.toolPath, "/s", scriptPath)
	output := e.decodeOutput(stdout)
	if errText := e.decodeOutput(stderr); errText != "" {
		output = strings.TrimRight(output, "\n") + "\n" + errText
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return failureResult(ErrCommandTimeout.
			WithMessagef("command exceeded the %s timeout", timeout).
			WithDetails(output))
	}

	lower := strings.ToLower(output)
	if runErr != nil {
		if strings.Contains(lower, "access is denied") {
			return failureResult(ErrAccessDenied.
				WithMessage(ExtractErrorMessage(output)).
				WithDetails(output))
		}
		return failureResult(ErrCommandExecution.
			WithMessagef("command exited abnormally: %v", runErr).
			WithDetails(output))
	}

	if !e.classifier.Classify(output) {
		if strings.Contains(lower, "access is denied") {
			return failureResult(ErrAccessDenied.
				WithMessage(ExtractErrorMessage(output)).
				WithDetails(output))
		}
		return failureResult(ErrCommandExecution.
			WithMessage(ExtractErrorMessage(output)).
			WithDetails(output))
	}

	return successResult("command completed successfully", output)
}

// ParseFunc converts raw captured output into a typed payload.
type ParseFunc func(raw string) (any, error)

// ExecuteAndParse composes Execute with a parser. Executor failures pass
// through untouched; a parser failure surfaces as PARSE_ERROR with the raw
// output preserved, since a successfully executed command can still produce
// output the parser does not recognize.
func (e *Executor) ExecuteAndParse(ctx context.Context, script string, timeout time.Duration, parse ParseFunc) *CommandResult {
	res := e.Execute(ctx, script, timeout)
	if !res.Success {
		return res
	}

	data, err := parse(res.Details)
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			if perr.Details == "" {
				perr = perr.WithDetails(res.Details)
			}
			return failureResult(perr)
		}
		return failureResult(ErrParse.WithMessage(err.Error()).WithDetails(res.Details))
	}

	res.Data = data
	return res
}

// writeScript materializes the script under a name unique per invocation so
// concurrent calls never collide.
func (e *Executor) writeScript(script string) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	name := fmt.Sprintf("dpagent-%d-%x.txt", time.Now().UnixNano(), suffix)
	path := filepath.Join(os.TempDir(), name)
	if err := os.WriteFile(path, []byte(script), 0600); err != nil {
		return "", err
	}
	return path, nil
}

func (e *Executor) removeScript(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to remove script file %s: %v", path, err)
	}
}

func (e *Executor) decodeOutput(b []byte) string {
	if e.outputEncoding == nil || len(b) == 0 {
		return string(b)
	}
	decoded, err := e.outputEncoding.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(decoded)
}

func codepageEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "cp437":
		return charmap.CodePage437, nil
	case "cp850":
		return charmap.CodePage850, nil
	case "cp866":
		return charmap.CodePage866, nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252, nil
	}
	return nil, fmt.Errorf("unsupported output codepage %q", name)
}
