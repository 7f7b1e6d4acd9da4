package diskpart

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProbe struct{ elevated bool }

func (p fakeProbe) IsElevated() bool { return p.elevated }

// fakeRunner captures the invocation and replays canned output.
type fakeRunner struct {
	stdout     string
	stderr     string
	err        error
	block      bool // wait for context expiry instead of returning
	calls      int
	scriptPath string
	scriptBody string
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls++
	if len(args) == 2 && args[0] == "/s" {
		r.scriptPath = args[1]
		if body, err := os.ReadFile(args[1]); err == nil {
			r.scriptBody = string(body)
		}
	}
	if r.block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	return []byte(r.stdout), []byte(r.stderr), r.err
}

func newTestExecutor(runner Runner, elevated bool) *Executor {
	e := NewExecutor(ExecutorConfig{ToolPath: "diskpart"})
	e.probe = fakeProbe{elevated: elevated}
	e.runner = runner
	return e
}

func TestExecuteWithoutElevation(t *testing.T) {
	runner := &fakeRunner{stdout: "DiskPart successfully cleaned the disk."}
	e := newTestExecutor(runner, false)

	res := e.Execute(context.Background(), "list disk\n", 0)

	require.False(t, res.Success)
	assert.Equal(t, "PRIVILEGE_ERROR", res.ErrorCode)
	assert.Equal(t, 0, runner.calls, "no subprocess may be spawned without elevation")
}

func TestExecuteSuccessCleansUpScript(t *testing.T) {
	runner := &fakeRunner{stdout: "DiskPart successfully assigned the drive letter."}
	e := newTestExecutor(runner, true)

	res := e.Execute(context.Background(), "select disk 0\nassign letter=E\n", 0)

	require.True(t, res.Success)
	assert.Contains(t, res.Details, "successfully")
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "select disk 0\nassign letter=E\n", runner.scriptBody)

	_, err := os.Stat(runner.scriptPath)
	assert.True(t, os.IsNotExist(err), "temp script must be removed after execution")
}

func TestExecuteTimeout(t *testing.T) {
	runner := &fakeRunner{block: true}
	e := newTestExecutor(runner, true)

	res := e.Execute(context.Background(), "clean all\n", 50*time.Millisecond)

	require.False(t, res.Success)
	assert.Equal(t, "COMMAND_TIMEOUT", res.ErrorCode)
	assert.Contains(t, res.Message, "50ms")

	_, err := os.Stat(runner.scriptPath)
	assert.True(t, os.IsNotExist(err), "temp script must be removed after timeout")
}

func TestExecuteAccessDenied(t *testing.T) {
	runner := &fakeRunner{stdout: "Access is denied."}
	e := newTestExecutor(runner, true)

	res := e.Execute(context.Background(), "clean\n", 0)

	require.False(t, res.Success)
	assert.Equal(t, "ACCESS_DENIED", res.ErrorCode)
	assert.Equal(t, "Access is denied.", res.Message)
	assert.Contains(t, res.Details, "Access is denied.")
}

func TestExecuteNegativeOutputClassifiesAsFailure(t *testing.T) {
	runner := &fakeRunner{stdout: "Microsoft DiskPart\n\nThe disk you specified was not found.\n"}
	e := newTestExecutor(runner, true)

	res := e.Execute(context.Background(), "select disk 9\n", 0)

	require.False(t, res.Success)
	assert.Equal(t, "COMMAND_EXECUTION_ERROR", res.ErrorCode)
	assert.Equal(t, "The disk you specified was not found.", res.Message)
}

func TestExecuteAbnormalExit(t *testing.T) {
	runner := &fakeRunner{stdout: "partial output", err: assertError("exit status 2")}
	e := newTestExecutor(runner, true)

	res := e.Execute(context.Background(), "list disk\n", 0)

	require.False(t, res.Success)
	assert.Equal(t, "COMMAND_EXECUTION_ERROR", res.ErrorCode)
	assert.Contains(t, res.Message, "exit status 2")
	assert.Contains(t, res.Details, "partial output")
}

func TestExecuteCombinesStderr(t *testing.T) {
	runner := &fakeRunner{stdout: "DiskPart successfully formatted the volume.", stderr: "some warning"}
	e := newTestExecutor(runner, true)

	res := e.Execute(context.Background(), "format fs=NTFS quick\n", 0)

	require.True(t, res.Success)
	assert.Contains(t, res.Details, "some warning")
}

func TestExecuteAndParseWrapsPayload(t *testing.T) {
	runner := &fakeRunner{stdout: sampleDiskList}
	e := newTestExecutor(runner, true)

	res := e.ExecuteAndParse(context.Background(), "list disk\n", 0, func(raw string) (any, error) {
		return ParseDiskList(raw)
	})

	require.True(t, res.Success)
	disks, ok := res.Data.([]Disk)
	require.True(t, ok)
	assert.Len(t, disks, 3)
}

func TestExecuteAndParseSurfacesParseError(t *testing.T) {
	runner := &fakeRunner{stdout: "DiskPart successfully completed, but printed no table."}
	e := newTestExecutor(runner, true)

	res := e.ExecuteAndParse(context.Background(), "list disk\n", 0, func(raw string) (any, error) {
		return ParseDiskList(raw)
	})

	require.False(t, res.Success)
	assert.Equal(t, "PARSE_ERROR", res.ErrorCode)
	// The raw output must be preserved, never silently discarded.
	assert.Contains(t, res.Details, "printed no table")
}

func TestExecuteAndParsePassesExecutorFailureThrough(t *testing.T) {
	runner := &fakeRunner{stdout: "Access is denied."}
	e := newTestExecutor(runner, true)

	parserCalled := false
	res := e.ExecuteAndParse(context.Background(), "list disk\n", 0, func(raw string) (any, error) {
		parserCalled = true
		return nil, nil
	})

	require.False(t, res.Success)
	assert.Equal(t, "ACCESS_DENIED", res.ErrorCode)
	assert.False(t, parserCalled, "parser must not run on executor failure")
}

func TestExecutorDecodesConfiguredCodepage(t *testing.T) {
	e := NewExecutor(ExecutorConfig{OutputCodepage: "cp437"})
	// 0x81 is u-umlaut in codepage 437.
	assert.Equal(t, "für", e.decodeOutput([]byte{'f', 0x81, 'r'}))

	plain := NewExecutor(ExecutorConfig{})
	assert.Equal(t, "plain", plain.decodeOutput([]byte("plain")))

	// Unknown codepages fall back to pass-through decoding.
	unknown := NewExecutor(ExecutorConfig{OutputCodepage: "cp99999"})
	assert.Nil(t, unknown.outputEncoding)
}

func TestExecutorDefaults(t *testing.T) {
	e := NewExecutor(ExecutorConfig{})
	assert.Equal(t, defaultToolPath, e.toolPath)
	assert.Equal(t, DefaultTimeout, e.defaultTimeout)
	assert.Equal(t, DestructiveTimeout, e.destructiveTimeout)
}

func TestExecutorConcurrentScriptNamesDoNotCollide(t *testing.T) {
	e := NewExecutor(ExecutorConfig{})
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		path, err := e.writeScript("list disk\n")
		require.NoError(t, err)
		assert.False(t, seen[path], "script path %s reused", path)
		seen[path] = true
	}
	for path := range seen {
		e.removeScript(path)
	}
}

type assertError string

func (e assertError) Error() string { return string(e) }
