// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runVirtual(t *testing.T, command, workDir string) (*Result, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	res := NewVirtualRuntime().Execute(&ExecutionContext{
		Context:      context.Background(),
		ShellCommand: command,
		WorkDir:      workDir,
		Stdout:       &stdout,
		Stderr:       &stderr,
	})
	return res, stdout.String(), stderr.String()
}

func TestVirtualRuntime_Basics(t *testing.T) {
	t.Parallel()

	rt := NewVirtualRuntime()
	if rt.Name() != "virtual" || !rt.Available() {
		t.Errorf("unexpected runtime identity: %q, %v", rt.Name(), rt.Available())
	}
}

func TestVirtualRuntime_Execute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		command    string
		wantCode   int
		wantStdout string
	}{
		{name: "echo", command: "echo hello", wantCode: 0, wantStdout: "hello\n"},
		{name: "exit code", command: "exit 4", wantCode: 4},
		{name: "and list", command: "true && echo yes", wantCode: 0, wantStdout: "yes\n"},
		{name: "failing builtin", command: "false", wantCode: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, stdout, _ := runVirtual(t, tt.command, "")
			if !res.Exited {
				t.Fatalf("expected an exit status, got %v", res.Error)
			}
			if int(res.ExitCode) != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", res.ExitCode, tt.wantCode)
			}
			if tt.wantStdout != "" && stdout != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout, tt.wantStdout)
			}
		})
	}
}

func TestVirtualRuntime_ParseError(t *testing.T) {
	t.Parallel()

	res, _, _ := runVirtual(t, "echo 'unterminated", "")
	if res.Exited || res.Error == nil {
		t.Errorf("parse errors must fail without an exit code, got %+v", res)
	}
	if !strings.Contains(res.Error.Error(), "parse") {
		t.Errorf("error = %v", res.Error)
	}
}

func TestVirtualRuntime_CdAndWorkDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	res, stdout, _ := runVirtual(t, "pwd", dir)
	if !res.Success() || strings.TrimSpace(stdout) != dir {
		t.Errorf("pwd in WorkDir = %q (%+v), want %q", stdout, res, dir)
	}

	res, stdout, _ = runVirtual(t, "cd "+sub+" && pwd", "")
	if !res.Success() || strings.TrimSpace(stdout) != sub {
		t.Errorf("cd && pwd = %q (%+v), want %q", stdout, res, sub)
	}
}
