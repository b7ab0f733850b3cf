// SPDX-License-Identifier: MPL-2.0

//go:build unix

package target

import (
	"path/filepath"
	"syscall"
	"testing"

	"github.com/treerun/treerun/pkg/types"

	"github.com/spf13/afero"
)

func TestClassify_SpecialFileIsFile(t *testing.T) {
	t.Parallel()

	fifo := filepath.Join(t.TempDir(), "pipe")
	if err := syscall.Mkfifo(fifo, 0o644); err != nil {
		t.Skipf("mkfifo unavailable: %v", err)
	}

	isFile, err := NewResolver(afero.NewOsFs()).Classify(types.FilesystemPath(fifo))
	if err != nil || !isFile {
		t.Errorf("Classify(fifo) = %v, %v; want true, nil", isFile, err)
	}
}
