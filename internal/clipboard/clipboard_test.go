// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package clipboard_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/toeirei/quickkeys/internal/clipboard"
	"github.com/toeirei/quickkeys/internal/testutil"
)

func TestBackupRestoresPreviousText(t *testing.T) {
	cb := testutil.NewFakeClipboard("previous")
	b := clipboard.Save(cb, 0)

	assert.NoError(t, cb.Write("secret"))
	b.Restore()
	assert.Equal(t, "previous", cb.Content())

	// Second restore is a no-op.
	assert.NoError(t, cb.Write("later"))
	b.Restore()
	assert.Equal(t, "later", cb.Content())
	assert.Equal(t, []string{"secret", "previous", "later"}, cb.Writes())
}

func TestBackupWaitsForDelay(t *testing.T) {
	cb := testutil.NewFakeClipboard("x")
	b := clipboard.Save(cb, 20*time.Millisecond)
	start := time.Now()
	b.Restore()
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestBackupUnreadableClipboard(t *testing.T) {
	cb := testutil.NewFakeClipboard("")
	cb.ReadErr = errors.New("no clipboard")
	b := clipboard.Save(cb, 0)
	b.Restore()
	assert.Empty(t, cb.Writes())
}

func TestBackupWriteFailureIsIgnored(t *testing.T) {
	cb := testutil.NewFakeClipboard("keep")
	b := clipboard.Save(cb, 0)
	cb.WriteErr = errors.New("busy")
	assert.NotPanics(t, b.Restore)
}

var _ clipboard.Clipboard = clipboard.System{}
var _ clipboard.Clipboard = (*testutil.FakeClipboard)(nil)
