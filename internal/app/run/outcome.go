// SPDX-License-Identifier: MPL-2.0

package run

import (
	"fmt"

	"github.com/treerun/treerun/internal/notify"
	"github.com/treerun/treerun/internal/runtime"
)

// ReportOutcome tells the user how a run ended. It does nothing unless
// debugMode is set; the side-channel log always has the outcome.
func ReportOutcome(n notify.Notifier, debugMode bool, shellCommand string, res *runtime.Result) {
	if !debugMode || res == nil {
		return
	}

	switch {
	case res.Success():
		n.Notify(notify.SeverityInfo, fmt.Sprintf("Command \"%s\" completed successfully.", shellCommand))
	case res.Exited:
		n.Notify(notify.SeverityError, fmt.Sprintf("Command \"%s\" failed with exit code %d.", shellCommand, res.ExitCode))
	default:
		n.Notify(notify.SeverityError, fmt.Sprintf("Command \"%s\" failed: %s.", shellCommand, res.Reason()))
	}
}
