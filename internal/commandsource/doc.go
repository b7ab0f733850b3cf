// SPDX-License-Identifier: MPL-2.0

// Package commandsource loads command entries from the two places treerun
// reads them: the global list in the user's settings and the JSON command
// document at the workspace root.
//
// Loading never aborts a flow. A missing document contributes nothing; an
// unreadable or malformed one contributes nothing and raises exactly one
// Error notification.
package commandsource
