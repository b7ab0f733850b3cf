// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the catalog of help pages
// rendered when treerun aborts an action.
package issue
