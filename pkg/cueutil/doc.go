// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// The package consolidates the 3-step parsing pattern used by the settings
// loader and the workspace command document:
//
//  1. Compile the embedded schema
//  2. Compile user data (CUE or strict JSON) and unify with schema
//  3. Validate and decode to Go struct
//
// # Usage
//
//	//go:embed document_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[document](
//	    schemaBytes,
//	    fileBytes,
//	    "#CommandDocument",
//	    cueutil.WithFilename("file-tree-command-runner.json"),
//	    cueutil.WithFormat(cueutil.FormatJSON),
//	)
//	if err != nil {
//	    return nil, err  // Error includes the JSON path for debugging
//	}
//	return result.Value, nil
package cueutil
