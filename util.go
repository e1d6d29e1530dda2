// util.go: small host/process helpers used by the formatter.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"os"
	"path/filepath"
)

func cachedHostname() (string, error) {
	return os.Hostname()
}

func cachedProgramName() string {
	if len(os.Args) == 0 {
		return "unknown"
	}
	return filepath.Base(os.Args[0])
}

func processID() int {
	return os.Getpid()
}
