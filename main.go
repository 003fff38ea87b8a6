// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/FIRSTMap/scraper/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
