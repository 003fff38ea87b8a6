// Copyright 2026 The FIRSTMap Authors
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "FIRSTMap team location data",
	Long: `
scraper builds the team location data behind FIRSTMap: it downloads the
season's team list from The Blue Alliance, resolves every team to map
coordinates through the GeoNames gazetteer and publishes teams.json and
teamFullInfo.json.
`,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
