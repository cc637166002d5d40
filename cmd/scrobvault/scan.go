package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"scrobvault/internal/archive"
	"scrobvault/internal/downloader"
)

var scanUsername string

func init() {
	scanCmd.Flags().StringVarP(&scanUsername, "username", "u", "", "last.fm username to inspect")
	scanCmd.MarkFlagRequired("username") //nolint:errcheck
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List existing archives and coverage gaps",
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	colorMode, _ := cmd.Root().PersistentFlags().GetString("color")
	applyColorMode(colorMode)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	_, cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	cache, err := archive.OpenMetadataCache("scrobvault")
	if err != nil {
		cache = nil
	}

	locations := archive.NewLocations(cfg.Archive.RootDir)
	entries, err := archive.NewScanner(locations.UserDir(scanUsername), cache).Scan(cmd.Context())
	if err != nil {
		return err
	}

	printScanReport(cmd.OutOrStdout(), scanUsername, entries, time.Now().Truncate(time.Second))
	return nil
}

func printScanReport(out io.Writer, username string, entries []archive.Entry, until time.Time) {
	header := color.New(color.Bold)
	okColor := color.New(color.FgGreen)
	gapColor := color.New(color.FgRed)

	header.Fprintf(out, "archives for %s:\n", username) //nolint:errcheck
	if len(entries) == 0 {
		fmt.Fprintln(out, "  (none)") //nolint:errcheck
	}
	for _, e := range entries {
		span := archive.Span{From: e.Meta.From.Time, To: e.Meta.To.Time.Add(time.Second)}
		okColor.Fprintf(out, "  %s  %6d tracks\n", downloader.SpanLabel(span), e.TrackCount) //nolint:errcheck
	}

	metas := make([]archive.Metadata, len(entries))
	for i, e := range entries {
		metas[i] = e.Meta
	}
	missing := archive.MissingSpans(metas, until)

	header.Fprintln(out, "missing:") //nolint:errcheck
	if len(missing) == 0 {
		okColor.Fprintln(out, "  nothing, coverage is complete") //nolint:errcheck
		return
	}
	for _, span := range missing {
		gapColor.Fprintf(out, "  %s\n", downloader.SpanLabel(span)) //nolint:errcheck
	}
}
