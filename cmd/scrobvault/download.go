package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"scrobvault/internal/archive"
	"scrobvault/internal/asyncexec"
	"scrobvault/internal/canceltoken"
	"scrobvault/internal/config"
	"scrobvault/internal/downloader"
	"scrobvault/internal/lastfm"
	"scrobvault/internal/observ"
	"scrobvault/internal/trace"
)

var downloadUsername string

func init() {
	downloadCmd.Flags().StringVarP(&downloadUsername, "username", "u", "", "last.fm username to archive")
	downloadCmd.MarkFlagRequired("username") //nolint:errcheck
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download missing scrobbles into local archives",
	Long:  `download scans the existing archives of a user, computes the time ranges with no coverage, and fetches each one from last.fm into its own archive file`,
	RunE:  runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	colorMode, _ := cmd.Root().PersistentFlags().GetString("color")
	applyColorMode(colorMode)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tracer, cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	token := canceltoken.New()
	cancelOnSignal(token)
	// Release the cancellation watcher once the run is over.
	defer token.Cancel()
	var runDone atomic.Bool
	watchCancellation(token, &runDone, cmd.ErrOrStderr())

	d, err := buildDownloader(cmd, cfg, tracer)
	if err != nil {
		return err
	}

	noUI, err := cmd.Root().PersistentFlags().GetBool("no-ui")
	if err != nil {
		return fmt.Errorf("failed to get no-ui flag: %w", err)
	}

	var res *downloader.Result
	if shouldUseTUI(noUI) {
		res, err = runDownloadWithUI(cmd, d, downloadUsername, token)
	} else {
		d.Progress = consoleSink{out: cmd.OutOrStdout()}
		res, err = d.Run(cmd.Context(), downloadUsername, token.Observer())
	}
	runDone.Store(true)
	if err != nil {
		return err
	}

	printDownloadSummary(cmd.OutOrStdout(), res)
	printTimings(cmd, d.Timer)
	if res.Cancelled {
		return fmt.Errorf("run cancelled before full coverage")
	}
	return nil
}

// buildDownloader wires the client, storage and optional timer together.
func buildDownloader(cmd *cobra.Command, cfg *config.Config, tracer trace.Tracer) (*downloader.Downloader, error) {
	var clientOpts []lastfm.Option
	if cfg.LastFM.BaseURL != "" {
		clientOpts = append(clientOpts, lastfm.WithBaseURL(cfg.LastFM.BaseURL))
	}
	client, err := lastfm.NewClient(cfg.LastFM.APIKey, clientOpts...)
	if err != nil {
		return nil, err
	}

	cache, err := archive.OpenMetadataCache("scrobvault")
	if err != nil {
		// Run without the cache rather than failing the download.
		trace.Errorf(tracer, "cache.open", fmt.Sprintf("metadata cache unavailable: %v", err))
		cache = nil
	}

	var timer *observ.Timer
	if timings, _ := cmd.Root().PersistentFlags().GetBool("timings"); timings {
		timer = observ.NewTimer()
	}

	return &downloader.Downloader{
		Client:    client,
		Locations: archive.NewLocations(cfg.Archive.RootDir),
		Cache:     cache,
		Timer:     timer,
	}, nil
}

// cancelOnSignal cancels the token on the first SIGINT/SIGTERM and force
// exits on the second.
func cancelOnSignal(token canceltoken.Token) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		token.Cancel()
		<-ch
		os.Exit(1)
	}()
}

// watchCancellation parks a wait future on an executor and prints a notice
// the moment cancellation lands, regardless of which goroutine delivered
// it. Nothing is printed when the run finishes first.
func watchCancellation(token canceltoken.Token, runDone *atomic.Bool, errOut io.Writer) {
	exec := asyncexec.New()
	exec.Spawn(token.WaitFuture())
	go func() {
		exec.Run()
		if !runDone.Load() {
			fmt.Fprintln(errOut, "stop requested, finishing the current page...") //nolint:errcheck
		}
	}()
}

// consoleSink renders run events as plain lines for non-interactive use.
type consoleSink struct {
	out io.Writer
}

func (s consoleSink) OnEvent(evt downloader.Event) {
	if evt.Span == "" {
		if evt.Stage == downloader.StageScan && evt.Status == downloader.StatusDone {
			fmt.Fprintln(s.out, "scan complete") //nolint:errcheck
		}
		return
	}
	switch evt.Status {
	case downloader.StatusWorking:
		if evt.Stage == downloader.StageFetch && evt.Pages > 0 {
			fmt.Fprintf(s.out, "  %s: page %d/%d\n", evt.Span, evt.Page, evt.Pages) //nolint:errcheck
		}
	case downloader.StatusDone:
		if evt.Stage == downloader.StageWrite {
			fmt.Fprintf(s.out, "  %s: archived %d tracks\n", evt.Span, evt.Tracks) //nolint:errcheck
		}
	case downloader.StatusError:
		fmt.Fprintf(s.out, "  %s: failed: %v\n", evt.Span, evt.Err) //nolint:errcheck
	case downloader.StatusCancelled:
		fmt.Fprintf(s.out, "  %s: cancelled\n", evt.Span) //nolint:errcheck
	}
}

func printDownloadSummary(out io.Writer, res *downloader.Result) {
	okColor := color.New(color.FgGreen)
	warnColor := color.New(color.FgYellow)

	total := 0
	for _, sr := range res.Archived {
		total += sr.Tracks
	}
	okColor.Fprintf(out, "archived %d spans (%d tracks), %d already on disk\n", //nolint:errcheck
		len(res.Archived), total, res.Existing)
	if res.Cancelled {
		warnColor.Fprintf(out, "cancelled with %d of %d spans remaining\n", //nolint:errcheck
			len(res.Missing)-len(res.Archived), len(res.Missing))
	}
}

func printTimings(cmd *cobra.Command, timer *observ.Timer) {
	if timer == nil {
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), timer.Summary()) //nolint:errcheck
}
