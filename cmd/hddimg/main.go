package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Rudd3r/hddimg/pkg/args"
	"github.com/Rudd3r/hddimg/pkg/domain"
	"github.com/Rudd3r/hddimg/pkg/imager"
	"github.com/Rudd3r/hddimg/pkg/progress"
	"golang.org/x/sync/errgroup"

	flag "github.com/spf13/pflag"
)

func main() {
	(&args.Root{
		Commands: []args.Command{
			&args.Cmd[domain.CommandCreate]{
				Names:            []string{"create", "new"},
				Description:      "Create zero-filled raw disk images",
				ShortDescription: "Create disk images",
				PositionalArgs: []*args.PositionalArg[domain.CommandCreate]{
					{
						Name:        "Path",
						Description: "Image file path",
						Multiple:    true,
						Required:    true,
						Parse: func(a []string, cfg *domain.CommandCreate) (next []string, err error) {
							cfg.Paths = append(cfg.Paths, a[0])
							return a[1:], nil
						},
					},
				},
				Flags: func(cfg *domain.CommandCreate, flags *flag.FlagSet) {
					flags.VarP(
						args.NewDiskBytes(0, &cfg.SizeBytes),
						"size", "s",
						"Image size (e.g. 512MiB, 8GiB). Defaults to the configured default size.",
					)
					flags.BoolVarP(
						&cfg.Quiet,
						"quiet", "q", false,
						"Suppress progress output",
					)
				},
				Run: runCreate,
			},
			&args.Cmd[domain.CommandVerify]{
				Names:            []string{"verify", "check"},
				Description:      "Verify that images have the expected size and are fully zeroed",
				ShortDescription: "Verify disk images",
				PositionalArgs: []*args.PositionalArg[domain.CommandVerify]{
					{
						Name:        "Path",
						Description: "Image file path",
						Multiple:    true,
						Required:    true,
						Parse: func(a []string, cfg *domain.CommandVerify) (next []string, err error) {
							cfg.Paths = append(cfg.Paths, a[0])
							return a[1:], nil
						},
					},
				},
				Flags: func(cfg *domain.CommandVerify, flags *flag.FlagSet) {
					flags.VarP(
						args.NewDiskBytes(0, &cfg.SizeBytes),
						"size", "s",
						"Expected image size. Defaults to the current file size.",
					)
					flags.IntVarP(
						&cfg.Workers,
						"workers", "w", domain.DefaultVerifyWorkers,
						"Concurrent scan workers per image",
					)
				},
				Run: runVerify,
			},
			&args.Cmd[domain.CommandRemove]{
				Names:            []string{"rm", "remove"},
				Description:      "Delete disk images",
				ShortDescription: "Delete disk images",
				PositionalArgs: []*args.PositionalArg[domain.CommandRemove]{
					{
						Name:        "Path",
						Description: "Image file path",
						Multiple:    true,
						Required:    true,
						Parse: func(a []string, cfg *domain.CommandRemove) (next []string, err error) {
							cfg.Paths = append(cfg.Paths, a[0])
							return a[1:], nil
						},
					},
				},
				Flags: func(cfg *domain.CommandRemove, flags *flag.FlagSet) {},
				Run: func(ctx context.Context, log *slog.Logger, cfg *domain.Config, cmdCfg *domain.CommandRemove) error {
					var failed bool
					for _, path := range cmdCfg.Paths {
						if err := os.Remove(path); err != nil {
							_, _ = fmt.Fprintf(os.Stderr, "%s\n", err)
							failed = true
							continue
						}
						log.Info("image removed", "path", path)
					}
					if failed {
						return errors.New("not all images could be removed")
					}
					return nil
				},
			},
		},
	}).Run()
}

func runCreate(ctx context.Context, log *slog.Logger, cfg *domain.Config, cmdCfg *domain.CommandCreate) error {
	// The size flag starts at zero so an explicit size, even one equal to
	// a default, is never second-guessed.
	if cmdCfg.SizeBytes == 0 {
		cmdCfg.SizeBytes = cfg.DefaultImageSizeBytes
	}

	reporter, flush := newReporter(log, cmdCfg.Quiet)
	defer flush()

	start := time.Now()
	disp := imager.NewDispatcher()

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range cmdCfg.Paths {
		path := path
		creator := imager.NewCreator(log, reporter)
		go func() {
			<-ctx.Done()
			creator.Cancel()
		}()
		g.Go(func() error {
			return creator.StartOn(disp, imager.Request{Path: path, SizeBytes: cmdCfg.SizeBytes})
		})
	}
	go func() {
		_ = g.Wait()
		disp.Close()
	}()
	disp.Run()

	if err := g.Wait(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s\n", err)
		return err
	}
	log.Info("all images created",
		"count", len(cmdCfg.Paths),
		"size", domain.FormatSizeBytes(cmdCfg.SizeBytes),
		"elapsed", domain.FormatDuration(time.Since(start)))
	return nil
}

func runVerify(ctx context.Context, log *slog.Logger, cfg *domain.Config, cmdCfg *domain.CommandVerify) error {
	var failed bool
	for _, path := range cmdCfg.Paths {
		size := cmdCfg.SizeBytes
		if size == 0 {
			info, err := os.Stat(path)
			if err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "%s\n", err)
				failed = true
				continue
			}
			size = info.Size()
		}
		if err := imager.Verify(ctx, path, size, cmdCfg.Workers); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%s\n", err)
			failed = true
			continue
		}
		log.Info("image verified", "path", path, "size", domain.FormatSizeBytes(size))
	}
	if failed {
		return errors.New("verification failed")
	}
	return nil
}

func newReporter(log *slog.Logger, quiet bool) (*progress.Reporter, func()) {
	if quiet {
		return progress.NoOpReporter(), func() {}
	}
	if bar := newBarRenderer(os.Stdout); bar != nil {
		return progress.NewReporter(bar.render), bar.flush
	}
	return progress.SlogReporter(log), func() {}
}
