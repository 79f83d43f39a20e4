package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/remeh/sizedwaitgroup"
	"github.com/spf13/pflag"

	songsynth "github.com/cbegin/songsynth-go"
	"github.com/cbegin/songsynth-go/internal/config"
)

var logger = log.New(os.Stderr, "", log.Ldate|log.Ltime)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		configPath string
		outDir     string
		jobs       int
		bitDepth   int
		exportRate int
		sampleRate int
		channels   int
	)
	fs := pflag.NewFlagSet("songwav", pflag.ContinueOnError)
	fs.StringVarP(&configPath, "config", "c", "", "YAML config file")
	fs.StringVarP(&outDir, "out-dir", "o", "", "write WAV files here instead of next to each song")
	fs.IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "songs rendered concurrently")
	fs.IntVar(&bitDepth, "bit-depth", 0, "WAV bit depth (16, 24 or 32)")
	fs.IntVar(&exportRate, "export-rate", 0, "resample the WAV to this rate")
	fs.IntVar(&sampleRate, "sample-rate", 0, "render sample rate in Hz")
	fs.IntVar(&channels, "channels", 0, "output channels (1 or 2)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		logger.Printf("%v", err)
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Printf("%v", err)
		return 1
	}
	if fs.Changed("sample-rate") {
		cfg.SampleRate = sampleRate
	}
	if fs.Changed("channels") {
		cfg.Channels = channels
	}
	if fs.Changed("bit-depth") {
		cfg.Export.BitDepth = bitDepth
	}
	if fs.Changed("export-rate") {
		cfg.Export.SampleRate = exportRate
	}
	if outDir != "" {
		cfg.Export.Dir = outDir
	}
	if err := cfg.Validate(); err != nil {
		logger.Printf("flags: %v", err)
		return 1
	}
	if fs.NArg() == 0 {
		logger.Printf("usage: songwav [flags] <song.txt>...")
		return 2
	}
	if cfg.Export.Dir != "" {
		if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
			logger.Printf("%v", err)
			return 1
		}
	}
	if jobs < 1 {
		jobs = 1
	}

	if failed := exportAll(fs.Args(), cfg, jobs); failed > 0 {
		logger.Printf("%d of %d songs failed", failed, fs.NArg())
		return 1
	}
	return 0
}

func exportAll(paths []string, cfg config.Config, jobs int) int {
	var (
		mu     sync.Mutex
		failed int
	)
	swg := sizedwaitgroup.New(jobs)
	for _, path := range paths {
		swg.Add()
		go func(path string) {
			defer swg.Done()
			if err := exportOne(path, cfg); err != nil {
				logger.Printf("%s: %v", path, err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(path)
	}
	swg.Wait()
	return failed
}

func exportOne(path string, cfg config.Config) error {
	start := time.Now()
	s, err := songsynth.Load(path)
	if err != nil {
		return err
	}
	buf, err := songsynth.Render(s,
		songsynth.WithSampleRate(cfg.SampleRate),
		songsynth.WithChannels(cfg.Channels),
		songsynth.WithPeak(int16(cfg.Peak)),
	)
	if err != nil {
		return err
	}
	out := cfg.Export.Path(path)
	if err := songsynth.ExportWAV(out, buf, cfg.Export.Options(buf.Rate)); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	var size uint64
	if fi, err := os.Stat(out); err == nil {
		size = uint64(fi.Size())
	}
	logger.Printf("%s -> %s: %s of audio, %s, %s", path, out, durafmt.Parse(s.Duration()).LimitFirstN(2),
		humanize.Bytes(size), time.Since(start).Round(time.Millisecond))
	return nil
}
