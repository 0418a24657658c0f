// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/showvolume/pkg/config"
	"github.com/livekit/showvolume/pkg/filter"
	"github.com/livekit/showvolume/pkg/graph"
	"github.com/livekit/showvolume/pkg/media"
	"github.com/livekit/showvolume/pkg/showvolume"
	"github.com/livekit/showvolume/pkg/sink"
	"github.com/livekit/showvolume/pkg/source"
	"github.com/livekit/showvolume/pkg/stats"
	"github.com/livekit/showvolume/version"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:        "showvolume",
		Usage:       "Log every 16-bit PCM sample of an audio stream",
		Version:     version.Version,
		ArgsUsage:   "<input>",
		Description: "Reads a WAV, MP3, FLAC, Ogg Vorbis or raw s16le stream, logs the channel and amplitude of every sample and optionally writes the unchanged audio out.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "showvolume yaml config file",
				Sources: cli.EnvVars("SHOWVOLUME_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "config-body",
				Usage:   "showvolume yaml config body",
				Sources: cli.EnvVars("SHOWVOLUME_CONFIG_BODY"),
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "input format: wav, mp3, flac, ogg or raw",
			},
			&cli.IntFlag{
				Name:  "sample-rate",
				Usage: "sample rate of raw input",
			},
			&cli.IntFlag{
				Name:  "channels",
				Usage: "channel count of raw input",
			},
			&cli.StringFlag{
				Name:  "layout",
				Usage: "channel layout of raw input (mono, stereo, 5.1, ...)",
			},
			&cli.BoolFlag{
				Name:  "planar",
				Usage: "process planar frames instead of interleaved ones",
			},
			&cli.DurationFlag{
				Name:  "frame-duration",
				Usage: "duration of a single frame",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write forwarded audio to this file (.wav or raw)",
			},
			&cli.BoolFlag{
				Name:  "stdout",
				Usage: "print sample lines to stdout instead of the log",
			},
			&cli.IntFlag{
				Name:  "prometheus-port",
				Usage: "expose prometheus metrics on this port",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "filters",
				Usage:  "List available filters",
				Action: listFilters,
			},
		},
		Action: run,
	}
}

func listFilters(_ context.Context, _ *cli.Command) error {
	for _, d := range filter.Filters() {
		fmt.Printf("%-12s %s\n", d.Name, d.Description)
	}
	return nil
}

func run(ctx context.Context, c *cli.Command) error {
	conf, err := getConfig(c)
	if err != nil {
		return err
	}
	if err = conf.Init(); err != nil {
		return err
	}
	log := logger.GetLogger()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	var mon *stats.Monitor
	if conf.PrometheusPort > 0 {
		mon = stats.NewMonitor(conf)
		if err = mon.Start(); err != nil {
			return err
		}
		defer mon.Stop()
		if err = mon.Serve(ctx, conf.PrometheusPort, log); err != nil {
			return err
		}
	}

	src, err := openSource(conf)
	if err != nil {
		return err
	}
	defer src.Close()

	opts := filter.Options{Log: log}
	if conf.Records == config.RecordsStdout {
		opts.Output = os.Stdout
	}
	g := graph.New(opts, mon)
	defer g.Close()

	if _, err = g.Add(showvolume.Name); err != nil {
		return err
	}
	out, err := openSink(conf, src)
	if err != nil {
		return err
	}
	g.SetSink(out)

	format, err := g.Configure(src.Formats())
	if err != nil {
		return err
	}
	if err = src.SetFormat(format); err != nil {
		return err
	}
	log.Infow("processing",
		"input", conf.Input.Path,
		"sampleRate", src.SampleRate(),
		"layout", src.Layout().String(),
		"format", format.String(),
	)

	if err = g.Run(ctx, src); err != nil {
		return err
	}
	return g.Close()
}

func getConfig(c *cli.Command) (*config.Config, error) {
	configFile := c.String("config")
	configBody := c.String("config-body")
	if configBody == "" && configFile != "" {
		content, err := os.ReadFile(configFile)
		if err != nil {
			return nil, err
		}
		configBody = string(content)
	}

	conf, err := config.NewConfig(configBody)
	if err != nil {
		return nil, err
	}

	if in := c.Args().First(); in != "" {
		conf.Input.Path = in
	}
	if c.IsSet("format") {
		conf.Input.Format = c.String("format")
	}
	if c.IsSet("sample-rate") {
		conf.Input.SampleRate = int(c.Int("sample-rate"))
	}
	if c.IsSet("channels") {
		conf.Input.Channels = int(c.Int("channels"))
	}
	if c.IsSet("layout") {
		conf.Input.Layout = c.String("layout")
	}
	if c.IsSet("planar") {
		conf.Planar = c.Bool("planar")
	}
	if c.IsSet("frame-duration") {
		conf.FrameDuration = c.Duration("frame-duration")
	}
	if c.IsSet("output") {
		conf.Output.Path = c.String("output")
	}
	if c.Bool("stdout") {
		conf.Records = config.RecordsStdout
	}
	if c.IsSet("prometheus-port") {
		conf.PrometheusPort = int(c.Int("prometheus-port"))
	}
	return conf, nil
}

func openSource(conf *config.Config) (source.Source, error) {
	var r io.ReadCloser = os.Stdin
	if conf.Input.Path != config.StdioPath {
		f, err := os.Open(conf.Input.Path)
		if err != nil {
			return nil, err
		}
		r = f
	}
	src, err := newSource(conf, r)
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	return src, nil
}

func newSource(conf *config.Config, r io.ReadCloser) (source.Source, error) {
	switch conf.InputFormat() {
	case config.InputWAV:
		rs, ok := r.(io.ReadSeeker)
		if !ok {
			return nil, fmt.Errorf("wav input must be seekable")
		}
		return source.NewWAV(rs, conf.FrameDuration, conf.Planar)
	case config.InputMP3:
		return source.NewMP3(r, conf.FrameDuration, conf.Planar)
	case config.InputFLAC:
		return source.NewFLAC(r, conf.FrameDuration, conf.Planar)
	case config.InputVorbis:
		return source.NewVorbis(r, conf.FrameDuration, conf.Planar)
	}
	layout := media.DefaultLayout(conf.Input.Channels)
	if conf.Input.Layout != "" {
		l, err := media.ParseChannelLayout(conf.Input.Layout)
		if err != nil {
			return nil, err
		}
		layout = l
	}
	return source.NewRaw(r, layout, conf.Input.SampleRate, conf.FrameDuration, conf.Planar)
}

func openSink(conf *config.Config, src source.Source) (media.FrameWriter, error) {
	switch conf.OutputFormat() {
	case config.OutputRaw:
		w, err := createOutput(conf.Output.Path)
		if err != nil {
			return nil, err
		}
		return sink.NewRaw(w, src.SampleRate()), nil
	case config.OutputWAV:
		f, err := os.Create(conf.Output.Path)
		if err != nil {
			return nil, err
		}
		return sink.NewWAV(f, src.SampleRate(), src.Layout()), nil
	default:
		return sink.NewDiscard(src.SampleRate()), nil
	}
}

// createOutput opens path for writing. StdioPath writes to stdout, which stays open after Close.
func createOutput(path string) (io.WriteCloser, error) {
	if path == config.StdioPath {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
