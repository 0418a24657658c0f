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

package config

import (
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/livekit/protocol/logger"
	"github.com/livekit/protocol/utils"

	"github.com/livekit/showvolume/pkg/errors"
)

const (
	InputWAV    = "wav"
	InputRaw    = "raw"
	InputMP3    = "mp3"
	InputFLAC   = "flac"
	InputVorbis = "ogg"

	OutputNone = "none"
	OutputRaw  = "raw"
	OutputWAV  = "wav"

	RecordsLog    = "log"
	RecordsStdout = "stdout"

	// StdioPath selects stdin as input or stdout as output.
	StdioPath = "-"

	DefaultSampleRate = 48000
	DefaultChannels   = 2
)

type Config struct {
	Logging logger.Config `yaml:"logging"`

	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`

	Planar        bool          `yaml:"planar"`         // produce planar frames
	FrameDuration time.Duration `yaml:"frame_duration"` // default 20ms
	Records       string        `yaml:"records"`        // log (default) or stdout

	PrometheusPort int `yaml:"prometheus_port"`

	// internal
	ServiceName string `yaml:"-"`
	RunID       string `yaml:"-"` // Do not provide, will be overwritten
}

type InputConfig struct {
	Path       string `yaml:"path"`
	Format     string `yaml:"format"`      // wav, mp3, flac, ogg or raw, guessed from the extension if empty
	SampleRate int    `yaml:"sample_rate"` // raw only
	Channels   int    `yaml:"channels"`    // raw only
	Layout     string `yaml:"layout"`      // raw only, overrides channels
}

type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // none, raw or wav, guessed from the extension if empty
}

func NewConfig(confString string) (*Config, error) {
	conf := &Config{
		ServiceName: "showvolume",
	}
	if confString != "" {
		if err := yaml.Unmarshal([]byte(confString), conf); err != nil {
			return nil, errors.ErrCouldNotParseConfig(err)
		}
	}
	conf.setDefaults()
	return conf, nil
}

func (conf *Config) setDefaults() {
	if conf.FrameDuration == 0 {
		conf.FrameDuration = 20 * time.Millisecond
	}
	if conf.Records == "" {
		conf.Records = RecordsLog
	}
	if conf.Input.SampleRate == 0 {
		conf.Input.SampleRate = DefaultSampleRate
	}
	if conf.Input.Channels == 0 {
		conf.Input.Channels = DefaultChannels
	}
}

// InputFormat returns the configured input format or guesses it from the file extension.
func (conf *Config) InputFormat() string {
	if conf.Input.Format != "" {
		return strings.ToLower(conf.Input.Format)
	}
	switch ext := strings.ToLower(filepath.Ext(conf.Input.Path)); ext {
	case ".wav", ".mp3", ".flac", ".ogg":
		return ext[1:]
	case ".oga":
		return InputVorbis
	}
	return InputRaw
}

// OutputFormat returns the configured output format or guesses it from the file extension.
func (conf *Config) OutputFormat() string {
	if conf.Output.Format != "" {
		return strings.ToLower(conf.Output.Format)
	}
	switch {
	case conf.Output.Path == "":
		return OutputNone
	case strings.EqualFold(filepath.Ext(conf.Output.Path), ".wav"):
		return OutputWAV
	}
	return OutputRaw
}

func (conf *Config) Validate() error {
	if conf.Input.Path == "" {
		return errors.ErrNoInput
	}
	switch conf.InputFormat() {
	case InputWAV, InputRaw, InputMP3, InputFLAC, InputVorbis:
	default:
		return errors.ErrInvalidConfig("unknown input format %q", conf.Input.Format)
	}
	switch conf.OutputFormat() {
	case OutputNone:
	case OutputRaw, OutputWAV:
		if conf.Output.Path == "" {
			return errors.ErrInvalidConfig("output path is required for %s output", conf.OutputFormat())
		}
		if conf.Output.Path == StdioPath {
			if conf.OutputFormat() == OutputWAV {
				return errors.ErrInvalidConfig("wav output needs a seekable file, not stdout")
			}
			if conf.Records == RecordsStdout {
				return errors.ErrInvalidConfig("stdout cannot carry both audio and sample records")
			}
		}
	default:
		return errors.ErrInvalidConfig("unknown output format %q", conf.Output.Format)
	}
	switch conf.Records {
	case RecordsLog, RecordsStdout:
	default:
		return errors.ErrInvalidConfig("unknown records destination %q", conf.Records)
	}
	if conf.Input.SampleRate <= 0 {
		return errors.ErrInvalidConfig("sample rate must be positive")
	}
	if conf.Input.Channels <= 0 || conf.Input.Channels > 64 {
		return errors.ErrInvalidConfig("channel count must be between 1 and 64")
	}
	if conf.FrameDuration < 0 {
		return errors.ErrInvalidConfig("frame duration must be positive")
	}
	if conf.PrometheusPort < 0 || conf.PrometheusPort > 65535 {
		return errors.ErrInvalidConfig("invalid prometheus port %d", conf.PrometheusPort)
	}
	return nil
}

func (conf *Config) Init() error {
	conf.RunID = utils.NewGuid("SV_")

	if err := conf.Validate(); err != nil {
		return err
	}
	if err := conf.InitLogger(); err != nil {
		return err
	}
	return nil
}

func (c *Config) InitLogger(values ...interface{}) error {
	zl, err := logger.NewZapLogger(&c.Logging)
	if err != nil {
		return err
	}

	values = append(c.GetLoggerValues(), values...)
	l := zl.WithValues(values...)
	logger.SetLogger(l, c.ServiceName)

	return nil
}

// To use with zap logger
func (c *Config) GetLoggerValues() []interface{} {
	return []interface{}{"runID", c.RunID}
}
