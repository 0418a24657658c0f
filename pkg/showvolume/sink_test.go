// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package showvolume

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/require"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/showvolume/pkg/media"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRecord(t *testing.T) {
	cases := []struct {
		r   Record
		exp string
	}{
		{Record{N: 0, Channel: 0, Volume: 0}, "n: 0, channel: 0, volume: 0"},
		{Record{N: 1005, Channel: 1, Volume: 32767}, "n: 1005, channel: 1, volume: 32767"},
		{Record{N: math.MaxUint64, Channel: 7, Volume: -32768}, "n: 18446744073709551615, channel: 7, volume: -32768"},
	}
	for _, c := range cases {
		require.Equal(t, c.exp, c.r.String())
		require.Equal(t, c.exp, string(c.r.AppendText(nil)))
	}
}

func TestTextSink(t *testing.T) {
	t.Run("writes lines", func(t *testing.T) {
		var buf bytes.Buffer
		s := NewTextSink(&buf)
		s.Record(Record{N: 1, Channel: 0, Volume: -5})
		s.Record(Record{N: 2, Channel: 1, Volume: 7})
		require.Empty(t, buf.String())
		require.NoError(t, s.Flush())
		require.Equal(t, "n: 1, channel: 0, volume: -5\nn: 2, channel: 1, volume: 7\n", buf.String())
	})

	t.Run("reports write error on flush", func(t *testing.T) {
		s := NewTextSink(failingWriter{})
		s.Record(Record{N: 1})
		require.Error(t, s.Flush())
	})
}

func TestSinks(t *testing.T) {
	var got []Record
	f := New(SinkFunc(func(r Record) { got = append(got, r) }))
	require.NoError(t, f.WriteSample(interleavedFrame(1, []int16{3})))
	require.Equal(t, []Record{{N: 0, Channel: 0, Volume: 3}}, got)
}

type logEntry struct {
	Level int    `json:"level"`
	Msg   string `json:"msg"`
}

func TestLogSink(t *testing.T) {
	var entries []logEntry
	log := logger.LogRLogger(funcr.NewJSON(func(obj string) {
		var e logEntry
		require.NoError(t, json.Unmarshal([]byte(obj), &e))
		entries = append(entries, e)
	}, funcr.Options{Verbosity: 1}))

	f := New(LogSink(log))
	f.n = 41
	require.NoError(t, f.WriteSample(interleavedFrame(media.LayoutStereo, []int16{-7, 12})))

	// Info level is verbosity 0.
	require.Equal(t, []logEntry{
		{Level: 0, Msg: "n: 41, channel: 0, volume: -7"},
		{Level: 0, Msg: "n: 42, channel: 1, volume: 12"},
	}, entries)
}
