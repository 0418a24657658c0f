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
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/livekit/protocol/logger"
)

// Record is a single logged sample.
type Record struct {
	N       uint64
	Channel int
	Volume  int16
}

func (r Record) String() string {
	return fmt.Sprintf("n: %d, channel: %d, volume: %d", r.N, r.Channel, r.Volume)
}

// AppendText appends the textual form of the record to b.
func (r Record) AppendText(b []byte) []byte {
	b = append(b, "n: "...)
	b = strconv.AppendUint(b, r.N, 10)
	b = append(b, ", channel: "...)
	b = strconv.AppendInt(b, int64(r.Channel), 10)
	b = append(b, ", volume: "...)
	return strconv.AppendInt(b, int64(r.Volume), 10)
}

// Sink receives records. The filter assumes a sink never fails.
type Sink interface {
	Record(r Record)
}

type SinkFunc func(r Record)

func (fnc SinkFunc) Record(r Record) {
	fnc(r)
}

type logSink struct {
	log logger.Logger
}

// LogSink reports every record at info level.
func LogSink(log logger.Logger) Sink {
	if log == nil {
		log = logger.GetLogger()
	}
	return &logSink{log: log}
}

func (s *logSink) Record(r Record) {
	s.log.Infow(r.String())
}

// TextSink writes one line per record.
type TextSink struct {
	bw  *bufio.Writer
	buf []byte
	err error
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{bw: bufio.NewWriter(w)}
}

func (s *TextSink) Record(r Record) {
	if s.err != nil {
		return
	}
	s.buf = append(r.AppendText(s.buf[:0]), '\n')
	_, s.err = s.bw.Write(s.buf)
}

// Flush writes buffered lines and returns the first write error, if any.
func (s *TextSink) Flush() error {
	if s.err != nil {
		return s.err
	}
	return s.bw.Flush()
}
