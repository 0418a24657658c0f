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

package media

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// DefFrameDur is a default duration of an audio frame.
	DefFrameDur = 20 * time.Millisecond
	// DefFramesPerSec is a default number of audio frames per second.
	DefFramesPerSec = int(time.Second / DefFrameDur)
)

// SamplesPerFrame returns the number of samples per channel in a frame of a given duration.
func SamplesPerFrame(sampleRate int, dur time.Duration) int {
	n := int(time.Duration(sampleRate) * dur / time.Second)
	if n <= 0 {
		n = 1
	}
	return n
}

type Frame interface {
	// Size of the frame in bytes.
	Size() int
	// CopyTo copies the frame content to the destination bytes slice.
	// It returns io.ErrShortBuffer is the buffer size is less than frame's Size.
	CopyTo(dst []byte) (int, error)
}

type Writer[T any] interface {
	String() string
	SampleRate() int
	WriteSample(sample T) error
}

type WriteCloser[T any] interface {
	Writer[T]
	Close() error
}

// FrameWriter is a pad between two stages of a filter graph.
type FrameWriter = WriteCloser[*AudioFrame]

type WriterFunc[T any] func(in T) error

func (fnc WriterFunc[T]) String() string {
	return "WriterFunc"
}

func (fnc WriterFunc[T]) SampleRate() int {
	return 0
}

func (fnc WriterFunc[T]) WriteSample(in T) error {
	return fnc(in)
}

type writeCloser[T any] struct {
	Writer[T]
}

func (*writeCloser[T]) Close() error {
	return nil
}

func NopCloser[T any](w Writer[T]) WriteCloser[T] {
	return &writeCloser[T]{w}
}

type MultiWriter[T any] []WriteCloser[T]

func (s MultiWriter[T]) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "MultiWriter(%d,%d)", len(s), s.SampleRate())
	for i, w := range s {
		fmt.Fprintf(&buf, "; $%d-> %s", i+1, w.String())
	}
	return buf.String()
}

func (s MultiWriter[T]) SampleRate() int {
	if len(s) == 0 {
		return 0
	}
	return s[0].SampleRate()
}

func (s MultiWriter[T]) WriteSample(sample T) error {
	var last error
	for _, w := range s {
		if err := w.WriteSample(sample); err != nil {
			last = err
		}
	}
	return last
}

func (s MultiWriter[T]) Close() error {
	var last error
	for _, w := range s {
		if err := w.Close(); err != nil {
			last = err
		}
	}
	return last
}

// NewFileWriter writes raw frame bytes to w.
func NewFileWriter[T Frame](w io.WriteCloser, sampleRate int) WriteCloser[T] {
	return &fileWriter[T]{
		w:          w,
		bw:         bufio.NewWriter(w),
		sampleRate: sampleRate,
	}
}

type fileWriter[T Frame] struct {
	w          io.WriteCloser
	bw         *bufio.Writer
	sampleRate int
	buf        []byte
}

func (w *fileWriter[T]) String() string {
	return fmt.Sprintf("RawFile(%d)", w.sampleRate)
}

func (w *fileWriter[T]) SampleRate() int {
	return w.sampleRate
}

func (w *fileWriter[T]) WriteSample(sample T) error {
	if sz := sample.Size(); cap(w.buf) < sz {
		w.buf = make([]byte, sz)
	} else {
		w.buf = w.buf[:sz]
	}
	n, err := sample.CopyTo(w.buf)
	if err != nil {
		return err
	}
	_, err = w.bw.Write(w.buf[:n])
	return err
}

func (w *fileWriter[T]) Close() error {
	if err := w.bw.Flush(); err != nil {
		_ = w.w.Close()
		return err
	}
	return w.w.Close()
}
