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

package source

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"

	"github.com/livekit/showvolume/pkg/errors"
	"github.com/livekit/showvolume/pkg/media"
)

// NewMP3 decodes an MP3 stream. The decoder always produces stereo s16le.
func NewMP3(r io.Reader, frameDur time.Duration, planar bool) (*Reader, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding MP3: %v", errors.ErrUnsupportedInput, err)
	}
	closer, _ := r.(io.Closer)
	return newReader(&rawPCM{r: dec}, closer, media.LayoutStereo, dec.SampleRate(), frameDur, planar)
}

type flacPCM struct {
	stream   *flac.Stream
	channels int
	bps      int
	pending  media.PCM16Sample
}

func (p *flacPCM) ReadPCM(dst media.PCM16Sample) (int, error) {
	if len(p.pending) == 0 {
		frame, err := p.stream.ParseNext()
		if err != nil {
			return 0, err
		}
		n := int(frame.Subframes[0].NSamples)
		if cap(p.pending) < n*p.channels {
			p.pending = make(media.PCM16Sample, n*p.channels)
		}
		p.pending = p.pending[:n*p.channels]
		for ch := 0; ch < p.channels; ch++ {
			for i, v := range frame.Subframes[ch].Samples[:n] {
				p.pending[i*p.channels+ch] = scaleInt(v, p.bps)
			}
		}
	}
	n := copy(dst, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

// scaleInt converts a sample of the given bit depth to 16 bits.
func scaleInt(v int32, bps int) int16 {
	switch {
	case bps > 16:
		v >>= bps - 16
	case bps < 16:
		v <<= 16 - bps
	}
	return int16(max(math.MinInt16, min(math.MaxInt16, v)))
}

// NewFLAC decodes a FLAC stream. Samples of other bit depths are scaled to 16 bits.
func NewFLAC(r io.Reader, frameDur time.Duration, planar bool) (*Reader, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding FLAC: %v", errors.ErrUnsupportedInput, err)
	}
	channels := int(stream.Info.NChannels)
	pcm := &flacPCM{
		stream:   stream,
		channels: channels,
		bps:      int(stream.Info.BitsPerSample),
	}
	closer, _ := r.(io.Closer)
	return newReader(pcm, closer, media.DefaultLayout(channels), int(stream.Info.SampleRate), frameDur, planar)
}

type vorbisPCM struct {
	r   *oggvorbis.Reader
	buf []float32
}

func (p *vorbisPCM) ReadPCM(dst media.PCM16Sample) (int, error) {
	if cap(p.buf) < len(dst) {
		p.buf = make([]float32, len(dst))
	}
	n, err := p.r.Read(p.buf[:len(dst)])
	for i, v := range p.buf[:n] {
		dst[i] = scaleFloat(v)
	}
	if n == 0 && err == nil {
		err = io.EOF
	}
	return n, err
}

// scaleFloat converts a [-1, 1] sample to 16 bits, clipping values out of range.
func scaleFloat(v float32) int16 {
	v = max(-1, min(1, v))
	return int16(v * math.MaxInt16)
}

// NewVorbis decodes an Ogg Vorbis stream.
func NewVorbis(r io.Reader, frameDur time.Duration, planar bool) (*Reader, error) {
	rd, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding Ogg Vorbis: %v", errors.ErrUnsupportedInput, err)
	}
	closer, _ := r.(io.Closer)
	return newReader(&vorbisPCM{r: rd}, closer, media.DefaultLayout(rd.Channels()), rd.SampleRate(), frameDur, planar)
}
