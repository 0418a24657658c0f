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
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/livekit/showvolume/pkg/errors"
	"github.com/livekit/showvolume/pkg/media"
)

const wavFormatPCM = 1

type wavPCM struct {
	dec *wav.Decoder
	buf *audio.IntBuffer
}

func (p *wavPCM) ReadPCM(dst media.PCM16Sample) (int, error) {
	if cap(p.buf.Data) < len(dst) {
		p.buf.Data = make([]int, len(dst))
	}
	p.buf.Data = p.buf.Data[:len(dst)]
	n, err := p.dec.PCMBuffer(p.buf)
	for i, v := range p.buf.Data[:n] {
		dst[i] = int16(v)
	}
	if n == 0 && err == nil {
		err = io.EOF
	}
	return n, err
}

// NewWAV reads a 16-bit PCM WAV stream.
// If r implements io.Closer, it is closed with the source.
func NewWAV(r io.ReadSeeker, frameDur time.Duration, planar bool) (*Reader, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV file", errors.ErrUnsupportedInput)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	if dec.WavAudioFormat != wavFormatPCM || dec.BitDepth != 16 {
		return nil, fmt.Errorf("%w: WAV format %d with %d bits per sample, only 16-bit PCM is supported",
			errors.ErrUnsupportedInput, dec.WavAudioFormat, dec.BitDepth)
	}
	channels := int(dec.NumChans)
	sampleRate := int(dec.SampleRate)
	pcm := &wavPCM{
		dec: dec,
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}
	closer, _ := r.(io.Closer)
	return newReader(pcm, closer, media.DefaultLayout(channels), sampleRate, frameDur, planar)
}
