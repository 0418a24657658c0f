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
	"io"
	"time"

	"github.com/livekit/showvolume/pkg/media"
)

type rawPCM struct {
	r   io.Reader
	buf []byte
	odd []byte
}

func (p *rawPCM) ReadPCM(dst media.PCM16Sample) (int, error) {
	need := len(dst) * 2
	if cap(p.buf) < need {
		p.buf = make([]byte, need)
	}
	b := p.buf[:need]
	n := copy(b, p.odd)
	p.odd = p.odd[:0]
	m, err := io.ReadAtLeast(p.r, b[n:], 2-n)
	if err == io.ErrUnexpectedEOF {
		// trailing odd byte
		err = io.EOF
	}
	n += m
	if n%2 == 1 {
		p.odd = append(p.odd, b[n-1])
	}
	return media.LPCM16Sample(b[:n]).DecodeTo(dst), err
}

// NewRaw reads interleaved s16le samples from r.
// If r implements io.Closer, it is closed with the source.
func NewRaw(r io.Reader, layout media.ChannelLayout, sampleRate int, frameDur time.Duration, planar bool) (*Reader, error) {
	closer, _ := r.(io.Closer)
	return newReader(&rawPCM{r: r}, closer, layout, sampleRate, frameDur, planar)
}
