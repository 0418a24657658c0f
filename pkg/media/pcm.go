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
	"encoding/binary"
	"io"
)

// LPCM16Sample is a little-endian encoded signed 16-bit PCM buffer.
type LPCM16Sample []byte

func (s LPCM16Sample) Size() int {
	return len(s)
}

func (s LPCM16Sample) CopyTo(dst []byte) (int, error) {
	if len(dst) < len(s) {
		return 0, io.ErrShortBuffer
	}
	return copy(dst, s), nil
}

// Decode converts the buffer to samples. A trailing odd byte is ignored.
func (s LPCM16Sample) Decode() PCM16Sample {
	out := make(PCM16Sample, len(s)/2)
	s.DecodeTo(out)
	return out
}

// DecodeTo decodes as many samples as fit into dst and returns their number.
func (s LPCM16Sample) DecodeTo(dst PCM16Sample) int {
	n := min(len(s)/2, len(dst))
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(s[2*i:]))
	}
	return n
}

type PCM16Sample []int16

func (s PCM16Sample) Size() int {
	return len(s) * 2
}

func (s PCM16Sample) CopyTo(dst []byte) (int, error) {
	if len(dst) < s.Size() {
		return 0, io.ErrShortBuffer
	}
	for i, v := range s {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(v))
	}
	return s.Size(), nil
}

func (s PCM16Sample) Encode() LPCM16Sample {
	out := make(LPCM16Sample, s.Size())
	_, _ = s.CopyTo(out)
	return out
}
