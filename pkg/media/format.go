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
	"fmt"
	"slices"
	"strings"

	"github.com/livekit/showvolume/pkg/errors"
)

// SampleFormat identifies the sample type and memory layout of audio data.
type SampleFormat int

const (
	SampleFormatNone SampleFormat = iota
	SampleFormatU8
	SampleFormatS16
	SampleFormatS32
	SampleFormatFLT
	SampleFormatDBL
	SampleFormatU8P
	SampleFormatS16P
	SampleFormatS32P
	SampleFormatFLTP
	SampleFormatDBLP
)

var sampleFormatNames = [...]string{
	SampleFormatNone: "none",
	SampleFormatU8:   "u8",
	SampleFormatS16:  "s16",
	SampleFormatS32:  "s32",
	SampleFormatFLT:  "flt",
	SampleFormatDBL:  "dbl",
	SampleFormatU8P:  "u8p",
	SampleFormatS16P: "s16p",
	SampleFormatS32P: "s32p",
	SampleFormatFLTP: "fltp",
	SampleFormatDBLP: "dblp",
}

func (f SampleFormat) String() string {
	if f < 0 || int(f) >= len(sampleFormatNames) {
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
	return sampleFormatNames[f]
}

func (f SampleFormat) Valid() bool {
	return f > SampleFormatNone && int(f) < len(sampleFormatNames)
}

// IsPlanar reports whether each channel is stored in its own plane.
func (f SampleFormat) IsPlanar() bool {
	return f >= SampleFormatU8P && f <= SampleFormatDBLP
}

// Packed returns the interleaved variant of the format.
func (f SampleFormat) Packed() SampleFormat {
	if f.IsPlanar() {
		return f - (SampleFormatU8P - SampleFormatU8)
	}
	return f
}

// Planar returns the planar variant of the format.
func (f SampleFormat) Planar() SampleFormat {
	if f.Valid() && !f.IsPlanar() {
		return f + (SampleFormatU8P - SampleFormatU8)
	}
	return f
}

func (f SampleFormat) BytesPerSample() int {
	switch f.Packed() {
	case SampleFormatU8:
		return 1
	case SampleFormatS16:
		return 2
	case SampleFormatS32, SampleFormatFLT:
		return 4
	case SampleFormatDBL:
		return 8
	}
	return 0
}

func ParseSampleFormat(s string) (SampleFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range sampleFormatNames {
		if i != int(SampleFormatNone) && name == s {
			return SampleFormat(i), nil
		}
	}
	return SampleFormatNone, fmt.Errorf("%w: %q", errors.ErrFormatNotSupported, s)
}

// FormatList is an ordered set of sample formats, in order of preference.
type FormatList []SampleFormat

// NewFormatList builds a list, skipping invalid formats and duplicates.
func NewFormatList(formats ...SampleFormat) FormatList {
	out := make(FormatList, 0, len(formats))
	for _, f := range formats {
		if !f.Valid() || slices.Contains(out, f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (l FormatList) Contains(f SampleFormat) bool {
	return slices.Contains(l, f)
}

// Intersect keeps the formats of l that are also present in o, preserving the order of l.
func (l FormatList) Intersect(o FormatList) FormatList {
	out := make(FormatList, 0, len(l))
	for _, f := range l {
		if o.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}

func (l FormatList) String() string {
	names := make([]string, 0, len(l))
	for _, f := range l {
		names = append(names, f.String())
	}
	return "[" + strings.Join(names, ",") + "]"
}
