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
	"math/bits"
	"strconv"
	"strings"

	"github.com/livekit/showvolume/pkg/errors"
)

// ChannelLayout is a bitmask of the channels present in a stream.
// Channel order within a frame follows bit order.
type ChannelLayout uint64

const (
	ChannelFrontLeft ChannelLayout = 1 << iota
	ChannelFrontRight
	ChannelFrontCenter
	ChannelLowFrequency
	ChannelBackLeft
	ChannelBackRight
	ChannelFrontLeftOfCenter
	ChannelFrontRightOfCenter
	ChannelBackCenter
	ChannelSideLeft
	ChannelSideRight
)

const (
	LayoutMono      = ChannelFrontCenter
	LayoutStereo    = ChannelFrontLeft | ChannelFrontRight
	Layout2_1       = LayoutStereo | ChannelLowFrequency
	LayoutSurround  = LayoutStereo | ChannelFrontCenter
	LayoutQuad      = LayoutStereo | ChannelBackLeft | ChannelBackRight
	Layout5_0       = LayoutSurround | ChannelSideLeft | ChannelSideRight
	Layout5_1       = Layout5_0 | ChannelLowFrequency
	Layout7_1       = Layout5_1 | ChannelBackLeft | ChannelBackRight
	LayoutUndefined = ChannelLayout(0)
)

var layoutNames = []struct {
	name   string
	layout ChannelLayout
}{
	{"mono", LayoutMono},
	{"stereo", LayoutStereo},
	{"2.1", Layout2_1},
	{"3.0", LayoutSurround},
	{"quad", LayoutQuad},
	{"5.0", Layout5_0},
	{"5.1", Layout5_1},
	{"7.1", Layout7_1},
}

// NumChannels returns the number of channels in the layout.
func (l ChannelLayout) NumChannels() int {
	return bits.OnesCount64(uint64(l))
}

func (l ChannelLayout) String() string {
	for _, n := range layoutNames {
		if n.layout == l {
			return n.name
		}
	}
	return fmt.Sprintf("%d channels (0x%x)", l.NumChannels(), uint64(l))
}

// DefaultLayout returns the conventional layout for n channels.
func DefaultLayout(n int) ChannelLayout {
	switch n {
	case 1:
		return LayoutMono
	case 2:
		return LayoutStereo
	case 3:
		return LayoutSurround
	case 4:
		return LayoutQuad
	case 5:
		return Layout5_0
	case 6:
		return Layout5_1
	case 8:
		return Layout7_1
	}
	if n <= 0 || n > 64 {
		return LayoutUndefined
	}
	return ChannelLayout(uint64(1)<<n - 1)
}

// ParseChannelLayout accepts a layout name ("stereo", "5.1"), a channel count with
// a "c" suffix ("6c") or a plain channel count.
func ParseChannelLayout(s string) (ChannelLayout, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, n := range layoutNames {
		if n.name == s {
			return n.layout, nil
		}
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "c"))
	if err != nil {
		return LayoutUndefined, errors.ErrInvalidConfig("unknown channel layout %q", s)
	}
	l := DefaultLayout(n)
	if l == LayoutUndefined {
		return LayoutUndefined, errors.ErrInvalidConfig("invalid channel count %d", n)
	}
	return l, nil
}
