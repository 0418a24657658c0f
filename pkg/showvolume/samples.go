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
	"iter"

	"github.com/livekit/showvolume/pkg/media"
)

// sampleView is a read-only view of the samples of one frame, regardless of layout.
type sampleView struct {
	planes   []media.PCM16Sample
	perPlane int
	channels int
	planar   bool
}

// planarView walks each plane fully before the next one. Plane index is the channel.
func planarView(planes []media.PCM16Sample, nbSamples int) sampleView {
	return sampleView{
		planes:   planes,
		perPlane: nbSamples,
		channels: len(planes),
		planar:   true,
	}
}

// interleavedView walks a single plane in array order. Channel is the index modulo channel count.
func interleavedView(data media.PCM16Sample, nbSamples, channels int) sampleView {
	return sampleView{
		planes:   []media.PCM16Sample{data},
		perPlane: nbSamples * channels,
		channels: channels,
	}
}

func frameView(f *media.AudioFrame) sampleView {
	channels := f.Layout.NumChannels()
	if f.Format.IsPlanar() {
		planes := f.Planes
		if len(planes) > channels {
			planes = planes[:channels]
		}
		return planarView(planes, f.NbSamples)
	}
	if len(f.Planes) == 0 || channels == 0 {
		return sampleView{}
	}
	return interleavedView(f.Planes[0], f.NbSamples, channels)
}

// All yields a channel index and amplitude for every sample.
func (v sampleView) All() iter.Seq2[int, int16] {
	return func(yield func(int, int16) bool) {
		for plane, pcm := range v.planes {
			for i := 0; i < v.perPlane && i < len(pcm); i++ {
				ch := plane
				if !v.planar {
					ch = i % v.channels
				}
				if !yield(ch, pcm[i]) {
					return
				}
			}
		}
	}
}
