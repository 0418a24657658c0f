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

package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"

	"github.com/livekit/showvolume/pkg/media"
)

func TestDiscard(t *testing.T) {
	d := NewDiscard(8000)
	f, err := media.NewAudioFrame(media.SampleFormatS16P, media.LayoutQuad, 8000, 10)
	require.NoError(t, err)
	require.NoError(t, d.WriteSample(f))
	require.NoError(t, d.WriteSample(f))
	require.Equal(t, uint64(2), d.Frames())
	require.Equal(t, uint64(80), d.Samples())
	require.Equal(t, 8000, d.SampleRate())
	require.NoError(t, d.Close())
}

func TestRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pcm")
	file, err := os.Create(path)
	require.NoError(t, err)

	w := NewRaw(file, 8000)
	planar, err := media.FrameFromInterleaved(media.SampleFormatS16P, media.LayoutStereo, 8000, media.PCM16Sample{1, -1, 2, -2})
	require.NoError(t, err)
	packed, err := media.FrameFromInterleaved(media.SampleFormatS16, media.LayoutStereo, 8000, media.PCM16Sample{300, -300})
	require.NoError(t, err)
	require.NoError(t, w.WriteSample(planar))
	require.NoError(t, w.WriteSample(packed))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, media.PCM16Sample{1, -1, 2, -2, 300, -300}, media.LPCM16Sample(data).Decode())
}

func TestWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	file, err := os.Create(path)
	require.NoError(t, err)

	w := NewWAV(file, 16000, media.LayoutStereo)
	f, err := media.FrameFromInterleaved(media.SampleFormatS16P, media.LayoutStereo, 16000, media.PCM16Sample{5, 6, 7, 8})
	require.NoError(t, err)
	require.NoError(t, w.WriteSample(f))

	mono, err := media.FrameFromInterleaved(media.SampleFormatS16, media.LayoutMono, 16000, media.PCM16Sample{1})
	require.NoError(t, err)
	require.Error(t, w.WriteSample(mono))
	require.NoError(t, w.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	defer in.Close()
	dec := wav.NewDecoder(in)
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Equal(t, 2, int(dec.NumChans))
	require.Equal(t, 16000, int(dec.SampleRate))
	require.Equal(t, []int{5, 6, 7, 8}, buf.Data)
}
