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
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"

	"github.com/livekit/showvolume/pkg/errors"
	"github.com/livekit/showvolume/pkg/media"
)

func readAll(t testing.TB, src Source) []*media.AudioFrame {
	t.Helper()
	var frames []*media.AudioFrame
	for {
		f, err := src.ReadFrame()
		if err == io.EOF {
			return frames
		}
		require.NoError(t, err)
		frames = append(frames, f)
	}
}

func ramp(n int) media.PCM16Sample {
	out := make(media.PCM16Sample, n)
	for i := range out {
		out[i] = int16(i - n/2)
	}
	return out
}

func TestRaw(t *testing.T) {
	t.Run("interleaved frames", func(t *testing.T) {
		// 8kHz, 10ms frames: 80 samples per channel.
		data := ramp(2 * 200)
		src, err := NewRaw(bytes.NewReader(data.Encode()), media.LayoutStereo, 8000, 10*time.Millisecond, false)
		require.NoError(t, err)
		require.Equal(t, 80, src.FrameSamples())
		require.Equal(t, media.SampleFormatS16, src.Format())

		frames := readAll(t, src)
		require.Len(t, frames, 3)
		require.Equal(t, []int{80, 80, 40}, []int{frames[0].NbSamples, frames[1].NbSamples, frames[2].NbSamples})
		require.Equal(t, []int64{0, 80, 160}, []int64{frames[0].PTS, frames[1].PTS, frames[2].PTS})

		var got media.PCM16Sample
		for _, f := range frames {
			require.Equal(t, media.SampleFormatS16, f.Format)
			require.Equal(t, 8000, f.SampleRate)
			require.NoError(t, f.Validate())
			got = append(got, f.Interleaved()...)
		}
		require.Equal(t, data, got)
		require.NoError(t, src.Close())
	})

	t.Run("planar frames", func(t *testing.T) {
		data := ramp(3 * 100)
		src, err := NewRaw(bytes.NewReader(data.Encode()), media.LayoutSurround, 8000, 0, true)
		require.NoError(t, err)
		require.Equal(t, media.FormatList{media.SampleFormatS16P, media.SampleFormatS16}, src.Formats())

		frames := readAll(t, src)
		require.Len(t, frames, 1)
		f := frames[0]
		require.Equal(t, media.SampleFormatS16P, f.Format)
		require.Len(t, f.Planes, 3)
		require.Equal(t, 100, f.NbSamples)
		require.Equal(t, data[1], f.Planes[1][0])
		require.Equal(t, data[5], f.Planes[2][1])
	})

	t.Run("negotiated format", func(t *testing.T) {
		src, err := NewRaw(bytes.NewReader(ramp(4).Encode()), media.LayoutStereo, 8000, 0, true)
		require.NoError(t, err)
		require.ErrorIs(t, src.SetFormat(media.SampleFormatFLT), errors.ErrFormatNotSupported)
		require.NoError(t, src.SetFormat(media.SampleFormatS16))
		frames := readAll(t, src)
		require.Len(t, frames, 1)
		require.Equal(t, media.SampleFormatS16, frames[0].Format)
	})

	t.Run("short reads and partial samples", func(t *testing.T) {
		data := ramp(2 * 50)
		raw := append(data.Encode(), 0x01, 0x02, 0x03) // one extra sample and an odd byte
		src, err := NewRaw(iotest.OneByteReader(bytes.NewReader(raw)), media.LayoutStereo, 8000, 0, false)
		require.NoError(t, err)
		frames := readAll(t, src)
		require.Len(t, frames, 1)
		require.Equal(t, data, frames[0].Interleaved())
	})

	t.Run("read error", func(t *testing.T) {
		boom := stderrors.New("boom")
		src, err := NewRaw(iotest.ErrReader(boom), media.LayoutMono, 8000, 0, false)
		require.NoError(t, err)
		_, err = src.ReadFrame()
		require.ErrorIs(t, err, boom)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		_, err := NewRaw(bytes.NewReader(nil), media.LayoutUndefined, 8000, 0, false)
		require.ErrorIs(t, err, errors.ErrUnsupportedInput)
		_, err = NewRaw(bytes.NewReader(nil), media.LayoutMono, 0, 0, false)
		require.ErrorIs(t, err, errors.ErrUnsupportedInput)
	})
}

func writeWAV(t testing.TB, sampleRate, bitDepth, channels int, data []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

func TestWAV(t *testing.T) {
	t.Run("16 bit", func(t *testing.T) {
		data := []int{1, -1, 2, -2, 3, -3, 32767, -32768}
		f, err := os.Open(writeWAV(t, 16000, 16, 2, data))
		require.NoError(t, err)

		src, err := NewWAV(f, 0, false)
		require.NoError(t, err)
		require.Equal(t, 16000, src.SampleRate())
		require.Equal(t, media.LayoutStereo, src.Layout())

		frames := readAll(t, src)
		require.Len(t, frames, 1)
		require.Equal(t, 4, frames[0].NbSamples)
		require.Equal(t, media.PCM16Sample{1, -1, 2, -2, 3, -3, 32767, -32768}, frames[0].Interleaved())
		require.NoError(t, src.Close())
	})

	t.Run("rejects other bit depths", func(t *testing.T) {
		f, err := os.Open(writeWAV(t, 16000, 24, 1, []int{1, 2, 3}))
		require.NoError(t, err)
		defer f.Close()
		_, err = NewWAV(f, 0, false)
		require.ErrorIs(t, err, errors.ErrUnsupportedInput)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := NewWAV(bytes.NewReader([]byte("definitely not a wav file")), 0, false)
		require.ErrorIs(t, err, errors.ErrUnsupportedInput)
	})
}

func TestDecoded(t *testing.T) {
	t.Run("scale int", func(t *testing.T) {
		require.Equal(t, int16(1000), scaleInt(1000, 16))
		require.Equal(t, int16(-32768), scaleInt(-8388608, 24))
		require.Equal(t, int16(0x7f), scaleInt(0x7fff, 24))
		require.Equal(t, int16(256), scaleInt(1, 8))
		require.Equal(t, int16(32767), scaleInt(1<<20, 12))
	})

	t.Run("scale float", func(t *testing.T) {
		require.Equal(t, int16(0), scaleFloat(0))
		require.Equal(t, int16(32767), scaleFloat(1))
		require.Equal(t, int16(-32767), scaleFloat(-1))
		require.Equal(t, int16(32767), scaleFloat(3.5))
	})

	t.Run("flac", func(t *testing.T) {
		// Two 16 sample blocks of verbatim 16 bit stereo at 8kHz.
		left := make(media.PCM16Sample, 32)
		for i := range left {
			left[i] = int16(i*1000 - 16000)
		}
		right := make(media.PCM16Sample, 32)
		for i, v := range left {
			right[i] = -v
		}
		left[5], right[5] = 32767, -32768

		f, err := os.Open("testdata/stereo16.flac")
		require.NoError(t, err)
		// 1ms frames: 8 samples per channel, so each block spans several frames.
		src, err := NewFLAC(f, time.Millisecond, false)
		require.NoError(t, err)
		require.Equal(t, media.LayoutStereo, src.Layout())
		require.Equal(t, 8000, src.SampleRate())
		require.Equal(t, 8, src.FrameSamples())

		frames := readAll(t, src)
		require.Len(t, frames, 4)
		var got media.PCM16Sample
		for i, fr := range frames {
			require.Equal(t, 8, fr.NbSamples)
			require.Equal(t, int64(i*8), fr.PTS)
			got = append(got, fr.Interleaved()...)
		}
		want := make(media.PCM16Sample, 0, 64)
		for i := range left {
			want = append(want, left[i], right[i])
		}
		require.Equal(t, want, got)
		require.NoError(t, src.Close())
	})

	t.Run("flac planar", func(t *testing.T) {
		f, err := os.Open("testdata/stereo16.flac")
		require.NoError(t, err)
		src, err := NewFLAC(f, time.Millisecond, true)
		require.NoError(t, err)
		frames := readAll(t, src)
		require.Len(t, frames, 4)
		last := frames[3]
		require.Equal(t, media.SampleFormatS16P, last.Format)
		require.Len(t, last.Planes, 2)
		require.Equal(t, media.PCM16Sample{8000, 9000, 10000, 11000, 12000, 13000, 14000, 15000}, last.Planes[0])
		require.Equal(t, media.PCM16Sample{-8000, -9000, -10000, -11000, -12000, -13000, -14000, -15000}, last.Planes[1])
		require.NoError(t, src.Close())
	})

	t.Run("mp3", func(t *testing.T) {
		// Three silent MPEG-1 Layer III frames, 48kHz stereo.
		f, err := os.Open("testdata/silence.mp3")
		require.NoError(t, err)
		src, err := NewMP3(f, 0, false)
		require.NoError(t, err)
		require.Equal(t, media.LayoutStereo, src.Layout())
		require.Equal(t, 48000, src.SampleRate())

		total := 0
		for _, fr := range readAll(t, src) {
			require.Equal(t, 2, fr.Layout.NumChannels())
			for _, v := range fr.Interleaved() {
				require.Zero(t, v)
			}
			total += fr.NbSamples
		}
		require.Equal(t, 3*1152, total)
		require.NoError(t, src.Close())
	})

	t.Run("vorbis", func(t *testing.T) {
		// One second of mono audio at 44.1kHz.
		f, err := os.Open("testdata/vorbis.ogg")
		require.NoError(t, err)
		src, err := NewVorbis(f, 0, false)
		require.NoError(t, err)
		require.Equal(t, media.LayoutMono, src.Layout())
		require.Equal(t, 44100, src.SampleRate())

		total := 0
		for _, fr := range readAll(t, src) {
			require.LessOrEqual(t, fr.NbSamples, src.FrameSamples())
			total += fr.NbSamples
		}
		require.Equal(t, 44100, total)
		require.NoError(t, src.Close())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		garbage := []byte("definitely not an audio stream, just text")
		_, err := NewFLAC(bytes.NewReader(garbage), 0, false)
		require.ErrorIs(t, err, errors.ErrUnsupportedInput)
		_, err = NewVorbis(bytes.NewReader(garbage), 0, false)
		require.ErrorIs(t, err, errors.ErrUnsupportedInput)
		_, err = NewMP3(bytes.NewReader(garbage), 0, false)
		require.ErrorIs(t, err, errors.ErrUnsupportedInput)
	})
}
