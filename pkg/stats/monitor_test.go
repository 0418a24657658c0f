// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/livekit/showvolume/pkg/config"
	"github.com/livekit/showvolume/pkg/media"
)

func TestMonitor(t *testing.T) {
	var nilMon *Monitor
	nilMon.FrameProcessed(&media.AudioFrame{})
	nilMon.FrameError()

	m := NewMonitor(&config.Config{RunID: "SV_test"})
	// Not started yet.
	m.FrameProcessed(&media.AudioFrame{})

	require.NoError(t, m.Start())
	defer m.Stop()

	frame, err := media.NewAudioFrame(media.SampleFormatS16P, media.LayoutStereo, 8000, 160)
	require.NoError(t, err)
	m.FrameProcessed(frame)
	m.FrameProcessed(frame)
	m.FrameError()

	require.Equal(t, 2.0, testutil.ToFloat64(m.framesTotal.WithLabelValues("s16p")))
	require.Equal(t, 640.0, testutil.ToFloat64(m.samplesTotal.WithLabelValues("s16p")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal))
	require.Equal(t, 0.0, testutil.ToFloat64(m.framesTotal.WithLabelValues("s16")))

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	var got []string
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "livekit_showvolume_") {
			got = append(got, mf.GetName())
		}
	}
	require.ElementsMatch(t, []string{
		"livekit_showvolume_frames_total",
		"livekit_showvolume_samples_total",
		"livekit_showvolume_frame_channels",
		"livekit_showvolume_frame_samples",
		"livekit_showvolume_errors_total",
	}, got)
}
