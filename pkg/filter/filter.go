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

// Package filter describes audio filters and manages the lifecycle of their instances.
package filter

import (
	"io"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/showvolume/pkg/media"
)

type MediaType int

const (
	MediaAudio MediaType = iota
	MediaVideo
)

func (t MediaType) String() string {
	switch t {
	case MediaAudio:
		return "audio"
	case MediaVideo:
		return "video"
	}
	return "unknown"
}

// Pad is a named connection point of a filter.
type Pad struct {
	Name string
	Type MediaType
}

// Options are provided by the host to every filter instance.
type Options struct {
	Log logger.Logger
	// Output receives textual filter output. If nil, filters report through Log.
	Output io.Writer
}

// Descriptor binds a filter name to its callbacks.
type Descriptor struct {
	Name        string
	Description string
	Inputs      []Pad
	Outputs     []Pad

	// QueryFormats returns sample formats accepted on all pads of the filter.
	// A nil list is treated as an allocation failure.
	QueryFormats func() (media.FormatList, error)
	// Init creates the private state of a new instance.
	Init func(opts Options) (media.FrameProcessor, error)
	// Uninit is called once when the instance is destroyed. Optional.
	Uninit func(p media.FrameProcessor)
}
