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

package filter

import (
	"fmt"

	"github.com/frostbyte73/core"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/showvolume/pkg/errors"
	"github.com/livekit/showvolume/pkg/media"
)

var _ media.FrameWriter = (*Instance)(nil)

type State int

const (
	StateUninitialized State = iota
	StateActive
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Instance is a constructed filter. Instances are driven by a single goroutine.
type Instance struct {
	desc    *Descriptor
	log     logger.Logger
	proc    media.FrameProcessor
	formats media.FormatList
	format  media.SampleFormat
	state   State
	closed  core.Fuse
}

// NewInstance queries the accepted formats and initializes the filter state.
// On error the instance never becomes active.
func NewInstance(d *Descriptor, opts Options) (*Instance, error) {
	if opts.Log == nil {
		opts.Log = logger.GetLogger()
	}
	opts.Log = opts.Log.WithValues("filter", d.Name)
	i := &Instance{
		desc:  d,
		log:   opts.Log,
		state: StateUninitialized,
	}
	formats, err := d.QueryFormats()
	if err != nil {
		return nil, err
	}
	if formats == nil {
		return nil, errors.ErrNoMemory
	}
	i.formats = formats

	proc, err := d.Init(opts)
	if err != nil {
		return nil, err
	}
	i.proc = proc
	i.state = StateActive
	i.log.Debugw("filter initialized", "formats", formats.String())
	return i, nil
}

func (i *Instance) Name() string {
	return i.desc.Name
}

func (i *Instance) Descriptor() *Descriptor {
	return i.desc
}

func (i *Instance) State() State {
	return i.state
}

// Formats returns the sample formats accepted by the filter.
func (i *Instance) Formats() media.FormatList {
	return i.formats
}

// Format returns the format selected for the input link, if any.
func (i *Instance) Format() media.SampleFormat {
	return i.format
}

// Negotiate picks the first offered format that the filter accepts.
func (i *Instance) Negotiate(offered media.FormatList) (media.SampleFormat, error) {
	common := offered.Intersect(i.formats)
	if len(common) == 0 {
		return media.SampleFormatNone, fmt.Errorf("%w: %s accepts %v, offered %v",
			errors.ErrFormatNotSupported, i.desc.Name, i.formats, offered)
	}
	return common[0], nil
}

// SetFormat fixes the format of the input link.
func (i *Instance) SetFormat(f media.SampleFormat) error {
	if !i.formats.Contains(f) {
		return fmt.Errorf("%w: %s does not accept %v", errors.ErrFormatNotSupported, i.desc.Name, f)
	}
	i.format = f
	return nil
}

// Link connects the output pad of the filter to the next stage.
func (i *Instance) Link(w media.FrameWriter) {
	i.proc.SetWriter(w)
}

func (i *Instance) String() string {
	return fmt.Sprintf("Filter(%s, %v) -> %s", i.desc.Name, i.format, i.proc.String())
}

func (i *Instance) SampleRate() int {
	return i.proc.SampleRate()
}

// WriteSample passes a frame to the filter. The result of forwarding is returned unchanged.
func (i *Instance) WriteSample(frame *media.AudioFrame) error {
	if i.state != StateActive {
		return errors.ErrFilterClosed
	}
	if i.format != media.SampleFormatNone && frame.Format != i.format {
		return fmt.Errorf("%w: link negotiated %v, got %v", errors.ErrFormatNotSupported, i.format, frame.Format)
	}
	if err := frame.Validate(); err != nil {
		return err
	}
	return i.proc.WriteSample(frame)
}

// Close destroys the instance. The downstream stage is not closed.
func (i *Instance) Close() error {
	if i.closed.IsBroken() {
		return nil
	}
	i.closed.Break()
	i.state = StateDestroyed
	if i.desc.Uninit != nil {
		i.desc.Uninit(i.proc)
	}
	err := i.proc.Close()
	i.log.Debugw("filter destroyed")
	return err
}
