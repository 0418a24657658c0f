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
	"slices"
	"strings"

	"github.com/livekit/showvolume/pkg/errors"
)

var (
	filters    = make(map[string]*Descriptor)
	registered []*Descriptor
	onRegister []func(d *Descriptor)
)

// Register adds a filter to the registry. It is meant to be called from init.
func Register(d *Descriptor) {
	name := strings.ToLower(d.Name)
	switch {
	case name == "":
		panic("filter: empty name")
	case d.QueryFormats == nil || d.Init == nil:
		panic("filter: incomplete descriptor for " + name)
	}
	if _, ok := filters[name]; ok {
		panic("filter: duplicate registration of " + name)
	}
	filters[name] = d
	registered = append(registered, d)
	for _, fnc := range onRegister {
		fnc(d)
	}
}

// OnRegister calls fnc for all registered filters and for all filters registered later.
func OnRegister(fnc func(d *Descriptor)) {
	for _, d := range registered {
		fnc(d)
	}
	onRegister = append(onRegister, fnc)
}

func Lookup(name string) (*Descriptor, error) {
	d, ok := filters[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownFilter, name)
	}
	return d, nil
}

// Filters returns registered filters in registration order.
func Filters() []*Descriptor {
	return slices.Clone(registered)
}

// New creates an instance of a registered filter.
func New(name string, opts Options) (*Instance, error) {
	d, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return NewInstance(d, opts)
}
