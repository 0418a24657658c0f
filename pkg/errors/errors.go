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

package errors

import (
	"errors"

	"github.com/livekit/psrpc"
)

var (
	ErrNoInput            = newSentinel(psrpc.InvalidArgument, "missing input")
	ErrNoMemory           = newSentinel(psrpc.ResourceExhausted, "cannot allocate format list")
	ErrFormatNotSupported = newSentinel(psrpc.InvalidArgument, "sample format not supported")
	ErrInvalidFrame       = newSentinel(psrpc.InvalidArgument, "invalid audio frame")
	ErrUnknownFilter      = newSentinel(psrpc.NotFound, "unknown filter")
	ErrFilterClosed       = newSentinel(psrpc.Unavailable, "filter closed")
	ErrGraphNotConfigured = newSentinel(psrpc.FailedPrecondition, "graph not configured")
	ErrUnsupportedInput   = newSentinel(psrpc.InvalidArgument, "unsupported input")
)

// psrpcError is embedded under a name that does not collide with the Error method.
type psrpcError = psrpc.Error

// sentinel gives a psrpc error a pointer identity, so errors.Is matches it through wrapping.
type sentinel struct {
	psrpcError
}

var _ psrpc.Error = (*sentinel)(nil)

func newSentinel(code psrpc.ErrorCode, msg string) psrpc.Error {
	return &sentinel{psrpc.NewError(code, errors.New(msg))}
}

func ErrCouldNotParseConfig(err error) psrpc.Error {
	return psrpc.NewErrorf(psrpc.InvalidArgument, "could not parse config: %v", err)
}

func ErrInvalidConfig(format string, args ...any) psrpc.Error {
	return psrpc.NewErrorf(psrpc.InvalidArgument, "invalid config: "+format, args...)
}
