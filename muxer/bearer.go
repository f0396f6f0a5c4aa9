// Copyright 2026 Blink Labs Software
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

package muxer

import (
	"errors"
	"io"
	"sync"
	"time"
)

// Bearer carries segments over a byte stream whose read and write halves are
// owned separately. Each half has its own lock, so one reader and one writer
// can make progress at the same time while each half only ever has a single
// holder
type Bearer struct {
	readHalf  *ReadHalf
	writeHalf *WriteHalf
	closer    io.Closer
	onceClose sync.Once
	closeErr  error
}

// ReadHalf is the receiving side of a Bearer. It may be shared, but reads are
// serialized
type ReadHalf struct {
	mutex  sync.Mutex
	reader io.Reader
}

// WriteHalf is the sending side of a Bearer
type WriteHalf struct {
	mutex  sync.Mutex
	writer io.Writer
}

type deadliner interface {
	SetDeadline(time.Time) error
}

// NewBearer splits conn into independently locked read and write halves
func NewBearer(conn io.ReadWriteCloser) *Bearer {
	return &Bearer{
		readHalf:  &ReadHalf{reader: conn},
		writeHalf: &WriteHalf{writer: conn},
		closer:    conn,
	}
}

// NewSplitBearer builds a Bearer from already separated halves. The closer may be nil
func NewSplitBearer(r io.Reader, w io.Writer, closer io.Closer) *Bearer {
	return &Bearer{
		readHalf:  &ReadHalf{reader: r},
		writeHalf: &WriteHalf{writer: w},
		closer:    closer,
	}
}

func (b *Bearer) ReadHalf() *ReadHalf {
	return b.readHalf
}

func (b *Bearer) WriteHalf() *WriteHalf {
	return b.writeHalf
}

// SetDeadline applies a deadline to the underlying stream if it supports one
func (b *Bearer) SetDeadline(t time.Time) error {
	if d, ok := b.closer.(deadliner); ok {
		return d.SetDeadline(t)
	}
	return nil
}

// Close closes the underlying stream. It is safe to call more than once
func (b *Bearer) Close() error {
	b.onceClose.Do(func() {
		if b.closer != nil {
			b.closeErr = b.closer.Close()
		}
	})
	return b.closeErr
}

// ReadSegment reads one complete segment while holding the read lock
func (r *ReadHalf) ReadSegment() (*Segment, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return ReadSegment(r.reader)
}

// WriteSegment writes one complete segment while holding the write lock
func (w *WriteHalf) WriteSegment(segment *Segment) error {
	if segment == nil {
		return errors.New("cannot write nil segment")
	}
	data, err := segment.MarshalBinary()
	if err != nil {
		return err
	}
	// We use a mutex to make sure the header and payload go out together
	w.mutex.Lock()
	defer w.mutex.Unlock()
	_, err = w.writer.Write(data)
	return err
}
