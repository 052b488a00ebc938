// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"bytes"

	"gopkg.in/typ.v4/sync2"
)

// Pool reusable objects to reduce garbage collector
type Pool struct {
	FrameBuffers *sync2.Pool[*bytes.Buffer]
}

func NewPool() *Pool {
	return &Pool{
		FrameBuffers: &sync2.Pool[*bytes.Buffer]{
			New: func() *bytes.Buffer {
				return bytes.NewBuffer(make([]byte, 0, 512))
			},
		},
	}
}

// GetFrameBuffer returns an empty buffer from the pool.
func (p *Pool) GetFrameBuffer() *bytes.Buffer {
	buf := p.FrameBuffers.Get()
	buf.Reset()
	return buf
}

// PutFrameBuffer returns a buffer to the pool. Oversized buffers are dropped.
func (p *Pool) PutFrameBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 {
		return
	}
	p.FrameBuffers.Put(buf)
}
