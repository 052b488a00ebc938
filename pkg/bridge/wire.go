// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bridge

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

const maxStringLength = 1 << 20

// Writer appends little-endian typed fields to a buffer.
type Writer struct {
	buf     *bytes.Buffer
	scratch [8]byte
}

func NewWriter(buf *bytes.Buffer) *Writer {
	return &Writer{buf: buf}
}

func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) WriteUint16(v uint16) {
	binary.LittleEndian.PutUint16(w.scratch[:2], v)
	w.buf.Write(w.scratch[:2])
}

func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *Writer) WriteInt32(v int32) {
	binary.LittleEndian.PutUint32(w.scratch[:4], uint32(v))
	w.buf.Write(w.scratch[:4])
}

func (w *Writer) WriteInt64(v int64) {
	binary.LittleEndian.PutUint64(w.scratch[:8], uint64(v))
	w.buf.Write(w.scratch[:8])
}

func (w *Writer) WriteFloat32(v float32) {
	binary.LittleEndian.PutUint32(w.scratch[:4], math.Float32bits(v))
	w.buf.Write(w.scratch[:4])
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// WriteString writes an int32 byte length followed by the utf-8 bytes.
func (w *Writer) WriteString(v string) {
	w.WriteInt32(int32(len(v)))
	w.buf.WriteString(v)
}

func (w *Writer) WriteDuration(v time.Duration) {
	w.WriteInt64(int64(v))
}

// WriteTime writes unix nanoseconds, 0 for the zero time.
func (w *Writer) WriteTime(v time.Time) {
	if v.IsZero() {
		w.WriteInt64(0)
		return
	}
	w.WriteInt64(v.UnixNano())
}

// Reader consumes fields written by Writer. The first failure sticks: later reads return zero values
// and Err reports it.
type Reader struct {
	data []byte
	pos  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) Err() error {
	return r.err
}

// Remaining is the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", models.ErrMalformedPayload, n, r.pos, len(r.data)-r.pos)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) ReadUint16() uint16 {
	b := r.next(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) ReadInt16() int16 {
	return int16(r.ReadUint16())
}

func (r *Reader) ReadInt32() int32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

func (r *Reader) ReadInt64() int64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

func (r *Reader) ReadFloat32() float32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func (r *Reader) ReadBool() bool {
	b := r.next(1)
	if b == nil {
		return false
	}
	switch b[0] {
	case 0:
		return false
	case 1:
		return true
	default:
		r.err = fmt.Errorf("%w: invalid bool byte %d at offset %d", models.ErrMalformedPayload, b[0], r.pos-1)
		return false
	}
}

func (r *Reader) ReadString() string {
	n := r.ReadInt32()
	if r.err != nil {
		return ""
	}
	if n < 0 || n > maxStringLength {
		r.err = fmt.Errorf("%w: invalid string length %d", models.ErrMalformedPayload, n)
		return ""
	}
	return string(r.next(int(n)))
}

func (r *Reader) ReadDuration() time.Duration {
	return time.Duration(r.ReadInt64())
}

func (r *Reader) ReadTime() time.Time {
	v := r.ReadInt64()
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(0, v).UTC()
}

// readCount reads a collection length and rejects values that cannot fit in the remaining payload.
func (r *Reader) readCount() int {
	n := r.ReadInt32()
	if r.err != nil {
		return 0
	}
	if n < 0 || int(n) > r.Remaining() {
		r.err = fmt.Errorf("%w: invalid element count %d", models.ErrMalformedPayload, n)
		return 0
	}
	return int(n)
}
