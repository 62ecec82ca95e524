package resp

import (
	"bytes"
	"errors"
	"io"
)

const defaultReadChunk = 16 * 1024

// Reader decodes a stream of frames from an io.Reader.
type Reader struct {
	rd    io.Reader
	dec   *Decoder
	chunk int
	buf   bytes.Buffer
	err   error
}

// NewReader returns a Reader over rd. A nil dec means DefaultLimits.
func NewReader(rd io.Reader, dec *Decoder) *Reader {
	return NewReaderSize(rd, dec, defaultReadChunk)
}

// NewReaderSize is NewReader with the number of bytes requested from rd per
// read.
func NewReaderSize(rd io.Reader, dec *Decoder, chunk int) *Reader {
	if dec == nil {
		dec = defaultDecoder
	}
	if chunk <= 0 {
		chunk = defaultReadChunk
	}
	return &Reader{rd: rd, dec: dec, chunk: chunk}
}

// ReadFrame returns the next frame. It returns io.EOF when the stream ends on a
// frame boundary and io.ErrUnexpectedEOF when it ends in the middle of one.
// Protocol errors are sticky: the stream can not be resynchronized after one.
func (r *Reader) ReadFrame() (Frame, error) {
	for {
		if r.buf.Len() > 0 {
			f, err := r.dec.Decode(&r.buf)
			if err == nil {
				return f, nil
			}
			if !errors.Is(err, ErrIncomplete) {
				r.err = err
				return nil, err
			}
		}
		if r.err != nil {
			return nil, r.err
		}
		if err := r.fill(); err != nil {
			if errors.Is(err, io.EOF) && r.buf.Len() > 0 {
				err = io.ErrUnexpectedEOF
			}
			r.err = err
			return nil, err
		}
	}
}

// Buffered returns the number of bytes read from the stream but not yet
// decoded.
func (r *Reader) Buffered() int {
	return r.buf.Len()
}

// Ready reports whether the next ReadFrame can return without reading from the
// underlying stream.
func (r *Reader) Ready() bool {
	if r.err != nil {
		return true
	}
	n, err := r.dec.PredictLength(r.buf.Bytes())
	if err != nil {
		return !errors.Is(err, ErrIncomplete)
	}
	return n <= r.buf.Len()
}

func (r *Reader) fill() error {
	r.buf.Grow(r.chunk)
	p := r.buf.AvailableBuffer()[:r.chunk]
	n, err := r.rd.Read(p)
	r.buf.Write(p[:n])
	if n > 0 {
		return nil
	}
	return err
}

// WriteFrame encodes f to w in a single Write.
func WriteFrame(w io.Writer, f Frame) error {
	_, err := w.Write(Encode(f))
	return err
}
