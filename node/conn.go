package node

import (
	"bytes"
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fzft/go-resp/resp"
)

// Conn is one client connection. Replies are queued in an output buffer and
// flushed once no complete request is left to serve, so pipelined requests
// are answered with a single write.
type Conn struct {
	id        uuid.UUID
	nc        net.Conn
	rd        *resp.Reader
	outBuffer bytes.Buffer
}

func newConn(nc net.Conn, dec *resp.Decoder, chunk int, bytesRead prometheus.Counter) *Conn {
	var src io.Reader = nc
	if bytesRead != nil {
		src = &countingReader{r: nc, c: bytesRead}
	}
	return &Conn{
		id: uuid.New(),
		nc: nc,
		rd: resp.NewReaderSize(src, dec, chunk),
	}
}

func (c *Conn) ID() uuid.UUID { return c.id }

func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

// ReadFrame blocks until the next request is decoded.
func (c *Conn) ReadFrame() (resp.Frame, error) {
	return c.rd.ReadFrame()
}

// Queue appends the encoded reply to the output buffer.
func (c *Conn) Queue(f resp.Frame) {
	c.outBuffer.Write(resp.Encode(f))
}

// DataToWrite returns the queued, unflushed bytes.
func (c *Conn) DataToWrite() []byte {
	return c.outBuffer.Bytes()
}

// Flush writes queued replies if the next request would block.
func (c *Conn) Flush() error {
	if c.outBuffer.Len() == 0 || c.rd.Ready() {
		return nil
	}
	return c.flush()
}

func (c *Conn) flush() error {
	_, err := c.outBuffer.WriteTo(c.nc)
	return err
}

func (c *Conn) Close() error {
	return c.nc.Close()
}

type countingReader struct {
	r io.Reader
	c prometheus.Counter
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.c.Add(float64(n))
	}
	return n, err
}
