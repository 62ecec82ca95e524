// Package hredis is a small blocking RESP client in the spirit of hiredis.
package hredis

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fzft/go-resp/log"
	"github.com/fzft/go-resp/resp"
)

var ErrClosed = errors.New("hredis: connection closed")

// RedisContext is one blocking connection. After an I/O or protocol error Err
// and ErrStr describe it and the context must be closed.
type RedisContext struct {
	Err    RedisErrFlag
	ErrStr string

	addr    string
	timeout time.Duration
	conn    net.Conn
	reader  *resp.Reader
	oBuf    []byte // output buffer
}

// RedisConnect dials addr. A zero timeout means no deadline on any call.
func RedisConnect(addr string, timeout time.Duration) (*RedisContext, error) {
	c := &RedisContext{addr: addr, timeout: timeout}
	if err := c.Reconnect(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reconnect drops the current connection, if any, and dials again.
func (c *RedisContext) Reconnect() error {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.Err, c.ErrStr = RedisErrNoErr, ""
	c.oBuf = c.oBuf[:0]

	conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
	if err != nil {
		c.SetError(err)
		return err
	}
	c.conn = conn
	c.reader = resp.NewReader(conn, nil)
	log.Logger.Debug("connected", zap.String("addr", c.addr))
	return nil
}

func (c *RedisContext) Addr() string {
	return c.addr
}

// Do sends args as one command and waits for its reply. A SimpleError reply is
// returned as a frame, not as an error.
func (c *RedisContext) Do(args ...string) (resp.Frame, error) {
	if len(args) == 0 {
		return nil, errors.New("hredis: empty command")
	}
	if err := c.AppendCommand(args...); err != nil {
		return nil, err
	}
	return c.GetReply()
}

// RedisCommand formats a command with %s and %d verbs, sends it and waits for
// the reply.
func (c *RedisContext) RedisCommand(format string, args ...interface{}) (resp.Frame, error) {
	argv, err := redisFormatCommand(format, args...)
	if err != nil {
		return nil, err
	}
	return c.Do(argv...)
}

// AppendCommand queues a command without sending it. Queued commands are
// written by the next GetReply.
func (c *RedisContext) AppendCommand(args ...string) error {
	if c.conn == nil {
		return ErrClosed
	}
	cmd := resp.Command(args[0], args[1:]...)
	c.oBuf = resp.AppendFrame(c.oBuf, cmd)
	return nil
}

// GetReply flushes queued commands and reads one reply.
func (c *RedisContext) GetReply() (resp.Frame, error) {
	if c.conn == nil {
		return nil, ErrClosed
	}
	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			c.SetError(err)
			return nil, err
		}
	}

	if len(c.oBuf) > 0 {
		_, err := c.conn.Write(c.oBuf)
		c.oBuf = c.oBuf[:0]
		if err != nil {
			c.SetError(err)
			return nil, err
		}
	}

	reply, err := c.reader.ReadFrame()
	if err != nil {
		c.SetError(err)
		return nil, err
	}
	return reply, nil
}

func (c *RedisContext) SetError(err error) {
	c.Err = errFlag(err)
	c.ErrStr = err.Error()
}

func (c *RedisContext) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func redisFormatCommand(format string, args ...interface{}) ([]string, error) {

	var curArg string
	var argv []string

	argIndex := 0 // To track the current argument in args
	touched := false

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			if c == ' ' {
				if touched {
					argv = append(argv, curArg)
					curArg = ""
					touched = false
				}
			} else {
				curArg += string(c)
				touched = true
			}
			continue
		}

		i++
		if i >= len(format) {
			return nil, fmt.Errorf("Format string ended unexpectedly")
		}

		switch format[i] {
		case 's':
			if argIndex >= len(args) {
				return nil, fmt.Errorf("Not enough arguments")
			}
			str, ok := args[argIndex].(string)
			if !ok {
				return nil, fmt.Errorf("Expected a string argument")
			}
			curArg += str
			argIndex++
		case 'd':
			if argIndex >= len(args) {
				return nil, fmt.Errorf("Not enough arguments")
			}
			num, ok := args[argIndex].(int)
			if !ok {
				return nil, fmt.Errorf("Expected an integer argument")
			}
			curArg += strconv.Itoa(num)
			argIndex++
		case '%':
			curArg += "%"
		default:
			return nil, fmt.Errorf("Unsupported format specifier: %c", format[i])
		}
		touched = true
	}

	if touched {
		argv = append(argv, curArg)
	}

	return argv, nil
}
