package hredis

import (
	"errors"
	"io"
	"net"

	"github.com/fzft/go-resp/resp"
)

type RedisErrFlag uint8

const (
	RedisErrNoErr RedisErrFlag = iota
	RedisErrIo
	RedisErrOther
	RedisErrEOF
	RedisErrProtocol
	RedisErrTimeout
)

func (f RedisErrFlag) String() string {
	switch f {
	case RedisErrNoErr:
		return "ok"
	case RedisErrIo:
		return "io"
	case RedisErrEOF:
		return "eof"
	case RedisErrProtocol:
		return "protocol"
	case RedisErrTimeout:
		return "timeout"
	default:
		return "other"
	}
}

type RedisReplyType int8

const (
	RedisReplyUnknown RedisReplyType = iota - 1
	_
	RedisReplyString
	RedisReplyArray
	RedisReplyInteger
	RedisReplyNil
	RedisReplyStatus
	RedisReplyError
	RedisReplyDouble
	RedisReplyBool
	RedisReplyBignumber
)

// ReplyType maps a decoded frame to the reply type hiredis would report for it.
func ReplyType(f resp.Frame) RedisReplyType {
	switch f.(type) {
	case resp.BulkString:
		return RedisReplyString
	case resp.Array:
		return RedisReplyArray
	case resp.Integer:
		return RedisReplyInteger
	case resp.Null, resp.BulkNull, resp.NullArray, nil:
		return RedisReplyNil
	case resp.SimpleString:
		return RedisReplyStatus
	case resp.SimpleError:
		return RedisReplyError
	case resp.Double:
		return RedisReplyDouble
	case resp.Boolean:
		return RedisReplyBool
	case resp.BigNumber:
		return RedisReplyBignumber
	default:
		return RedisReplyUnknown
	}
}

// errFlag classifies an error returned while talking to the server.
func errFlag(err error) RedisErrFlag {
	var ne net.Error
	switch {
	case err == nil:
		return RedisErrNoErr
	case resp.IsProtocolError(err):
		return RedisErrProtocol
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return RedisErrEOF
	case errors.As(err, &ne) && ne.Timeout():
		return RedisErrTimeout
	case errors.As(err, &ne):
		return RedisErrIo
	default:
		return RedisErrOther
	}
}
