package node

import (
	"errors"
	"io"
	"net"
	"strings"

	"github.com/fzft/go-resp/resp"
)

func mapChars(s, from, to string) string {
	for i := 0; i < len(from); i++ {
		s = strings.ReplaceAll(s, string(from[i]), string(to[i]))
	}
	return s
}

// protocolErrorReply is sent right before a connection is dropped for a
// malformed request. The message must stay on one line.
func protocolErrorReply(err error) resp.SimpleError {
	return resp.SimpleError{Message: "ERR Protocol error: " + mapChars(err.Error(), "\r\n", "  ")}
}

// isClosedError reports errors that only mean the peer or the server hung up.
func isClosedError(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
