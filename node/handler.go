package node

import (
	"context"

	"go.uber.org/zap"

	"github.com/fzft/go-resp/log"
	"github.com/fzft/go-resp/resp"
)

// Handler turns one decoded request into its reply. Returning an error closes
// the connection without a reply.
type Handler interface {
	Handle(ctx context.Context, conn *Conn, req resp.Frame) (resp.Frame, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, conn *Conn, req resp.Frame) (resp.Frame, error)

func (f HandlerFunc) Handle(ctx context.Context, conn *Conn, req resp.Frame) (resp.Frame, error) {
	return f(ctx, conn, req)
}

// EchoHandler replies with the request frame unchanged.
type EchoHandler struct{}

func (EchoHandler) Handle(_ context.Context, conn *Conn, req resp.Frame) (resp.Frame, error) {
	if ce := log.Logger.Check(zap.DebugLevel, "echo frame"); ce != nil {
		ce.Write(zap.Stringer("conn", conn.ID()), zap.String("type", string(req.Tag())))
	}
	return req, nil
}
