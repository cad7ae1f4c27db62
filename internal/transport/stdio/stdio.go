// Package stdio serves the dispatcher as line-delimited JSON-RPC over a
// reader and writer pair, normally stdin and stdout.
package stdio

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"business-assistant/internal/common/logger"
)

const maxLineSize = 1024 * 1024

// Handler renders the response for one request line; ok is false when no
// response is due. *protocol.Dispatcher satisfies it.
type Handler interface {
	ServeJSON(ctx context.Context, raw []byte) ([]byte, bool)
}

type Server struct {
	handler Handler
	logger  logger.Logger

	mu  sync.Mutex
	out io.Writer
}

func New(h Handler, out io.Writer, log logger.Logger) *Server {
	return &Server{
		handler: h,
		out:     out,
		logger:  logger.Component(log, "stdio"),
	}
}

// Serve reads requests until in is exhausted or ctx is cancelled. Requests
// are answered in arrival order.
func (s *Server) Serve(ctx context.Context, in io.Reader) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- append([]byte(nil), line...):
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	s.logger.Info("Serving JSON-RPC on stdio", nil)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read requests: %w", err)
					}
				default:
				}
				s.logger.Info("Input closed", nil)
				return nil
			}
			out, respond := s.handler.ServeJSON(ctx, line)
			if !respond {
				continue
			}
			if err := s.write(out); err != nil {
				return err
			}
		}
	}
}

func (s *Server) write(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
