package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rrrgame/internal/handlers"
	"rrrgame/internal/pool"
)

// maxBodyBytes caps how much a single request may carry.
const maxBodyBytes = 1 << 20

// Server accepts TCP connections and hands each one to a worker from a
// fixed-size pool. A connection occupies its worker until the response
// has been written.
type Server struct {
	handler *handlers.Handler
	pool    *pool.Pool
	closed  atomic.Bool
}

func New(handler *handlers.Handler, workers int) *Server {
	return &Server{handler: handler, pool: pool.New(workers)}
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
// In-flight connections finish before it returns.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		s.closed.Store(true)
		ln.Close()
	}()

	logrus.WithField("addr", ln.Addr().String()).Info("listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closed.Load() {
				break
			}
			logrus.WithError(err).Warn("accept failed")
			continue
		}
		s.pool.Submit(func() {
			s.handleConn(ctx, conn)
		})
	}

	s.pool.Shutdown()
	return nil
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	log := logrus.WithField("conn", uuid.NewString())

	raw, err := readRequest(bufio.NewReader(conn))
	if err != nil {
		// Clients that disconnect without sending anything are routine.
		if !errors.Is(err, io.EOF) {
			log.WithError(err).Debug("read failed")
		}
		return
	}

	rsp := s.handler.Process(ctx, raw)
	if _, err := io.WriteString(conn, rsp); err != nil {
		log.WithError(err).Debug("write failed")
	}
}

// readRequest consumes one request off the wire: request line, headers up
// to the blank line, then a body framed by Content-Length when present.
func readRequest(r *bufio.Reader) (string, error) {
	var b strings.Builder
	contentLength := 0

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		b.WriteString(line)

		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break
		}
		if name, value, ok := strings.Cut(trimmed, ": "); ok {
			if strings.EqualFold(name, "Content-Length") {
				n, err := strconv.Atoi(value)
				if err != nil || n < 0 || n > maxBodyBytes {
					return "", fmt.Errorf("bad content length %q", value)
				}
				contentLength = n
			}
		}
	}

	if contentLength > 0 {
		body := make([]byte, contentLength)
		if _, err := io.ReadFull(r, body); err != nil {
			return "", err
		}
		b.Write(body)
	}
	return b.String(), nil
}
