package mq

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/goleak"
)

func listenLocal(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return ln
}

func splitAddr(t *testing.T, addr net.Addr) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return host, port
}

func TestAMQPClient_OpenSocketRefused(t *testing.T) {
	defer goleak.VerifyNone(t)

	ln := listenLocal(t)
	host, port := splitAddr(t, ln.Addr())
	ln.Close()

	conn, err := NewAMQPClient(time.Second).NewConnection()
	if err != nil {
		t.Fatalf("new connection: %v", err)
	}

	if err := conn.OpenSocket(context.Background(), host, port); err == nil {
		t.Fatal("expected dial error, got nil")
	}
	if err := conn.Destroy(); err != nil {
		t.Errorf("destroy without socket should succeed: %v", err)
	}
}

func TestAMQPClient_LoginRejectedByPeer(t *testing.T) {
	defer goleak.VerifyNone(t)

	ln := listenLocal(t)
	defer ln.Close()

	// Сервер читает protocol header и закрывает соединение,
	// как брокер, который не принимает клиента.
	done := make(chan struct{})
	go func() {
		defer close(done)
		peer, err := ln.Accept()
		if err != nil {
			return
		}
		header := make([]byte, 8)
		_, _ = io.ReadFull(peer, header)
		peer.Close()
	}()

	host, port := splitAddr(t, ln.Addr())
	conn, err := NewAMQPClient(2 * time.Second).NewConnection()
	if err != nil {
		t.Fatalf("new connection: %v", err)
	}

	if err := conn.OpenSocket(context.Background(), host, port); err != nil {
		t.Fatalf("open socket: %v", err)
	}

	o := conn.Login(context.Background(), LoginParams{VHost: "/", User: "guest", Password: "guest"})
	if o.Reply == ReplyNormal {
		t.Fatal("expected login failure")
	}

	// Каскад закрытия как у Connector после неудачного логина.
	if o := conn.CloseConnection(); o.Reply != ReplyNormal {
		t.Errorf("close without amqp connection should be a no-op, got %+v", o)
	}
	if err := conn.Destroy(); err != nil {
		t.Errorf("destroy: %v", err)
	}

	<-done
}

func TestAMQPConn_ChannelWithoutLogin(t *testing.T) {
	c := &amqpConn{}

	o := c.OpenChannel(context.Background(), ChannelID)
	if o.Reply != ReplyLibraryException {
		t.Fatalf("expected library exception, got %+v", o)
	}
	if o := c.CloseChannel(ChannelID); o.Reply != ReplyNormal {
		t.Errorf("closing a channel that was never opened should succeed, got %+v", o)
	}
	if o := c.Login(context.Background(), LoginParams{}); o.Reply != ReplyLibraryException {
		t.Errorf("login without socket should fail, got %+v", o)
	}
}

func TestOutcomeFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reply  ReplyType
		method uint32
		code   int
	}{
		{
			name:   "hard server error",
			err:    &amqp.Error{Code: amqp.NotAllowed, Reason: "NOT_ALLOWED - vhost not found", Server: true},
			reply:  ReplyServerException,
			method: MethodConnectionClose,
			code:   amqp.NotAllowed,
		},
		{
			name:   "soft server error",
			err:    &amqp.Error{Code: amqp.NotFound, Reason: "NOT_FOUND", Server: true, Recover: true},
			reply:  ReplyServerException,
			method: MethodChannelClose,
			code:   amqp.NotFound,
		},
		{
			name:  "client side amqp error",
			err:   amqp.ErrClosed,
			reply: ReplyLibraryException,
		},
		{
			name:  "plain error",
			err:   errors.New("EOF"),
			reply: ReplyLibraryException,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := outcomeFromError(tt.err)
			if o.Reply != tt.reply {
				t.Fatalf("expected reply %d, got %d", tt.reply, o.Reply)
			}
			if o.MethodID != tt.method || o.Code != tt.code {
				t.Errorf("expected method=0x%08X code=%d, got method=0x%08X code=%d", tt.method, tt.code, o.MethodID, o.Code)
			}
		})
	}
}
