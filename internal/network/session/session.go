// Package session 将一条连接与它专属的编解码上下文绑定在一起。
//
// 每个会话持有自己的 serde.Context：运行期字符串表、编译缓存等状态都只在这条连接上有效，
// 连接断开后随会话一起丢弃。
package session

import (
	"bufio"
	"context"
	"net"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-garden-codec/internal/network"
	"github.com/lk2023060901/danmu-garden-codec/internal/network/codec"
	"github.com/lk2023060901/danmu-garden-codec/internal/network/framer"
	"github.com/lk2023060901/danmu-garden-codec/pkg/log"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/handshake"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/retry"
)

// ErrClosed 表示会话已经关闭。
var ErrClosed = errors.New("session closed")

// defaultSendQueueSize 为每个会话的发送队列容量。
const defaultSendQueueSize = 1024

// Session 是一条消息模式连接。
//
// 典型流程：New -> Handshake -> Start -> Send/Recv -> Close。
// Recv 只能在单个 goroutine 中调用；Send 可以并发调用，消息按入队顺序写出。
type Session struct {
	log.Binder

	id uint64

	ctx    context.Context
	cancel context.CancelFunc

	conn   net.Conn
	reader *bufio.Reader
	serde  *serde.Context
	framer framer.Framer
	codec  codec.Codec

	remote *handshake.Verification

	sendQueue chan any
	startOnce sync.Once
	closeOnce sync.Once
	sendDone  chan struct{}
	sendErr   error
}

// New 在 conn 上创建会话，sc 必须已注册与对端相同的模块。
func New(parent context.Context, id uint64, conn net.Conn, sc *serde.Context, cfg serde.Config) (*Session, error) {
	if conn == nil {
		return nil, merr.WrapErrParameterMissing("conn", "session")
	}
	if sc == nil {
		return nil, merr.WrapErrParameterMissing("serde context", "session")
	}
	c, err := codec.NewFromConfig(sc, cfg)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		id:        id,
		ctx:       ctx,
		cancel:    cancel,
		conn:      conn,
		reader:    bufio.NewReader(conn),
		serde:     sc,
		framer:    framer.NewLengthPrefixedFramer(cfg.Frame.MaxSize),
		codec:     c,
		sendQueue: make(chan any, defaultSendQueueSize),
		sendDone:  make(chan struct{}),
	}
	s.SetLogger(log.With(
		log.FieldComponent("session"),
		zap.Uint64("sessionID", id),
		zap.Stringer("remote", conn.RemoteAddr())))
	return s, nil
}

func (s *Session) ID() uint64 { return s.id }

// Context 在会话关闭时被取消。
func (s *Session) Context() context.Context { return s.ctx }

func (s *Session) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// Serde 返回会话专属的编解码上下文。
func (s *Session) Serde() *serde.Context { return s.serde }

// Remote 返回握手时对端发来的共享表摘要，握手之前为 nil。
func (s *Session) Remote() *handshake.Verification { return s.remote }

// bufferedConn 让握手读取经过会话的读缓冲，同时保留 SetDeadline。
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c bufferedConn) Read(p []byte) (int, error) { return c.r.Read(p) }

// SyncStrings 与对端同步运行期字符串表，两端一方 leader 为 true、另一方为 false。
// 需要时在 Handshake 之前调用；失败时会话被关闭。
func (s *Session) SyncStrings(ctx context.Context, leader bool) error {
	err := handshake.SyncStrings(ctx, bufferedConn{Conn: s.conn, r: s.reader}, s.framer, s.serde, leader)
	if err != nil {
		s.Logger().Warn("session strings sync failed", zap.Error(err))
		s.Close()
		return network.WrapStage(network.StageHandshake, err)
	}
	return nil
}

// Handshake 与对端交换共享表摘要，必须在 Start 之前调用。
// 失败时会话被关闭。
func (s *Session) Handshake(ctx context.Context) error {
	local, err := handshake.Build(s.serde)
	if err != nil {
		return err
	}
	remote, err := handshake.Exchange(ctx, bufferedConn{Conn: s.conn, r: s.reader}, s.framer, local)
	if err != nil {
		s.Logger().Warn("session handshake failed", zap.Error(err))
		s.Close()
		return network.WrapStage(network.StageHandshake, err)
	}
	s.remote = remote
	return nil
}

// Start 启动发送协程，重复调用无效果。
func (s *Session) Start() {
	s.startOnce.Do(func() {
		go s.sendLoop()
	})
}

// Send 将消息投递到发送队列。队列已满时阻塞，直到有空位或会话关闭。
func (s *Session) Send(msg any) error {
	select {
	case <-s.ctx.Done():
		return ErrClosed
	default:
	}
	select {
	case <-s.ctx.Done():
		return ErrClosed
	case s.sendQueue <- msg:
		return nil
	}
}

// Recv 读取下一条消息。对端在帧边界处关闭连接时返回 io.EOF。
func (s *Session) Recv() (any, error) {
	var msg any
	if err := s.codec.Decode(s.reader, &msg); err != nil {
		if s.ctx.Err() != nil {
			return nil, ErrClosed
		}
		if merr.IsDesync(err) {
			s.Logger().Warn("session stream out of sync", zap.Error(err))
			s.Close()
		}
		return nil, err
	}
	return msg, nil
}

// Close 关闭会话与底层连接，可重复调用。
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		err = s.conn.Close()
		s.Logger().Debug("session closed")
	})
	return err
}

// Wait 等待发送协程退出并返回导致其退出的错误；会话正常关闭时返回 nil。
func (s *Session) Wait() error {
	<-s.sendDone
	return s.sendErr
}

// sendLoop 为每个会话专职写出的协程，队列为空时才刷新写缓冲，以合并小消息。
func (s *Session) sendLoop() {
	defer close(s.sendDone)
	w := bufio.NewWriter(s.conn)
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.sendQueue:
			if err := s.codec.Encode(w, msg); err != nil {
				s.fail(err)
				return
			}
			if len(s.sendQueue) > 0 {
				continue
			}
			if err := w.Flush(); err != nil {
				s.fail(err)
				return
			}
		}
	}
}

func (s *Session) fail(err error) {
	if s.ctx.Err() != nil {
		return
	}
	s.sendErr = err
	s.Logger().Warn("session send failed", zap.Error(err))
	s.Close()
}

// Dial 建立 TCP 连接，失败时按 opts 指定的退避策略重试。
func Dial(ctx context.Context, addr string, timeout time.Duration, opts ...retry.Option) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	var conn net.Conn
	err := retry.Do(ctx, func() error {
		c, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	return conn, nil
}
