// Package handshake 在连接建立时交换并比对两端的共享表摘要。
//
// 编解码器依赖两端以相同顺序注册相同的模块与运行期字符串，任何一处不一致都会让字节流失步。
// 握手消息携带内置符号表版本、每个模块槽位的字符串表与类型表摘要以及运行期字符串表摘要，
// 使失步在第一条业务消息之前就被发现。
package handshake

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/blang/semver/v4"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/lk2023060901/danmu-garden-codec/internal/network/framer"
	"github.com/lk2023060901/danmu-garden-codec/pkg/log"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/strtab"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/typeinfo"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// 握手消息的字段号。
const (
	fieldSymbolTableVersion protowire.Number = 1
	fieldStringTableHash    protowire.Number = 2
	fieldTypeTableHash      protowire.Number = 3
	fieldRuntimeStringHash  protowire.Number = 4
)

// 不一致时 ErrTableMismatch 中的表名。
const (
	TableSymbols = "symbols"
	TableModules = "modules"
	TableStrings = "strings"
	TableTypes   = "types"
	TableRuntime = "runtime"
)

// Verification 为一端共享表的摘要，下标 i 对应模块槽位 i+1。
type Verification struct {
	SymbolTableVersion string
	StringTableHashes  [][]byte
	TypeTableHashes    [][]byte
	RuntimeStringHash  []byte
}

// Build 汇总 ctx 当前的共享表摘要。
func Build(ctx *serde.Context) (*Verification, error) {
	v := &Verification{SymbolTableVersion: typeinfo.SymbolTableVersion.String()}
	modules := ctx.Registry().Modules()
	for i := range modules {
		slot := i + 1
		sh, err := ctx.Table().ContentHash(slot)
		if err != nil {
			return nil, err
		}
		th, err := ctx.Registry().TypeTableHash(slot)
		if err != nil {
			return nil, err
		}
		v.StringTableHashes = append(v.StringTableHashes, sh[:])
		v.TypeTableHashes = append(v.TypeTableHashes, th[:])
	}
	rh := ctx.StringTableHash()
	v.RuntimeStringHash = rh[:]
	return v, nil
}

// Marshal 将 v 编码为 protobuf 线上格式。
func (v *Verification) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldSymbolTableVersion, protowire.BytesType)
	b = protowire.AppendString(b, v.SymbolTableVersion)
	for _, h := range v.StringTableHashes {
		b = protowire.AppendTag(b, fieldStringTableHash, protowire.BytesType)
		b = protowire.AppendBytes(b, h)
	}
	for _, h := range v.TypeTableHashes {
		b = protowire.AppendTag(b, fieldTypeTableHash, protowire.BytesType)
		b = protowire.AppendBytes(b, h)
	}
	if len(v.RuntimeStringHash) > 0 {
		b = protowire.AppendTag(b, fieldRuntimeStringHash, protowire.BytesType)
		b = protowire.AppendBytes(b, v.RuntimeStringHash)
	}
	return b
}

// Unmarshal 解析 Marshal 的输出，未知字段会被跳过。
func Unmarshal(b []byte) (*Verification, error) {
	v := &Verification{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, errors.Wrap(protowire.ParseError(n), "handshake: tag")
		}
		b = b[n:]
		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, errors.Wrap(protowire.ParseError(n), "handshake: skip field")
			}
			b = b[n:]
			continue
		}
		val, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, errors.Wrapf(protowire.ParseError(n), "handshake: field %d", num)
		}
		b = b[n:]
		switch num {
		case fieldSymbolTableVersion:
			v.SymbolTableVersion = string(val)
		case fieldStringTableHash:
			v.StringTableHashes = append(v.StringTableHashes, bytes.Clone(val))
		case fieldTypeTableHash:
			v.TypeTableHashes = append(v.TypeTableHashes, bytes.Clone(val))
		case fieldRuntimeStringHash:
			v.RuntimeStringHash = bytes.Clone(val)
		}
	}
	return v, nil
}

// Verify 比对本端与对端的摘要，返回第一处不一致。
//
// 符号表的任何变化都会提升版本，因此两端版本必须完全相同（构建元数据除外）。
func Verify(local, remote *Verification) error {
	if local == nil || remote == nil {
		return merr.WrapErrParameterMissing("verification", "handshake")
	}
	lv, err := semver.Parse(local.SymbolTableVersion)
	if err != nil {
		return merr.WrapErrParameterInvalidMsg("local symbol table version %q: %v", local.SymbolTableVersion, err)
	}
	rv, err := semver.Parse(remote.SymbolTableVersion)
	if err != nil {
		return merr.WrapErrTableMismatch(TableSymbols, 0, "unparsable version "+remote.SymbolTableVersion)
	}
	if !lv.Equals(rv) {
		return merr.WrapErrTableMismatch(TableSymbols, 0, lv.String()+" vs "+rv.String())
	}

	if len(local.StringTableHashes) != len(remote.StringTableHashes) ||
		len(local.TypeTableHashes) != len(remote.TypeTableHashes) {
		return merr.WrapErrTableMismatch(TableModules, max(len(local.TypeTableHashes), len(remote.TypeTableHashes)))
	}
	for i := range local.TypeTableHashes {
		if !bytes.Equal(local.TypeTableHashes[i], remote.TypeTableHashes[i]) {
			return merr.WrapErrTableMismatch(TableTypes, i+1)
		}
	}
	for i := range local.StringTableHashes {
		if !bytes.Equal(local.StringTableHashes[i], remote.StringTableHashes[i]) {
			return merr.WrapErrTableMismatch(TableStrings, i+1)
		}
	}
	if !bytes.Equal(local.RuntimeStringHash, remote.RuntimeStringHash) {
		return merr.WrapErrTableMismatch(TableRuntime, int(strtab.RuntimeSlot))
	}
	return nil
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// Exchange 在 conn 上同时发送本端摘要并读取对端摘要，随后校验两者。
//
// 发送与读取并发进行，因此可以用于 net.Pipe 这类无缓冲的连接。
// ctx 带有截止时间且 conn 支持 SetDeadline 时，截止时间同样作用于底层读写。
func Exchange(ctx context.Context, conn io.ReadWriter, fr framer.Framer, local *Verification) (*Verification, error) {
	if d, ok := conn.(deadliner); ok {
		if deadline, ok := ctx.Deadline(); ok {
			if err := d.SetDeadline(deadline); err != nil {
				return nil, errors.Wrap(err, "handshake: set deadline")
			}
			defer d.SetDeadline(time.Time{})
		}
	}

	var (
		remote *Verification
		g      errgroup.Group
	)
	g.Go(func() error {
		return fr.WriteFrame(conn, local.Marshal(), false)
	})
	g.Go(func() error {
		payload, compressed, err := fr.ReadFrame(conn)
		if err != nil {
			// 让仍阻塞在发送上的一方尽快返回
			if d, ok := conn.(deadliner); ok {
				_ = d.SetDeadline(time.Now())
			}
			if errors.Is(err, io.EOF) {
				return errors.Wrap(merr.ErrEndOfStream, "handshake: peer closed")
			}
			return err
		}
		if compressed {
			return merr.WrapErrParameterInvalidMsg("handshake frame must not be compressed")
		}
		remote, err = Unmarshal(payload)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := Verify(local, remote); err != nil {
		log.Ctx(ctx).Warn("serde handshake failed", zap.Error(err))
		return remote, err
	}
	log.Ctx(ctx).Debug("serde handshake ok",
		zap.String("symbols", remote.SymbolTableVersion),
		zap.Int("modules", len(remote.TypeTableHashes)))
	return remote, nil
}
