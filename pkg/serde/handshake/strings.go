package handshake

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/lk2023060901/danmu-garden-codec/internal/network/framer"
	"github.com/lk2023060901/danmu-garden-codec/pkg/log"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/strtab"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// 字符串表消息的字段号。
const (
	fieldRuntimeString     protowire.Number = 1
	fieldRuntimeStringsSum protowire.Number = 2
)

// Strings 携带一端完整的运行期字符串表及其摘要。
type Strings struct {
	Table []string
	Hash  []byte
}

// PackStrings 汇总 ctx 当前的运行期字符串表。
func PackStrings(ctx *serde.Context) *Strings {
	h := ctx.StringTableHash()
	return &Strings{Table: ctx.StringTable(), Hash: h[:]}
}

// Verify 检查摘要与表内容一致。
func (s *Strings) Verify() error {
	sum := strtab.HashStrings(s.Table)
	if !bytes.Equal(sum[:], s.Hash) {
		return merr.WrapErrTableMismatch(TableRuntime, int(strtab.RuntimeSlot), "strings package damaged")
	}
	return nil
}

func (s *Strings) Marshal() []byte {
	var b []byte
	for _, str := range s.Table {
		b = protowire.AppendTag(b, fieldRuntimeString, protowire.BytesType)
		b = protowire.AppendString(b, str)
	}
	b = protowire.AppendTag(b, fieldRuntimeStringsSum, protowire.BytesType)
	return protowire.AppendBytes(b, s.Hash)
}

// UnmarshalStrings 解析 Strings.Marshal 的输出，未知字段会被跳过。
func UnmarshalStrings(b []byte) (*Strings, error) {
	s := &Strings{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, errors.Wrap(protowire.ParseError(n), "strings: tag")
		}
		b = b[n:]
		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, errors.Wrap(protowire.ParseError(n), "strings: skip field")
			}
			b = b[n:]
			continue
		}
		val, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, errors.Wrapf(protowire.ParseError(n), "strings: field %d", num)
		}
		b = b[n:]
		switch num {
		case fieldRuntimeString:
			s.Table = append(s.Table, string(val))
		case fieldRuntimeStringsSum:
			s.Hash = bytes.Clone(val)
		}
	}
	return s, nil
}

// SyncStrings 让两端的运行期字符串表收敛为同一张表，必须在传输业务数据之前调用。
//
// 一端为 leader，另一端为 follower：
//  1. leader 发送本端的表；
//  2. follower 以其为准调用 AdoptStrings，本端多出的字符串排在其后，再把结果发回；
//  3. leader 登记 follower 多出的字符串，并比对两端摘要。
//
// 完成后两端 StringTableHash 相同，随后的 Exchange 不会因运行期表而失败。
func SyncStrings(ctx context.Context, conn io.ReadWriter, fr framer.Framer, sc *serde.Context, leader bool) error {
	if d, ok := conn.(deadliner); ok {
		if deadline, ok := ctx.Deadline(); ok {
			if err := d.SetDeadline(deadline); err != nil {
				return errors.Wrap(err, "strings: set deadline")
			}
			defer d.SetDeadline(time.Time{})
		}
	}

	var err error
	if leader {
		err = leadStrings(conn, fr, sc)
	} else {
		err = followStrings(conn, fr, sc)
	}
	if err != nil {
		log.Ctx(ctx).Warn("serde strings sync failed", zap.Bool("leader", leader), zap.Error(err))
		return err
	}
	log.Ctx(ctx).Debug("serde strings synced",
		zap.Bool("leader", leader),
		zap.Int("strings", len(sc.StringTable())))
	return nil
}

func leadStrings(conn io.ReadWriter, fr framer.Framer, sc *serde.Context) error {
	if err := fr.WriteFrame(conn, PackStrings(sc).Marshal(), false); err != nil {
		return err
	}
	reply, err := readStrings(conn, fr)
	if err != nil {
		return err
	}
	if _, err := sc.RegisterStrings(reply.Table); err != nil {
		return err
	}
	if local := sc.StringTableHash(); !bytes.Equal(local[:], reply.Hash) {
		return merr.WrapErrTableMismatch(TableRuntime, int(strtab.RuntimeSlot), "runtime strings diverged after sync")
	}
	return nil
}

func followStrings(conn io.ReadWriter, fr framer.Framer, sc *serde.Context) error {
	pkg, err := readStrings(conn, fr)
	if err != nil {
		return err
	}
	if _, err := sc.AdoptStrings(pkg.Table); err != nil {
		return err
	}
	return fr.WriteFrame(conn, PackStrings(sc).Marshal(), false)
}

func readStrings(conn io.Reader, fr framer.Framer) (*Strings, error) {
	payload, compressed, err := fr.ReadFrame(conn)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Wrap(merr.ErrEndOfStream, "strings: peer closed")
		}
		return nil, err
	}
	if compressed {
		return nil, merr.WrapErrParameterInvalidMsg("strings frame must not be compressed")
	}
	pkg, err := UnmarshalStrings(payload)
	if err != nil {
		return nil, err
	}
	return pkg, pkg.Verify()
}
