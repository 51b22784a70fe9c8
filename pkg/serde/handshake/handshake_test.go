package handshake

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/danmu-garden-codec/internal/gamestate"
	"github.com/lk2023060901/danmu-garden-codec/internal/network/framer"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/typeinfo"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

type Beacon struct{ ID int32 }

func newContext(t *testing.T, modules ...*typeinfo.Module) *serde.Context {
	t.Helper()
	c := serde.New()
	for _, m := range modules {
		_, err := c.AddModule(m)
		require.NoError(t, err)
	}
	return c
}

func build(t *testing.T, c *serde.Context) *Verification {
	t.Helper()
	v, err := Build(c)
	require.NoError(t, err)
	return v
}

func TestBuildAndMarshal(t *testing.T) {
	c := newContext(t, gamestate.Module())
	v := build(t, c)
	assert.Equal(t, typeinfo.SymbolTableVersion.String(), v.SymbolTableVersion)
	require.Len(t, v.StringTableHashes, 1)
	require.Len(t, v.TypeTableHashes, 1)
	assert.Len(t, v.StringTableHashes[0], typeinfo.HashSize)
	assert.Len(t, v.RuntimeStringHash, typeinfo.HashSize)

	out, err := Unmarshal(v.Marshal())
	require.NoError(t, err)
	assert.Equal(t, v, out)
	assert.NoError(t, Verify(v, out))
}

func TestUnmarshalCorrupt(t *testing.T) {
	v := build(t, newContext(t, gamestate.Module()))
	data := v.Marshal()
	_, err := Unmarshal(data[:len(data)-3])
	assert.Error(t, err)
}

func TestVerifyMismatch(t *testing.T) {
	beacon := func() *typeinfo.Module {
		m := typeinfo.NewModule("beacon")
		typeinfo.Register[Beacon](m)
		return m
	}
	base := build(t, newContext(t, gamestate.Module()))

	t.Run("module count", func(t *testing.T) {
		other := build(t, newContext(t, gamestate.Module(), beacon()))
		err := Verify(base, other)
		assert.ErrorIs(t, err, merr.ErrTableMismatch)
		assert.True(t, merr.IsDesync(err))
	})

	t.Run("module order", func(t *testing.T) {
		a := build(t, newContext(t, gamestate.Module(), beacon()))
		b := build(t, newContext(t, beacon(), gamestate.Module()))
		err := Verify(a, b)
		assert.ErrorIs(t, err, merr.ErrTableMismatch)
		assert.Contains(t, err.Error(), TableTypes)
	})

	t.Run("extra strings", func(t *testing.T) {
		m := gamestate.Module()
		m.AddStrings("only-here")
		err := Verify(base, build(t, newContext(t, m)))
		assert.ErrorIs(t, err, merr.ErrTableMismatch)
		assert.Contains(t, err.Error(), TableStrings)
	})

	t.Run("runtime strings", func(t *testing.T) {
		c := newContext(t, gamestate.Module())
		_, err := c.RegisterStrings([]string{"player-1"})
		require.NoError(t, err)
		err = Verify(base, build(t, c))
		assert.ErrorIs(t, err, merr.ErrTableMismatch)
		assert.Contains(t, err.Error(), TableRuntime)
	})

	t.Run("symbol version", func(t *testing.T) {
		meta := *base
		meta.SymbolTableVersion = typeinfo.SymbolTableVersion.String() + "+ci.42"
		assert.NoError(t, Verify(base, &meta))

		patch := *base
		patch.SymbolTableVersion = "1.0.7"
		assert.ErrorIs(t, Verify(base, &patch), merr.ErrTableMismatch)

		minor := *base
		minor.SymbolTableVersion = "1.1.0"
		assert.ErrorIs(t, Verify(base, &minor), merr.ErrTableMismatch)

		bad := *base
		bad.SymbolTableVersion = "garbage"
		assert.ErrorIs(t, Verify(base, &bad), merr.ErrTableMismatch)
	})

	assert.ErrorIs(t, Verify(nil, base), merr.ErrParameterMissing)
}

func TestExchange(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	fr := framer.NewLengthPrefixedFramer(0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	local := build(t, newContext(t, gamestate.Module()))
	peer := newContext(t, gamestate.Module())
	_, err := peer.RegisterStrings([]string{"player-1"})
	require.NoError(t, err)
	remote := build(t, peer)

	errc := make(chan error, 1)
	go func() {
		_, err := Exchange(ctx, client, fr, remote)
		errc <- err
	}()

	got, err := Exchange(ctx, server, fr, local)
	assert.ErrorIs(t, err, merr.ErrTableMismatch)
	assert.Equal(t, remote, got)
	assert.ErrorIs(t, <-errc, merr.ErrTableMismatch)
}

func TestExchangePeerClosed(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	go func() {
		// 读走本端的摘要后直接断开
		_, _, _ = framer.NewLengthPrefixedFramer(0).ReadFrame(client)
		client.Close()
	}()

	local := build(t, newContext(t, gamestate.Module()))
	_, err := Exchange(context.Background(), server, framer.NewLengthPrefixedFramer(0), local)
	assert.ErrorIs(t, err, merr.ErrEndOfStream)
}
