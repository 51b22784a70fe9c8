package handshake

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/lk2023060901/danmu-garden-codec/internal/gamestate"
	"github.com/lk2023060901/danmu-garden-codec/internal/network/framer"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

func withStrings(t *testing.T, strs ...string) *serde.Context {
	t.Helper()
	c := newContext(t, gamestate.Module())
	_, err := c.RegisterStrings(strs)
	require.NoError(t, err)
	return c
}

func TestStringsMarshal(t *testing.T) {
	pkg := PackStrings(withStrings(t, "player-1", "", "ArenaNorth"))
	assert.Equal(t, []string{"player-1", "ArenaNorth"}, pkg.Table)
	require.NoError(t, pkg.Verify())

	out, err := UnmarshalStrings(pkg.Marshal())
	require.NoError(t, err)
	assert.Equal(t, pkg, out)

	data := pkg.Marshal()
	_, err = UnmarshalStrings(data[:len(data)-5])
	assert.Error(t, err)

	out.Table = append(out.Table, "forged")
	assert.ErrorIs(t, out.Verify(), merr.ErrTableMismatch)
}

func syncPair(t *testing.T, leader, follower *serde.Context) (error, error) {
	t.Helper()
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	fr := framer.NewLengthPrefixedFramer(0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		g              errgroup.Group
		errLead, errFo error
	)
	g.Go(func() error { errLead = SyncStrings(ctx, a, fr, leader, true); return nil })
	g.Go(func() error { errFo = SyncStrings(ctx, b, fr, follower, false); return nil })
	_ = g.Wait()
	return errLead, errFo
}

func TestSyncStringsConverges(t *testing.T) {
	leader := withStrings(t, "ArenaNorth", "BossWave")
	follower := withStrings(t, "BossWave", "player-7", "ArenaNorth")
	require.NotEqual(t, leader.StringTableHash(), follower.StringTableHash())

	errLead, errFo := syncPair(t, leader, follower)
	require.NoError(t, errLead)
	require.NoError(t, errFo)

	assert.Equal(t, []string{"ArenaNorth", "BossWave", "player-7"}, leader.StringTable())
	assert.Equal(t, leader.StringTable(), follower.StringTable())
	assert.Equal(t, leader.StringTableHash(), follower.StringTableHash())
	assert.NoError(t, Verify(build(t, leader), build(t, follower)))

	// 驻留引用在两端指向同一个字符串
	for _, str := range leader.StringTable() {
		data, err := leader.SerializeToBytes(str)
		require.NoError(t, err)
		assert.Len(t, data, 12, str)
		got, err := follower.DeserializeFromBytes(data)
		require.NoError(t, err)
		assert.Equal(t, str, got)
	}
}

func TestSyncStringsEmptyTables(t *testing.T) {
	leader := newContext(t, gamestate.Module())
	follower := withStrings(t, "player-1")

	errLead, errFo := syncPair(t, leader, follower)
	require.NoError(t, errLead)
	require.NoError(t, errFo)
	assert.Equal(t, []string{"player-1"}, leader.StringTable())
	assert.Equal(t, leader.StringTableHash(), follower.StringTableHash())
}

func TestSyncStringsPeerClosed(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	go func() {
		_, _, _ = framer.NewLengthPrefixedFramer(0).ReadFrame(b)
		b.Close()
	}()

	err := SyncStrings(context.Background(), a, framer.NewLengthPrefixedFramer(0), withStrings(t, "x"), true)
	assert.ErrorIs(t, err, merr.ErrEndOfStream)
}
