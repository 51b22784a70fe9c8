package serde_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand/v2"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/danmu-garden-codec/internal/gamestate"
	"github.com/lk2023060901/danmu-garden-codec/internal/network/compressor"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/serdetest"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/typeinfo"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/wire"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

type Node struct {
	Name string
	Next *Node
}

type Graph struct {
	Nodes []*Node
	Index map[string]int32
}

type Locked struct {
	mu    sync.Mutex
	Count int32
	Guard sync.Mutex
}

type Marker struct{}

type Unregistered struct{ A int32 }

type FanoutHolder struct {
	V serdetest.Variant
}

type Envelope struct {
	Seq     uint32
	Payload any
	Meta    map[string]any
	Skipped string `codec:"-"`
}

type Tree struct {
	Label uint8
	Kids  []Tree
}

type Forest map[uint8]Forest

func testModule() *typeinfo.Module {
	m := typeinfo.NewModule("serde_test")
	typeinfo.Register[Node](m)
	typeinfo.Register[Graph](m)
	typeinfo.Register[Locked](m)
	typeinfo.Register[Marker](m)
	typeinfo.Register[Envelope](m)
	typeinfo.Register[Tree](m)
	typeinfo.Register[Forest](m)
	return m
}

func newContext(t *testing.T, opts ...serde.Option) *serde.Context {
	t.Helper()
	c := serde.New(opts...)
	_, err := c.AddModule(gamestate.Module())
	require.NoError(t, err)
	_, err = c.AddModule(testModule())
	require.NoError(t, err)
	return c
}

func roundTrip[T any](t *testing.T, c *serde.Context, v T) T {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, serde.SerializeAs(c, &buf, v))
	out, err := serde.DeserializeAs[T](c, &buf)
	require.NoError(t, err)
	if !c.UseCompression() {
		assert.Zero(t, buf.Len(), "trailing bytes")
	}
	return out
}

type SerdeSuite struct {
	suite.Suite
	ctx *serde.Context
}

func (s *SerdeSuite) SetupTest() {
	s.ctx = newContext(s.T())
}

func (s *SerdeSuite) TestEntityStateRoundTrip() {
	state := gamestate.EntityState{
		UID: 1001,
		ComponentChanges: []gamestate.ComponentChanged{
			gamestate.Removed(12),
			gamestate.Added(23, "Collision"),
			gamestate.Added(42, "BallisticBullet"),
		},
		ComponentStates: []gamestate.ComponentState{},
	}

	data, err := s.ctx.SerializeToBytes(state)
	s.Require().NoError(err)
	s.NotEmpty(data)

	got, err := s.ctx.DeserializeFromBytes(data)
	s.Require().NoError(err)
	out, ok := got.(gamestate.EntityState)
	s.Require().True(ok)
	s.Equal(state, out)
	s.Nil(out.ComponentChanges[0].ComponentName)
	s.Equal("BallisticBullet", *out.ComponentChanges[2].ComponentName)
	s.NotNil(out.ComponentStates)
}

func (s *SerdeSuite) TestInt32SliceOverhead() {
	arr := make([]int32, 32)
	for i := range arr {
		arr[i] = rand.Int32()
	}
	data, err := s.ctx.SerializeToBytes(arr)
	s.Require().NoError(err)
	// 类型标识 4 + rank 1 + 元素类型 4 + 长度 4
	s.Len(data, 13+4*32)

	out := roundTrip(s.T(), s.ctx, arr)
	s.Equal(arr, out)

	fixed := [32]int32(arr)
	data, err = s.ctx.SerializeToBytes(fixed)
	s.Require().NoError(err)
	s.Len(data, 16+4*32)
	s.Equal(fixed, roundTrip(s.T(), s.ctx, fixed))
}

func (s *SerdeSuite) TestKnownStringIsInterned() {
	data, err := s.ctx.SerializeToBytes("Collidable")
	s.Require().NoError(err)
	s.Len(data, 12)
	s.Equal(uint32(wire.StringSentinel), binary.LittleEndian.Uint32(data[4:8]))

	inline, err := s.ctx.SerializeToBytes("Uncollidable")
	s.Require().NoError(err)
	s.Len(inline, 4+4+len("Uncollidable"))

	long := strings.Repeat("x", 1000)
	added, err := s.ctx.RegisterStrings([]string{long})
	s.Require().NoError(err)
	s.True(added)
	data, err = s.ctx.SerializeToBytes(long)
	s.Require().NoError(err)
	s.Len(data, 12)

	got, err := s.ctx.DeserializeFromBytes(data)
	s.Require().NoError(err)
	s.Equal(long, got)
}

func (s *SerdeSuite) TestNilTopLevel() {
	data, err := s.ctx.SerializeToBytes(nil)
	s.Require().NoError(err)
	s.Equal([]byte{0, 0, 0, 0}, data)

	got, err := s.ctx.DeserializeFromBytes(data)
	s.NoError(err)
	s.Nil(got)

	p, err := serde.DeserializeAs[*Node](s.ctx, bytes.NewReader(data))
	s.NoError(err)
	s.Nil(p)
}

func (s *SerdeSuite) TestNilPointerIsOneByte() {
	data, err := s.ctx.SerializeToBytes(Node{Name: "Nowhere"})
	s.Require().NoError(err)
	// 类型标识 4 + 字符串头 4 + 内容 7 + Next 的有值标记 1
	s.Len(data, 4+4+len("Nowhere")+1)
	s.Equal(byte(0x00), data[len(data)-1])

	linked, err := s.ctx.SerializeToBytes(Node{Name: "Nowhere", Next: &Node{Name: "Nowhere"}})
	s.Require().NoError(err)
	s.Len(linked, 2*len(data)-4)
	s.Equal(byte(0x01), linked[len(data)-1])
	s.Equal(byte(0x00), linked[len(linked)-1])
}

func (s *SerdeSuite) TestNilVersusEmpty() {
	in := Graph{Nodes: nil, Index: map[string]int32{}}
	out := roundTrip(s.T(), s.ctx, in)
	s.Nil(out.Nodes)
	s.NotNil(out.Index)
	s.Empty(out.Index)

	empty := ""
	ptr := roundTrip(s.T(), s.ctx, &empty)
	s.Require().NotNil(ptr)
	s.Equal("", *ptr)

	var missing *string
	s.Nil(roundTrip(s.T(), s.ctx, missing))
}

func (s *SerdeSuite) TestValues() {
	now := time.Date(2026, 10, 16, 8, 30, 0, 123, time.UTC)
	cases := []any{
		true,
		int8(-8), uint8(8), int16(-16), uint16(16),
		int32(math.MinInt32), uint32(math.MaxUint32),
		int64(math.MinInt64), uint64(math.MaxUint64),
		int(-42), uint(42),
		float32(1.5), math.Pi, complex64(1 + 2i), complex128(3 - 4i),
		"", "hello", "你好",
		now, 3 * time.Second,
		[]byte{1, 2, 3}, []byte{},
		[]string{"a", "", "Collidable"},
		[][]int16{{1}, nil, {}},
		map[string][]uint64{"a": {1}, "b": nil},
		map[int32]*Node{1: {Name: "n"}, 2: nil},
		[]any{int32(1), "x", nil, gamestate.Transform{Rotation: 1}},
		gamestate.Transform{Position: [3]float32{1, 2, 3}, Rotation: 0.5},
		&gamestate.Health{Current: 3, Max: 10},
		gamestate.BallisticBullet{Owner: 9, Velocity: [3]float32{1, 0, 0}, SpawnedAt: now, TTL: time.Minute},
	}
	for _, v := range cases {
		data, err := s.ctx.SerializeToBytes(v)
		s.Require().NoError(err, "%T", v)
		got, err := s.ctx.DeserializeFromBytes(data)
		s.Require().NoError(err, "%T", v)
		if tm, ok := v.(time.Time); ok {
			s.True(tm.Equal(got.(time.Time)))
			continue
		}
		s.Equal(v, got, "%T", v)
	}
}

func (s *SerdeSuite) TestInterfaceSlots() {
	states := []gamestate.ComponentState{
		{NetID: 1, Component: gamestate.Transform{Rotation: 2}},
		{NetID: 2, Component: &gamestate.Health{Current: 1, Max: 5}},
		{NetID: 3, Component: gamestate.Collision{Radius: 1, Layers: gamestate.Tags("Static", "Collidable")}},
		{NetID: 4},
	}
	out := roundTrip(s.T(), s.ctx, states)
	s.Equal(states, out)

	// Component 的实现列表：Transform, *Health, Collision, BallisticBullet
	data, err := s.ctx.SerializeToBytes(gamestate.ComponentState{NetID: 7, Component: &gamestate.Health{}})
	s.Require().NoError(err)
	s.Equal(byte(3), data[4+4])

	env := Envelope{
		Seq:     1,
		Payload: gamestate.Tags("a"),
		Meta:    map[string]any{"hp": int32(3), "who": "me", "none": nil},
		Skipped: "dropped",
	}
	got := roundTrip(s.T(), s.ctx, env)
	s.Empty(got.Skipped)
	env.Skipped = ""
	s.Equal(env, got)
}

func (s *SerdeSuite) TestReservedDiscriminant() {
	data, err := s.ctx.SerializeToBytes(gamestate.ComponentState{NetID: 7, Component: gamestate.Transform{}})
	s.Require().NoError(err)
	data[8] = wire.DiscriminantExact

	_, err = s.ctx.DeserializeFromBytes(data)
	s.ErrorIs(err, merr.ErrMissingAssembly)
	s.True(merr.IsDesync(err))
}

func (s *SerdeSuite) TestMapDeterminism() {
	a := make(map[string]int32)
	b := make(map[string]int32)
	for i := range 200 {
		a[string(rune('a'+i%26))+strings.Repeat("k", i)] = int32(i)
	}
	for k, v := range a {
		b[k] = v
	}
	first, err := s.ctx.SerializeToBytes(a)
	s.Require().NoError(err)
	for range 5 {
		again, err := s.ctx.SerializeToBytes(b)
		s.Require().NoError(err)
		s.Equal(first, again)
	}
	s.Equal(a, roundTrip(s.T(), s.ctx, a))
}

func (s *SerdeSuite) TestStructDeterminism() {
	build := func() Envelope {
		return Envelope{
			Seq: 9,
			Payload: gamestate.NewEntityState(5,
				[]gamestate.ComponentChanged{gamestate.Added(1, "Collision"), gamestate.Removed(2)},
				[]gamestate.ComponentState{
					{NetID: 1, Component: gamestate.Collision{Radius: 2, Layers: gamestate.Tags("Projectile", "Collidable")}},
					{NetID: 3, Component: &gamestate.Health{Current: 7, Max: 9}},
				}),
			Meta: map[string]any{
				"Static": gamestate.Transform{Rotation: 1},
				"hp":     &gamestate.Health{Current: 1, Max: 2},
				"tag":    "Damageable",
				"seq":    []any{int32(1), "Projectile", nil},
			},
		}
	}

	first, err := s.ctx.SerializeToBytes(build())
	s.Require().NoError(err)
	sentinel := binary.LittleEndian.AppendUint32(nil, uint32(wire.StringSentinel))
	s.True(bytes.Contains(first, sentinel), "known strings are interned")

	for range 5 {
		again, err := s.ctx.SerializeToBytes(build())
		s.Require().NoError(err)
		s.Equal(first, again)
	}

	// 以相同顺序注册模块的另一个会话得到相同的字节
	other, err := newContext(s.T()).SerializeToBytes(build())
	s.Require().NoError(err)
	s.Equal(first, other)

	s.Equal(build(), roundTrip(s.T(), s.ctx, build()))
}

func (s *SerdeSuite) TestPointerToValueImplementation() {
	byValue, err := s.ctx.SerializeToBytes(gamestate.ComponentState{NetID: 1, Component: gamestate.Transform{Rotation: 3}})
	s.Require().NoError(err)
	byPointer, err := s.ctx.SerializeToBytes(gamestate.ComponentState{NetID: 1, Component: &gamestate.Transform{Rotation: 3}})
	s.Require().NoError(err)
	s.Equal(byValue, byPointer)

	got, err := serde.DeserializeAs[gamestate.ComponentState](s.ctx, bytes.NewReader(byPointer))
	s.Require().NoError(err)
	s.Equal(gamestate.Transform{Rotation: 3}, got.Component)

	var missing *gamestate.Transform
	data, err := s.ctx.SerializeToBytes(gamestate.ComponentState{NetID: 2, Component: missing})
	s.Require().NoError(err)
	s.Equal(wire.DiscriminantNull, data[8])
	got, err = serde.DeserializeAs[gamestate.ComponentState](s.ctx, bytes.NewReader(data))
	s.Require().NoError(err)
	s.Nil(got.Component)
}

func (s *SerdeSuite) TestNestingLimit() {
	const depth = 10010

	var tree Tree
	for i := range depth {
		tree = Tree{Label: uint8(i), Kids: []Tree{tree}}
	}
	data, err := s.ctx.SerializeToBytes(tree)
	s.Require().NoError(err)
	_, err = s.ctx.DeserializeFromBytes(data)
	s.ErrorIs(err, merr.ErrEndOfStream)
	s.Contains(err.Error(), "nesting deeper")

	forest := Forest{}
	for i := range depth {
		forest = Forest{uint8(i): forest}
	}
	data, err = s.ctx.SerializeToBytes(forest)
	s.Require().NoError(err)
	_, err = s.ctx.DeserializeFromBytes(data)
	s.ErrorIs(err, merr.ErrEndOfStream)

	var chain *Node
	for range depth {
		chain = &Node{Name: "n", Next: chain}
	}
	data, err = s.ctx.SerializeToBytes(Node{Name: "head", Next: chain})
	s.Require().NoError(err)
	_, err = s.ctx.DeserializeFromBytes(data)
	s.ErrorIs(err, merr.ErrEndOfStream)

	shallow := Tree{Kids: []Tree{{Label: 1, Kids: []Tree{{Label: 2}}}}}
	s.Equal(shallow, roundTrip(s.T(), s.ctx, shallow))
}

func (s *SerdeSuite) TestCyclicGraphRejected() {
	n := &Node{Name: "loop"}
	n.Next = n
	_, err := s.ctx.SerializeToBytes(n)
	s.ErrorIs(err, merr.ErrUnsupportedType)

	// 共享但无环的子结构会被重复写出
	shared := &Node{Name: "shared"}
	g := Graph{Nodes: []*Node{shared, shared, {Name: "tail", Next: shared}}}
	out := roundTrip(s.T(), s.ctx, g)
	s.Equal(g, out)
	s.NotSame(out.Nodes[0], out.Nodes[1])
}

func (s *SerdeSuite) TestUnsupportedTypes() {
	for _, v := range []any{
		make(chan int),
		func() {},
		Locked{},
		Marker{},
		Unregistered{A: 1},
		[]Unregistered{},
	} {
		_, err := s.ctx.SerializeToBytes(v)
		s.ErrorIs(err, merr.ErrUnsupportedType, "%T", v)
		s.False(s.ctx.CanSerialize(reflect.TypeOf(v)), "%T", v)
	}
	s.True(s.ctx.CanSerialize(reflect.TypeFor[gamestate.EntityState]()))
	s.True(s.ctx.CanSerialize(reflect.TypeFor[map[string][]*Node]()))
	s.False(s.ctx.CanSerialize(nil))
}

func (s *SerdeSuite) TestLongInlineString() {
	_, err := s.ctx.SerializeToBytes(strings.Repeat("y", wire.MaxInlineStringLen))
	s.ErrorIs(err, merr.ErrNotImplemented)

	out := roundTrip(s.T(), s.ctx, strings.Repeat("y", wire.MaxInlineStringLen-1))
	s.Len(out, wire.MaxInlineStringLen-1)
}

func (s *SerdeSuite) TestTruncatedStream() {
	data, err := s.ctx.SerializeToBytes(gamestate.NewEntityState(5, []gamestate.ComponentChanged{gamestate.Added(1, "free-form name")}, nil))
	s.Require().NoError(err)
	for _, n := range []int{0, 2, 4, len(data) / 2, len(data) - 1} {
		_, err := s.ctx.DeserializeFromBytes(data[:n])
		s.ErrorIs(err, merr.ErrEndOfStream, "cut at %d", n)
	}
}

func (s *SerdeSuite) TestMissingModuleSlot() {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, wire.ModuleTypeID(9, 1).Pack())
	_, err := s.ctx.DeserializeFromBytes(data)
	s.ErrorIs(err, merr.ErrMissingAssembly)
}

func (s *SerdeSuite) TestMissingRuntimeString() {
	peer := newContext(s.T())
	_, err := peer.RegisterStrings([]string{"only-on-peer"})
	s.Require().NoError(err)
	data, err := peer.SerializeToBytes("only-on-peer")
	s.Require().NoError(err)

	_, err = s.ctx.DeserializeFromBytes(data)
	s.ErrorIs(err, merr.ErrMissingString)
}

func (s *SerdeSuite) TestDeserializeAsMismatch() {
	data, err := s.ctx.SerializeToBytes(int32(7))
	s.Require().NoError(err)
	_, err = serde.DeserializeAs[string](s.ctx, bytes.NewReader(data))
	s.ErrorIs(err, merr.ErrUnsupportedType)

	v, err := serde.DeserializeAs[any](s.ctx, bytes.NewReader(data))
	s.NoError(err)
	s.Equal(int32(7), v)
}

func (s *SerdeSuite) TestSerializeAsInterface() {
	var c gamestate.Component = gamestate.Collision{Radius: 2}
	var buf bytes.Buffer
	s.Require().NoError(serde.SerializeAs(s.ctx, &buf, c))
	got, err := serde.DeserializeAs[gamestate.Component](s.ctx, &buf)
	s.NoError(err)
	s.Equal(c, got)
}

func (s *SerdeSuite) TestRuntimeStrings() {
	before := s.ctx.StringTableHash()
	added, err := s.ctx.RegisterStrings([]string{"alpha", "beta"})
	s.Require().NoError(err)
	s.True(added)
	added, err = s.ctx.RegisterStrings([]string{"alpha", "Collidable", ""})
	s.Require().NoError(err)
	s.False(added)
	s.Equal([]string{"alpha", "beta"}, s.ctx.StringTable())
	after := s.ctx.StringTableHash()
	s.NotEqual(before, after)

	peer := newContext(s.T())
	_, err = peer.RegisterStrings([]string{"alpha", "beta"})
	s.Require().NoError(err)
	s.Equal(after, peer.StringTableHash())
}

func (s *SerdeSuite) TestWarmup() {
	c := serde.New(serde.WithWarmupPoolSize(2), serde.WithWarmupPreAlloc(true))
	_, err := c.AddModule(gamestate.Module())
	s.Require().NoError(err)
	s.NoError(c.Warmup())
	s.Positive(c.Stats().Coders)
	s.True(c.CanSerialize(reflect.TypeFor[gamestate.Snapshot]()))

	// Locked 含有 sync.Mutex 字段
	s.ErrorIs(s.ctx.Warmup(), merr.ErrUnsupportedType)

	err = s.ctx.Warmup(reflect.TypeFor[Unregistered](), reflect.TypeFor[gamestate.Snapshot]())
	s.ErrorIs(err, merr.ErrUnsupportedType)
}

func (s *SerdeSuite) TestStats() {
	_, err := s.ctx.SerializeToBytes(int32(1))
	s.Require().NoError(err)
	_, err = s.ctx.SerializeToBytes(make(chan int))
	s.Error(err)
	_, err = s.ctx.DeserializeFromBytes([]byte{1})
	s.Error(err)

	stats := s.ctx.Stats()
	s.EqualValues(1, stats.Serialized)
	s.EqualValues(2, stats.Failed)
	s.EqualValues(8, stats.BytesWritten)
	s.EqualValues(8, stats.LargestSerialized)
	s.Equal(reflect.TypeFor[int32](), stats.LargestSerializedType)
	s.Zero(stats.LargestDeserialized)

	big, err := s.ctx.SerializeToBytes(Node{Name: strings.Repeat("n", 64)})
	s.Require().NoError(err)
	_, err = s.ctx.SerializeToBytes(int64(1))
	s.Require().NoError(err)
	_, err = s.ctx.DeserializeFromBytes(big)
	s.Require().NoError(err)
	small, err := s.ctx.SerializeToBytes(int32(2))
	s.Require().NoError(err)
	_, err = s.ctx.DeserializeFromBytes(small)
	s.Require().NoError(err)

	stats = s.ctx.Stats()
	s.EqualValues(len(big), stats.LargestSerialized)
	s.Equal(reflect.TypeFor[Node](), stats.LargestSerializedType)
	s.EqualValues(len(big), stats.LargestDeserialized)
	s.Equal(reflect.TypeFor[Node](), stats.LargestDeserializedType)
}

func (s *SerdeSuite) TestSnapshot() {
	snap := gamestate.Snapshot{
		Frame: 77,
		Entities: map[uint64]gamestate.EntityState{
			1: gamestate.NewEntityState(1, nil, []gamestate.ComponentState{{NetID: 1, Component: gamestate.Transform{}}}),
			2: gamestate.NewEntityState(2, []gamestate.ComponentChanged{gamestate.Removed(3)}, nil),
		},
		Events: []any{"spawn", uint64(2)},
	}
	s.Equal(snap, roundTrip(s.T(), s.ctx, snap))
}

func TestSerde(t *testing.T) {
	suite.Run(t, new(SerdeSuite))
}

func TestFanoutLimit(t *testing.T) {
	m := typeinfo.NewModule("fanout")
	typeinfo.Register[serdetest.Variant](m)
	m.Add(serdetest.FanoutTypes()...)
	typeinfo.Register[FanoutHolder](m)

	c := serde.New()
	_, err := c.AddModule(m)
	require.NoError(t, err)

	out := roundTrip(t, c, FanoutHolder{V: serdetest.Variant249{}})
	assert.Equal(t, serdetest.Variant249{}, out.V)

	data, err := c.SerializeToBytes(FanoutHolder{V: serdetest.Variant000{}})
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, data[4:])

	_, err = c.SerializeToBytes(FanoutHolder{V: serdetest.Variant250{}})
	assert.ErrorIs(t, err, merr.ErrNotImplemented)
}

func TestCompressedStream(t *testing.T) {
	state := gamestate.NewEntityState(9, []gamestate.ComponentChanged{
		gamestate.Added(1, strings.Repeat("component-", 50)),
		gamestate.Removed(2),
	}, nil)

	for _, alg := range []compressor.Algorithm{
		compressor.AlgorithmNone,
		compressor.AlgorithmLZ4,
		compressor.AlgorithmZstd,
		compressor.AlgorithmS2,
		compressor.AlgorithmXZ,
	} {
		t.Run(string(alg), func(t *testing.T) {
			c := newContext(t, serde.WithCompression(true), serde.WithAlgorithm(alg, 0))
			assert.True(t, c.UseCompression())
			assert.Equal(t, state, roundTrip(t, c, state))

			plain := newContext(t)
			raw, err := plain.SerializeToBytes(state)
			require.NoError(t, err)
			packed, err := c.SerializeToBytes(state)
			require.NoError(t, err)
			if alg != compressor.AlgorithmNone {
				assert.Less(t, len(packed), len(raw))
			}

			c.SetUseCompression(false)
			assert.Equal(t, state, roundTrip(t, c, state))
		})
	}
}

func TestTrace(t *testing.T) {
	c := newContext(t, serde.WithTrace(true))
	state := gamestate.NewEntityState(3, []gamestate.ComponentChanged{gamestate.Added(1, "Collision")}, nil)
	assert.Equal(t, state, roundTrip(t, c, state))

	var buf bytes.Buffer
	tw := serde.NewTraceWriter(&buf, c.Logger())
	_, err := tw.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.EqualValues(t, 3, tw.Offset())

	tr := serde.NewTraceReader(&buf, c.Logger())
	p := make([]byte, 8)
	n, err := tr.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.EqualValues(t, 3, tr.Offset())
}

func TestNilWriterReader(t *testing.T) {
	c := serde.New()
	assert.ErrorIs(t, c.Serialize(nil, 1), merr.ErrParameterMissing)
	_, err := c.Deserialize(nil)
	assert.ErrorIs(t, err, merr.ErrParameterMissing)
}

func TestAddModuleTwiceFails(t *testing.T) {
	c := serde.New()
	m := gamestate.Module()
	_, err := c.AddModule(m)
	require.NoError(t, err)
	_, err = c.AddModule(m)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, merr.ErrEndOfStream))
}
