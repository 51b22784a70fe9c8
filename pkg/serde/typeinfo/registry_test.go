package typeinfo_test

import (
	"bytes"
	"iter"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/fields"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/serdetest"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/typeinfo"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/wire"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

type Shape interface{ Area() float64 }

type Circle struct{ R float64 }

func (c Circle) Area() float64 { return 3 * c.R * c.R }

type Rect struct{ W, H float64 }

func (r *Rect) Area() float64 { return r.W * r.H }

type Point struct {
	X, Y int32
	Tag  string
}

type unregistered struct{}

type Tags struct{ items []string }

func NewTags(items []string) Tags { return Tags{items: slices.Clone(items)} }

func (t Tags) Items() []string { return t.items }

type Ints struct{ items []int32 }

func IntsFrom(seq iter.Seq[int32]) Ints { return Ints{items: slices.Collect(seq)} }

func (i Ints) All() iter.Seq[int32] { return slices.Values(i.items) }

type RegistrySuite struct {
	suite.Suite
	reg *typeinfo.Registry
}

func (s *RegistrySuite) SetupTest() {
	shapes := typeinfo.NewModule("shapes")
	typeinfo.Register[Shape](shapes)
	typeinfo.Register[Circle](shapes)
	typeinfo.Register[Rect](shapes)
	shapes.AddStrings("Collidable")

	misc := typeinfo.NewModule("misc")
	typeinfo.Register[Point](misc)
	misc.AddCollection(NewTags).AddCollection(IntsFrom)

	reg, err := typeinfo.NewRegistry(fields.NewReflector(), shapes, misc)
	s.Require().NoError(err)
	s.reg = reg
}

func (s *RegistrySuite) TestResolveWireID() {
	id, err := s.reg.ResolveWireID(reflect.TypeFor[Circle]())
	s.NoError(err)
	s.Equal(wire.ModuleTypeID(1, 2), id)

	id, err = s.reg.ResolveWireID(reflect.TypeFor[Point]())
	s.NoError(err)
	s.Equal(wire.ModuleTypeID(2, 1), id)

	id, err = s.reg.ResolveWireID(reflect.TypeFor[int32]())
	s.NoError(err)
	s.True(id.IsCustom())
	idx, ok := typeinfo.SymbolOf(reflect.TypeFor[int32]())
	s.True(ok)
	s.Equal(uint32(idx), id.Token)

	id, err = s.reg.ResolveWireID(nil)
	s.NoError(err)
	s.True(id.IsNull())

	_, err = s.reg.ResolveWireID(reflect.TypeFor[unregistered]())
	s.True(errors.Is(err, merr.ErrUnsupportedType))

	_, err = s.reg.ResolveWireID(reflect.TypeFor[chan int]())
	s.True(errors.Is(err, merr.ErrUnsupportedType))
}

func (s *RegistrySuite) TestTypeRoundTrip() {
	types := []reflect.Type{
		reflect.TypeFor[int32](),
		reflect.TypeFor[string](),
		reflect.TypeFor[any](),
		reflect.TypeFor[time.Time](),
		reflect.TypeFor[Circle](),
		reflect.TypeFor[Shape](),
		reflect.TypeFor[[]int32](),
		reflect.TypeFor[[][]Point](),
		reflect.TypeFor[[4]uint8](),
		reflect.TypeFor[map[string][]Shape](),
		reflect.TypeFor[*Rect](),
		reflect.TypeFor[*string](),
		reflect.TypeFor[Tags](),
	}
	for _, t := range types {
		var buf bytes.Buffer
		w := wire.NewWriter(&buf)
		s.Require().NoError(s.reg.WriteType(w, t), t.String())

		got, err := s.reg.ReadType(wire.NewReader(&buf))
		s.Require().NoError(err, t.String())
		s.Equal(t, got)
		s.Zero(buf.Len(), t.String())
	}
}

func (s *RegistrySuite) TestArrayMarkerLayout() {
	var buf bytes.Buffer
	s.Require().NoError(s.reg.WriteType(wire.NewWriter(&buf), reflect.TypeFor[[]int32]()))
	// 数组标记 4 字节 + rank 1 字节 + 元素类型 4 字节。
	s.Equal(9, buf.Len())
	s.Equal(byte(1), buf.Bytes()[4])
}

func (s *RegistrySuite) TestRankNotImplemented() {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	w.TypeID(wire.CustomTypeID(typeinfo.SymbolFor(typeinfo.SymbolSlice)))
	w.Uint8(2)
	w.TypeID(wire.CustomTypeID(typeinfo.SymbolFor(typeinfo.SymbolSlice)))

	_, err := s.reg.ReadType(wire.NewReader(&buf))
	s.True(errors.Is(err, merr.ErrNotImplemented))
}

func (s *RegistrySuite) TestResolveTypeErrors() {
	_, err := s.reg.ResolveType(wire.ModuleTypeID(7, 1))
	s.True(errors.Is(err, merr.ErrMissingAssembly))

	_, err = s.reg.ResolveType(wire.ModuleTypeID(1, 99))
	s.True(errors.Is(err, merr.ErrUnsupportedType))

	_, err = s.reg.ResolveType(wire.CustomTypeID(10000))
	s.True(errors.Is(err, merr.ErrUnsupportedType))

	_, err = s.reg.ResolveType(wire.CustomTypeID(typeinfo.SymbolFor(typeinfo.SymbolMap)))
	s.True(errors.Is(err, merr.ErrUnsupportedType))
}

func (s *RegistrySuite) TestCanSerialize() {
	s.True(s.reg.CanSerialize(reflect.TypeFor[map[string]*Circle]()))
	s.True(s.reg.CanSerialize(reflect.TypeFor[[]Shape]()))
	s.False(s.reg.CanSerialize(reflect.TypeFor[[]unregistered]()))
	s.False(s.reg.CanSerialize(reflect.TypeFor[func()]()))
	s.False(s.reg.CanSerialize(nil))
}

func (s *RegistrySuite) TestInheritors() {
	list := s.reg.Inheritors(reflect.TypeFor[Shape]())
	s.Equal([]reflect.Type{reflect.TypeFor[Circle](), reflect.TypeFor[*Rect]()}, list)

	disc, err := s.reg.Discriminant(reflect.TypeFor[Shape](), reflect.TypeFor[*Rect]())
	s.NoError(err)
	s.Equal(uint8(3), disc)

	got, err := s.reg.Variant(reflect.TypeFor[Shape](), disc)
	s.NoError(err)
	s.Equal(reflect.TypeFor[*Rect](), got)

	got, err = s.reg.Variant(reflect.TypeFor[Shape](), wire.DiscriminantNull)
	s.NoError(err)
	s.Nil(got)

	_, err = s.reg.Variant(reflect.TypeFor[Shape](), 40)
	s.True(errors.Is(err, merr.ErrUnsupportedType))

	_, err = s.reg.Discriminant(reflect.TypeFor[Shape](), reflect.TypeFor[Rect]())
	s.True(errors.Is(err, merr.ErrUnsupportedType))

	s.Nil(s.reg.Inheritors(reflect.TypeFor[any]()))
	s.Nil(s.reg.Inheritors(reflect.TypeFor[Circle]()))
}

func (s *RegistrySuite) TestCollections() {
	tags, ok := s.reg.Collection(reflect.TypeFor[Tags]())
	s.Require().True(ok)
	s.Equal(reflect.TypeFor[string](), tags.Elem)

	items := tags.Items(reflect.ValueOf(NewTags([]string{"a", "b"})))
	rebuilt := tags.Build(items).Interface().(Tags)
	s.Equal([]string{"a", "b"}, rebuilt.Items())

	ints, ok := s.reg.Collection(reflect.TypeFor[Ints]())
	s.Require().True(ok)
	items = ints.Items(reflect.ValueOf(Ints{items: []int32{3, 1, 2}}))
	s.Equal(3, items.Len())
	s.Equal([]int32{3, 1, 2}, ints.Build(items).Interface().(Ints).items)
}

func (s *RegistrySuite) TestManifestAndHashes() {
	manifest, err := s.reg.Manifest(1)
	s.NoError(err)
	s.Contains(manifest, "Collidable")
	s.Contains(manifest, "shapes")
	s.Contains(manifest, "Circle")
	s.Contains(manifest, "R")

	h1, err := s.reg.TypeTableHash(1)
	s.NoError(err)
	h2, err := s.reg.TypeTableHash(2)
	s.NoError(err)
	s.NotEqual(h1, h2)

	_, err = s.reg.TypeTableHash(3)
	s.True(errors.Is(err, merr.ErrMissingAssembly))
}

func (s *RegistrySuite) TestAddModuleRejects() {
	dup := typeinfo.NewModule("dup")
	typeinfo.Register[Circle](dup)
	_, err := s.reg.AddModule(dup)
	s.True(errors.Is(err, merr.ErrParameterInvalid))

	_, err = s.reg.AddModule(typeinfo.NewModule("shapes"))
	s.True(errors.Is(err, merr.ErrParameterInvalid))

	bad := typeinfo.NewModule("bad").Add(reflect.TypeFor[[]int]())
	_, err = s.reg.AddModule(bad)
	s.True(errors.Is(err, merr.ErrUnsupportedType))

	builtin := typeinfo.NewModule("builtin").Add(reflect.TypeFor[int32]())
	_, err = s.reg.AddModule(builtin)
	s.True(errors.Is(err, merr.ErrParameterInvalid))

	badFactory := typeinfo.NewModule("factory").AddCollection(func(int) Tags { return Tags{} })
	_, err = s.reg.AddModule(badFactory)
	s.True(errors.Is(err, merr.ErrParameterInvalid))

	s.Len(s.reg.Modules(), 2)
}

func TestRegistry(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func TestFanoutBound(t *testing.T) {
	m := typeinfo.NewModule("fanout").Add(serdetest.FanoutTypes()...)
	reg, err := typeinfo.NewRegistry(nil, m)
	require.NoError(t, err)

	iface := reflect.TypeFor[serdetest.Variant]()
	list := reg.Inheritors(iface)
	require.Len(t, list, serdetest.FanoutSize)

	disc, err := reg.Discriminant(iface, list[wire.MaxVariants-1])
	require.NoError(t, err)
	assert.Equal(t, uint8(wire.MaxVariants-1)+wire.DiscriminantBase, disc)

	_, err = reg.Discriminant(iface, list[wire.MaxVariants])
	assert.True(t, errors.Is(err, merr.ErrNotImplemented))
}

func TestSymbolTable(t *testing.T) {
	syms := typeinfo.Symbols()
	assert.True(t, slices.IsSortedFunc(syms, func(a, b typeinfo.Symbol) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	}))
	assert.Equal(t, uint64(1), typeinfo.SymbolTableVersion.Major)

	_, ok := typeinfo.SymbolOf(reflect.TypeFor[time.Duration]())
	assert.True(t, ok)
	_, ok = typeinfo.SymbolOf(reflect.TypeFor[Circle]())
	assert.False(t, ok)
}
