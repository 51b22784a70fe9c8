package gamestate

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/typeinfo"
)

func TestNewEntityState(t *testing.T) {
	s := NewEntityState(7, []ComponentChanged{}, []ComponentState{})
	assert.Nil(t, s.ComponentChanges)
	assert.Nil(t, s.ComponentStates)

	s = NewEntityState(7, []ComponentChanged{Removed(1), Added(2, "Collision")}, nil)
	require.Len(t, s.ComponentChanges, 2)
	assert.Nil(t, s.ComponentChanges[0].ComponentName)
	assert.Equal(t, "Collision", *s.ComponentChanges[1].ComponentName)
}

func TestTagSet(t *testing.T) {
	s := Tags("b", "a", "b")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))
}

func TestModule(t *testing.T) {
	reg, err := typeinfo.NewRegistry(nil, Module())
	require.NoError(t, err)

	list := reg.Inheritors(reflect.TypeFor[Component]())
	assert.Equal(t, []reflect.Type{
		reflect.TypeFor[Transform](),
		reflect.TypeFor[*Health](),
		reflect.TypeFor[Collision](),
		reflect.TypeFor[BallisticBullet](),
	}, list)

	_, ok := reg.Collection(reflect.TypeFor[TagSet]())
	assert.True(t, ok)
}
