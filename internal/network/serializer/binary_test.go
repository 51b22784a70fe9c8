package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/danmu-garden-codec/internal/gamestate"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

func newSerializer(t *testing.T) *BinarySerializer {
	t.Helper()
	ctx := serde.New()
	_, err := ctx.AddModule(gamestate.Module())
	require.NoError(t, err)
	return NewBinarySerializer(ctx)
}

func TestBinarySerializer(t *testing.T) {
	s := newSerializer(t)
	in := gamestate.NewEntityState(1, []gamestate.ComponentChanged{gamestate.Added(2, "Collision")}, nil)

	data, err := s.Marshal(in)
	require.NoError(t, err)

	var out gamestate.EntityState
	require.NoError(t, s.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	var anyOut any
	require.NoError(t, s.Unmarshal(data, &anyOut))
	assert.Equal(t, in, anyOut)

	var wrong gamestate.Snapshot
	assert.ErrorIs(t, s.Unmarshal(data, &wrong), merr.ErrUnsupportedType)
	assert.ErrorIs(t, s.Unmarshal(data, out), merr.ErrParameterInvalid)

	var comp gamestate.Component = gamestate.Transform{}
	data, err = s.Marshal(nil)
	require.NoError(t, err)
	require.NoError(t, s.Unmarshal(data, &comp))
	assert.Nil(t, comp)
}
