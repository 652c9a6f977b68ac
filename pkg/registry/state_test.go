package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RoundTrip(t *testing.T) {
	r := controlled(t)
	require.NoError(t, r.UpdateWeights([]AssetWeight{{assetTwo, 4000}, {assetOne, 6000}}, envFor(curator, 9)))

	restored, err := FromState(r.State())
	require.NoError(t, err)
	assert.Equal(t, r.Weights(), restored.Weights(), "order survives a round trip")
	c, ok := restored.Controller()
	assert.True(t, ok)
	assert.Equal(t, curator, c)
	assert.Equal(t, r.RebalanceInterval(), restored.RebalanceInterval())
}

func TestState_IsACopy(t *testing.T) {
	r := controlled(t)
	st := r.State()
	*st.Controller = intruder
	c, _ := r.Controller()
	assert.Equal(t, curator, c)
}

func TestFromState_Rejects(t *testing.T) {
	_, err := FromState(State{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = FromState(State{
		RebalanceInterval: 1,
		Holdings:          []HoldingEntry{{AssetID: assetOne}, {AssetID: assetOne}},
	})
	assert.Error(t, err)
}

func TestFromState_Uncontrolled(t *testing.T) {
	r, err := FromState(State{RebalanceInterval: 3})
	require.NoError(t, err)
	_, ok := r.Controller()
	assert.False(t, ok)
	assert.Nil(t, r.State().Controller)
}
