package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddRemove(t *testing.T) {
	st := New()

	st.AddToCart(3)
	st.AddToCart(3)
	st.AddToCart(7)

	assert.Equal(t, Cart{"3": {Qty: 2}, "7": {Qty: 1}}, st.Cart)
	assert.Equal(t, 3, st.CartCount())
	assert.True(t, st.Modified())

	st.RemoveFromCart(3)
	assert.Equal(t, Cart{"7": {Qty: 1}}, st.Cart)

	st.ClearCart()
	assert.Empty(t, st.Cart)
	assert.Zero(t, st.CartCount())
}

func TestRemoveMissingIsNoop(t *testing.T) {
	st := New()
	st.RemoveFromCart(42)

	assert.False(t, st.Modified())
	assert.Empty(t, st.Cart)
}

func TestAddToNilCart(t *testing.T) {
	st := &State{}
	st.AddToCart(1)

	assert.Equal(t, 1, st.Cart["1"].Qty)
}

func TestLoginKeys(t *testing.T) {
	st := New()
	st.BeginLogin("alice", "1234")

	user, otp := st.PendingLogin()
	assert.Equal(t, "alice", user)
	assert.Equal(t, "1234", otp)

	st.SetOTP("9876")
	_, otp = st.PendingLogin()
	assert.Equal(t, "9876", otp)

	st.ClearLogin()
	st.Authenticate(5)
	user, otp = st.PendingLogin()
	assert.Empty(t, user)
	assert.Empty(t, otp)
	assert.True(t, st.IsAuthenticated())

	st.Logout()
	assert.False(t, st.IsAuthenticated())
}

func TestStateJSONShape(t *testing.T) {
	st := New()
	st.AddToCart(12)

	raw, err := json.Marshal(st)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cart":{"12":{"qty":1}}}`, string(raw))

	var back State
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, 1, back.CartCount())
	assert.False(t, back.Modified())
}
