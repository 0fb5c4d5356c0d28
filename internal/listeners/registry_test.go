package listeners

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryNotifyInOrderAndCancel(t *testing.T) {
	var r Registry[int]
	var got []string

	cancelA := r.Add(func(v int) { got = append(got, "a") })
	r.Add(func(v int) { got = append(got, "b") })

	r.Notify(1)
	assert.Equal(t, []string{"a", "b"}, got)

	cancelA()
	cancelA()
	got = nil
	r.Notify(2)
	assert.Equal(t, []string{"b"}, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryCallbackMayCancelItself(t *testing.T) {
	var r Registry[string]
	calls := 0
	var cancel func()
	cancel = r.Add(func(string) {
		calls++
		cancel()
	})

	r.Notify("x")
	r.Notify("y")
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, r.Len())
}
