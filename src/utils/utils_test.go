package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vanguardtable/vanguard/src/oops"
)

type MyError struct{}

func (err *MyError) Error() string {
	return "I want to get off MR BONES WILD RIDE"
}

func TestMust(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		f := func() error { return nil }
		Must(f())
	})
	t.Run("non-nil error", func(t *testing.T) {
		f := func() error { return &MyError{} }
		assert.Panics(t, func() {
			Must(f())
		})
	})
}

func TestMust1(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		f := func() (int, error) { return 3, nil }
		a := Must1(f())
		assert.Equal(t, 3, a)
	})
	t.Run("non-nil error", func(t *testing.T) {
		f := func() (int, error) { return 0, &MyError{} }
		assert.Panics(t, func() {
			Must1(f())
		})
	})
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, 5, OrDefault(0, 5))
	assert.Equal(t, 3, OrDefault(3, 5))
	assert.Equal(t, "fallback", OrDefault("", "fallback"))
	assert.Equal(t, "value", OrDefault("value", "fallback"))
}

func TestRecoverPanicAsError(t *testing.T) {
	t.Run("panic with error value", func(t *testing.T) {
		err := func() (err error) {
			defer RecoverPanicAsError(&err)
			panic(&MyError{})
		}()
		assert.Error(t, err)
		var myError *MyError
		assert.True(t, errors.As(err, &myError))
	})
	t.Run("panic with non-error value", func(t *testing.T) {
		err := func() (err error) {
			defer RecoverPanicAsError(&err)
			panic("aaaaa")
		}()
		assert.Error(t, err)
		var asOops *oops.Error
		assert.True(t, errors.As(err, &asOops))
	})
}
