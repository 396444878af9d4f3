package crudify_test

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudify"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := crudify.NewNotFoundError("models/user.model.ts", nil)
		assert.Equal(t, "crudify: models/user.model.ts not found", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := crudify.NewNotFoundError("x.ts", fs.ErrNotExist)
		assert.True(t, errors.Is(err, crudify.ErrNotFound))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := crudify.NewNotFoundError("x.ts", nil)
		assert.True(t, crudify.IsNotFound(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, crudify.IsNotFound(wrapped))

		// Sentinel error
		assert.True(t, crudify.IsNotFound(crudify.ErrNotFound))

		assert.False(t, crudify.IsNotFound(errors.New("other error")))
		assert.False(t, crudify.IsNotFound(nil))
	})
}

func TestTemplateError(t *testing.T) {
	t.Run("Error names path and marker", func(t *testing.T) {
		err := crudify.NewTemplateError("component.ts", "unknown-marker", 12, "no resolver registered")
		msg := err.Error()
		assert.Contains(t, msg, "component.ts")
		assert.Contains(t, msg, "[[unknown-marker]]")
		assert.Contains(t, msg, "offset 12")
		assert.Contains(t, msg, "no resolver registered")
	})

	t.Run("Error without offset", func(t *testing.T) {
		err := crudify.NewTemplateError("a.ts", "name", -1, "")
		assert.Equal(t, "crudify: template a.ts: marker [[name]]", err.Error())
	})

	t.Run("Is and Unwrap", func(t *testing.T) {
		cause := errors.New("boom")
		err := &crudify.TemplateError{Path: "a.ts", Marker: "routes", Offset: -1, Cause: cause}
		assert.True(t, errors.Is(err, crudify.ErrTemplate))
		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("IsTemplateError", func(t *testing.T) {
		err := fmt.Errorf("file: %w", crudify.NewTemplateError("a.ts", "x", 0, ""))
		assert.True(t, crudify.IsTemplateError(err))
		assert.False(t, crudify.IsTemplateError(nil))
		assert.False(t, crudify.IsTemplateError(errors.New("x")))
	})
}

func TestIOError(t *testing.T) {
	cause := fs.ErrPermission
	err := crudify.NewIOError("write", "out/a.ts", cause)

	assert.Equal(t, "crudify: write out/a.ts: permission denied", err.Error())
	assert.True(t, errors.Is(err, crudify.ErrIO))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.True(t, crudify.IsIOError(fmt.Errorf("emit: %w", err)))
	assert.False(t, crudify.IsIOError(nil))
}

func TestAggregateError(t *testing.T) {
	t.Run("nil when empty", func(t *testing.T) {
		assert.NoError(t, crudify.NewAggregateError())
		assert.NoError(t, crudify.NewAggregateError(nil, nil))
	})

	t.Run("single error returned as is", func(t *testing.T) {
		e := errors.New("only")
		assert.Equal(t, e, crudify.NewAggregateError(nil, e))
	})

	t.Run("multiple errors", func(t *testing.T) {
		nf := crudify.NewNotFoundError("a.ts", nil)
		te := crudify.NewTemplateError("b.ts", "x", 0, "")
		err := crudify.NewAggregateError(nf, te)
		require.Error(t, err)

		assert.Contains(t, err.Error(), "2 errors")
		assert.Contains(t, err.Error(), "[1]")
		assert.Contains(t, err.Error(), "[2]")
		assert.True(t, crudify.IsNotFound(err))
		assert.True(t, crudify.IsTemplateError(err))
		assert.False(t, crudify.IsIOError(err))
	})
}
