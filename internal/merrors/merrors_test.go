// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package merrors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmpty(t *testing.T) {
	var m M
	assert.Equal(t, 0, m.Len())
	assert.NoError(t, m.Err())
}

func TestSingleError(t *testing.T) {
	var m M
	sentinel := errors.New("boom")
	m.Append(sentinel)
	require.Equal(t, 1, m.Len())
	assert.Equal(t, sentinel, m.Err())
	assert.True(t, m.Is(sentinel))
}

func TestMultipleErrors(t *testing.T) {
	var m M
	e1 := errors.New("first")
	e2 := errors.New("second")
	m.Append(e1)
	m.Append(e2)

	require.Equal(t, 2, m.Len())
	err := m.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, e1))
	assert.True(t, errors.Is(err, e2))
	assert.True(t, strings.Contains(err.Error(), "first"))
	assert.True(t, strings.Contains(err.Error(), "second"))
}

func TestAppendIgnoresNil(t *testing.T) {
	var m M
	m.Append(nil, nil)
	assert.Equal(t, 0, m.Len())
	assert.NoError(t, m.Err())
}

func TestConcurrentAppend(t *testing.T) {
	var m M
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(i int) {
			m.Append(errors.New("err"))
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	assert.Equal(t, 10, m.Len())
}
