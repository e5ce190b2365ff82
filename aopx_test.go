/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package aopx

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/aopx/apis"
	"dirpx.dev/aopx/config"
	"dirpx.dev/aopx/proxy"
	"dirpx.dev/aopx/target"
)

type clock struct {
	now int64
}

func (c *clock) Now() int64     { return c.now }
func (c *clock) Advance(d int64) { c.now += d }
func (c *clock) Itself() *clock { return c }

type counting struct {
	n *int
}

func (c counting) Invoke(inv apis.Invocation) ([]any, error) {
	*c.n++
	return inv.Proceed()
}

func TestWrap(t *testing.T) {
	n := 0
	p, err := Wrap(&clock{now: 5}, counting{n: &n})
	require.NoError(t, err)

	res, err := p.Call(context.Background(), "Now")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(5)}, res)
	assert.Equal(t, 1, n)

	// Advice applies to every method.
	_, err = p.Call(context.Background(), "Advance", int64(10))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err = p.Call(context.Background(), "Now")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(15)}, res)
}

func TestWrapNilTarget(t *testing.T) {
	_, err := Wrap(nil)
	require.ErrorIs(t, err, target.ErrNilTarget)
}

func TestWrapSelfReturn(t *testing.T) {
	p, err := Wrap(&clock{})
	require.NoError(t, err)

	res, err := p.Call(context.Background(), "Itself")
	require.NoError(t, err)
	assert.Same(t, p, res[0])
}

func TestBuildExplicitConfig(t *testing.T) {
	n := 0
	cfg := config.New(config.WithTarget(&clock{now: 1}))
	require.NoError(t, cfg.AddAdvice(counting{n: &n}))
	cfg.Freeze()

	p, err := Build(cfg)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Frozen())

	res, err := p.Call(context.Background(), "Now")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1)}, res)
	assert.Equal(t, 1, n)
}

func TestBuildRejectsEmpty(t *testing.T) {
	_, err := Build(config.New())
	require.ErrorIs(t, err, proxy.ErrEmptyConfig)

	_, err = Build(nil)
	require.ErrorIs(t, err, proxy.ErrNilConfig)
}

func TestLoggerSwap(t *testing.T) {
	orig := Logger()
	defer SetLogger(orig)

	require.NotNil(t, orig)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	SetLogger(quiet)
	assert.Same(t, quiet, Logger())

	// Nil is ignored, never published.
	SetLogger(nil)
	assert.Same(t, quiet, Logger())
}

func TestCurrentProxyReExport(t *testing.T) {
	_, err := CurrentProxy(context.Background())
	require.Error(t, err)

	sawSelf := false
	var p *proxy.Proxy
	capture := captureFunc(func(inv apis.Invocation) ([]any, error) {
		if got, err := CurrentProxy(inv.Context()); err == nil && got == any(p) {
			sawSelf = true
		}
		return inv.Proceed()
	})

	cfg := config.New(config.WithTarget(&clock{}), config.WithExposeProxy(true))
	require.NoError(t, cfg.AddAdvice(capture))
	var errBuild error
	p, errBuild = Build(cfg)
	require.NoError(t, errBuild)

	_, err = p.Call(context.Background(), "Now")
	require.NoError(t, err)
	assert.True(t, sawSelf, "the exposed proxy is retrievable inside advice")
}

// captureFunc adapts a function to the advice interface.
type captureFunc func(inv apis.Invocation) ([]any, error)

func (f captureFunc) Invoke(inv apis.Invocation) ([]any, error) { return f(inv) }
