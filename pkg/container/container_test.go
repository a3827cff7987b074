package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int }

func TestSingletonBuildsOnce(t *testing.T) {
	t.Cleanup(Reset)
	builds := 0
	Singleton("counter", func() *counter { builds++; return &counter{} })

	a := Make[*counter]("counter")
	b := Make[*counter]("counter")
	assert.Same(t, a, b)
	assert.Equal(t, 1, builds)
}

func TestBindBuildsEveryTime(t *testing.T) {
	t.Cleanup(Reset)
	Bind("counter", func() *counter { return &counter{} })
	assert.NotSame(t, Make[*counter]("counter"), Make[*counter]("counter"))
}

func TestInstance(t *testing.T) {
	t.Cleanup(Reset)
	c := &counter{n: 4}
	Instance("counter", c)
	assert.Same(t, c, Make[*counter]("counter"))
	assert.True(t, Has("counter"))
}

func TestResolveErrors(t *testing.T) {
	t.Cleanup(Reset)
	_, err := Resolve[*counter]("missing")
	assert.ErrorIs(t, err, ErrUnbound)

	Instance("name", "cafe")
	_, err = Resolve[*counter]("name")
	assert.ErrorIs(t, err, ErrMismatch)

	assert.Panics(t, func() { Make[*counter]("missing") })
}

func TestSingletonsMayResolveDependencies(t *testing.T) {
	t.Cleanup(Reset)
	Instance("start", 3)
	Singleton("counter", func() *counter { return &counter{n: Make[int]("start")} })
	assert.Equal(t, 3, Make[*counter]("counter").n)
}

func TestCycleIsReported(t *testing.T) {
	t.Cleanup(Reset)
	Singleton("a", func() *counter { return Make[*counter]("b") })
	Singleton("b", func() *counter { return Make[*counter]("a") })

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err, _ = r.(error)
			}
		}()
		Make[*counter]("a")
	}()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycle)
}
