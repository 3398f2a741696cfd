package browser

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortManagerAllocatesAndReleases(t *testing.T) {
	pm := NewPortManager(5000, 2)

	a, err := pm.GetPort()
	require.NoError(t, err)
	b, err := pm.GetPort()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{5000, 5001}, []int{a, b})

	_, err = pm.GetPort()
	assert.Error(t, err)

	pm.ReleasePort(a)
	pm.ReleasePort(9999)
	c, err := pm.GetPort()
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestPortManagerConcurrentUse(t *testing.T) {
	pm := NewPortManager(6000, 8)
	var wg sync.WaitGroup
	seen := make(chan int, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := pm.GetPort()
			if err == nil {
				seen <- p
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[int]bool{}
	for p := range seen {
		unique[p] = true
	}
	assert.Len(t, unique, 8)
}

func TestJSPathQuotesSelector(t *testing.T) {
	got := jsPath(`[class*="button"]`, 2)
	assert.Equal(t, `document.querySelectorAll("[class*=\"button\"]")[2]`, got)
}

func TestCallAndWebdriverBody(t *testing.T) {
	assert.Equal(t, "(function(a, b) {})(x, y)", call("function(a, b) {}", "x", "y"))
	assert.True(t, strings.HasPrefix(webdriverBody(xpathFn), "return (function(el)"))
	assert.Equal(t, `["fontSize","color"]`, jsStrings([]string{"fontSize", "color"}))
	assert.Equal(t, `[]`, jsStrings(nil))
}

func TestNavigationErrorUnwraps(t *testing.T) {
	err := error(&NavigationError{URL: "https://example.com", Err: context.DeadlineExceeded})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "https://example.com")

	status := &NavigationError{URL: "https://example.com/missing", Status: 404}
	assert.Equal(t, "navigate https://example.com/missing: status 404", status.Error())
}

func TestNewFactoryRejectsUnknownEngine(t *testing.T) {
	_, err := NewFactory(Options{Engine: "webkit"})
	assert.Error(t, err)

	f, err := NewFactory(Options{})
	require.NoError(t, err)
	assert.Equal(t, EngineChromeDP, f.Engine())
}

func TestFactoryOpenHonoursCancelledContext(t *testing.T) {
	f, err := NewFactory(Options{Engine: EngineSelenium})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Open(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
