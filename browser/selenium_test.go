package browser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
	"go.uber.org/zap"
)

// scriptedDriver answers Get and ExecuteScript; every other WebDriver call
// panics through the nil embedded interface.
type scriptedDriver struct {
	selenium.WebDriver
	getErr  error
	result  interface{}
	scripts []string
}

func (d *scriptedDriver) Get(string) error { return d.getErr }

func (d *scriptedDriver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	d.scripts = append(d.scripts, script)
	return d.result, nil
}

func seleniumWith(d *scriptedDriver) *SeleniumSession {
	return &SeleniumSession{driver: d, logger: zap.NewNop()}
}

func TestSeleniumNavigateRejectsErrorStatus(t *testing.T) {
	d := &scriptedDriver{result: float64(404)}
	err := seleniumWith(d).Navigate(context.Background(), "https://example.com/missing")

	var navErr *NavigationError
	require.True(t, errors.As(err, &navErr))
	assert.Equal(t, 404, navErr.Status)
	assert.Equal(t, "https://example.com/missing", navErr.URL)

	require.Len(t, d.scripts, 1)
	assert.True(t, strings.HasPrefix(d.scripts[0], "return ("))
	assert.Contains(t, d.scripts[0], "performance.getEntriesByType('navigation')")
	assert.Contains(t, d.scripts[0], "responseStatus")
}

func TestSeleniumNavigateAcceptsSuccessAndUnknownStatus(t *testing.T) {
	for _, result := range []interface{}{float64(200), float64(204), float64(0), nil} {
		err := seleniumWith(&scriptedDriver{result: result}).Navigate(context.Background(), "https://example.com/")
		assert.NoError(t, err, "status %v", result)
	}
}

func TestSeleniumNavigateWrapsDriverError(t *testing.T) {
	d := &scriptedDriver{getErr: errors.New("timeout")}
	err := seleniumWith(d).Navigate(context.Background(), "https://example.com/")

	var navErr *NavigationError
	require.True(t, errors.As(err, &navErr))
	assert.Zero(t, navErr.Status)
	assert.Empty(t, d.scripts)
}

func TestCheckStatus(t *testing.T) {
	assert.NoError(t, checkStatus("u", 0))
	assert.NoError(t, checkStatus("u", 200))
	assert.NoError(t, checkStatus("u", 299))

	var navErr *NavigationError
	require.True(t, errors.As(checkStatus("u", 301), &navErr))
	assert.Equal(t, 301, navErr.Status)
	assert.Error(t, checkStatus("u", 500))
}
