package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverLinkPrefersSameHost(t *testing.T) {
	got, err := discoverLink(homeHTML, homeURL, DetailLinkSelector)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/property/42", got)
}

func TestDiscoverLinkFallsBackToOtherHost(t *testing.T) {
	html := `<a href="https://other.example.net/listing/9#photos">x</a>`
	got, err := discoverLink(html, homeURL, DetailLinkSelector)
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.net/listing/9", got)
}

func TestDiscoverLinkIgnoresUnusableHrefs(t *testing.T) {
	html := `<a href="mailto:rent@example.com">mail</a><a href="javascript:buy()">js</a><a>none</a>`
	_, err := discoverLink(html, homeURL, ListingsLinkSelector)
	assert.Error(t, err)
}

func TestDiscoverLinkDocumentOrder(t *testing.T) {
	got, err := discoverLink(homeHTML, homeURL, ListingsLinkSelector)
	require.NoError(t, err)
	assert.Equal(t, listingsURL, got)
}

func TestResolveURL(t *testing.T) {
	got, err := resolveURL(homeURL, "")
	require.NoError(t, err)
	assert.Equal(t, homeURL, got)

	got, err = resolveURL(homeURL, "/about")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/about", got)

	_, err = resolveURL(homeURL, "ftp://example.com/file")
	assert.Error(t, err)
}
