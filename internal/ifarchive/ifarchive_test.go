package ifarchive_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairnwright/zvm/internal/ifarchive"
)

const sampleIndex = `<html><body><dl>
<dt><a href="/if-archive/games/zcode/zork1.z5">zork1.z5</a></dt>
<dd>Zork I</dd>
<dt><a href="/if-archive/games/zcode/readme.txt">readme.txt</a></dt>
<dd>not a story</dd>
<dt><a href="/if-archive/games/zcode/curses.z5">curses.z5</a></dt>
<dd>Curses</dd>
</dl></body></html>`

func TestListFindsOnlyStoryFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleIndex))
	}))
	defer server.Close()

	client := ifarchive.NewClient(server.URL)
	stories, err := client.List()
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, "zork1.z5", stories[0].Name)
	assert.Equal(t, "curses.z5", stories[1].Name)
}

func TestResolveFindsExactMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleIndex))
	}))
	defer server.Close()

	client := ifarchive.NewClient(server.URL)
	story, ok, err := client.Resolve("curses.z5")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, story.URL, "curses.z5")
}

func TestResolveMissingStory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleIndex))
	}))
	defer server.Close()

	client := ifarchive.NewClient(server.URL)
	_, ok, err := client.Resolve("nope.z5")
	require.NoError(t, err)
	assert.False(t, ok)
}
