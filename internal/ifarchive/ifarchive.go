// Package ifarchive scrapes the IF-Archive's zcode index to resolve a
// story's file name to its download URL, for cmd/zvmbrowse's story
// picker. It is domain-stack wiring, not part of the interpreter core.
package ifarchive

import (
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const indexURL = "https://www.ifarchive.org/indexes/if-archive/games/zcode/"

var storyFilePattern = regexp.MustCompile(`\.(z[12345678]|zblorb)$`)

// Story is one entry in the zcode index: a file name and its absolute
// download URL.
type Story struct {
	Name string
	URL  string
}

// Client fetches the IF-Archive index. It keeps no cache: each List
// call fetches the index page again.
type Client struct {
	http *http.Client
	base string
}

// NewClient builds a Client with a sensible request timeout. base
// overrides the index URL (tests point it at an httptest server);
// pass "" to use the real archive.
func NewClient(base string) *Client {
	u := indexURL
	if base != "" {
		u = base
	}
	return &Client{http: &http.Client{Timeout: 30 * time.Second}, base: u}
}

// List fetches the index page and returns every Z-machine story link
// it finds.
func (c *Client) List() ([]Story, error) {
	res, err := c.http.Get(c.base)
	if err != nil {
		return nil, fmt.Errorf("ifarchive: fetching index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ifarchive: index returned status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("ifarchive: parsing index: %w", err)
	}

	var stories []Story
	doc.Find("dl dt").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Find("a").Attr("href")
		if !exists || !storyFilePattern.MatchString(href) {
			return
		}
		stories = append(stories, Story{
			Name: filepath.Base(href),
			URL:  resolveURL(href),
		})
	})

	return stories, nil
}

// Resolve finds the story whose file name matches name exactly, or
// returns false.
func (c *Client) Resolve(name string) (Story, bool, error) {
	stories, err := c.List()
	if err != nil {
		return Story{}, false, err
	}
	for _, s := range stories {
		if s.Name == name {
			return s, true, nil
		}
	}
	return Story{}, false, nil
}

// Fetch downloads a story's bytes.
func (c *Client) Fetch(s Story) ([]byte, error) {
	res, err := c.http.Get(s.URL)
	if err != nil {
		return nil, fmt.Errorf("ifarchive: fetching %s: %w", s.Name, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ifarchive: %s returned status %d", s.Name, res.StatusCode)
	}
	buf := make([]byte, 0, 64*1024)
	chunk := make([]byte, 32*1024)
	for {
		n, readErr := res.Body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if readErr != nil {
			break
		}
	}
	return buf, nil
}

func resolveURL(href string) string {
	if len(href) > 0 && href[0] == '/' {
		return "https://www.ifarchive.org" + href
	}
	return href
}
