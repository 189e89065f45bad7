package markup_test

import (
	"testing/fstest"
	"time"

	"impractical.co/markup"
)

// every file in the test filesystems shares a modification time, so
// versioned URLs are predictable
var testModTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

const testVersion = "?v=1714564800"

func mapFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, data := range files {
		fsys[name] = &fstest.MapFile{
			Data:    []byte(data),
			Mode:    0o644,
			ModTime: testModTime,
		}
	}
	return fsys
}

func newTestSite(files map[string]string) *markup.Site {
	return markup.NewSite(markup.SiteOptions{
		FS:      mapFS(files),
		BaseURL: "/templates/",
	})
}
