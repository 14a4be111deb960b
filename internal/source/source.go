// Package source loads the timeline markdown.
//
// Loading never fails: a remote URL or local file is tried first, then the
// last good copy from the disk cache, and finally the copy compiled into the
// binary. Failures are logged, not returned.
package source

import (
	"context"
	_ "embed"
	"errors"
	"os"
	"time"

	appLog "careerline/internal/log"
)

//go:embed timeline.md
var embedded []byte

// Embedded returns the built-in timeline text.
func Embedded() []byte {
	out := make([]byte, len(embedded))
	copy(out, embedded)
	return out
}

// Origin says where a loaded body came from.
type Origin string

const (
	OriginRemote   Origin = "remote"
	OriginCache    Origin = "cache"
	OriginFile     Origin = "file"
	OriginEmbedded Origin = "embedded"
)

// Spec selects the source. URL wins over Path.
type Spec struct {
	URL  string
	Path string
}

// Result is a loaded timeline body.
type Result struct {
	Body     []byte
	Origin   Origin
	LoadedAt time.Time
}

var errEmptyBody = errors.New("empty body")

// Load resolves spec to a body, falling back to the embedded copy.
func (f *Fetcher) Load(ctx context.Context, spec Spec) Result {
	switch {
	case spec.URL != "":
		body, fromCache, err := f.FetchURL(ctx, spec.URL)
		if err == nil {
			origin := OriginRemote
			if fromCache {
				origin = OriginCache
			}
			return newResult(body, origin)
		}
		appLog.Warn("source fetch failed, using embedded copy", "url", redactURL(spec.URL), "err", err)

	case spec.Path != "":
		body, err := os.ReadFile(spec.Path)
		if err == nil && len(body) == 0 {
			err = errEmptyBody
		}
		if err == nil {
			appLog.Info("source loaded from file", "path", spec.Path, "bytes", len(body))
			return newResult(body, OriginFile)
		}
		appLog.Warn("source read failed, using embedded copy", "path", spec.Path, "err", err)

	default:
		appLog.Info("no source configured, using embedded copy")
	}

	return newResult(Embedded(), OriginEmbedded)
}

func newResult(body []byte, origin Origin) Result {
	return Result{Body: body, Origin: origin, LoadedAt: time.Now()}
}
