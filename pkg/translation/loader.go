package translation

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Pair is one configured source/texts entry, both relative to the workspace root.
type Pair struct {
	Source string `json:"source" yaml:"source" toml:"source" hcl:"source,attr"`
	Texts  string `json:"texts" yaml:"texts" toml:"texts" hcl:"texts,attr"`
}

// PairError is a per-pair loading failure. Error returns the user-facing message.
type PairError struct {
	Message string
	Path    string
	Err     error
}

func (e *PairError) Error() string {
	return e.Message
}

func (e *PairError) Unwrap() error {
	return e.Err
}

// Loader resolves configured pairs against a workspace root and reads them
// through fs.
type Loader struct {
	fs      afero.Fs
	root    string
	markers []string
	limit   int
}

func NewLoader(fs afero.Fs, root string, markers []string) *Loader {
	return &Loader{
		fs:      fs,
		root:    root,
		markers: markers,
		limit:   runtime.GOMAXPROCS(0),
	}
}

// Load reads every pair concurrently and waits for all of them. Records come
// back in configuration order. A pair whose HTML or JSON file cannot be read is
// left out; a pair whose JSON does not parse is kept with Valid=false. The
// returned error combines one *PairError per failing pair and never stops the
// other pairs from loading; only context cancellation aborts the load.
func (l *Loader) Load(ctx context.Context, pairs []Pair) ([]*Record, error) {
	results := make([]*Record, len(pairs))
	failures := make([]error, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(l.limit, len(pairs))))

	for i, p := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], failures[i] = l.loadPair(gctx, p)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("loading translation pairs: %w", err)
	}

	records := make([]*Record, 0, len(results))
	for _, r := range results {
		if r != nil {
			records = append(records, r)
		}
	}

	return records, multierr.Combine(failures...)
}

func (l *Loader) loadPair(ctx context.Context, p Pair) (*Record, error) {
	logger := zerolog.Ctx(ctx)

	htmlPath := filepath.Join(l.root, p.Source)
	if _, err := l.fs.Stat(htmlPath); err != nil {
		return nil, &PairError{Message: "Could not open " + htmlPath, Path: htmlPath, Err: err}
	}

	jsonPath := filepath.Join(l.root, p.Texts)
	data, err := afero.ReadFile(l.fs, jsonPath)
	if err != nil {
		return nil, &PairError{Message: "Could not open " + jsonPath, Path: jsonPath, Err: err}
	}

	keys, err := ParseKeys(data, l.markers)
	if err != nil {
		logger.Debug().Err(err).Str("json", jsonPath).Msg("translation document did not parse")
		return &Record{HTMLPath: htmlPath, JSONPath: jsonPath}, &PairError{
			Message: "Translations invalid format at " + jsonPath,
			Path:    jsonPath,
			Err:     err,
		}
	}

	logger.Debug().Str("html", htmlPath).Str("json", jsonPath).Int("keys", len(keys)).Msg("loaded translation pair")

	return NewRecord(htmlPath, jsonPath, keys), nil
}
