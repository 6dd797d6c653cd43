// Package engine owns the state behind every placeholder feature: the active
// delimiters, the translation index and the diagnostic sink. Hosts (the
// language server, the check command) drive it; it never calls back into them.
//
// An Engine is not safe for concurrent use. Hosts serialize calls.
package engine

import (
	"github.com/spf13/afero"
	"github.com/walteh/html-translator/pkg/config"
	"github.com/walteh/html-translator/pkg/diagnostic"
	"github.com/walteh/html-translator/pkg/placeholder"
	"github.com/walteh/html-translator/pkg/translation"
)

type Options struct {
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Root is the workspace directory configured paths are resolved against.
	// Without a root, loading is a no-op.
	Root string
}

type Engine struct {
	fs   afero.Fs
	root string

	cfg     *config.Config
	index   *translation.Index
	sink    *diagnostic.Collection
	enabled bool
}

// New returns an enabled engine with the default configuration and no records.
func New(opts Options) *Engine {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Engine{
		fs:      fs,
		root:    opts.Root,
		cfg:     config.Default(),
		index:   translation.NewIndex(),
		sink:    diagnostic.NewCollection(),
		enabled: true,
	}
}

func (e *Engine) Root() string {
	return e.root
}

func (e *Engine) Fs() afero.Fs {
	return e.fs
}

// Delimiters returns the active delimiter pair.
func (e *Engine) Delimiters() placeholder.Delimiters {
	return e.cfg.Delimiters
}

// Config returns the configuration applied by the last load.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Start enables the engine. It does not reload; hosts call LoadConfiguration.
func (e *Engine) Start() {
	e.enabled = true
}

// Stop disables every provider and drops all stored diagnostics.
func (e *Engine) Stop() {
	e.enabled = false
	e.sink.Clear()
}

func (e *Engine) Enabled() bool {
	return e.enabled
}

// Sources returns the HTML paths of the indexed records, in configuration order.
func (e *Engine) Sources() []string {
	records := e.index.Records()
	res := make([]string, 0, len(records))
	for _, r := range records {
		res = append(res, r.HTMLPath)
	}
	return res
}

// Record returns the record tracking the HTML document id.
func (e *Engine) Record(id string) (*translation.Record, bool) {
	return e.index.LookupByHTML(id)
}

// Tracks reports whether id is a configured source or translation document.
func (e *Engine) Tracks(id string) bool {
	if _, ok := e.index.LookupByHTML(id); ok {
		return true
	}
	_, ok := e.index.LookupByJSON(id)
	return ok
}

// Companions returns the JSON paths of the indexed records.
func (e *Engine) Companions() []string {
	records := e.index.Records()
	res := make([]string, 0, len(records))
	for _, r := range records {
		res = append(res, r.JSONPath)
	}
	return res
}
