// Package config validates the html-translator configuration object and
// reads it from workspace config files.
package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/walteh/html-translator/pkg/placeholder"
	"github.com/walteh/html-translator/pkg/translation"
	"gitlab.com/tozd/go/errors"
)

const (
	KeyFiles         = "files"
	KeyEscapeStrings = "escape-strings"
	KeyLanguages     = "languages"
)

var (
	ErrFilesNotArray     = errors.Base("Files in configuration is not an array")
	ErrLanguagesNotArray = errors.Base("Languages in configuration must be an array of non-empty strings, rolling back to default en, it")
)

// Config is the validated configuration. Files only holds well-formed pairs.
type Config struct {
	Files      []translation.Pair
	Delimiters placeholder.Delimiters
	Languages  []string
}

// Default is the configuration used when nothing could be read.
func Default() *Config {
	return &Config{
		Delimiters: placeholder.Default(),
		Languages:  translation.DefaultMarkers,
	}
}

// Parse validates raw, a generic object as produced by decoding JSON, YAML or
// TOML. It always returns a usable Config: malformed entries are dropped and
// malformed options fall back to their defaults. The returned error, when
// non-nil, is a *multierror.Error holding one user-facing message per problem,
// file entries first and option problems last.
func Parse(raw any) (*Config, error) {
	cfg := Default()

	obj, _ := raw.(map[string]any)

	var result *multierror.Error

	files, ok := asList(obj[KeyFiles])
	if !ok {
		result = multierror.Append(result, ErrFilesNotArray)
	}
	for i, entry := range files {
		pair, err := parsePair(i, entry)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		cfg.Files = append(cfg.Files, pair)
	}

	if langs, present := obj[KeyLanguages]; present && langs != nil {
		markers, ok := asStrings(langs)
		if !ok || len(markers) == 0 {
			result = multierror.Append(result, ErrLanguagesNotArray)
		} else {
			cfg.Languages = markers
		}
	}

	if err := parseEscapes(cfg, obj[KeyEscapeStrings]); err != nil {
		result = multierror.Append(result, err)
	}

	return cfg, result.ErrorOrNil()
}

// Errors flattens an error returned by Parse into its individual problems.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.Errors
	}
	return []error{err}
}

// Messages is Errors as user-facing strings.
func Messages(err error) []string {
	errs := Errors(err)
	if errs == nil {
		return nil
	}
	res := make([]string, 0, len(errs))
	for _, e := range errs {
		res = append(res, e.Error())
	}
	return res
}

// IsOptionError reports whether err is about an option (delimiters,
// languages) rather than about the files list.
func IsOptionError(err error) bool {
	return errors.Is(err, placeholder.ErrInvalidShape) ||
		errors.Is(err, placeholder.ErrInnerChar) ||
		errors.Is(err, ErrLanguagesNotArray)
}

func parsePair(i int, entry any) (translation.Pair, error) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return translation.Pair{}, errors.Errorf("File #%d is not an object", i)
	}
	source, sok := obj["source"].(string)
	texts, tok := obj["texts"].(string)
	if !sok || !tok {
		return translation.Pair{}, errors.Errorf("Files pair #%d must contain string values for source and texts", i)
	}
	return translation.Pair{Source: source, Texts: texts}, nil
}

func parseEscapes(cfg *Config, raw any) error {
	if raw == nil {
		return nil
	}
	list, ok := asStrings(raw)
	if !ok || len(list) != 2 {
		return placeholder.ErrInvalidShape
	}
	d := placeholder.Delimiters{Open: list[0], Close: list[1]}
	if err := d.Validate(); err != nil {
		return err
	}
	cfg.Delimiters = d
	return nil
}

// asList accepts both []any and the []map[string]any TOML decodes arrays of
// tables into.
func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []map[string]any:
		res := make([]any, len(t))
		for i, m := range t {
			res[i] = m
		}
		return res, true
	}
	return nil, false
}

func asStrings(v any) ([]string, bool) {
	if s, ok := v.([]string); ok {
		v = toAny(s)
	}
	list, ok := asList(v)
	if !ok {
		return nil, false
	}
	res := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok || s == "" {
			return nil, false
		}
		res = append(res, s)
	}
	return res, true
}

func toAny(s []string) []any {
	res := make([]any, len(s))
	for i, v := range s {
		res[i] = v
	}
	return res
}

func (c *Config) String() string {
	return fmt.Sprintf("files=%d delimiters=%q languages=%v", len(c.Files), c.Delimiters.String(), c.Languages)
}
