package config

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/walteh/html-translator/pkg/translation"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// FileNames are the workspace config files looked up by Find, in order.
var FileNames = []string{
	".html-translator.yaml",
	".html-translator.yml",
	".html-translator.toml",
	".html-translator.hcl",
	".html-translator.json",
}

var ErrUnknownFormat = errors.Base("unknown config file format")

// hclFile is the HCL schema:
//
//	escape_strings = ["[[", "]]"]
//	languages      = ["en", "fr"]
//
//	file {
//	  source = "index.html"
//	  texts  = "index.json"
//	}
type hclFile struct {
	EscapeStrings []string           `hcl:"escape_strings,optional"`
	Languages     []string           `hcl:"languages,optional"`
	Files         []translation.Pair `hcl:"file,block"`
}

// Find returns the first config file from FileNames present in root.
func Find(fs afero.Fs, root string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if ok, err := afero.Exists(fs, path); err == nil && ok {
			return path, true
		}
	}
	return "", false
}

// LoadFile reads path and decodes it into the generic object Parse expects.
// The format is picked from the extension.
func LoadFile(fs afero.Fs, path string) (map[string]any, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	raw := map[string]any{}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, errors.Errorf("parsing TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errors.Errorf("parsing JSON: %w", err)
		}
	case ".hcl":
		raw, err = decodeHCL(data, path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.WithDetails(ErrUnknownFormat, "path", path)
	}
	return raw, nil
}

func decodeHCL(data []byte, path string) (map[string]any, error) {
	parser := hclparse.NewParser()
	hclf, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg hclFile
	diags = gohcl.DecodeBody(hclf.Body, ctx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	files := make([]any, len(cfg.Files))
	for i, p := range cfg.Files {
		files[i] = map[string]any{"source": p.Source, "texts": p.Texts}
	}
	raw := map[string]any{KeyFiles: files}
	if cfg.EscapeStrings != nil {
		raw[KeyEscapeStrings] = toAny(cfg.EscapeStrings)
	}
	if cfg.Languages != nil {
		raw[KeyLanguages] = toAny(cfg.Languages)
	}
	return raw, nil
}

// Load finds and reads the workspace config file under root. A missing file
// is not an error: the returned object is nil and path is empty.
func Load(fs afero.Fs, root string) (raw map[string]any, path string, err error) {
	path, ok := Find(fs, root)
	if !ok {
		return nil, "", nil
	}
	raw, err = LoadFile(fs, path)
	if err != nil {
		return nil, path, err
	}
	return raw, path, nil
}
