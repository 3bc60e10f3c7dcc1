package unfold

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// templateFile is the on-disk form of custom templates:
//
//	templates:
//	  - name: l-shape
//	    rows:
//	      - ["+Z", ".", "."]
//	      - ["-X", "-Y", "+X"]
//	      - [".", "-Z", "+Y"]
type templateFile struct {
	Templates []struct {
		Name string     `yaml:"name"`
		Rows [][]string `yaml:"rows"`
	} `yaml:"templates"`
}

// DecodeTemplates parses custom templates from YAML. Every template is
// validated; the first malformed one aborts decoding.
func DecodeTemplates(r io.Reader) ([]GridTemplate, error) {
	var tf templateFile
	if err := yaml.NewDecoder(r).Decode(&tf); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	out := make([]GridTemplate, 0, len(tf.Templates))
	for i, raw := range tf.Templates {
		if raw.Name == "" {
			return nil, fmt.Errorf("template %d: name is required", i)
		}
		t, err := ParseRows(raw.Name, raw.Rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// LoadTemplates reads a YAML template file and registers every template it
// contains. It returns the names that were registered.
func LoadTemplates(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template file: %w", err)
	}
	defer f.Close()

	templates, err := DecodeTemplates(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	names := make([]string, 0, len(templates))
	for _, t := range templates {
		if err := Register(t); err != nil {
			return names, err
		}
		names = append(names, t.Name)
	}
	return names, nil
}
