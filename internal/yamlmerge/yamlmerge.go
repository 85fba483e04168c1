// Package yamlmerge post-processes the export-fixes YAML files the linters
// write: it adds documentation links to each diagnostic and unions several
// files into one.
//
// Documents are edited at the yaml.Node level so that fields lintmux does not
// know about survive the round trip unchanged.
package yamlmerge

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Field names of the export-fixes schema.
const (
	DiagnosticsKey = "Diagnostics"
	NameKey        = "DiagnosticName"
	LinkKey        = "Documentation link"
)

// CallTotals counts successful and failed post-processing calls. The zero
// value is the identity for Add.
type CallTotals struct {
	Success int
	Fail    int
}

// Add returns the pairwise sum of t and o.
func (t CallTotals) Add(o CallTotals) CallTotals {
	return CallTotals{Success: t.Success + o.Success, Fail: t.Fail + o.Fail}
}

// Total returns the number of counted calls.
func (t CallTotals) Total() int { return t.Success + t.Fail }

var (
	succeeded = CallTotals{Success: 1}
	failed    = CallTotals{Fail: 1}
)

// Entry is the part of one diagnostic lintmux reads back.
type Entry struct {
	Name string `yaml:"DiagnosticName"`
	Link string `yaml:"Documentation link"`
}

// Entries returns the diagnostics listed in the file at path, in order.
func Entries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc struct {
		Diagnostics []Entry `yaml:"Diagnostics"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc.Diagnostics, nil
}

// Annotate sets the "Documentation link" field of every diagnostic in the
// file at path to link(DiagnosticName) and rewrites the file. The returned
// totals count one success or one failure; the error explains a failure.
func Annotate(path string, link func(check string) string) (CallTotals, error) {
	doc, err := load(path)
	if err != nil {
		return failed, err
	}

	if seq := diagnostics(doc); seq != nil {
		for _, item := range seq.Content {
			if item.Kind != yaml.MappingNode {
				continue
			}
			name := ""
			if v := mapValue(item, NameKey); v != nil && v.Kind == yaml.ScalarNode {
				name = v.Value
			}
			url := ""
			if link != nil {
				url = link(name)
			}
			setMapValue(item, LinkKey, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: url})
		}
	}

	if err := dump(path, doc); err != nil {
		return failed, err
	}
	return succeeded, nil
}

// Union appends the diagnostics of src to the accumulator file acc. When acc
// does not exist src is copied verbatim. Union is not idempotent: unioning
// the same src twice duplicates its entries.
func Union(acc, src string) error {
	if filepath.Clean(acc) == filepath.Clean(src) {
		return nil
	}

	if _, err := os.Stat(acc); errors.Is(err, os.ErrNotExist) {
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("read %s: %w", src, err)
		}
		if err := os.MkdirAll(filepath.Dir(acc), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", acc, err)
		}
		return writeFile(acc, data)
	}

	accDoc, err := load(acc)
	if err != nil {
		return err
	}
	srcDoc, err := load(src)
	if err != nil {
		return err
	}

	srcSeq := diagnostics(srcDoc)
	if srcSeq == nil || len(srcSeq.Content) == 0 {
		return nil
	}

	accSeq := diagnostics(accDoc)
	if accSeq == nil {
		accSeq = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		setMapValue(accDoc.Content[0], DiagnosticsKey, accSeq)
	}
	accSeq.Style = 0
	accSeq.Content = append(accSeq.Content, srcSeq.Content...)

	return dump(acc, accDoc)
}

func load(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse %s: top level is not a mapping", path)
	}
	return &doc, nil
}

// diagnostics returns the Diagnostics sequence of doc, or nil.
func diagnostics(doc *yaml.Node) *yaml.Node {
	v := mapValue(doc.Content[0], DiagnosticsKey)
	if v == nil || v.Kind != yaml.SequenceNode {
		return nil
	}
	return v
}

func mapValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setMapValue(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value)
}

// dump serializes doc in the framing clang-tidy uses ("---" ... "...").
func dump(path string, doc *yaml.Node) error {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	buf.WriteString("...\n")
	return writeFile(path, buf.Bytes())
}

// writeFile replaces path through a temporary file in the same directory.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".lintmux-*.yaml")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
