package main

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.yaml.in/yaml/v3"

	"github.com/koustreak/blobkit/internal/errs"
	"github.com/koustreak/blobkit/internal/objectstore"
)

// OutputFormat selects how command results are printed.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Printer renders command results to a writer.
type Printer struct {
	format OutputFormat
	w      io.Writer
}

// NewPrinter returns a Printer for format. Unknown formats are invalid input.
func NewPrinter(format string, w io.Writer) (*Printer, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(format)))
	switch f {
	case "":
		f = OutputText
	case OutputText, OutputJSON, OutputYAML:
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported output format %q (want text, json or yaml)", format))
	}
	return &Printer{format: f, w: w}, nil
}

// Keys prints a key listing, one key per line in text mode.
func (p *Printer) Keys(keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	return p.print(keys, func(w io.Writer) error {
		for _, k := range keys {
			if _, err := fmt.Fprintln(w, k); err != nil {
				return err
			}
		}
		return nil
	})
}

type pageView struct {
	Keys      []string `json:"keys" yaml:"keys"`
	NextToken string   `json:"next_token,omitempty" yaml:"next_token,omitempty"`
	Truncated bool     `json:"truncated" yaml:"truncated"`
}

// Page prints the keys of one listing page. In text mode the resume token
// follows the keys on its own line.
func (p *Printer) Page(page *objectstore.Page) error {
	view := pageView{Keys: page.Keys(), NextToken: page.NextToken, Truncated: page.Truncated}
	return p.print(view, func(w io.Writer) error {
		for _, k := range view.Keys {
			if _, err := fmt.Fprintln(w, k); err != nil {
				return err
			}
		}
		if view.Truncated {
			_, err := fmt.Fprintf(w, "# next token: %s\n", view.NextToken)
			return err
		}
		return nil
	})
}

// Object prints object metadata as aligned "field: value" lines in text mode.
func (p *Printer) Object(info *objectstore.ObjectInfo) error {
	return p.print(info, func(w io.Writer) error {
		rows := [][2]string{
			{"key", info.Key},
			{"size", fmt.Sprintf("%d", info.Size)},
			{"content_type", info.ContentType},
			{"etag", info.ETag},
		}
		if !info.LastModified.IsZero() {
			rows = append(rows, [2]string{"last_modified", info.LastModified.UTC().Format("2006-01-02T15:04:05Z")})
		}
		for _, r := range rows {
			if r[1] == "" {
				continue
			}
			if _, err := fmt.Fprintf(w, "%-15s%s\n", r[0]+":", r[1]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Result prints a small record. Text mode prints only the text line.
func (p *Printer) Result(text string, v interface{}) error {
	return p.print(v, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, text)
		return err
	})
}

func (p *Printer) print(v interface{}, text func(io.Writer) error) error {
	switch p.format {
	case OutputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(p.w)
	}
}
