// Package xmlutil writes and inspects the fixed-layout XML documents of a
// solution package.
package xmlutil

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
)

// Declaration is the XML declaration written at the top of every document.
const Declaration = `<?xml version="1.0" encoding="utf-8"?>`

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape replaces the five XML special characters with their entities and
// drops characters XML 1.0 cannot carry, such as most C0 controls.
func Escape(s string) string {
	return escaper.Replace(strings.Map(xmlChar, s))
}

func xmlChar(r rune) rune {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return r
	case r >= 0x20 && r <= 0xD7FF,
		r >= 0xE000 && r <= 0xFFFD,
		r >= 0x10000 && r <= 0x10FFFF:
		return r
	}
	return -1
}

// Attr is a single attribute written by Writer. Value is escaped on output.
type Attr struct {
	Name  string
	Value string
}

// A is shorthand for building an Attr.
func A(name, value string) Attr {
	return Attr{Name: name, Value: value}
}

// Writer emits indented XML in a fixed element order. Element and attribute
// names are written as given; text and attribute values are escaped.
type Writer struct {
	buf    strings.Builder
	indent string
	depth  int
}

// NewWriter returns a Writer indenting nested elements with indent.
func NewWriter(indent string) *Writer {
	return &Writer{indent: indent}
}

func (w *Writer) line(s string) {
	w.buf.WriteString(strings.Repeat(w.indent, w.depth))
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

func tag(name string, attrs []Attr) string {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range attrs {
		fmt.Fprintf(&b, ` %s="%s"`, a.Name, Escape(a.Value))
	}
	return b.String()
}

// Declaration writes the XML declaration.
func (w *Writer) Declaration() *Writer {
	w.line(Declaration)
	return w
}

// Open writes a start tag and indents what follows.
func (w *Writer) Open(name string, attrs ...Attr) *Writer {
	w.line("<" + tag(name, attrs) + ">")
	w.depth++
	return w
}

// Close writes the end tag of name and outdents.
func (w *Writer) Close(name string) *Writer {
	if w.depth > 0 {
		w.depth--
	}
	w.line("</" + name + ">")
	return w
}

// Elem writes an element holding escaped text.
func (w *Writer) Elem(name, text string, attrs ...Attr) *Writer {
	w.line("<" + tag(name, attrs) + ">" + Escape(text) + "</" + name + ">")
	return w
}

// Empty writes a self-closing element.
func (w *Writer) Empty(name string, attrs ...Attr) *Writer {
	w.line("<" + tag(name, attrs) + " />")
	return w
}

// Nil writes a self-closing element marked xsi:nil.
func (w *Writer) Nil(name string) *Writer {
	return w.Empty(name, A("xsi:nil", "true"))
}

// String returns the document written so far.
func (w *Writer) String() string {
	return w.buf.String()
}

// Bytes returns the document written so far.
func (w *Writer) Bytes() []byte {
	return []byte(w.buf.String())
}

// CheckWellFormed parses data completely and reports the first syntax error.
func CheckWellFormed(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, err.Error())
		}
	}
}

// ExtractElementValue returns the text content of the first element named
// elementName.
func ExtractElementValue(data []byte, elementName string) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, err.Error())
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == elementName {
			var content string
			if err := dec.DecodeElement(&content, &start); err != nil {
				return "", fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, err.Error())
			}
			return content, nil
		}
	}
	return "", fmt.Errorf("%w: element '%s' not found", errors.ErrInvalidArgument, elementName)
}

// ElementAttrs returns the attributes of every element named elementName, in
// document order.
func ElementAttrs(data []byte, elementName string) ([]map[string]string, error) {
	var out []map[string]string
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, err.Error())
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != elementName {
			continue
		}
		attrs := make(map[string]string, len(start.Attr))
		for _, a := range start.Attr {
			attrs[a.Name.Local] = a.Value
		}
		out = append(out, attrs)
	}
}

// CountElements returns how many elements named elementName appear in data.
func CountElements(data []byte, elementName string) (int, error) {
	attrs, err := ElementAttrs(data, elementName)
	return len(attrs), err
}
