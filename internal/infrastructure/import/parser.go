package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Parser reads an uploaded CSV manifest. Files must be UTF-8; a leading
// BOM is tolerated because Excel writes one. The delimiter is sniffed from
// the header line, Romanian Excel exports separate with semicolons.
type Parser struct {
	reader  *csv.Reader
	headers []string
	columns map[string]int
	line    int
}

// Option configures a Parser
type Option func(*parserConfig)

type parserConfig struct {
	delimiter rune
}

// WithDelimiter forces a field delimiter instead of sniffing it
func WithDelimiter(d rune) Option {
	return func(c *parserConfig) {
		c.delimiter = d
	}
}

// NewParser wraps a reader in a manifest CSV parser. It fails on empty
// input and on content that is not valid UTF-8.
func NewParser(r io.Reader, opts ...Option) (*Parser, error) {
	var cfg parserConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	buf := bufio.NewReader(r)
	head, err := buf.Peek(4096)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = buf.Discard(3)
		head = head[3:]
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(head) {
		return nil, ErrInvalidEncoding
	}

	delimiter := cfg.delimiter
	if delimiter == 0 {
		delimiter = sniffDelimiter(head)
	}

	reader := csv.NewReader(buf)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	return &Parser{reader: reader, columns: make(map[string]int)}, nil
}

// sniffDelimiter picks the delimiter from the first line of the file
func sniffDelimiter(head []byte) rune {
	line := head
	if idx := bytes.IndexByte(head, '\n'); idx >= 0 {
		line = head[:idx]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// ParseHeader consumes the header row and records the column positions
func (p *Parser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("read manifest header: %w", err)
	}

	p.line = 1
	p.headers = make([]string, len(record))
	for i, name := range record {
		name = strings.TrimSpace(name)
		p.headers[i] = name
		p.columns[name] = i
	}
	if len(p.headers) == 0 {
		return ErrMissingHeader
	}
	return nil
}

// MissingColumns reports which of the required column names are absent
// from the parsed header.
func (p *Parser) MissingColumns(required ...string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := p.columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Row is one manifest line keyed by header name
type Row struct {
	Line   int
	fields map[string]string
}

// Get returns the trimmed cell value for a column, empty when absent
func (r *Row) Get(column string) string {
	return r.fields[column]
}

// IsEmpty reports whether every cell of the row is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.fields {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadAll reads the remaining data rows, dropping fully blank lines. Short
// records are padded with empty cells so optional trailing columns may be
// omitted.
func (p *Parser) ReadAll() ([]*Row, error) {
	var rows []*Row
	for {
		record, err := p.reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		p.line++
		if err != nil {
			return rows, fmt.Errorf("manifest line %d: %w", p.line, err)
		}

		row := &Row{Line: p.line, fields: make(map[string]string, len(p.headers))}
		for i, name := range p.headers {
			if i < len(record) {
				row.fields[name] = strings.TrimSpace(record[i])
			} else {
				row.fields[name] = ""
			}
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}
