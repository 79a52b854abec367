// Package frontmatter reads and writes markdown documents that carry a YAML
// header between --- delimiters. Stored reports use it to keep their
// metadata (ID, timestamp, tallies) next to the rendered text.
package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const delim = "---\n"

// Split separates a document into its raw YAML header and body. The
// document must begin with "---\n" and the header ends at the next line
// consisting of "---".
func Split(data []byte) (header, body []byte, err error) {
	if !bytes.HasPrefix(data, []byte(delim)) {
		return nil, nil, fmt.Errorf("frontmatter: missing opening --- delimiter")
	}
	rest := data[len(delim):]
	var idx int
	if bytes.HasPrefix(rest, []byte(delim)) {
		idx = -1 // empty header
	} else if idx = bytes.Index(rest, []byte("\n---")); idx < 0 {
		return nil, nil, fmt.Errorf("frontmatter: missing closing --- delimiter")
	}
	header = rest[:idx+1]
	tail := rest[idx+len("\n---"):]
	if len(tail) > 0 && tail[0] == '\n' {
		tail = tail[1:]
	}
	return header, tail, nil
}

// Unmarshal decodes the header of data into meta and returns the body.
func Unmarshal(data []byte, meta any) (body []byte, err error) {
	header, body, err := Split(data)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(header, meta); err != nil {
		return nil, fmt.Errorf("frontmatter: decode header: %w", err)
	}
	return body, nil
}

// Marshal encodes meta as the header and appends body.
func Marshal(meta any, body string) ([]byte, error) {
	header, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: encode header: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(delim)
	buf.Write(header)
	buf.WriteString(delim)
	buf.WriteString(body)
	return buf.Bytes(), nil
}
