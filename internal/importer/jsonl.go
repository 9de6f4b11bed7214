// Package importer reads bulk user imports.
package importer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/iliyamo/customer-auth/internal/service"
)

// maxLine bounds a single JSONL record.
const maxLine = 1 << 20

// ReadJSONL decodes one service.NewUser per non-blank line of r.  Unknown
// keys are rejected so typos do not silently drop data.
func ReadJSONL(r io.Reader) ([]service.NewUser, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var out []service.NewUser
	for line := 1; sc.Scan(); line++ {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		var u service.NewUser
		if err := dec.Decode(&u); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if dec.More() {
			return nil, fmt.Errorf("line %d: more than one JSON value", line)
		}
		out = append(out, u)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return out, nil
}
