// Package yamlflag provides a command line flag that accepts a YAML document.
package yamlflag

import (
	"encoding/json"
	"flag"
	"io"
	"os"
	"reflect"

	"github.com/ghodss/yaml"
)

// New creates a flag.Getter that decodes a YAML document into value.
//
// The document may be given inline, read from a file, or read from standard input:
//
//	--initcfg="queuesPerPort: 2"
//	--initcfg=@rxqpoll.yaml
//	--initcfg=@-
//
// value must be a pointer, otherwise New panics.
func New(value any) flag.Getter {
	if val := reflect.ValueOf(value); val.Kind() != reflect.Pointer {
		panic(val.Kind())
	}
	return &yamlFlag{value: value, stdin: os.Stdin}
}

type yamlFlag struct {
	value any
	stdin io.Reader
}

func (f *yamlFlag) Get() any {
	return f.value
}

func (f *yamlFlag) Set(s string) error {
	doc, e := f.read(s)
	if e != nil {
		return e
	}
	return yaml.Unmarshal(doc, f.value)
}

func (f *yamlFlag) read(s string) ([]byte, error) {
	switch {
	case s == "@-":
		return io.ReadAll(f.stdin)
	case len(s) > 1 && s[0] == '@':
		return os.ReadFile(s[1:])
	}
	return []byte(s), nil
}

// String returns the current value as JSON.
func (f *yamlFlag) String() string {
	j, _ := json.Marshal(f.value)
	return string(j)
}
