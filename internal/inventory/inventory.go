// Package inventory describes the native library surface for binding
// generators: the exported functions, their ordered parameters and the
// layout of every value type that crosses the boundary.
package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unsafe"

	"gopkg.in/yaml.v3"

	"github.com/okian/refxpp/internal/boundary"
	"github.com/okian/refxpp/internal/domain/model"
)

// LibraryName is the base name of the shared library.
const LibraryName = "refxpp"

// Field is one member of a value type.
type Field struct {
	Name   string  `json:"name" yaml:"name"`
	Type   string  `json:"type" yaml:"type"`
	Offset uintptr `json:"offset" yaml:"offset"`
}

// Type is a value type with a fixed layout.
type Type struct {
	Name   string  `json:"name" yaml:"name"`
	Size   uintptr `json:"size" yaml:"size"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Param is a function parameter.
type Param struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Doc  string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// Function is an exported entry point.
type Function struct {
	Name    string  `json:"name" yaml:"name"`
	Returns string  `json:"returns" yaml:"returns"`
	Params  []Param `json:"params" yaml:"params"`
}

// Status is a named return code.
type Status struct {
	Name  string `json:"name" yaml:"name"`
	Value int32  `json:"value" yaml:"value"`
}

// Inventory is the whole artifact.
type Inventory struct {
	Library   string     `json:"library" yaml:"library"`
	Types     []Type     `json:"types" yaml:"types"`
	Statuses  []Status   `json:"statuses" yaml:"statuses"`
	Functions []Function `json:"functions" yaml:"functions"`
}

var shared = []Param{
	{Name: "mode", Type: "u32", Doc: "0 osu, 1 taiko, 2 catch, 3 mania"},
	{Name: "mods", Type: "u32", Doc: "mods bitmask"},
	{Name: "max_combo", Type: "u32"},
	{Name: "accuracy", Type: "f64", Doc: "percent, 0-100"},
	{Name: "miss_count", Type: "u32"},
	{Name: "passed_objects", Type: "OptionU32", Doc: passedObjectsDoc},
}

var relaxTuning = []Param{
	{Name: "ac", Type: "u32", Doc: "relax aim section count"},
	{Name: "arc", Type: "f64", Doc: "relax AR adjustment"},
	{Name: "hdr", Type: "bool", Doc: "relax hidden rework"},
	{Name: "tw", Type: "u32", Doc: "relax tap window in ms"},
	{Name: "cs", Type: "bool", Doc: "relax combo scaling"},
}

var outputs = []Param{
	{Name: "out", Type: "CalculatePerformanceResult*"},
	{Name: "err_buf", Type: "char*", Doc: "optional caller owned message buffer"},
	{Name: "err_len", Type: "u32"},
}

// passedObjectsDoc notes the flag first layout, which is not interchangeable
// with payload first FFIOption<u32> bindings.
const passedObjectsDoc = "evaluate only the first N objects; has_value (u8) precedes value (u32 at offset 4), " +
	"so bindings generated for a payload first FFIOption<u32> must not be reused"

// Build returns the inventory of the native library.
func Build() Inventory {
	var (
		res model.Result
		opt boundary.OptionU32
	)

	path := []Param{{Name: "beatmap_path", Type: "const char*", Doc: "NUL terminated UTF-8 path"}}
	path = append(path, shared...)
	path = append(path, relaxTuning...)
	path = append(path, outputs...)

	data := []Param{
		{Name: "beatmap_bytes", Type: "const u8*"},
		{Name: "len", Type: "u32"},
	}
	data = append(data, shared...)
	data = append(data, outputs...)

	return Inventory{
		Library: LibraryName,
		Types: []Type{
			{
				Name: "CalculatePerformanceResult",
				Size: unsafe.Sizeof(res),
				Fields: []Field{
					{Name: "pp", Type: "f64", Offset: unsafe.Offsetof(res.PP)},
					{Name: "stars", Type: "f64", Offset: unsafe.Offsetof(res.Stars)},
				},
			},
			{
				Name: "OptionU32",
				Size: unsafe.Sizeof(opt),
				Fields: []Field{
					{Name: "has_value", Type: "u8", Offset: unsafe.Offsetof(opt.HasValue)},
					{Name: "value", Type: "u32", Offset: unsafe.Offsetof(opt.Value)},
				},
			},
		},
		Statuses: []Status{
			{Name: "OK", Value: int32(boundary.StatusOK)},
			{Name: "INVALID_INPUT", Value: int32(boundary.StatusInvalidInput)},
			{Name: "COMPUTATION", Value: int32(boundary.StatusComputation)},
		},
		Functions: []Function{
			{Name: "calculate_score", Returns: "i32", Params: path},
			{Name: "calculate_score_bytes", Returns: "i32", Params: data},
		},
	}
}

// WriteJSON renders inv as indented JSON.
func WriteJSON(w io.Writer, inv Inventory) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(inv); err != nil {
		return fmt.Errorf("encode inventory json: %w", err)
	}
	return nil
}

// WriteYAML renders inv as YAML.
func WriteYAML(w io.Writer, inv Inventory) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(inv); err != nil {
		return fmt.Errorf("encode inventory yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode inventory yaml: %w", err)
	}
	return nil
}

var cTypes = map[string]string{
	"u8":        "uint8_t",
	"u32":       "uint32_t",
	"i32":       "int32_t",
	"f64":       "double",
	"bool":      "bool",
	"const u8*": "const uint8_t*",
}

func cType(t string) string {
	if c, ok := cTypes[t]; ok {
		return c
	}
	return t
}

// WriteHeader renders inv as a C header.
func WriteHeader(w io.Writer, inv Inventory) error {
	var b strings.Builder
	guard := strings.ToUpper(inv.Library) + "_H"
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n#include <stdbool.h>\n#include <stdint.h>\n\n", guard, guard)
	for _, s := range inv.Statuses {
		fmt.Fprintf(&b, "#define %s_STATUS_%s %d\n", strings.ToUpper(inv.Library), s.Name, s.Value)
	}
	b.WriteString("\n")
	for _, t := range inv.Types {
		fmt.Fprintf(&b, "typedef struct {\n")
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "    %s %s; /* offset %d */\n", cType(f.Type), f.Name, f.Offset)
		}
		fmt.Fprintf(&b, "} %s; /* size %d */\n\n", t.Name, t.Size)
	}
	for _, fn := range inv.Functions {
		params := make([]string, 0, len(fn.Params))
		for _, p := range fn.Params {
			params = append(params, cType(p.Type)+" "+p.Name)
		}
		fmt.Fprintf(&b, "%s %s(%s);\n", cType(fn.Returns), fn.Name, strings.Join(params, ", "))
	}
	fmt.Fprintf(&b, "\n#endif /* %s */\n", guard)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write inventory header: %w", err)
	}
	return nil
}

// Format names an output format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatHeader Format = "header"
)

// ErrUnknownFormat is returned by Write for an unsupported format.
var ErrUnknownFormat = errors.New("unknown inventory format")

// Write renders inv in format f.
func Write(w io.Writer, inv Inventory, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, inv)
	case FormatYAML:
		return WriteYAML(w, inv)
	case FormatHeader:
		return WriteHeader(w, inv)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
