// Command dynamoval converts between plain JSON and the DynamoDB
// attribute value wire encoding.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/kr/pretty"
	"github.com/zenlist/dynamoval"
)

var globalArgs struct {
	Item    bool `flag:"item,Treat the input as a whole item (a map of attribute values)"`
	Compact bool `flag:"compact,Emit compact JSON instead of indented"`
}

func main() {
	root := &command.C{
		Name:     "dynamoval",
		Usage:    "command args...",
		SetFlags: command.Flags(flax.MustBind, &globalArgs),
		Commands: []*command.C{
			{
				Name:  "encode",
				Usage: "encode [file]",
				Help: `Encode plain JSON as DynamoDB attribute values.

Reads a JSON document from the named file, or from stdin, and writes
its DynamoDB wire encoding: {"name": "x"} becomes
{"M": {"name": {"S": "x"}}}. Number text is carried through verbatim,
so values that exceed float64 precision survive unchanged.

With --item, the input must be a JSON object and the output is a map
of attribute values rather than a single wrapped value, matching the
item shape used by PutItem.`,
				Run: command.Adapt(runEncode),
			},
			{
				Name:  "decode",
				Usage: "decode [file]",
				Help: `Decode DynamoDB attribute values to plain JSON.

Reads a wire-encoded attribute value from the named file, or from
stdin, and writes the plain JSON it describes. Sets decode as arrays.

With --item, the input is a map of attribute values, as returned by
GetItem.`,
				Run: command.Adapt(runDecode),
			},
			{
				Name:  "dump",
				Usage: "dump [file]",
				Help: `Pretty-print a decoded attribute value as a Go value.

Like decode, but renders the natural Go shapes instead of JSON, which
distinguishes int64, uint64, and float64 numbers and shows binary
payloads as byte slices.`,
				Run: command.Adapt(runDump),
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}
	command.RunOrFail(root.NewEnv(nil), os.Args[1:])
}

func readInput(env *command.Env) ([]byte, error) {
	if len(env.Args) > 1 {
		return nil, env.Usagef("at most one input file")
	}
	if len(env.Args) == 1 {
		return os.ReadFile(env.Args[0])
	}
	return io.ReadAll(os.Stdin)
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	if !globalArgs.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func runEncode(env *command.Env) error {
	data, err := readInput(env)
	if err != nil {
		return err
	}
	av, err := encodeJSON(data)
	if err != nil {
		return fmt.Errorf("encoding input: %w", err)
	}
	if globalArgs.Item {
		if av.Kind() != dynamoval.KindMap {
			return fmt.Errorf("--item requires a JSON object input, got %s", av.Kind())
		}
		return writeJSON(av.MapValue())
	}
	return writeJSON(av)
}

// encodeJSON converts a plain JSON document to an attribute value.
// Numbers are kept as their source text rather than parsed through
// float64.
func encodeJSON(data []byte) (dynamoval.AttributeValue, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return dynamoval.AttributeValue{}, err
	}
	return jsonToAttribute(raw)
}

func jsonToAttribute(raw json.RawMessage) (dynamoval.AttributeValue, error) {
	if len(raw) == 0 {
		return dynamoval.NewNull(), nil
	}
	switch raw[0] {
	case 'n':
		return dynamoval.NewNull(), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return dynamoval.AttributeValue{}, err
		}
		return dynamoval.NewBool(b), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return dynamoval.AttributeValue{}, err
		}
		return dynamoval.NewString(s), nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return dynamoval.AttributeValue{}, err
		}
		m := make(map[string]dynamoval.AttributeValue, len(obj))
		for k, e := range obj {
			av, err := jsonToAttribute(e)
			if err != nil {
				return dynamoval.AttributeValue{}, err
			}
			m[k] = av
		}
		return dynamoval.NewMap(m), nil
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return dynamoval.AttributeValue{}, err
		}
		l := make([]dynamoval.AttributeValue, len(arr))
		for i, e := range arr {
			av, err := jsonToAttribute(e)
			if err != nil {
				return dynamoval.AttributeValue{}, err
			}
			l[i] = av
		}
		return dynamoval.NewList(l), nil
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return dynamoval.AttributeValue{}, err
		}
		return dynamoval.NewNumber(n.String()), nil
	}
}

func decodeInput(env *command.Env) (any, error) {
	data, err := readInput(env)
	if err != nil {
		return nil, err
	}
	var out any
	if globalArgs.Item {
		var item dynamoval.Item
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("decoding input: %w", err)
		}
		if err := dynamoval.UnmarshalItem(item, &out); err != nil {
			return nil, err
		}
	} else {
		var av dynamoval.AttributeValue
		if err := json.Unmarshal(data, &av); err != nil {
			return nil, fmt.Errorf("decoding input: %w", err)
		}
		if err := dynamoval.Unmarshal(av, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func runDecode(env *command.Env) error {
	out, err := decodeInput(env)
	if err != nil {
		return err
	}
	return writeJSON(out)
}

func runDump(env *command.Env) error {
	out, err := decodeInput(env)
	if err != nil {
		return err
	}
	_, err = fmt.Printf("%# v\n", pretty.Formatter(out))
	return err
}
