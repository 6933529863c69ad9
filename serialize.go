package gonest

import (
	"bytes"
	"context"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// AsJSON walks the tree and produces a mapping from declared attribute name
// to its dumped value, recursing into nested models and collections. Unset
// attributes appear as nil. Key order inside the returned map is undefined;
// use MarshalJSON/ToJSON for the declaration-ordered document.
func (m *Model) AsJSON(ctx context.Context) (map[string]any, error) {
	out := make(map[string]any, len(m.typ.attrs))
	for _, a := range m.typ.attrs {
		dv, err := a.dumpValue(ctx, m.values[a.Name])
		if err != nil {
			return nil, err
		}
		out[a.Name] = dv
	}
	return out, nil
}

// MarshalJSON renders the document with keys in declaration order. The bytes
// produced here are the exact persisted representation the host stores.
func (m *Model) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.encodeJSON(context.Background(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToJSON is the context-aware form of MarshalJSON.
func ToJSON(ctx context.Context, m *Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.encodeJSON(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Model) encodeJSON(ctx context.Context, buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, a := range m.typ.attrs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return toIssues(err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		v := m.values[a.Name]
		if a.Transform == nil {
			// recurse directly into nested values so every level keeps its
			// own declaration order
			switch cv := v.(type) {
			case *Model:
				if cv == nil {
					buf.WriteString("null")
				} else if err := cv.encodeJSON(ctx, buf); err != nil {
					return err
				}
				continue
			case []*Model:
				buf.WriteByte('[')
				for j, cm := range cv {
					if j > 0 {
						buf.WriteByte(',')
					}
					if cm == nil {
						buf.WriteString("null")
					} else if err := cm.encodeJSON(ctx, buf); err != nil {
						return err
					}
				}
				buf.WriteByte(']')
				continue
			}
		}
		dv, err := a.dumpValue(ctx, v)
		if err != nil {
			return err
		}
		b, err := json.Marshal(dv)
		if err != nil {
			return toIssues(err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return nil
}

// FromJSON constructs an instance of mt from a stored JSON document.
func FromJSON(ctx context.Context, mt *ModelType, data []byte) (*Model, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	return mt.New(ctx, raw)
}

// FromYAML constructs an instance of mt from a YAML document. Hosts that
// store documents as YAML get the same assignment semantics as FromJSON.
func FromYAML(ctx context.Context, mt *ModelType, data []byte) (*Model, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	return mt.New(ctx, raw)
}
