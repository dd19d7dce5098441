// Package schema implements lshcore.Validators against embedded JSON
// Schema documents, so payload validation rules live in data, not in
// hand-rolled parsing code.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/nerrad567/gray-logic-lsh/internal/lshcore"
)

//go:embed conf.json state.json misc.json
var schemaFS embed.FS

// Set holds the compiled schemas for the three LSH payload shapes.
type Set struct {
	conf  *jsonschema.Schema
	state *jsonschema.Schema
	misc  *jsonschema.Schema
}

// Compile loads and compiles the embedded schema documents. It is cheap
// enough to call once at startup and reuse for the process lifetime.
func Compile() (*Set, error) {
	c := jsonschema.NewCompiler()

	conf, err := compileOne(c, "conf.json")
	if err != nil {
		return nil, err
	}
	state, err := compileOne(c, "state.json")
	if err != nil {
		return nil, err
	}
	misc, err := compileOne(c, "misc.json")
	if err != nil {
		return nil, err
	}

	return &Set{conf: conf, state: state, misc: misc}, nil
}

func compileOne(c *jsonschema.Compiler, name string) (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("schema: reading %s: %w", name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("schema: unmarshalling %s: %w", name, err)
	}
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("schema: adding %s: %w", name, err)
	}
	sch, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("schema: compiling %s: %w", name, err)
	}
	return sch, nil
}

// Validators returns the lshcore.Validators bound to this compiled set.
func (s *Set) Validators() lshcore.Validators {
	return lshcore.Validators{
		Conf:  s.validateConf,
		State: s.validateState,
		Misc:  s.validateMisc,
	}
}

func (s *Set) validateConf(payload []byte) (lshcore.ConfPayload, []string) {
	var p lshcore.ConfPayload
	doc, errs := s.decodeAndValidate(s.conf, payload)
	if len(errs) > 0 {
		return p, errs
	}
	if err := json.Unmarshal(doc, &p); err != nil {
		return p, []string{fmt.Sprintf("conf: decoding into payload: %v", err)}
	}
	return p, nil
}

func (s *Set) validateState(payload []byte) (lshcore.StatePayload, []string) {
	var p lshcore.StatePayload
	doc, errs := s.decodeAndValidate(s.state, payload)
	if len(errs) > 0 {
		return p, errs
	}
	if err := json.Unmarshal(doc, &p); err != nil {
		return p, []string{fmt.Sprintf("state: decoding into payload: %v", err)}
	}
	return p, nil
}

func (s *Set) validateMisc(payload []byte) (lshcore.MiscMessage, []string) {
	var m lshcore.MiscMessage
	doc, errs := s.decodeAndValidate(s.misc, payload)
	if len(errs) > 0 {
		return m, errs
	}

	var raw struct {
		P  string `json:"p"`
		BI string `json:"bi"`
		CT string `json:"ct"`
		C  bool   `json:"c"`
	}
	if err := json.Unmarshal(doc, &raw); err != nil {
		return m, []string{fmt.Sprintf("misc: decoding into payload: %v", err)}
	}

	m.Protocol = raw.P
	if raw.P == lshcore.ProtoNetworkClick {
		m.Click = &lshcore.NetworkClickPayload{
			ButtonID:  raw.BI,
			ClickType: raw.CT,
			Confirm:   raw.C,
		}
	}
	return m, nil
}

// decodeAndValidate parses payload as JSON, validates it against schema,
// and returns the raw bytes back for a second, typed decode — jsonschema
// validates against an any-typed document, so we keep the original bytes
// for the caller's own json.Unmarshal.
func (s *Set) decodeAndValidate(schema *jsonschema.Schema, payload []byte) ([]byte, []string) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return nil, []string{fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := schema.Validate(doc); err != nil {
		return nil, []string{err.Error()}
	}
	return payload, nil
}
