// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

// Package specfmt renders parsed contract interfaces as human-readable
// text or JSON.
package specfmt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stellar/go/xdr"

	"github.com/solrane/sorokit/soroban"
)

// FormatText returns a human-readable text representation of the
// contract interface.
func FormatText(info *soroban.ContractInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Protocol: %d\n", info.Protocol)
	if info.PreRelease != 0 {
		fmt.Fprintf(&b, "Pre-release: %d\n", info.PreRelease)
	}

	spec := info.Spec
	if spec == nil {
		spec = soroban.NewContractSpec(nil)
	}

	if funcs := spec.Funcs(); len(funcs) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Functions (%d):\n", len(funcs))
		for _, fn := range funcs {
			fmt.Fprintf(&b, "  %s\n", formatFunction(fn))
		}
	}

	if structs := spec.Structs(); len(structs) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Structs (%d):\n", len(structs))
		for _, s := range structs {
			fmt.Fprintf(&b, "  %s\n", s.Name)
			for _, f := range s.Fields {
				fmt.Fprintf(&b, "    %s: %s\n", f.Name, FormatTypeDef(f.Type))
			}
		}
	}

	if enums := spec.Enums(); len(enums) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Enums (%d):\n", len(enums))
		for _, e := range enums {
			fmt.Fprintf(&b, "  %s\n", e.Name)
			for _, c := range e.Cases {
				fmt.Fprintf(&b, "    %s = %d\n", c.Name, c.Value)
			}
		}
	}

	if unions := spec.Unions(); len(unions) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Unions (%d):\n", len(unions))
		for _, u := range unions {
			fmt.Fprintf(&b, "  %s\n", u.Name)
			for _, c := range u.Cases {
				switch c.Kind {
				case xdr.ScSpecUdtUnionCaseV0KindScSpecUdtUnionCaseVoidV0:
					fmt.Fprintf(&b, "    %s\n", c.VoidCase.Name)
				case xdr.ScSpecUdtUnionCaseV0KindScSpecUdtUnionCaseTupleV0:
					types := make([]string, len(c.TupleCase.Type))
					for i, t := range c.TupleCase.Type {
						types[i] = FormatTypeDef(t)
					}
					fmt.Fprintf(&b, "    %s(%s)\n", c.TupleCase.Name, strings.Join(types, ", "))
				}
			}
		}
	}

	if errEnums := spec.ErrorEnums(); len(errEnums) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Error Enums (%d):\n", len(errEnums))
		for _, e := range errEnums {
			fmt.Fprintf(&b, "  %s\n", e.Name)
			for _, c := range e.Cases {
				fmt.Fprintf(&b, "    %s = %d\n", c.Name, c.Value)
			}
		}
	}

	if events := spec.Events(); len(events) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Events (%d):\n", len(events))
		for _, ev := range events {
			fmt.Fprintf(&b, "  %s\n", string(ev.Name))
			for _, p := range ev.Params {
				loc := "data"
				if p.Location == xdr.ScSpecEventParamLocationV0ScSpecEventParamLocationTopicList {
					loc = "topic"
				}
				fmt.Fprintf(&b, "    %s: %s (%s)\n", p.Name, FormatTypeDef(p.Type), loc)
			}
		}
	}

	if len(info.Meta) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Metadata (%d):\n", len(info.Meta))
		for _, m := range info.Meta {
			fmt.Fprintf(&b, "  %s = %s\n", m.Key, m.Value)
		}
	}

	if len(info.SupportedSEPs) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Supported SEPs: %s\n", strings.Join(info.SupportedSEPs, ", "))
	}

	return b.String()
}

// jsonInfo is the JSON-friendly representation of a contract interface.
type jsonInfo struct {
	Protocol      uint32         `json:"protocol"`
	PreRelease    uint32         `json:"pre_release,omitempty"`
	Functions     []jsonFunction `json:"functions,omitempty"`
	Structs       []jsonStruct   `json:"structs,omitempty"`
	Enums         []jsonEnum     `json:"enums,omitempty"`
	Unions        []jsonUnion    `json:"unions,omitempty"`
	ErrorEnums    []jsonEnum     `json:"error_enums,omitempty"`
	Events        []jsonEvent    `json:"events,omitempty"`
	Metadata      []jsonMetadata `json:"metadata,omitempty"`
	SupportedSEPs []string       `json:"supported_seps,omitempty"`
}

type jsonFunction struct {
	Name    string      `json:"name"`
	Inputs  []jsonField `json:"inputs,omitempty"`
	Outputs []string    `json:"outputs,omitempty"`
	Doc     string      `json:"doc,omitempty"`
}

type jsonStruct struct {
	Name   string      `json:"name"`
	Fields []jsonField `json:"fields,omitempty"`
	Doc    string      `json:"doc,omitempty"`
}

type jsonField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonEnum struct {
	Name  string         `json:"name"`
	Cases []jsonEnumCase `json:"cases,omitempty"`
	Doc   string         `json:"doc,omitempty"`
}

type jsonEnumCase struct {
	Name  string `json:"name"`
	Value uint32 `json:"value"`
}

type jsonUnion struct {
	Name  string          `json:"name"`
	Cases []jsonUnionCase `json:"cases,omitempty"`
	Doc   string          `json:"doc,omitempty"`
}

type jsonUnionCase struct {
	Name  string   `json:"name"`
	Types []string `json:"types,omitempty"`
}

type jsonEvent struct {
	Name   string           `json:"name"`
	Params []jsonEventParam `json:"params,omitempty"`
	Doc    string           `json:"doc,omitempty"`
}

type jsonEventParam struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Location string `json:"location"`
}

type jsonMetadata struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FormatJSON returns a JSON representation of the contract interface
// with resolved type names.
func FormatJSON(info *soroban.ContractInfo) (string, error) {
	ji := jsonInfo{
		Protocol:      info.Protocol,
		PreRelease:    info.PreRelease,
		SupportedSEPs: info.SupportedSEPs,
	}

	spec := info.Spec
	if spec == nil {
		spec = soroban.NewContractSpec(nil)
	}

	for _, fn := range spec.Funcs() {
		jf := jsonFunction{
			Name: string(fn.Name),
			Doc:  string(fn.Doc),
		}
		for _, inp := range fn.Inputs {
			jf.Inputs = append(jf.Inputs, jsonField{Name: string(inp.Name), Type: FormatTypeDef(inp.Type)})
		}
		for _, out := range fn.Outputs {
			jf.Outputs = append(jf.Outputs, FormatTypeDef(out))
		}
		ji.Functions = append(ji.Functions, jf)
	}

	for _, s := range spec.Structs() {
		jst := jsonStruct{Name: string(s.Name), Doc: string(s.Doc)}
		for _, f := range s.Fields {
			jst.Fields = append(jst.Fields, jsonField{Name: string(f.Name), Type: FormatTypeDef(f.Type)})
		}
		ji.Structs = append(ji.Structs, jst)
	}

	for _, e := range spec.Enums() {
		je := jsonEnum{Name: string(e.Name), Doc: string(e.Doc)}
		for _, c := range e.Cases {
			je.Cases = append(je.Cases, jsonEnumCase{Name: string(c.Name), Value: uint32(c.Value)})
		}
		ji.Enums = append(ji.Enums, je)
	}

	for _, u := range spec.Unions() {
		ju := jsonUnion{Name: string(u.Name), Doc: string(u.Doc)}
		for _, c := range u.Cases {
			switch c.Kind {
			case xdr.ScSpecUdtUnionCaseV0KindScSpecUdtUnionCaseVoidV0:
				ju.Cases = append(ju.Cases, jsonUnionCase{Name: string(c.VoidCase.Name)})
			case xdr.ScSpecUdtUnionCaseV0KindScSpecUdtUnionCaseTupleV0:
				types := make([]string, len(c.TupleCase.Type))
				for i, t := range c.TupleCase.Type {
					types[i] = FormatTypeDef(t)
				}
				ju.Cases = append(ju.Cases, jsonUnionCase{Name: string(c.TupleCase.Name), Types: types})
			}
		}
		ji.Unions = append(ji.Unions, ju)
	}

	for _, e := range spec.ErrorEnums() {
		je := jsonEnum{Name: string(e.Name), Doc: string(e.Doc)}
		for _, c := range e.Cases {
			je.Cases = append(je.Cases, jsonEnumCase{Name: string(c.Name), Value: uint32(c.Value)})
		}
		ji.ErrorEnums = append(ji.ErrorEnums, je)
	}

	for _, ev := range spec.Events() {
		jev := jsonEvent{Name: string(ev.Name), Doc: string(ev.Doc)}
		for _, p := range ev.Params {
			loc := "data"
			if p.Location == xdr.ScSpecEventParamLocationV0ScSpecEventParamLocationTopicList {
				loc = "topic"
			}
			jev.Params = append(jev.Params, jsonEventParam{
				Name:     string(p.Name),
				Type:     FormatTypeDef(p.Type),
				Location: loc,
			})
		}
		ji.Events = append(ji.Events, jev)
	}

	for _, m := range info.Meta {
		ji.Metadata = append(ji.Metadata, jsonMetadata{Key: m.Key, Value: m.Value})
	}

	out, err := json.MarshalIndent(ji, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return string(out), nil
}

func formatFunction(fn xdr.ScSpecFunctionV0) string {
	params := make([]string, len(fn.Inputs))
	for i, inp := range fn.Inputs {
		params[i] = fmt.Sprintf("%s: %s", inp.Name, FormatTypeDef(inp.Type))
	}

	ret := "Void"
	if len(fn.Outputs) > 0 {
		ret = FormatTypeDef(fn.Outputs[0])
	}

	return fmt.Sprintf("%s(%s) -> %s", string(fn.Name), strings.Join(params, ", "), ret)
}

// FormatTypeDef returns a human-readable string for an ScSpecTypeDef.
func FormatTypeDef(td xdr.ScSpecTypeDef) string {
	switch td.Type {
	case xdr.ScSpecTypeScSpecTypeVal:
		return "Val"
	case xdr.ScSpecTypeScSpecTypeBool:
		return "Bool"
	case xdr.ScSpecTypeScSpecTypeVoid:
		return "Void"
	case xdr.ScSpecTypeScSpecTypeError:
		return "Error"
	case xdr.ScSpecTypeScSpecTypeU32:
		return "U32"
	case xdr.ScSpecTypeScSpecTypeI32:
		return "I32"
	case xdr.ScSpecTypeScSpecTypeU64:
		return "U64"
	case xdr.ScSpecTypeScSpecTypeI64:
		return "I64"
	case xdr.ScSpecTypeScSpecTypeTimepoint:
		return "Timepoint"
	case xdr.ScSpecTypeScSpecTypeDuration:
		return "Duration"
	case xdr.ScSpecTypeScSpecTypeU128:
		return "U128"
	case xdr.ScSpecTypeScSpecTypeI128:
		return "I128"
	case xdr.ScSpecTypeScSpecTypeU256:
		return "U256"
	case xdr.ScSpecTypeScSpecTypeI256:
		return "I256"
	case xdr.ScSpecTypeScSpecTypeBytes:
		return "Bytes"
	case xdr.ScSpecTypeScSpecTypeString:
		return "String"
	case xdr.ScSpecTypeScSpecTypeSymbol:
		return "Symbol"
	case xdr.ScSpecTypeScSpecTypeAddress:
		return "Address"
	case xdr.ScSpecTypeScSpecTypeMuxedAddress:
		return "MuxedAddress"
	case xdr.ScSpecTypeScSpecTypeOption:
		if td.Option != nil {
			return fmt.Sprintf("Option<%s>", FormatTypeDef(td.Option.ValueType))
		}
		return "Option<?>"
	case xdr.ScSpecTypeScSpecTypeResult:
		if td.Result != nil {
			return fmt.Sprintf("Result<%s, %s>", FormatTypeDef(td.Result.OkType), FormatTypeDef(td.Result.ErrorType))
		}
		return "Result<?, ?>"
	case xdr.ScSpecTypeScSpecTypeVec:
		if td.Vec != nil {
			return fmt.Sprintf("Vec<%s>", FormatTypeDef(td.Vec.ElementType))
		}
		return "Vec<?>"
	case xdr.ScSpecTypeScSpecTypeMap:
		if td.Map != nil {
			return fmt.Sprintf("Map<%s, %s>", FormatTypeDef(td.Map.KeyType), FormatTypeDef(td.Map.ValueType))
		}
		return "Map<?, ?>"
	case xdr.ScSpecTypeScSpecTypeTuple:
		if td.Tuple != nil {
			types := make([]string, len(td.Tuple.ValueTypes))
			for i, t := range td.Tuple.ValueTypes {
				types[i] = FormatTypeDef(t)
			}
			return fmt.Sprintf("(%s)", strings.Join(types, ", "))
		}
		return "()"
	case xdr.ScSpecTypeScSpecTypeBytesN:
		if td.BytesN != nil {
			return fmt.Sprintf("BytesN(%d)", td.BytesN.N)
		}
		return "BytesN(?)"
	case xdr.ScSpecTypeScSpecTypeUdt:
		if td.Udt != nil {
			return td.Udt.Name
		}
		return "UDT(?)"
	default:
		return fmt.Sprintf("Unknown(%d)", td.Type)
	}
}
