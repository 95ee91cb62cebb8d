// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package soroban

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"
	"strconv"

	"github.com/stellar/go/xdr"
)

// ContractSpec is a read-only view over a contract's ordered specification
// entries. It resolves functions and user-defined types by name and drives
// the conversion of native values into contract values.
type ContractSpec struct {
	entries []xdr.ScSpecEntry
}

// NewContractSpec wraps a decoded entry list. The slice is copied; the spec
// never mutates after construction.
func NewContractSpec(entries []xdr.ScSpecEntry) *ContractSpec {
	copied := make([]xdr.ScSpecEntry, len(entries))
	copy(copied, entries)
	return &ContractSpec{entries: copied}
}

// Entries returns a copy of the spec entries in declaration order.
func (s *ContractSpec) Entries() []xdr.ScSpecEntry {
	out := make([]xdr.ScSpecEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Funcs returns the declared functions in declaration order.
func (s *ContractSpec) Funcs() []xdr.ScSpecFunctionV0 {
	var out []xdr.ScSpecFunctionV0
	for _, entry := range s.entries {
		if entry.Kind == xdr.ScSpecEntryKindScSpecEntryFunctionV0 {
			out = append(out, *entry.FunctionV0)
		}
	}
	return out
}

// Structs returns the declared struct types in declaration order.
func (s *ContractSpec) Structs() []xdr.ScSpecUdtStructV0 {
	var out []xdr.ScSpecUdtStructV0
	for _, entry := range s.entries {
		if entry.Kind == xdr.ScSpecEntryKindScSpecEntryUdtStructV0 {
			out = append(out, *entry.UdtStructV0)
		}
	}
	return out
}

// Unions returns the declared union types in declaration order.
func (s *ContractSpec) Unions() []xdr.ScSpecUdtUnionV0 {
	var out []xdr.ScSpecUdtUnionV0
	for _, entry := range s.entries {
		if entry.Kind == xdr.ScSpecEntryKindScSpecEntryUdtUnionV0 {
			out = append(out, *entry.UdtUnionV0)
		}
	}
	return out
}

// Enums returns the declared enum types in declaration order.
func (s *ContractSpec) Enums() []xdr.ScSpecUdtEnumV0 {
	var out []xdr.ScSpecUdtEnumV0
	for _, entry := range s.entries {
		if entry.Kind == xdr.ScSpecEntryKindScSpecEntryUdtEnumV0 {
			out = append(out, *entry.UdtEnumV0)
		}
	}
	return out
}

// ErrorEnums returns the declared error enum types in declaration order.
func (s *ContractSpec) ErrorEnums() []xdr.ScSpecUdtErrorEnumV0 {
	var out []xdr.ScSpecUdtErrorEnumV0
	for _, entry := range s.entries {
		if entry.Kind == xdr.ScSpecEntryKindScSpecEntryUdtErrorEnumV0 {
			out = append(out, *entry.UdtErrorEnumV0)
		}
	}
	return out
}

// Events returns the declared events in declaration order.
func (s *ContractSpec) Events() []xdr.ScSpecEventV0 {
	var out []xdr.ScSpecEventV0
	for _, entry := range s.entries {
		if entry.Kind == xdr.ScSpecEntryKindScSpecEntryEventV0 {
			out = append(out, *entry.EventV0)
		}
	}
	return out
}

func entryName(entry xdr.ScSpecEntry) string {
	switch entry.Kind {
	case xdr.ScSpecEntryKindScSpecEntryFunctionV0:
		return string(entry.FunctionV0.Name)
	case xdr.ScSpecEntryKindScSpecEntryUdtStructV0:
		return string(entry.UdtStructV0.Name)
	case xdr.ScSpecEntryKindScSpecEntryUdtUnionV0:
		return string(entry.UdtUnionV0.Name)
	case xdr.ScSpecEntryKindScSpecEntryUdtEnumV0:
		return string(entry.UdtEnumV0.Name)
	case xdr.ScSpecEntryKindScSpecEntryUdtErrorEnumV0:
		return string(entry.UdtErrorEnumV0.Name)
	case xdr.ScSpecEntryKindScSpecEntryEventV0:
		return string(entry.EventV0.Name)
	default:
		return ""
	}
}

// FindEntry resolves a name against every entry kind.
func (s *ContractSpec) FindEntry(name string) (xdr.ScSpecEntry, error) {
	for _, entry := range s.entries {
		if entryName(entry) == name {
			return entry, nil
		}
	}
	return xdr.ScSpecEntry{}, &EntryNotFoundError{Name: name}
}

// GetFunc resolves a declared function by name.
func (s *ContractSpec) GetFunc(name string) (xdr.ScSpecFunctionV0, error) {
	for _, entry := range s.entries {
		if entry.Kind == xdr.ScSpecEntryKindScSpecEntryFunctionV0 && string(entry.FunctionV0.Name) == name {
			return *entry.FunctionV0, nil
		}
	}
	return xdr.ScSpecFunctionV0{}, &FunctionNotFoundError{Name: name}
}

// FuncArgsToXdrSCValues resolves a function by name and converts the named
// arguments into contract values following the declared parameter order.
func (s *ContractSpec) FuncArgsToXdrSCValues(name string, args map[string]Native) ([]xdr.ScVal, error) {
	fn, err := s.GetFunc(name)
	if err != nil {
		return nil, err
	}

	values := make([]xdr.ScVal, 0, len(fn.Inputs))
	for _, input := range fn.Inputs {
		arg, ok := args[string(input.Name)]
		if !ok {
			return nil, &ArgumentNotFoundError{Name: string(input.Name)}
		}
		val, err := s.NativeToXdrSCVal(arg, input.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", input.Name, err)
		}
		values = append(values, val)
	}
	return values, nil
}

// NativeToXdrSCVal converts a native value into the contract value demanded
// by the declared type. A pre-encoded contract value wrapped with FromScVal
// passes through unchanged.
func (s *ContractSpec) NativeToXdrSCVal(val Native, ty xdr.ScSpecTypeDef) (xdr.ScVal, error) {
	if val.kind == KindScVal {
		return *val.scVal, nil
	}

	switch ty.Type {
	case xdr.ScSpecTypeScSpecTypeVal:
		if val.kind == KindVoid {
			return scVoid(), nil
		}
		return xdr.ScVal{}, &InvalidTypeError{Expected: "val (pre-encoded contract value)", Value: val.String()}

	case xdr.ScSpecTypeScSpecTypeBool:
		if val.kind != KindBool {
			return xdr.ScVal{}, &InvalidTypeError{Expected: "bool", Value: val.String()}
		}
		b := val.boolVal
		return xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b}, nil

	case xdr.ScSpecTypeScSpecTypeVoid:
		if val.kind != KindVoid {
			return xdr.ScVal{}, &InvalidTypeError{Expected: "void", Value: val.String()}
		}
		return scVoid(), nil

	case xdr.ScSpecTypeScSpecTypeError:
		return xdr.ScVal{}, &ConversionFailedError{Type: "error", Reason: "error values must be pre-encoded"}

	case xdr.ScSpecTypeScSpecTypeU32:
		v, err := intInRange(val, 0, 1<<32-1, "u32")
		if err != nil {
			return xdr.ScVal{}, err
		}
		u := xdr.Uint32(v)
		return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}, nil

	case xdr.ScSpecTypeScSpecTypeI32:
		v, err := intInRange(val, -(1 << 31), 1<<31-1, "i32")
		if err != nil {
			return xdr.ScVal{}, err
		}
		i := xdr.Int32(v)
		return xdr.ScVal{Type: xdr.ScValTypeScvI32, I32: &i}, nil

	case xdr.ScSpecTypeScSpecTypeU64:
		v, err := uintValue(val, "u64")
		if err != nil {
			return xdr.ScVal{}, err
		}
		u := xdr.Uint64(v)
		return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &u}, nil

	case xdr.ScSpecTypeScSpecTypeI64:
		v, err := int64Value(val, "i64")
		if err != nil {
			return xdr.ScVal{}, err
		}
		i := xdr.Int64(v)
		return xdr.ScVal{Type: xdr.ScValTypeScvI64, I64: &i}, nil

	case xdr.ScSpecTypeScSpecTypeTimepoint:
		v, err := uintValue(val, "timepoint")
		if err != nil {
			return xdr.ScVal{}, err
		}
		tp := xdr.TimePoint(v)
		return xdr.ScVal{Type: xdr.ScValTypeScvTimepoint, Timepoint: &tp}, nil

	case xdr.ScSpecTypeScSpecTypeDuration:
		v, err := uintValue(val, "duration")
		if err != nil {
			return xdr.ScVal{}, err
		}
		d := xdr.Duration(v)
		return xdr.ScVal{Type: xdr.ScValTypeScvDuration, Duration: &d}, nil

	case xdr.ScSpecTypeScSpecTypeU128:
		return u128ToScVal(val)

	case xdr.ScSpecTypeScSpecTypeI128:
		return i128ToScVal(val)

	case xdr.ScSpecTypeScSpecTypeU256:
		return u256ToScVal(val)

	case xdr.ScSpecTypeScSpecTypeI256:
		return i256ToScVal(val)

	case xdr.ScSpecTypeScSpecTypeBytes:
		data, err := bytesValue(val, "bytes")
		if err != nil {
			return xdr.ScVal{}, err
		}
		b := xdr.ScBytes(data)
		return xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &b}, nil

	case xdr.ScSpecTypeScSpecTypeBytesN:
		data, err := bytesValue(val, fmt.Sprintf("bytesN(%d)", ty.BytesN.N))
		if err != nil {
			return xdr.ScVal{}, err
		}
		if uint32(len(data)) != uint32(ty.BytesN.N) {
			return xdr.ScVal{}, &InvalidTypeError{
				Expected: fmt.Sprintf("bytesN(%d)", ty.BytesN.N),
				Value:    fmt.Sprintf("bytes(len %d)", len(data)),
			}
		}
		b := xdr.ScBytes(data)
		return xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &b}, nil

	case xdr.ScSpecTypeScSpecTypeString:
		if val.kind != KindString {
			return xdr.ScVal{}, &InvalidTypeError{Expected: "string", Value: val.String()}
		}
		str := xdr.ScString(val.strVal)
		return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &str}, nil

	case xdr.ScSpecTypeScSpecTypeSymbol:
		if val.kind != KindString {
			return xdr.ScVal{}, &InvalidTypeError{Expected: "symbol", Value: val.String()}
		}
		sym := xdr.ScSymbol(val.strVal)
		return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}, nil

	case xdr.ScSpecTypeScSpecTypeAddress:
		return addressToScVal(val, false)

	case xdr.ScSpecTypeScSpecTypeMuxedAddress:
		return addressToScVal(val, true)

	case xdr.ScSpecTypeScSpecTypeOption:
		if val.kind == KindVoid {
			return scVoid(), nil
		}
		return s.NativeToXdrSCVal(val, ty.Option.ValueType)

	case xdr.ScSpecTypeScSpecTypeResult:
		return xdr.ScVal{}, &ConversionFailedError{Type: "result", Reason: "result conversion is not implemented"}

	case xdr.ScSpecTypeScSpecTypeVec:
		if val.kind != KindVec {
			return xdr.ScVal{}, &InvalidTypeError{Expected: "vec", Value: val.String()}
		}
		items := make([]xdr.ScVal, 0, len(val.vecVal))
		for i, item := range val.vecVal {
			converted, err := s.NativeToXdrSCVal(item, ty.Vec.ElementType)
			if err != nil {
				return xdr.ScVal{}, fmt.Errorf("vec element %d: %w", i, err)
			}
			items = append(items, converted)
		}
		return scVec(items), nil

	case xdr.ScSpecTypeScSpecTypeMap:
		if val.kind != KindMap {
			return xdr.ScVal{}, &InvalidTypeError{Expected: "map", Value: val.String()}
		}
		entries := make([]xdr.ScMapEntry, 0, len(val.mapVal))
		for i, entry := range val.mapVal {
			key, err := s.NativeToXdrSCVal(entry.Key, ty.Map.KeyType)
			if err != nil {
				return xdr.ScVal{}, fmt.Errorf("map key %d: %w", i, err)
			}
			value, err := s.NativeToXdrSCVal(entry.Value, ty.Map.ValueType)
			if err != nil {
				return xdr.ScVal{}, fmt.Errorf("map value %d: %w", i, err)
			}
			entries = append(entries, xdr.ScMapEntry{Key: key, Val: value})
		}
		return scMap(entries), nil

	case xdr.ScSpecTypeScSpecTypeTuple:
		if val.kind != KindVec {
			return xdr.ScVal{}, &InvalidTypeError{Expected: "tuple", Value: val.String()}
		}
		declared := ty.Tuple.ValueTypes
		if len(val.vecVal) != len(declared) {
			return xdr.ScVal{}, &InvalidTypeError{
				Expected: fmt.Sprintf("tuple of %d values", len(declared)),
				Value:    val.String(),
			}
		}
		items := make([]xdr.ScVal, 0, len(declared))
		for i, item := range val.vecVal {
			converted, err := s.NativeToXdrSCVal(item, declared[i])
			if err != nil {
				return xdr.ScVal{}, fmt.Errorf("tuple element %d: %w", i, err)
			}
			items = append(items, converted)
		}
		return scVec(items), nil

	case xdr.ScSpecTypeScSpecTypeUdt:
		return s.udtToScVal(ty.Udt.Name, val)

	default:
		return xdr.ScVal{}, &ConversionFailedError{
			Type:   fmt.Sprintf("type %d", ty.Type),
			Reason: "unsupported declared type",
		}
	}
}

func (s *ContractSpec) udtToScVal(name string, val Native) (xdr.ScVal, error) {
	entry, err := s.FindEntry(name)
	if err != nil {
		return xdr.ScVal{}, err
	}

	switch entry.Kind {
	case xdr.ScSpecEntryKindScSpecEntryUdtStructV0:
		return s.structToScVal(entry.UdtStructV0, val)
	case xdr.ScSpecEntryKindScSpecEntryUdtUnionV0:
		return s.unionToScVal(entry.UdtUnionV0, val)
	case xdr.ScSpecEntryKindScSpecEntryUdtEnumV0:
		return enumToScVal(entry.UdtEnumV0, val)
	case xdr.ScSpecEntryKindScSpecEntryUdtErrorEnumV0:
		return xdr.ScVal{}, &ConversionFailedError{Type: name, Reason: "error enums cannot be passed as values"}
	default:
		return xdr.ScVal{}, &ConversionFailedError{Type: name, Reason: "entry is not a value type"}
	}
}

// structToScVal encodes a struct value. Structs whose field names are all
// non-negative integers are tuple structs and encode as a vector ordered by
// that integer; everything else encodes as a symbol-keyed map in declaration
// order.
func (s *ContractSpec) structToScVal(st *xdr.ScSpecUdtStructV0, val Native) (xdr.ScVal, error) {
	if val.kind != KindMap {
		return xdr.ScVal{}, &InvalidTypeError{
			Expected: fmt.Sprintf("field map for struct %s", st.Name),
			Value:    val.String(),
		}
	}

	fields, err := namedEntries(val, string(st.Name))
	if err != nil {
		return xdr.ScVal{}, err
	}

	numeric := true
	for _, f := range st.Fields {
		if _, convErr := strconv.ParseUint(string(f.Name), 10, 32); convErr != nil {
			numeric = false
			break
		}
	}

	if numeric {
		ordered := make([]xdr.ScSpecUdtStructFieldV0, len(st.Fields))
		copy(ordered, st.Fields)
		sort.Slice(ordered, func(i, j int) bool {
			a, _ := strconv.ParseUint(string(ordered[i].Name), 10, 32)
			b, _ := strconv.ParseUint(string(ordered[j].Name), 10, 32)
			return a < b
		})

		items := make([]xdr.ScVal, 0, len(ordered))
		for _, f := range ordered {
			arg, ok := fields[string(f.Name)]
			if !ok {
				return xdr.ScVal{}, &ArgumentNotFoundError{Name: string(f.Name)}
			}
			converted, err := s.NativeToXdrSCVal(arg, f.Type)
			if err != nil {
				return xdr.ScVal{}, fmt.Errorf("struct %s field %s: %w", st.Name, f.Name, err)
			}
			items = append(items, converted)
		}
		return scVec(items), nil
	}

	entries := make([]xdr.ScMapEntry, 0, len(st.Fields))
	for _, f := range st.Fields {
		arg, ok := fields[string(f.Name)]
		if !ok {
			return xdr.ScVal{}, &ArgumentNotFoundError{Name: string(f.Name)}
		}
		converted, err := s.NativeToXdrSCVal(arg, f.Type)
		if err != nil {
			return xdr.ScVal{}, fmt.Errorf("struct %s field %s: %w", st.Name, f.Name, err)
		}
		sym := xdr.ScSymbol(f.Name)
		entries = append(entries, xdr.ScMapEntry{
			Key: xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym},
			Val: converted,
		})
	}
	return scMap(entries), nil
}

// unionToScVal encodes a union case as a vector holding the case symbol
// followed by the case's positional values.
func (s *ContractSpec) unionToScVal(un *xdr.ScSpecUdtUnionV0, val Native) (xdr.ScVal, error) {
	caseName, values, err := unionValue(val, string(un.Name))
	if err != nil {
		return xdr.ScVal{}, err
	}

	for _, c := range un.Cases {
		switch c.Kind {
		case xdr.ScSpecUdtUnionCaseV0KindScSpecUdtUnionCaseVoidV0:
			if string(c.VoidCase.Name) != caseName {
				continue
			}
			if len(values) != 0 {
				return xdr.ScVal{}, &InvalidTypeError{
					Expected: fmt.Sprintf("no values for void case %s", caseName),
					Value:    fmt.Sprintf("%d values", len(values)),
				}
			}
			return scVec([]xdr.ScVal{symbolVal(caseName)}), nil

		case xdr.ScSpecUdtUnionCaseV0KindScSpecUdtUnionCaseTupleV0:
			if string(c.TupleCase.Name) != caseName {
				continue
			}
			declared := c.TupleCase.Type
			if len(values) != len(declared) {
				return xdr.ScVal{}, &InvalidTypeError{
					Expected: fmt.Sprintf("%d values for case %s", len(declared), caseName),
					Value:    fmt.Sprintf("%d values", len(values)),
				}
			}
			items := make([]xdr.ScVal, 0, len(declared)+1)
			items = append(items, symbolVal(caseName))
			for i, v := range values {
				converted, err := s.NativeToXdrSCVal(v, declared[i])
				if err != nil {
					return xdr.ScVal{}, fmt.Errorf("union %s case %s value %d: %w", un.Name, caseName, i, err)
				}
				items = append(items, converted)
			}
			return scVec(items), nil
		}
	}

	return xdr.ScVal{}, &InvalidEnumValueError{Enum: string(un.Name), Value: caseName}
}

func enumToScVal(en *xdr.ScSpecUdtEnumV0, val Native) (xdr.ScVal, error) {
	switch val.kind {
	case KindInt, KindUint, KindBigInt:
		v, err := intInRange(val, 0, 1<<32-1, "u32")
		if err != nil {
			return xdr.ScVal{}, err
		}
		for _, c := range en.Cases {
			if uint64(c.Value) == uint64(v) {
				u := xdr.Uint32(c.Value)
				return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}, nil
			}
		}
		return xdr.ScVal{}, &InvalidEnumValueError{Enum: string(en.Name), Value: strconv.FormatInt(v, 10)}

	case KindString:
		for _, c := range en.Cases {
			if string(c.Name) == val.strVal {
				u := xdr.Uint32(c.Value)
				return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}, nil
			}
		}
		return xdr.ScVal{}, &InvalidEnumValueError{Enum: string(en.Name), Value: val.strVal}

	default:
		return xdr.ScVal{}, &InvalidTypeError{
			Expected: fmt.Sprintf("case name or number for enum %s", en.Name),
			Value:    val.String(),
		}
	}
}

// unionValue extracts the case name and positional values from the accepted
// union shapes: a Union value, a bare case name, or a map with "case" and
// optional "values" entries as produced by the JSON boundary.
func unionValue(val Native, unionName string) (string, []Native, error) {
	switch val.kind {
	case KindUnion:
		return val.strVal, val.vecVal, nil
	case KindString:
		return val.strVal, nil, nil
	case KindMap:
		var caseName string
		var values []Native
		var haveCase bool
		for _, entry := range val.mapVal {
			if entry.Key.kind != KindString {
				continue
			}
			switch entry.Key.strVal {
			case "case":
				if entry.Value.kind == KindString {
					caseName = entry.Value.strVal
					haveCase = true
				}
			case "values":
				if entry.Value.kind == KindVec {
					values = entry.Value.vecVal
				}
			}
		}
		if !haveCase {
			return "", nil, &InvalidTypeError{
				Expected: fmt.Sprintf("union case for %s", unionName),
				Value:    val.String(),
			}
		}
		return caseName, values, nil
	default:
		return "", nil, &InvalidTypeError{
			Expected: fmt.Sprintf("union case for %s", unionName),
			Value:    val.String(),
		}
	}
}

// namedEntries flattens a map-shaped value into a string-keyed lookup.
func namedEntries(val Native, typeName string) (map[string]Native, error) {
	out := make(map[string]Native, len(val.mapVal))
	for _, entry := range val.mapVal {
		if entry.Key.kind != KindString {
			return nil, &InvalidTypeError{
				Expected: fmt.Sprintf("string field names for %s", typeName),
				Value:    entry.Key.String(),
			}
		}
		out[entry.Key.strVal] = entry.Value
	}
	return out, nil
}

func intInRange(val Native, min, max int64, expected string) (int64, error) {
	b, ok := val.bigIntValue()
	if !ok {
		return 0, &InvalidTypeError{Expected: expected, Value: val.String()}
	}
	if !b.IsInt64() {
		return 0, &InvalidTypeError{Expected: expected, Value: val.String()}
	}
	v := b.Int64()
	if v < min || v > max {
		return 0, &InvalidTypeError{Expected: expected, Value: val.String()}
	}
	return v, nil
}

func uintValue(val Native, expected string) (uint64, error) {
	b, ok := val.bigIntValue()
	if !ok || b.Sign() < 0 || !b.IsUint64() {
		return 0, &InvalidTypeError{Expected: expected, Value: val.String()}
	}
	return b.Uint64(), nil
}

func int64Value(val Native, expected string) (int64, error) {
	b, ok := val.bigIntValue()
	if !ok || !b.IsInt64() {
		return 0, &InvalidTypeError{Expected: expected, Value: val.String()}
	}
	return b.Int64(), nil
}

func bytesValue(val Native, expected string) ([]byte, error) {
	switch val.kind {
	case KindBytes:
		return val.bytesVal, nil
	case KindString:
		data, err := hex.DecodeString(val.strVal)
		if err != nil {
			return nil, &InvalidTypeError{Expected: expected + " as hex", Value: val.String()}
		}
		return data, nil
	case KindVec:
		data := make([]byte, 0, len(val.vecVal))
		for _, item := range val.vecVal {
			v, err := intInRange(item, 0, 255, "byte")
			if err != nil {
				return nil, &InvalidTypeError{Expected: expected, Value: val.String()}
			}
			data = append(data, byte(v))
		}
		return data, nil
	default:
		return nil, &InvalidTypeError{Expected: expected, Value: val.String()}
	}
}

func addressToScVal(val Native, allowMuxed bool) (xdr.ScVal, error) {
	expected := "address"
	if allowMuxed {
		expected = "muxed address"
	}

	switch val.kind {
	case KindAddress:
		return val.addrVal.ToSCVal()
	case KindString:
		if val.strVal == "" {
			return xdr.ScVal{}, &InvalidTypeError{Expected: expected, Value: val.String()}
		}
		switch {
		case val.strVal[0] == 'G' || val.strVal[0] == 'C':
			addr, err := AddressFromString(val.strVal)
			if err != nil {
				return xdr.ScVal{}, err
			}
			return addr.ToSCVal()
		case allowMuxed && val.strVal[0] == 'M':
			addr, err := MuxedAccountAddress(val.strVal)
			if err != nil {
				return xdr.ScVal{}, err
			}
			return addr.ToSCVal()
		default:
			return xdr.ScVal{}, &InvalidTypeError{Expected: expected, Value: val.String()}
		}
	default:
		return xdr.ScVal{}, &InvalidTypeError{Expected: expected, Value: val.String()}
	}
}

var (
	bigMask64 = new(big.Int).SetUint64(^uint64(0))
	bigOne    = big.NewInt(1)

	u128Max = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 128), bigOne)
	i128Min = new(big.Int).Neg(new(big.Int).Lsh(bigOne, 127))
	i128Max = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 127), bigOne)
	u256Max = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 256), bigOne)
	i256Min = new(big.Int).Neg(new(big.Int).Lsh(bigOne, 255))
	i256Max = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

	twoTo128 = new(big.Int).Lsh(bigOne, 128)
	twoTo256 = new(big.Int).Lsh(bigOne, 256)
)

// limbs returns the value's two's complement representation split into
// 64-bit limbs, least significant first.
func limbs(v *big.Int, modulus *big.Int, count int) []uint64 {
	u := new(big.Int).Mod(v, modulus)
	out := make([]uint64, count)
	tmp := new(big.Int)
	for i := 0; i < count; i++ {
		out[i] = tmp.And(u, bigMask64).Uint64()
		u = new(big.Int).Rsh(u, 64)
	}
	return out
}

func u128ToScVal(val Native) (xdr.ScVal, error) {
	b, ok := val.bigIntValue()
	if !ok {
		return xdr.ScVal{}, &InvalidTypeError{Expected: "u128", Value: val.String()}
	}
	if b.Sign() < 0 || b.Cmp(u128Max) > 0 {
		return xdr.ScVal{}, &InvalidTypeError{Expected: "u128", Value: val.String()}
	}
	l := limbs(b, twoTo128, 2)
	return xdr.ScVal{
		Type: xdr.ScValTypeScvU128,
		U128: &xdr.UInt128Parts{Hi: xdr.Uint64(l[1]), Lo: xdr.Uint64(l[0])},
	}, nil
}

func i128ToScVal(val Native) (xdr.ScVal, error) {
	b, ok := val.bigIntValue()
	if !ok {
		return xdr.ScVal{}, &InvalidTypeError{Expected: "i128", Value: val.String()}
	}
	if b.Cmp(i128Min) < 0 || b.Cmp(i128Max) > 0 {
		return xdr.ScVal{}, &InvalidTypeError{Expected: "i128", Value: val.String()}
	}
	l := limbs(b, twoTo128, 2)
	return xdr.ScVal{
		Type: xdr.ScValTypeScvI128,
		I128: &xdr.Int128Parts{Hi: xdr.Int64(l[1]), Lo: xdr.Uint64(l[0])},
	}, nil
}

func u256ToScVal(val Native) (xdr.ScVal, error) {
	b, ok := val.bigIntValue()
	if !ok {
		return xdr.ScVal{}, &InvalidTypeError{Expected: "u256", Value: val.String()}
	}
	if b.Sign() < 0 || b.Cmp(u256Max) > 0 {
		return xdr.ScVal{}, &InvalidTypeError{Expected: "u256", Value: val.String()}
	}
	l := limbs(b, twoTo256, 4)
	return xdr.ScVal{
		Type: xdr.ScValTypeScvU256,
		U256: &xdr.UInt256Parts{
			HiHi: xdr.Uint64(l[3]),
			HiLo: xdr.Uint64(l[2]),
			LoHi: xdr.Uint64(l[1]),
			LoLo: xdr.Uint64(l[0]),
		},
	}, nil
}

func i256ToScVal(val Native) (xdr.ScVal, error) {
	b, ok := val.bigIntValue()
	if !ok {
		return xdr.ScVal{}, &InvalidTypeError{Expected: "i256", Value: val.String()}
	}
	if b.Cmp(i256Min) < 0 || b.Cmp(i256Max) > 0 {
		return xdr.ScVal{}, &InvalidTypeError{Expected: "i256", Value: val.String()}
	}
	l := limbs(b, twoTo256, 4)
	return xdr.ScVal{
		Type: xdr.ScValTypeScvI256,
		I256: &xdr.Int256Parts{
			HiHi: xdr.Int64(l[3]),
			HiLo: xdr.Uint64(l[2]),
			LoHi: xdr.Uint64(l[1]),
			LoLo: xdr.Uint64(l[0]),
		},
	}, nil
}

func scVoid() xdr.ScVal {
	return xdr.ScVal{Type: xdr.ScValTypeScvVoid}
}

func scVec(items []xdr.ScVal) xdr.ScVal {
	vec := xdr.ScVec(items)
	vecPtr := &vec
	return xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &vecPtr}
}

func scMap(entries []xdr.ScMapEntry) xdr.ScVal {
	m := xdr.ScMap(entries)
	mapPtr := &m
	return xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &mapPtr}
}

func symbolVal(name string) xdr.ScVal {
	sym := xdr.ScSymbol(name)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}
}
