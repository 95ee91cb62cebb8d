// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package soroban

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strconv"

	"github.com/stellar/go/xdr"
)

// Kind discriminates the closed set of native value shapes the converter
// accepts.
type Kind int32

const (
	KindVoid Kind = iota
	KindBool
	KindInt
	KindUint
	KindBigInt
	KindBytes
	KindString
	KindAddress
	KindVec
	KindMap
	KindUnion
	KindScVal
)

// Native is an application-side value awaiting conversion to a contract
// value. It holds exactly one of the declared kinds; the converter dispatches
// on the kind against the declared contract type, so no reflection is
// involved. The zero value is void.
type Native struct {
	kind     Kind
	boolVal  bool
	intVal   int64
	uintVal  uint64
	bigVal   *big.Int
	bytesVal []byte
	strVal   string
	addrVal  Address
	vecVal   []Native
	mapVal   []MapEntry
	scVal    *xdr.ScVal
}

// MapEntry is one key-value pair of a map-shaped native value. Entry order
// is preserved through conversion.
type MapEntry struct {
	Key   Native
	Value Native
}

// Void returns the void value.
func Void() Native {
	return Native{kind: KindVoid}
}

// Bool wraps a boolean.
func Bool(v bool) Native {
	return Native{kind: KindBool, boolVal: v}
}

// Int wraps a signed integer.
func Int(v int64) Native {
	return Native{kind: KindInt, intVal: v}
}

// Uint wraps an unsigned integer.
func Uint(v uint64) Native {
	return Native{kind: KindUint, uintVal: v}
}

// BigInt wraps an arbitrary-precision integer for 128 and 256 bit contract
// types. The value is copied.
func BigInt(v *big.Int) Native {
	return Native{kind: KindBigInt, bigVal: new(big.Int).Set(v)}
}

// Bytes wraps a byte slice.
func Bytes(v []byte) Native {
	return Native{kind: KindBytes, bytesVal: v}
}

// String wraps a string.
func String(v string) Native {
	return Native{kind: KindString, strVal: v}
}

// Addr wraps an Address.
func Addr(v Address) Native {
	return Native{kind: KindAddress, addrVal: v}
}

// Vec wraps an ordered sequence, used for vector and tuple contract types.
func Vec(items ...Native) Native {
	return Native{kind: KindVec, vecVal: items}
}

// MapOf wraps an ordered list of key-value entries, used for map contract
// types and for structs with named fields.
func MapOf(entries ...MapEntry) Native {
	return Native{kind: KindMap, mapVal: entries}
}

// Entry pairs a key with a value for MapOf.
func Entry(key, value Native) MapEntry {
	return MapEntry{Key: key, Value: value}
}

// Union wraps a tagged union case. Void cases carry only the case name,
// tuple cases carry the declared number of positional values.
func Union(caseName string, values ...Native) Native {
	return Native{kind: KindUnion, strVal: caseName, vecVal: values}
}

// FromScVal wraps an already-encoded contract value. The converter passes it
// through after checking it against the declared type.
func FromScVal(v xdr.ScVal) Native {
	return Native{kind: KindScVal, scVal: &v}
}

// Kind reports which shape the value holds.
func (n Native) Kind() Kind {
	return n.kind
}

// bigIntValue views any of the three integer kinds as a big integer.
func (n Native) bigIntValue() (*big.Int, bool) {
	switch n.kind {
	case KindInt:
		return big.NewInt(n.intVal), true
	case KindUint:
		return new(big.Int).SetUint64(n.uintVal), true
	case KindBigInt:
		return n.bigVal, true
	default:
		return nil, false
	}
}

// String renders a short diagnostic form, used in conversion error messages.
func (n Native) String() string {
	switch n.kind {
	case KindVoid:
		return "void"
	case KindBool:
		return fmt.Sprintf("bool(%t)", n.boolVal)
	case KindInt:
		return fmt.Sprintf("int(%d)", n.intVal)
	case KindUint:
		return fmt.Sprintf("uint(%d)", n.uintVal)
	case KindBigInt:
		return fmt.Sprintf("bigint(%s)", n.bigVal.String())
	case KindBytes:
		return fmt.Sprintf("bytes(len %d)", len(n.bytesVal))
	case KindString:
		return fmt.Sprintf("string(%q)", n.strVal)
	case KindAddress:
		return fmt.Sprintf("address(%s)", n.addrVal.String())
	case KindVec:
		return fmt.Sprintf("vec(len %d)", len(n.vecVal))
	case KindMap:
		return fmt.Sprintf("map(len %d)", len(n.mapVal))
	case KindUnion:
		return fmt.Sprintf("union(%s/%d)", n.strVal, len(n.vecVal))
	case KindScVal:
		return fmt.Sprintf("scval(%s)", n.scVal.Type.String())
	default:
		return "unknown"
	}
}

// FromJSON converts a JSON document into a Native value. Numbers must be
// integers; arbitrarily large ones become big integers. Objects become maps
// with string keys sorted lexicographically so the result is deterministic.
func FromJSON(data []byte) (Native, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return Native{}, &ConversionFailedError{Type: "json", Reason: err.Error()}
	}
	return fromJSONValue(raw)
}

func fromJSONValue(raw interface{}) (Native, error) {
	switch v := raw.(type) {
	case nil:
		return Void(), nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case json.Number:
		return numberToNative(v)
	case []interface{}:
		items := make([]Native, 0, len(v))
		for _, item := range v {
			n, err := fromJSONValue(item)
			if err != nil {
				return Native{}, err
			}
			items = append(items, n)
		}
		return Vec(items...), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]MapEntry, 0, len(keys))
		for _, k := range keys {
			n, err := fromJSONValue(v[k])
			if err != nil {
				return Native{}, err
			}
			entries = append(entries, Entry(String(k), n))
		}
		return MapOf(entries...), nil
	default:
		return Native{}, &ConversionFailedError{Type: "json", Reason: fmt.Sprintf("unsupported value %v", raw)}
	}
}

// ArgsFromJSON converts a JSON object into a named argument map for
// FuncArgsToXdrSCValues.
func ArgsFromJSON(data []byte) (map[string]Native, error) {
	n, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	if n.kind != KindMap {
		return nil, &ConversionFailedError{Type: "arguments", Reason: "expected a JSON object"}
	}
	args := make(map[string]Native, len(n.mapVal))
	for _, entry := range n.mapVal {
		args[entry.Key.strVal] = entry.Value
	}
	return args, nil
}

func numberToNative(num json.Number) (Native, error) {
	if i, err := strconv.ParseInt(num.String(), 10, 64); err == nil {
		return Int(i), nil
	}
	if u, err := strconv.ParseUint(num.String(), 10, 64); err == nil {
		return Uint(u), nil
	}
	b, ok := new(big.Int).SetString(num.String(), 10)
	if !ok {
		return Native{}, &ConversionFailedError{Type: "integer", Reason: fmt.Sprintf("%s is not an integer", num.String())}
	}
	return BigInt(b), nil
}
