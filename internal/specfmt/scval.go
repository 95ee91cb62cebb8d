// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package specfmt

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/stellar/go/xdr"

	"github.com/solrane/sorokit/soroban"
)

// FormatScVal renders a contract value for terminal output. Scalars print
// as plain literals, containers recurse, and anything without a friendly
// form falls back to base64 XDR.
func FormatScVal(v xdr.ScVal) string {
	switch v.Type {
	case xdr.ScValTypeScvVoid:
		return "void"
	case xdr.ScValTypeScvBool:
		return fmt.Sprintf("%t", *v.B)
	case xdr.ScValTypeScvU32:
		return fmt.Sprintf("%d", uint32(*v.U32))
	case xdr.ScValTypeScvI32:
		return fmt.Sprintf("%d", int32(*v.I32))
	case xdr.ScValTypeScvU64:
		return fmt.Sprintf("%d", uint64(*v.U64))
	case xdr.ScValTypeScvI64:
		return fmt.Sprintf("%d", int64(*v.I64))
	case xdr.ScValTypeScvTimepoint:
		return fmt.Sprintf("%d", uint64(*v.Timepoint))
	case xdr.ScValTypeScvDuration:
		return fmt.Sprintf("%d", uint64(*v.Duration))
	case xdr.ScValTypeScvU128:
		return bigFromUint128(*v.U128).String()
	case xdr.ScValTypeScvI128:
		return bigFromInt128(*v.I128).String()
	case xdr.ScValTypeScvU256:
		return bigFromUint256(*v.U256).String()
	case xdr.ScValTypeScvI256:
		return bigFromInt256(*v.I256).String()
	case xdr.ScValTypeScvBytes:
		return hex.EncodeToString(*v.Bytes)
	case xdr.ScValTypeScvString:
		return string(*v.Str)
	case xdr.ScValTypeScvSymbol:
		return string(*v.Sym)
	case xdr.ScValTypeScvAddress:
		addr, err := soroban.AddressFromXdr(*v.Address)
		if err != nil {
			return rawScVal(v)
		}
		return addr.String()
	case xdr.ScValTypeScvVec:
		if v.Vec == nil || *v.Vec == nil {
			return "[]"
		}
		items := make([]string, 0, len(**v.Vec))
		for _, item := range **v.Vec {
			items = append(items, FormatScVal(item))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case xdr.ScValTypeScvMap:
		if v.Map == nil || *v.Map == nil {
			return "{}"
		}
		entries := make([]string, 0, len(**v.Map))
		for _, entry := range **v.Map {
			entries = append(entries, fmt.Sprintf("%s: %s", FormatScVal(entry.Key), FormatScVal(entry.Val)))
		}
		return "{" + strings.Join(entries, ", ") + "}"
	case xdr.ScValTypeScvError:
		if v.Error != nil && v.Error.Type == xdr.ScErrorTypeSceContract && v.Error.ContractCode != nil {
			return fmt.Sprintf("contract error #%d", uint32(*v.Error.ContractCode))
		}
		return rawScVal(v)
	default:
		return rawScVal(v)
	}
}

func rawScVal(v xdr.ScVal) string {
	b64, err := xdr.MarshalBase64(v)
	if err != nil {
		return v.Type.String()
	}
	return b64
}

// The parts structs split wide integers into 64-bit limbs, most
// significant first. Reassembly shifts each limb up and adds the next,
// with only the top limb carrying the sign.

func bigFromUint128(p xdr.UInt128Parts) *big.Int {
	v := new(big.Int).SetUint64(uint64(p.Hi))
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(uint64(p.Lo)))
}

func bigFromInt128(p xdr.Int128Parts) *big.Int {
	v := big.NewInt(int64(p.Hi))
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(uint64(p.Lo)))
}

func bigFromUint256(p xdr.UInt256Parts) *big.Int {
	v := new(big.Int).SetUint64(uint64(p.HiHi))
	for _, limb := range []uint64{uint64(p.HiLo), uint64(p.LoHi), uint64(p.LoLo)} {
		v.Lsh(v, 64)
		v.Add(v, new(big.Int).SetUint64(limb))
	}
	return v
}

func bigFromInt256(p xdr.Int256Parts) *big.Int {
	v := big.NewInt(int64(p.HiHi))
	for _, limb := range []uint64{uint64(p.HiLo), uint64(p.LoHi), uint64(p.LoLo)} {
		v.Lsh(v, 64)
		v.Add(v, new(big.Int).SetUint64(limb))
	}
	return v
}
