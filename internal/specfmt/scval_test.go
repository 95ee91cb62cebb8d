// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package specfmt

import (
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solrane/sorokit/soroban"
)

const testAccount = "GDIY6AQQ75WMD4W46EYB7O6UYMHOCGQHLAQGQTKHDX4J2DYQCHVCR4W4"

func scU32(v uint32) xdr.ScVal {
	u := xdr.Uint32(v)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}
}

func scSym(s string) xdr.ScVal {
	sym := xdr.ScSymbol(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}
}

func scVecVal(items ...xdr.ScVal) xdr.ScVal {
	vec := xdr.ScVec(items)
	vecPtr := &vec
	return xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &vecPtr}
}

func scMapVal(entries ...xdr.ScMapEntry) xdr.ScVal {
	m := xdr.ScMap(entries)
	mapPtr := &m
	return xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &mapPtr}
}

func TestFormatScValScalars(t *testing.T) {
	b := true
	i32 := xdr.Int32(-7)
	u64 := xdr.Uint64(18446744073709551615)
	i64 := xdr.Int64(-42)
	tp := xdr.TimePoint(1700000000)
	dur := xdr.Duration(600)

	tests := []struct {
		name string
		val  xdr.ScVal
		want string
	}{
		{"void", xdr.ScVal{Type: xdr.ScValTypeScvVoid}, "void"},
		{"bool", xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b}, "true"},
		{"u32", scU32(7), "7"},
		{"i32", xdr.ScVal{Type: xdr.ScValTypeScvI32, I32: &i32}, "-7"},
		{"u64", xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &u64}, "18446744073709551615"},
		{"i64", xdr.ScVal{Type: xdr.ScValTypeScvI64, I64: &i64}, "-42"},
		{"timepoint", xdr.ScVal{Type: xdr.ScValTypeScvTimepoint, Timepoint: &tp}, "1700000000"},
		{"duration", xdr.ScVal{Type: xdr.ScValTypeScvDuration, Duration: &dur}, "600"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatScVal(tc.val))
		})
	}
}

func TestFormatScValWideIntegers(t *testing.T) {
	u128 := xdr.UInt128Parts{Hi: 1, Lo: 0}
	assert.Equal(t, "18446744073709551616",
		FormatScVal(xdr.ScVal{Type: xdr.ScValTypeScvU128, U128: &u128}))

	// Hi -1 with all-ones Lo is the two's complement encoding of -1.
	i128 := xdr.Int128Parts{Hi: -1, Lo: 18446744073709551615}
	assert.Equal(t, "-1",
		FormatScVal(xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &i128}))

	i128 = xdr.Int128Parts{Hi: -1, Lo: 0}
	assert.Equal(t, "-18446744073709551616",
		FormatScVal(xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &i128}))

	u256 := xdr.UInt256Parts{HiHi: 0, HiLo: 0, LoHi: 1, LoLo: 0}
	assert.Equal(t, "18446744073709551616",
		FormatScVal(xdr.ScVal{Type: xdr.ScValTypeScvU256, U256: &u256}))

	i256 := xdr.Int256Parts{HiHi: -1, HiLo: 18446744073709551615, LoHi: 18446744073709551615, LoLo: 18446744073709551615}
	assert.Equal(t, "-1",
		FormatScVal(xdr.ScVal{Type: xdr.ScValTypeScvI256, I256: &i256}))
}

func TestFormatScValTextAndBytes(t *testing.T) {
	bytes := xdr.ScBytes{0xde, 0xad, 0xbe, 0xef}
	assert.Equal(t, "deadbeef",
		FormatScVal(xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &bytes}))

	str := xdr.ScString("hello")
	assert.Equal(t, "hello",
		FormatScVal(xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &str}))

	assert.Equal(t, "transfer", FormatScVal(scSym("transfer")))
}

func TestFormatScValAddress(t *testing.T) {
	addr, err := soroban.AccountAddress(testAccount)
	require.NoError(t, err)
	sc, err := addr.ToXdr()
	require.NoError(t, err)

	assert.Equal(t, testAccount,
		FormatScVal(xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &sc}))
}

func TestFormatScValContainers(t *testing.T) {
	assert.Equal(t, "[1, 2, 3]", FormatScVal(scVecVal(scU32(1), scU32(2), scU32(3))))
	assert.Equal(t, "[]", FormatScVal(scVecVal()))
	assert.Equal(t, "[]", FormatScVal(xdr.ScVal{Type: xdr.ScValTypeScvVec}))

	assert.Equal(t, "{count: 5, total: 9}", FormatScVal(scMapVal(
		xdr.ScMapEntry{Key: scSym("count"), Val: scU32(5)},
		xdr.ScMapEntry{Key: scSym("total"), Val: scU32(9)},
	)))

	assert.Equal(t, "[[Some, 4]]", FormatScVal(scVecVal(scVecVal(scSym("Some"), scU32(4)))))
}

func TestFormatScValContractError(t *testing.T) {
	code := xdr.Uint32(4)
	scErr := xdr.ScError{Type: xdr.ScErrorTypeSceContract, ContractCode: &code}
	assert.Equal(t, "contract error #4",
		FormatScVal(xdr.ScVal{Type: xdr.ScValTypeScvError, Error: &scErr}))
}

func TestFormatScValFallbackIsBase64(t *testing.T) {
	got := FormatScVal(xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance})
	assert.NotEmpty(t, got)
	assert.NotContains(t, got, " ")
}
