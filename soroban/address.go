// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package soroban

import (
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// AddressType discriminates the five kinds of on-chain identity an Address
// can hold.
type AddressType int32

const (
	AddressTypeAccount AddressType = iota
	AddressTypeContract
	AddressTypeMuxedAccount
	AddressTypeClaimableBalance
	AddressTypeLiquidityPool
)

func (t AddressType) String() string {
	switch t {
	case AddressTypeAccount:
		return "account"
	case AddressTypeContract:
		return "contract"
	case AddressTypeMuxedAccount:
		return "muxed account"
	case AddressTypeClaimableBalance:
		return "claimable balance"
	case AddressTypeLiquidityPool:
		return "liquidity pool"
	default:
		return "unknown"
	}
}

// Address identifies an account, contract, muxed account, claimable balance
// or liquidity pool. It always holds exactly one variant and is immutable
// once constructed; the zero value is not a valid address. Values are
// comparable with ==.
type Address struct {
	addrType AddressType
	id       string
}

// AccountAddress builds an account address from a G... strkey.
func AccountAddress(accountID string) (Address, error) {
	if !strkey.IsValidEd25519PublicKey(accountID) {
		return Address{}, &InvalidAddressError{Value: accountID}
	}
	return Address{addrType: AddressTypeAccount, id: accountID}, nil
}

// ContractAddress builds a contract address from a C... strkey.
func ContractAddress(contractID string) (Address, error) {
	raw, err := strkey.Decode(strkey.VersionByteContract, contractID)
	if err != nil || len(raw) != 32 {
		return Address{}, &InvalidAddressError{Value: contractID}
	}
	return Address{addrType: AddressTypeContract, id: contractID}, nil
}

// MuxedAccountAddress builds a muxed account address from an M... strkey.
func MuxedAccountAddress(muxedID string) (Address, error) {
	raw, err := strkey.Decode(strkey.VersionByteMuxedAccount, muxedID)
	if err != nil || len(raw) != 40 {
		return Address{}, &InvalidAddressError{Value: muxedID}
	}
	return Address{addrType: AddressTypeMuxedAccount, id: muxedID}, nil
}

// ClaimableBalanceAddress builds a claimable balance address from a B...
// strkey. The payload carries a one-byte balance type followed by the
// 32-byte v0 hash.
func ClaimableBalanceAddress(balanceID string) (Address, error) {
	raw, err := strkey.Decode(strkey.VersionByteClaimableBalance, balanceID)
	if err != nil || len(raw) != 33 || raw[0] != 0x00 {
		return Address{}, &InvalidAddressError{Value: balanceID}
	}
	return Address{addrType: AddressTypeClaimableBalance, id: balanceID}, nil
}

// LiquidityPoolAddress builds a liquidity pool address from an L... strkey.
func LiquidityPoolAddress(poolID string) (Address, error) {
	raw, err := strkey.Decode(strkey.VersionByteLiquidityPool, poolID)
	if err != nil || len(raw) != 32 {
		return Address{}, &InvalidAddressError{Value: poolID}
	}
	return Address{addrType: AddressTypeLiquidityPool, id: poolID}, nil
}

// AddressFromString classifies s by its strkey prefix and builds the matching
// variant. G maps to account, C to contract, M to muxed account, B to
// claimable balance and L to liquidity pool.
func AddressFromString(s string) (Address, error) {
	if s == "" {
		return Address{}, &InvalidAddressError{Value: s}
	}
	switch s[0] {
	case 'G':
		return AccountAddress(s)
	case 'C':
		return ContractAddress(s)
	case 'M':
		return MuxedAccountAddress(s)
	case 'B':
		return ClaimableBalanceAddress(s)
	case 'L':
		return LiquidityPoolAddress(s)
	default:
		return Address{}, &InvalidAddressError{Value: s}
	}
}

// AddressFromXdr converts a decoded ScAddress into an Address.
func AddressFromXdr(sc xdr.ScAddress) (Address, error) {
	var addrType AddressType
	switch sc.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		addrType = AddressTypeAccount
	case xdr.ScAddressTypeScAddressTypeContract:
		addrType = AddressTypeContract
	case xdr.ScAddressTypeScAddressTypeMuxedAccount:
		addrType = AddressTypeMuxedAccount
	case xdr.ScAddressTypeScAddressTypeClaimableBalance:
		addrType = AddressTypeClaimableBalance
	case xdr.ScAddressTypeScAddressTypeLiquidityPool:
		addrType = AddressTypeLiquidityPool
	default:
		return Address{}, &UnknownAddressTypeError{Type: int32(sc.Type)}
	}

	id, err := sc.String()
	if err != nil {
		return Address{}, &InvalidAddressError{Value: err.Error()}
	}
	return Address{addrType: addrType, id: id}, nil
}

// Type reports which variant the address holds.
func (a Address) Type() AddressType {
	return a.addrType
}

// String returns the canonical strkey form.
func (a Address) String() string {
	return a.id
}

// ToXdr converts the address to its ScAddress encoding.
func (a Address) ToXdr() (xdr.ScAddress, error) {
	if a.id == "" {
		return xdr.ScAddress{}, &InvalidAddressError{Value: a.id}
	}

	switch a.addrType {
	case AddressTypeAccount:
		accountID, err := xdr.AddressToAccountId(a.id)
		if err != nil {
			return xdr.ScAddress{}, &InvalidAddressError{Value: a.id}
		}
		return xdr.ScAddress{
			Type:      xdr.ScAddressTypeScAddressTypeAccount,
			AccountId: &accountID,
		}, nil

	case AddressTypeContract:
		raw, err := strkey.Decode(strkey.VersionByteContract, a.id)
		if err != nil {
			return xdr.ScAddress{}, &InvalidAddressError{Value: a.id}
		}
		var contractID xdr.ContractId
		copy(contractID[:], raw)
		return xdr.ScAddress{
			Type:       xdr.ScAddressTypeScAddressTypeContract,
			ContractId: &contractID,
		}, nil

	case AddressTypeMuxedAccount:
		muxed, err := xdr.AddressToMuxedAccount(a.id)
		if err != nil || muxed.Type != xdr.CryptoKeyTypeKeyTypeMuxedEd25519 {
			return xdr.ScAddress{}, &InvalidAddressError{Value: a.id}
		}
		med := muxed.Med25519
		return xdr.ScAddress{
			Type: xdr.ScAddressTypeScAddressTypeMuxedAccount,
			MuxedAccount: &xdr.MuxedEd25519Account{
				Id:      med.Id,
				Ed25519: med.Ed25519,
			},
		}, nil

	case AddressTypeClaimableBalance:
		raw, err := strkey.Decode(strkey.VersionByteClaimableBalance, a.id)
		if err != nil || len(raw) != 33 || raw[0] != 0x00 {
			return xdr.ScAddress{}, &InvalidAddressError{Value: a.id}
		}
		var hash xdr.Hash
		copy(hash[:], raw[1:])
		return xdr.ScAddress{
			Type: xdr.ScAddressTypeScAddressTypeClaimableBalance,
			ClaimableBalanceId: &xdr.ClaimableBalanceId{
				Type: xdr.ClaimableBalanceIdTypeClaimableBalanceIdTypeV0,
				V0:   &hash,
			},
		}, nil

	case AddressTypeLiquidityPool:
		raw, err := strkey.Decode(strkey.VersionByteLiquidityPool, a.id)
		if err != nil || len(raw) != 32 {
			return xdr.ScAddress{}, &InvalidAddressError{Value: a.id}
		}
		var poolID xdr.PoolId
		copy(poolID[:], raw)
		return xdr.ScAddress{
			Type:            xdr.ScAddressTypeScAddressTypeLiquidityPool,
			LiquidityPoolId: &poolID,
		}, nil

	default:
		return xdr.ScAddress{}, &UnknownAddressTypeError{Type: int32(a.addrType)}
	}
}

// ToSCVal wraps the encoded address in a contract value.
func (a Address) ToSCVal() (xdr.ScVal, error) {
	sc, err := a.ToXdr()
	if err != nil {
		return xdr.ScVal{}, err
	}
	return xdr.ScVal{
		Type:    xdr.ScValTypeScvAddress,
		Address: &sc,
	}, nil
}
