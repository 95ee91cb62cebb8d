// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package soroban

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// InvalidTypeError reports a native value that cannot represent the declared
// contract type, for example an out-of-range integer or a tuple of the wrong
// arity.
type InvalidTypeError struct {
	Expected string
	Value    string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid type: expected %s, got %s", e.Expected, e.Value)
}

// ConversionFailedError reports a value whose conversion is unsupported or
// failed structurally.
type ConversionFailedError struct {
	Type   string
	Reason string
}

func (e *ConversionFailedError) Error() string {
	return fmt.Sprintf("cannot convert value to %s: %s", e.Type, e.Reason)
}

// InvalidEnumValueError reports a value outside an enum's declared case set.
type InvalidEnumValueError struct {
	Enum  string
	Value string
}

func (e *InvalidEnumValueError) Error() string {
	return fmt.Sprintf("invalid value %s for enum %s", e.Value, e.Enum)
}

// EntryNotFoundError reports a name that matches no spec entry of any kind.
type EntryNotFoundError struct {
	Name string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("spec entry not found: %s", e.Name)
}

// FunctionNotFoundError reports a function name absent from the contract spec.
type FunctionNotFoundError struct {
	Name string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("function not found: %s", e.Name)
}

// ArgumentNotFoundError reports a declared parameter missing from the
// caller-supplied argument map.
type ArgumentNotFoundError struct {
	Name string
}

func (e *ArgumentNotFoundError) Error() string {
	return fmt.Sprintf("argument not found: %s", e.Name)
}

// MethodNotFoundError reports an invocation of a method the bound contract
// does not declare.
type MethodNotFoundError struct {
	Method   string
	Contract string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("method %s not found on contract %s", e.Method, e.Contract)
}

// InvalidAddressError reports a malformed address string or payload.
type InvalidAddressError struct {
	Value string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address: %s", e.Value)
}

// UnknownAddressTypeError reports an address discriminant outside the five
// known variants.
type UnknownAddressTypeError struct {
	Type int32
}

func (e *UnknownAddressTypeError) Error() string {
	return fmt.Sprintf("unknown address type: %d", e.Type)
}

// ParseFailedError reports a contract binary whose metadata sections could not be
// extracted or decoded.
type ParseFailedError struct {
	Message string
}

func (e *ParseFailedError) Error() string {
	return fmt.Sprintf("contract parsing failed: %s", e.Message)
}

// NoAddressCredentialsError reports an attempt to sign an authorization entry
// that carries source-account credentials. Only address credentials hold a
// signature.
type NoAddressCredentialsError struct{}

func (e *NoAddressCredentialsError) Error() string {
	return "no address credentials found in authorization entry"
}

// MissingSignerError reports a signing step that has neither a keypair with a
// private key nor a delegate callback to fall back on.
type MissingSignerError struct{}

func (e *MissingSignerError) Error() string {
	return "no signing keypair available. Provide a keypair holding a private key or a signing delegate"
}

// NothingToSignError reports a SignAuthEntries call for an address with no
// unsigned authorization entries left.
type NothingToSignError struct {
	Address string
}

func (e *NothingToSignError) Error() string {
	return fmt.Sprintf("no unsigned authorization entries for %s", e.Address)
}

// NotYetSimulatedError reports access to simulation-derived state before
// Simulate has run.
type NotYetSimulatedError struct{}

func (e *NotYetSimulatedError) Error() string {
	return "transaction has not yet been simulated. Call Simulate first"
}

// NotYetSignedError reports a Send on a transaction with no signed envelope.
type NotYetSignedError struct{}

func (e *NotYetSignedError) Error() string {
	return "transaction is not signed. Call Sign or SignAndSend first"
}

// SimulationFailedError carries the server-side error recorded in a
// simulation response.
type SimulationFailedError struct {
	Message string
}

func (e *SimulationFailedError) Error() string {
	return fmt.Sprintf("transaction simulation failed: %s", e.Message)
}

// RestoreRequiredError reports a simulation blocked on archived ledger
// entries while automatic restoration is disabled.
type RestoreRequiredError struct{}

func (e *RestoreRequiredError) Error() string {
	return "simulation requires restoring archived ledger entries. " +
		"Enable Restore in the method options or restore the entries manually, then simulate again"
}

// RestoreFailedError reports a restore-footprint transaction that reached a
// terminal status other than success.
type RestoreFailedError struct {
	Status string
}

func (e *RestoreFailedError) Error() string {
	return fmt.Sprintf("automatic restore failed with status %s", e.Status)
}

// NoSignatureNeededError reports a Sign on a read call. Read calls complete
// at simulation time and need no envelope signature.
type NoSignatureNeededError struct{}

func (e *NoSignatureNeededError) Error() string {
	return "this is a read call. It requires no signature or submission. Set Force to sign and submit anyway"
}

// NeedsMoreSignaturesError reports a Sign attempted while other accounts
// still have unsigned authorization entries.
type NeedsMoreSignaturesError struct {
	Addresses []string
}

func (e *NeedsMoreSignaturesError) Error() string {
	return fmt.Sprintf("transaction requires signatures from %s. Sign the authorization entries first with SignAuthEntries",
		strings.Join(e.Addresses, ", "))
}

// SendFailedError reports a submission rejected by the server before it could
// be included in a ledger.
type SendFailedError struct {
	Status         string
	ErrorResultXDR string
}

func (e *SendFailedError) Error() string {
	if e.ErrorResultXDR != "" {
		return fmt.Sprintf("transaction submission failed with status %s: %s", e.Status, e.ErrorResultXDR)
	}
	return fmt.Sprintf("transaction submission failed with status %s", e.Status)
}

// TransactionFailedError reports a submitted transaction that reached a
// terminal non-success status.
type TransactionFailedError struct {
	Hash   string
	Status string
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction %s reached terminal status %s", e.Hash, e.Status)
}

// TransactionStillPendingError reports a poll loop that exhausted its time
// budget before the transaction left the pending state. The transaction may
// still complete; the hash identifies it for manual follow-up.
type TransactionStillPendingError struct {
	Hash    string
	Elapsed time.Duration
}

func (e *TransactionStillPendingError) Error() string {
	return fmt.Sprintf("transaction %s is still pending after %.0f seconds. Check its status later with getTransaction",
		e.Hash, e.Elapsed.Seconds())
}

// IsInvalidType checks if error reports a value/type mismatch
func IsInvalidType(err error) bool {
	var target *InvalidTypeError
	return errors.As(err, &target)
}

// IsConversionFailed checks if error reports an unsupported conversion
func IsConversionFailed(err error) bool {
	var target *ConversionFailedError
	return errors.As(err, &target)
}

// IsInvalidEnumValue checks if error reports an undeclared enum case
func IsInvalidEnumValue(err error) bool {
	var target *InvalidEnumValueError
	return errors.As(err, &target)
}

// IsEntryNotFound checks if error reports a missing spec entry
func IsEntryNotFound(err error) bool {
	var target *EntryNotFoundError
	return errors.As(err, &target)
}

// IsFunctionNotFound checks if error reports a missing spec function
func IsFunctionNotFound(err error) bool {
	var target *FunctionNotFoundError
	return errors.As(err, &target)
}

// IsArgumentNotFound checks if error reports a missing named argument
func IsArgumentNotFound(err error) bool {
	var target *ArgumentNotFoundError
	return errors.As(err, &target)
}

// IsMethodNotFound checks if error reports an undeclared contract method
func IsMethodNotFound(err error) bool {
	var target *MethodNotFoundError
	return errors.As(err, &target)
}

// IsInvalidAddress checks if error reports a malformed address
func IsInvalidAddress(err error) bool {
	var target *InvalidAddressError
	return errors.As(err, &target)
}

// IsUnknownAddressType checks if error reports an unknown address discriminant
func IsUnknownAddressType(err error) bool {
	var target *UnknownAddressTypeError
	return errors.As(err, &target)
}

// IsParseFailed checks if error reports a failed contract binary parse
func IsParseFailed(err error) bool {
	var target *ParseFailedError
	return errors.As(err, &target)
}

// IsNoAddressCredentials checks if error reports signing without address credentials
func IsNoAddressCredentials(err error) bool {
	var target *NoAddressCredentialsError
	return errors.As(err, &target)
}

// IsMissingSigner checks if error reports a missing signing key or delegate
func IsMissingSigner(err error) bool {
	var target *MissingSignerError
	return errors.As(err, &target)
}

// IsNothingToSign checks if error reports no unsigned entries for an address
func IsNothingToSign(err error) bool {
	var target *NothingToSignError
	return errors.As(err, &target)
}

// IsNotYetSimulated checks if error reports use of an unsimulated transaction
func IsNotYetSimulated(err error) bool {
	var target *NotYetSimulatedError
	return errors.As(err, &target)
}

// IsNotYetSigned checks if error reports a send without a signed envelope
func IsNotYetSigned(err error) bool {
	var target *NotYetSignedError
	return errors.As(err, &target)
}

// IsSimulationFailed checks if error carries a server-side simulation error
func IsSimulationFailed(err error) bool {
	var target *SimulationFailedError
	return errors.As(err, &target)
}

// IsRestoreRequired checks if error reports outstanding archived entries
func IsRestoreRequired(err error) bool {
	var target *RestoreRequiredError
	return errors.As(err, &target)
}

// IsRestoreFailed checks if error reports a failed automatic restore
func IsRestoreFailed(err error) bool {
	var target *RestoreFailedError
	return errors.As(err, &target)
}

// IsNoSignatureNeeded checks if error reports signing a read call
func IsNoSignatureNeeded(err error) bool {
	var target *NoSignatureNeededError
	return errors.As(err, &target)
}

// IsNeedsMoreSignatures checks if error reports outstanding auth signers
func IsNeedsMoreSignatures(err error) bool {
	var target *NeedsMoreSignaturesError
	return errors.As(err, &target)
}

// IsSendFailed checks if error reports a rejected submission
func IsSendFailed(err error) bool {
	var target *SendFailedError
	return errors.As(err, &target)
}

// IsTransactionFailed checks if error reports a terminal non-success status
func IsTransactionFailed(err error) bool {
	var target *TransactionFailedError
	return errors.As(err, &target)
}

// IsTransactionStillPending checks if error reports an exhausted poll budget
func IsTransactionStillPending(err error) bool {
	var target *TransactionStillPendingError
	return errors.As(err, &target)
}
