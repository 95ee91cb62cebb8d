// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"reflect"
	"testing"

	"github.com/solrane/sorokit/soroban"
)

func mustFromJSON(t *testing.T, raw string) soroban.Native {
	t.Helper()
	val, err := soroban.FromJSON([]byte(raw))
	if err != nil {
		t.Fatalf("FromJSON(%q): %v", raw, err)
	}
	return val
}

func TestParseMethodArgsPairs(t *testing.T) {
	args, err := parseMethodArgs([]string{`amount=42`, `active=true`, `name="alice"`}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(args))
	}
	if !reflect.DeepEqual(args["amount"], mustFromJSON(t, "42")) {
		t.Errorf("amount parsed as %s", args["amount"])
	}
	if !reflect.DeepEqual(args["active"], soroban.Bool(true)) {
		t.Errorf("active parsed as %s", args["active"])
	}
	if !reflect.DeepEqual(args["name"], soroban.String("alice")) {
		t.Errorf("name parsed as %s", args["name"])
	}
}

func TestParseMethodArgsBareStringFallback(t *testing.T) {
	// A bare address is not valid JSON and must survive as a string.
	args, err := parseMethodArgs([]string{"id=GDIY6AQQ75WMD4W46EYB7O6UYMHOCGQHLAQGQTKHDX4J2DYQCHVCR4W4"}, "")
	if err != nil {
		t.Fatal(err)
	}
	want := soroban.String("GDIY6AQQ75WMD4W46EYB7O6UYMHOCGQHLAQGQTKHDX4J2DYQCHVCR4W4")
	if !reflect.DeepEqual(args["id"], want) {
		t.Errorf("id parsed as %s", args["id"])
	}
}

func TestParseMethodArgsValueMayContainEquals(t *testing.T) {
	args, err := parseMethodArgs([]string{`memo="a=b"`}, "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(args["memo"], soroban.String("a=b")) {
		t.Errorf("memo parsed as %s", args["memo"])
	}
}

func TestParseMethodArgsMalformed(t *testing.T) {
	for _, pair := range []string{"novalue", "=5"} {
		if _, err := parseMethodArgs([]string{pair}, ""); err == nil {
			t.Errorf("pair %q accepted", pair)
		}
	}
}

func TestParseMethodArgsJSONObject(t *testing.T) {
	args, err := parseMethodArgs(nil, `{"from":"GDIY","amount":7}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if !reflect.DeepEqual(args["from"], soroban.String("GDIY")) {
		t.Errorf("from parsed as %s", args["from"])
	}
}

func TestParseMethodArgsPairWinsOverJSON(t *testing.T) {
	args, err := parseMethodArgs([]string{"amount=9"}, `{"amount":1,"other":2}`)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(args["amount"], mustFromJSON(t, "9")) {
		t.Errorf("amount parsed as %s", args["amount"])
	}
	if !reflect.DeepEqual(args["other"], mustFromJSON(t, "2")) {
		t.Errorf("other parsed as %s", args["other"])
	}
}

func TestParseMethodArgsBadJSON(t *testing.T) {
	if _, err := parseMethodArgs(nil, `{"broken"`); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
