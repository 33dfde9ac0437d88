// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

func TestSecretsRoundTrip(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))

	if _, err := m.LoadBridgeToken(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadBridgeToken() on empty ring = %v, want ErrNotFound", err)
	}

	if err := m.SaveBridgeToken("tok-1"); err != nil {
		t.Fatalf("SaveBridgeToken: %v", err)
	}
	if err := m.SaveDonationDSN("postgres://u:p@localhost/donations"); err != nil {
		t.Fatalf("SaveDonationDSN: %v", err)
	}

	if got, _ := m.LoadBridgeToken(); got != "tok-1" {
		t.Errorf("LoadBridgeToken() = %q", got)
	}
	if got, _ := m.LoadDonationDSN(); got != "postgres://u:p@localhost/donations" {
		t.Errorf("LoadDonationDSN() = %q", got)
	}

	if err := m.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if _, err := m.LoadDonationDSN(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadDonationDSN() after clear = %v, want ErrNotFound", err)
	}
	if err := m.ClearAll(); err != nil {
		t.Fatalf("second ClearAll: %v", err)
	}
}

func TestRejectsEmptySecret(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))
	if err := m.SaveBridgeToken(""); err == nil {
		t.Fatal("expected an error for an empty token")
	}
}
