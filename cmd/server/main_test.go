package main

import (
	"strings"
	"testing"

	"rankha/backend/internal/config"
)

func TestValidateSecurityConfigRejectsShortSecret(t *testing.T) {
	cases := []string{"", "short", "0123456789abcdef0123456789abcde"}
	for _, secret := range cases {
		cfg := config.Config{AuthSecret: secret}
		if err := validateSecurityConfig(cfg); err == nil {
			t.Fatalf("expected rejection for secret %q", secret)
		}
	}
}

func TestValidateSecurityConfigAcceptsStrongSecret(t *testing.T) {
	cfg := config.Config{AuthSecret: strings.Repeat("a1", 16)}
	if err := validateSecurityConfig(cfg); err != nil {
		t.Fatalf("expected 32-char secret to pass, got %v", err)
	}
}
