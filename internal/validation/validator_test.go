// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type pageParams struct {
	Offset int `validate:"min=0"`
	Limit  int `validate:"min=1"`
}

type accountInput struct {
	Username string `validate:"required"`
	Role     string `validate:"omitempty,role"`
	Email    string `validate:"omitempty,email"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{name: "valid page", input: &pageParams{Offset: 0, Limit: 10}},
		{name: "negative offset", input: &pageParams{Offset: -1, Limit: 10},
			wantField: "Offset", wantTag: "min", wantMsg: "Offset must be at least 0"},
		{name: "zero limit", input: &pageParams{Offset: 0, Limit: 0},
			wantField: "Limit", wantTag: "min", wantMsg: "Limit must be at least 1"},
		{name: "valid account", input: &accountInput{Username: "alice", Role: "admin"}},
		{name: "empty role allowed", input: &accountInput{Username: "alice"}},
		{name: "missing username", input: &accountInput{},
			wantField: "Username", wantTag: "required", wantMsg: "Username is required"},
		{name: "unknown role", input: &accountInput{Username: "alice", Role: "root"},
			wantField: "Role", wantTag: "role", wantMsg: "Role must be one of: owner admin user"},
		{name: "bad email", input: &accountInput{Username: "alice", Email: "nope"},
			wantField: "Email", wantTag: "email", wantMsg: "Email must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}
			fields := verr.Fields()
			if len(fields) != 1 {
				t.Fatalf("got %d field errors, want 1: %v", len(fields), verr)
			}
			if fields[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", fields[0].Field(), tt.wantField)
			}
			if fields[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", fields[0].Tag(), tt.wantTag)
			}
			if verr.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", verr.Error(), tt.wantMsg)
			}
		})
	}
}

func TestErrors_MultipleFieldsJoined(t *testing.T) {
	verr := ValidateStruct(&pageParams{Offset: -5, Limit: 0})
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Fields()) != 2 {
		t.Fatalf("got %d field errors, want 2", len(verr.Fields()))
	}
	msg := verr.Error()
	if !strings.Contains(msg, "Offset") || !strings.Contains(msg, "Limit") || !strings.Contains(msg, "; ") {
		t.Errorf("Error() = %q, want both fields joined", msg)
	}
}

func TestErrors_EmptyMessage(t *testing.T) {
	var e Errors
	if e.Error() != "validation failed" {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	verr := ValidateStruct("not a struct")
	if verr == nil {
		t.Fatal("expected error for non-struct input")
	}
	if verr.Fields()[0].Field() != "unknown" {
		t.Errorf("Field() = %q, want unknown", verr.Fields()[0].Field())
	}
}
