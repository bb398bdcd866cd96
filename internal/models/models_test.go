// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package models

import "testing"

func TestActionTypeWeight(t *testing.T) {
	tests := []struct {
		name   string
		action ActionType
		want   float64
	}{
		{"view", ActionView, 0.4},
		{"register", ActionRegister, 0.8},
		{"like", ActionLike, 1.0},
		{"unknown", ActionType("BOUGHT"), 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.action.Weight(); got != tt.want {
				t.Errorf("Weight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActionTypeWeightOrder(t *testing.T) {
	// Stronger engagement must never map to a smaller weight.
	if !(ActionView.Weight() < ActionRegister.Weight()) {
		t.Error("VIEW weight should be below REGISTER weight")
	}
	if !(ActionRegister.Weight() < ActionLike.Weight()) {
		t.Error("REGISTER weight should be below LIKE weight")
	}
}

func TestParseActionType(t *testing.T) {
	got, err := ParseActionType("REGISTER")
	if err != nil {
		t.Fatalf("ParseActionType(REGISTER) error: %v", err)
	}
	if got != ActionRegister {
		t.Errorf("ParseActionType(REGISTER) = %v", got)
	}

	if _, err := ParseActionType("register"); err == nil {
		t.Error("expected error for lowercase action type")
	}
	if _, err := ParseActionType(""); err == nil {
		t.Error("expected error for empty action type")
	}
}

func TestNewEventPairCanonical(t *testing.T) {
	p1 := NewEventPair(7, 3)
	p2 := NewEventPair(3, 7)
	if p1 != p2 {
		t.Errorf("pairs not canonical: %v vs %v", p1, p2)
	}
	if p1.A != 3 || p1.B != 7 {
		t.Errorf("NewEventPair(7, 3) = %v, want {3 7}", p1)
	}
}

func TestEventPairOther(t *testing.T) {
	p := NewEventPair(10, 20)
	if got := p.Other(10); got != 20 {
		t.Errorf("Other(10) = %d, want 20", got)
	}
	if got := p.Other(20); got != 10 {
		t.Errorf("Other(20) = %d, want 10", got)
	}
	if !p.Contains(10) || !p.Contains(20) || p.Contains(30) {
		t.Error("Contains misreports pair membership")
	}
}
