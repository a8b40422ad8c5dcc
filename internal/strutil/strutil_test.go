package strutil

import (
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name     string
		s1       string
		s2       string
		expected int
	}{
		{name: "identical", s1: "random", s2: "random", expected: 0},
		{name: "case insensitive", s1: "RaNdOm", s2: "random", expected: 0},
		{name: "one insertion", s1: "randm", s2: "random", expected: 1},
		{name: "one deletion", s1: "randomm", s2: "random", expected: 1},
		{name: "one substitution", s1: "rendom", s2: "random", expected: 1},
		{name: "transposition counts twice", s1: "rnadom", s2: "random", expected: 2},
		{name: "empty first", s1: "", s2: "null", expected: 4},
		{name: "empty second", s1: "pick", s2: "", expected: 4},
		{name: "both empty", s1: "", s2: "", expected: 0},
		{name: "runes not bytes", s1: "随机", s2: "随机生成", expected: 2},
		{name: "completely different", s1: "abc", s2: "xyz", expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			distance := LevenshteinDistance(tt.s1, tt.s2)
			if distance != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d; want %d",
					tt.s1, tt.s2, distance, tt.expected)
			}
		})
	}
}

func TestFindClosest(t *testing.T) {
	rules := []string{"auto_increment", "random", "reference", "fixed", "pick", "example", "null"}

	tests := []struct {
		name        string
		input       string
		maxDistance int
		expected    string
	}{
		{name: "exact match", input: "random", maxDistance: 2, expected: "random"},
		{name: "one typo", input: "radnom", maxDistance: 2, expected: "random"},
		{name: "missing letter", input: "refrence", maxDistance: 2, expected: "reference"},
		{name: "case insensitive", input: "NULL", maxDistance: 2, expected: "null"},
		{name: "underscore dropped", input: "autoincrement", maxDistance: 2, expected: "auto_increment"},
		{name: "too far", input: "xyz", maxDistance: 2, expected: ""},
		{name: "strict max distance", input: "radnom", maxDistance: 0, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := FindClosest(tt.input, rules, tt.maxDistance)
			if got != tt.expected {
				t.Errorf("FindClosest(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFindClosestDistance(t *testing.T) {
	got, distance := FindClosest("fixd", []string{"fixed", "pick"}, 2)
	if got != "fixed" || distance != 1 {
		t.Errorf("FindClosest = %q, %d; want fixed, 1", got, distance)
	}

	if _, distance := FindClosest("anything", nil, 2); distance != -1 {
		t.Errorf("expected -1 for no candidates, got %d", distance)
	}
}
