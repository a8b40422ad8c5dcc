package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MosYCo/test-data-generate/internal/task"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		input string
		want  Rule
	}{
		{"", Rule{Kind: task.RuleRandom}},
		{"random", Rule{Kind: task.RuleRandom}},
		{"RANDOM", Rule{Kind: task.RuleRandom}},
		{"auto_increment", Rule{Kind: task.RuleAutoIncrement, Start: 1}},
		{"auto_increment:1000", Rule{Kind: task.RuleAutoIncrement, Start: 1000}},
		{"reference", Rule{Kind: task.RuleReference}},
		{"fixed:hello", Rule{Kind: task.RuleFixed, Value: "hello"}},
		{"fixed:", Rule{Kind: task.RuleFixed, Value: ""}},
		{"fixed:a:b", Rule{Kind: task.RuleFixed, Value: "a:b"}},
		{"pick:a|b| c |", Rule{Kind: task.RulePick, Choices: []string{"a", "b", "c"}}},
		{"example", Rule{Kind: task.RuleExample}},
		{"null", Rule{Kind: task.RuleNull}},
		{"自增", Rule{Kind: task.RuleAutoIncrement, Start: 1}},
		{"随机生成", Rule{Kind: task.RuleRandom, Start: 1}},
		{"关联用户表", Rule{Kind: task.RuleReference, Start: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRule(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRuleErrors(t *testing.T) {
	for _, input := range []string{"sequence", "auto_increment:abc", "fixed", "pick:", "pick:||", "random:5"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseRule(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnknownRule))
		})
	}
}

func TestRuleString(t *testing.T) {
	for _, input := range []string{"auto_increment", "auto_increment:50", "random", "fixed:x", "pick:a|b", "null"} {
		rule, err := ParseRule(input)
		require.NoError(t, err)
		assert.Equal(t, input, rule.String())
	}
}

func TestCheckRule(t *testing.T) {
	tests := []struct {
		name    string
		col     task.ColumnSpec
		wantErr string
	}{
		{"reference without fk", task.ColumnSpec{Name: "x", GenerationRule: "reference"}, "requires a foreign key"},
		{"null on not null", task.ColumnSpec{Name: "x", GenerationRule: "null"}, "NOT NULL"},
		{"example without value", task.ColumnSpec{Name: "x", GenerationRule: "example"}, "without an example"},
		{"bad rule", task.ColumnSpec{Name: "x", GenerationRule: "bogus"}, "unknown generation rule"},
		{"ok", task.ColumnSpec{Name: "x", Nullable: true, GenerationRule: "null"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRule(tt.col)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseRuleSuggestsClosest(t *testing.T) {
	_, err := ParseRule("radnom")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRule))
	assert.Contains(t, err.Error(), `did you mean "random"?`)

	_, err = ParseRule("something_else")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")
}
