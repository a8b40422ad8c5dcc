package generator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MosYCo/test-data-generate/internal/strutil"
	"github.com/MosYCo/test-data-generate/internal/task"
)

// ErrUnknownRule is returned for generation rules that cannot be parsed.
var ErrUnknownRule = errors.New("unknown generation rule")

// Rule is a parsed column generation rule.
type Rule struct {
	Kind    string
	Start   int64    // auto_increment
	Value   string   // fixed
	Choices []string // pick
}

// Labels written by earlier versions of the table editor
var legacyRules = map[string]string{
	"自增":   task.RuleAutoIncrement,
	"随机生成": task.RuleRandom,
	"随机":   task.RuleRandom,
	"关联":   task.RuleReference,
	"空":    task.RuleNull,
}

// ParseRule parses the textual form of a rule:
//
//	auto_increment[:start]
//	random
//	reference
//	fixed:<value>
//	pick:<a>|<b>|...
//	example
//	null
//
// An empty rule means random.
func ParseRule(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rule{Kind: task.RuleRandom}, nil
	}

	if kind, ok := legacyRule(s); ok {
		return Rule{Kind: kind, Start: 1}, nil
	}

	name, arg, hasArg := strings.Cut(s, ":")
	switch strings.ToLower(name) {
	case task.RuleAutoIncrement:
		start := int64(1)
		if hasArg {
			v, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
			if err != nil {
				return Rule{}, fmt.Errorf("%w: auto_increment start %q is not an integer", ErrUnknownRule, arg)
			}
			start = v
		}
		return Rule{Kind: task.RuleAutoIncrement, Start: start}, nil
	case task.RuleFixed:
		if !hasArg {
			return Rule{}, fmt.Errorf("%w: fixed needs a value (fixed:<value>)", ErrUnknownRule)
		}
		return Rule{Kind: task.RuleFixed, Value: arg}, nil
	case task.RulePick:
		var choices []string
		for _, c := range strings.Split(arg, "|") {
			if c = strings.TrimSpace(c); c != "" {
				choices = append(choices, c)
			}
		}
		if len(choices) == 0 {
			return Rule{}, fmt.Errorf("%w: pick needs at least one choice (pick:a|b)", ErrUnknownRule)
		}
		return Rule{Kind: task.RulePick, Choices: choices}, nil
	case task.RuleRandom, task.RuleReference, task.RuleExample, task.RuleNull:
		if hasArg {
			return Rule{}, fmt.Errorf("%w: %s takes no argument", ErrUnknownRule, name)
		}
		return Rule{Kind: strings.ToLower(name)}, nil
	default:
		if hint, _ := strutil.FindClosest(name, Rules(), 2); hint != "" {
			return Rule{}, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownRule, s, hint)
		}
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownRule, s)
	}
}

// String renders the rule back into its textual form.
func (r Rule) String() string {
	switch r.Kind {
	case task.RuleAutoIncrement:
		if r.Start != 1 {
			return fmt.Sprintf("%s:%d", r.Kind, r.Start)
		}
	case task.RuleFixed:
		return task.RuleFixed + ":" + r.Value
	case task.RulePick:
		return task.RulePick + ":" + strings.Join(r.Choices, "|")
	}
	return r.Kind
}

// Rules lists the rule names offered by the column editor.
func Rules() []string {
	return []string{
		task.RuleAutoIncrement,
		task.RuleRandom,
		task.RuleReference,
		task.RuleFixed + ":",
		task.RulePick + ":",
		task.RuleExample,
		task.RuleNull,
	}
}

func legacyRule(s string) (string, bool) {
	if kind, ok := legacyRules[s]; ok {
		return kind, true
	}
	// "关联用户表" and similar name the referenced table after the prefix
	if strings.HasPrefix(s, "关联") {
		return task.RuleReference, true
	}
	if strings.HasPrefix(s, "随机") {
		return task.RuleRandom, true
	}
	return "", false
}

// CheckRule validates a rule against the column it is attached to.
func CheckRule(col task.ColumnSpec) error {
	rule, err := ParseRule(col.GenerationRule)
	if err != nil {
		return fmt.Errorf("column %s: %w", col.Name, err)
	}
	switch rule.Kind {
	case task.RuleReference:
		if !col.IsForeignKey {
			return fmt.Errorf("column %s: reference rule requires a foreign key", col.Name)
		}
	case task.RuleNull:
		if !col.Nullable {
			return fmt.Errorf("column %s: null rule on a NOT NULL column", col.Name)
		}
	case task.RuleExample:
		if col.Example == "" {
			return fmt.Errorf("column %s: example rule without an example value", col.Name)
		}
	}
	return nil
}
