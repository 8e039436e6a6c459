package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleKind is the discriminator stored alongside a rule.
type RuleKind string

const (
	RuleExact    RuleKind = "exact"
	RuleLessThan RuleKind = "lessThan"
	RuleExtreme  RuleKind = "extreme"
)

// Rule is a red-flag condition. The set of rules is closed: Exact, LessThan and Extreme.
type Rule interface {
	Flags(answer string) bool
	Kind() RuleKind
	sealed()
}

// Exact flags when the answer equals Value.
type Exact struct{ Value string }

// LessThan flags when the numeric answer is below Threshold.
type LessThan struct{ Threshold int }

// Extreme flags when the numeric answer is one of Values.
type Extreme struct{ Values []int }

func (r Exact) Flags(answer string) bool { return answer == r.Value }

func (r LessThan) Flags(answer string) bool {
	n, ok := parseRating(answer)
	return ok && n < r.Threshold
}

func (r Extreme) Flags(answer string) bool {
	n, ok := parseRating(answer)
	return ok && slices.Contains(r.Values, n)
}

func (Exact) Kind() RuleKind    { return RuleExact }
func (LessThan) Kind() RuleKind { return RuleLessThan }
func (Extreme) Kind() RuleKind  { return RuleExtreme }

func (Exact) sealed()    {}
func (LessThan) sealed() {}
func (Extreme) sealed()  {}

// parseRating reads a numeric answer. Malformed input never flags.
func parseRating(answer string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Condition carries a Rule through JSON and YAML as {"type": ..., "value": ...}.
//
//	{"type": "exact",    "value": "No"}
//	{"type": "lessThan", "value": 3}
//	{"type": "extreme",  "value": [1, 5]}
type Condition struct {
	Rule
}

// When wraps a rule for use as Question.RedFlag.
func When(r Rule) *Condition {
	return &Condition{Rule: r}
}

type conditionEnvelope struct {
	Type  RuleKind        `json:"type"`
	Value json.RawMessage `json:"value"`
}

type conditionOut struct {
	Type  RuleKind `json:"type" yaml:"type"`
	Value any      `json:"value" yaml:"value"`
}

func (c Condition) encoded() (conditionOut, error) {
	switch r := c.Rule.(type) {
	case Exact:
		return conditionOut{Type: RuleExact, Value: r.Value}, nil
	case LessThan:
		return conditionOut{Type: RuleLessThan, Value: r.Threshold}, nil
	case Extreme:
		return conditionOut{Type: RuleExtreme, Value: r.Values}, nil
	default:
		return conditionOut{}, fmt.Errorf("rule: unsupported variant %T", c.Rule)
	}
}

// MarshalJSON implements json.Marshaler.
func (c Condition) MarshalJSON() ([]byte, error) {
	out, err := c.encoded()
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Condition) UnmarshalJSON(raw []byte) error {
	var envelope conditionEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("rule: cannot read type field: %w", err)
	}
	switch envelope.Type {
	case RuleExact:
		var v string
		if err := json.Unmarshal(envelope.Value, &v); err != nil {
			return fmt.Errorf("rule: exact value: %w", err)
		}
		c.Rule = Exact{Value: v}
	case RuleLessThan:
		var v int
		if err := json.Unmarshal(envelope.Value, &v); err != nil {
			return fmt.Errorf("rule: lessThan value: %w", err)
		}
		c.Rule = LessThan{Threshold: v}
	case RuleExtreme:
		var v []int
		if err := json.Unmarshal(envelope.Value, &v); err != nil {
			return fmt.Errorf("rule: extreme value: %w", err)
		}
		c.Rule = Extreme{Values: v}
	default:
		return fmt.Errorf("rule: unknown type %q", envelope.Type)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Condition) MarshalYAML() (any, error) {
	return c.encoded()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	var envelope struct {
		Type  RuleKind  `yaml:"type"`
		Value yaml.Node `yaml:"value"`
	}
	if err := node.Decode(&envelope); err != nil {
		return fmt.Errorf("rule: cannot read type field: %w", err)
	}
	switch envelope.Type {
	case RuleExact:
		var v string
		if err := envelope.Value.Decode(&v); err != nil {
			return fmt.Errorf("rule: exact value: %w", err)
		}
		c.Rule = Exact{Value: v}
	case RuleLessThan:
		var v int
		if err := envelope.Value.Decode(&v); err != nil {
			return fmt.Errorf("rule: lessThan value: %w", err)
		}
		c.Rule = LessThan{Threshold: v}
	case RuleExtreme:
		var v []int
		if err := envelope.Value.Decode(&v); err != nil {
			return fmt.Errorf("rule: extreme value: %w", err)
		}
		c.Rule = Extreme{Values: v}
	default:
		return fmt.Errorf("rule: unknown type %q", envelope.Type)
	}
	return nil
}
