package domain

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestRuleFlags(t *testing.T) {
	cases := []struct {
		name   string
		rule   Rule
		answer string
		want   bool
	}{
		{"exact match", Exact{Value: "No"}, "No", true},
		{"exact is case sensitive", Exact{Value: "No"}, "no", false},
		{"below threshold", LessThan{Threshold: 3}, "2", true},
		{"at threshold", LessThan{Threshold: 3}, "3", false},
		{"lessThan malformed", LessThan{Threshold: 3}, "low", false},
		{"extreme member", Extreme{Values: []int{1, 5}}, "5", true},
		{"extreme non member", Extreme{Values: []int{1, 5}}, "4", false},
		{"extreme malformed", Extreme{Values: []int{1, 5}}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule.Flags(tc.answer); got != tc.want {
				t.Fatalf("Flags(%q) = %v, want %v", tc.answer, got, tc.want)
			}
		})
	}
}

func TestConditionDecodesJSONAndYAML(t *testing.T) {
	var q Question
	raw := `{"text":"Rate it","type":"rating","redFlagCondition":{"type":"extreme","value":[1,5]}}`
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	if _, ok := q.RedFlag.Rule.(Extreme); !ok {
		t.Fatalf("expected extreme rule, got %T", q.RedFlag.Rule)
	}

	var fromYAML Question
	doc := "text: Walks?\ntype: yes/no\nredFlagCondition: {type: exact, value: \"No\"}\n"
	if err := yaml.Unmarshal([]byte(doc), &fromYAML); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	if !fromYAML.RedFlag.Flags("No") {
		t.Fatalf("expected yaml rule to flag No")
	}

	out, err := json.Marshal(Question{Text: "x", Type: QuestionRating, RedFlag: When(LessThan{Threshold: 2})})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Question
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal back: %v", err)
	}
	if lt, ok := back.RedFlag.Rule.(LessThan); !ok || lt.Threshold != 2 {
		t.Fatalf("expected lessThan 2, got %#v", back.RedFlag.Rule)
	}
}

func TestConditionRejectsUnknownType(t *testing.T) {
	var c Condition
	if err := json.Unmarshal([]byte(`{"type":"between","value":[1,2]}`), &c); err == nil {
		t.Fatalf("expected error for unknown rule type")
	}
}
