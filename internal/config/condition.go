package config

import (
	"log/slog"

	"github.com/expr-lang/expr"

	"github.com/dshills/keyscope/internal/input/key"
)

// ConditionEnv is the environment ignore conditions are evaluated against.
type ConditionEnv struct {
	Key     string `expr:"Key"`
	Code    int    `expr:"Code"`
	Event   string `expr:"Event"`
	Target  string `expr:"Target"`
	Origin  string `expr:"Origin"`
	Repeat  bool   `expr:"Repeat"`
	Shift   bool   `expr:"Shift"`
	Control bool   `expr:"Control"`
	Alt     bool   `expr:"Alt"`
	Meta    bool   `expr:"Meta"`
}

// NewConditionEnv describes a transition to a condition.
func NewConditionEnv(t key.Transition) ConditionEnv {
	return ConditionEnv{
		Key:     t.Key,
		Code:    t.Code,
		Event:   t.Type.String(),
		Target:  t.Target,
		Origin:  t.Origin,
		Repeat:  t.Repeat,
		Shift:   t.Modifiers.HasShift(),
		Control: t.Modifiers.HasCtrl(),
		Alt:     t.Modifiers.HasAlt(),
		Meta:    t.Modifiers.HasMeta(),
	}
}

// CompileCondition compiles a boolean expression over ConditionEnv, such as
// `Target == "input" && !Control`. Evaluation errors are logged and treated
// as false.
func CompileCondition(src string, logger *slog.Logger) (func(key.Transition) bool, error) {
	program, err := expr.Compile(src, expr.Env(ConditionEnv{}), expr.AsBool())
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return func(t key.Transition) bool {
		out, err := expr.Run(program, NewConditionEnv(t))
		if err != nil {
			logger.Error("ignore condition failed", "expression", src, "transition", t.String(), "error", err)
			return false
		}
		b, _ := out.(bool)
		return b
	}, nil
}
