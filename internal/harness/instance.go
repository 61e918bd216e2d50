package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/codebook/internal/model"
)

// createInstance builds a tracked predicate or column predicate and sets
// its arguments. Arguments are set in name order.
func (h *Harness) createInstance(step InstanceStep) error {
	ve, err := h.db.Vocab().VocabElementByName(step.Element)
	if err != nil {
		return err
	}

	var inst instance
	var fargs []model.FormalArgument
	var setArg func(int, *model.DataValue) error
	switch e := ve.(type) {
	case *model.PredicateVocabElement:
		p, err := model.NewPredicate(h.db, e.ID())
		if err != nil {
			return err
		}
		inst, fargs, setArg = p, e.FormalArgs(), p.SetArg
	case *model.MatrixVocabElement:
		cp, err := model.NewColPredicate(h.db, e.ID())
		if err != nil {
			return err
		}
		inst, fargs, setArg = cp, e.CPFormalArgs(), cp.SetArg
	default:
		return fmt.Errorf("unsupported element %T", ve)
	}

	for _, name := range sortedKeys(step.Args) {
		pos := slices.IndexFunc(fargs, func(fa model.FormalArgument) bool { return fa.Name() == name })
		if pos < 0 {
			return fmt.Errorf("%s has no argument %s", step.Element, name)
		}
		dv, err := h.newValue(fargs[pos], step.Args[name])
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		err = setArg(pos, dv)
		h.db.Release(dv)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	h.instances[step.Name] = inst
	h.logger.Debug("instance created", "name", step.Name, "element", step.Element, "value", inst.String())
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// newValue creates a value bound to fa from a YAML scalar or an
// {instance: name} reference. Untyped arguments take the kind the YAML
// value suggests.
func (h *Harness) newValue(fa model.FormalArgument, raw any) (*model.DataValue, error) {
	if raw == nil {
		return nil, fmt.Errorf("null value")
	}

	switch fa.Type() {
	case model.FargFloat:
		f, ok := asFloat(raw)
		if !ok {
			return nil, fmt.Errorf("want a number, got %v", raw)
		}
		return model.NewFloatDataValue(h.db, fa.ID(), f)
	case model.FargInteger:
		n, ok := raw.(int)
		if !ok {
			return nil, fmt.Errorf("want an integer, got %v", raw)
		}
		return model.NewIntDataValue(h.db, fa.ID(), int64(n))
	case model.FargTimeStamp:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("want a time stamp, got %v", raw)
		}
		ts, err := model.ParseTimeStamp(s)
		if err != nil {
			return nil, err
		}
		return model.NewTimeStampDataValue(h.db, fa.ID(), ts)
	case model.FargNominal, model.FargQuoteString, model.FargText:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("want a string, got %v", raw)
		}
		switch fa.Type() {
		case model.FargNominal:
			return model.NewNominalDataValue(h.db, fa.ID(), s)
		case model.FargQuoteString:
			return model.NewQuoteStringDataValue(h.db, fa.ID(), s)
		}
		return model.NewTextStringDataValue(h.db, fa.ID(), s)
	case model.FargPredicate, model.FargColPredicate:
		return h.refValue(fa, raw)
	}

	// Untyped.
	switch v := raw.(type) {
	case int:
		return model.NewIntDataValue(h.db, fa.ID(), int64(v))
	case float64:
		return model.NewFloatDataValue(h.db, fa.ID(), v)
	case string:
		if strings.HasPrefix(v, "(") {
			if ts, err := model.ParseTimeStamp(v); err == nil {
				return model.NewTimeStampDataValue(h.db, fa.ID(), ts)
			}
		}
		if ok, _ := model.IsValidNominal(v); ok {
			return model.NewNominalDataValue(h.db, fa.ID(), v)
		}
		return model.NewQuoteStringDataValue(h.db, fa.ID(), v)
	case map[string]any:
		return h.refValue(fa, raw)
	}
	return nil, fmt.Errorf("unsupported value %v (%T)", raw, raw)
}

// refValue resolves {instance: name} to a copy of that instance.
func (h *Harness) refValue(fa model.FormalArgument, raw any) (*model.DataValue, error) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) != 1 {
		return nil, fmt.Errorf("want {instance: name}, got %v", raw)
	}
	name, ok := m["instance"].(string)
	if !ok {
		return nil, fmt.Errorf("want {instance: name}, got %v", raw)
	}
	inst, ok := h.instances[name]
	if !ok {
		return nil, fmt.Errorf("unknown instance %q", name)
	}
	switch v := inst.(type) {
	case *model.Predicate:
		return model.NewPredDataValue(h.db, fa.ID(), v)
	case *model.ColPredicate:
		return model.NewColPredDataValue(h.db, fa.ID(), v)
	}
	return nil, fmt.Errorf("instance %q is %T", name, inst)
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
