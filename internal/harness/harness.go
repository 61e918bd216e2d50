package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/codebook/internal/compiler"
	"github.com/roach88/codebook/internal/ir"
	"github.com/roach88/codebook/internal/metric"
	"github.com/roach88/codebook/internal/model"
	"github.com/roach88/codebook/internal/store"
	"github.com/roach88/codebook/internal/testutil"
)

// instance is a tracked predicate or column predicate.
type instance interface {
	model.Dependent
	String() string
	DBString() string
}

// Harness runs one scenario against a fresh database journaled to an
// in-memory store.
type Harness struct {
	store     *store.Store
	recorder  *store.Recorder
	db        *model.Database
	instances map[string]instance
	logger    *slog.Logger
}

type config struct {
	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures Run.
type Option func(*config)

// WithLogger sets the logger for the database and harness.
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics instruments the scenario's database and journal.
func WithMetrics(m *metric.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory store for isolation, with a
// fixed database token so traces are reproducible.
//
// Execution flow:
//  1. Compile, validate and register the vocabulary
//  2. Create and track the instances
//  3. Apply each edit, checking its expected outcome
//  4. Evaluate assertions
//
// The returned error reports a scenario that could not be set up; failed
// expectations and assertions are in the Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{logger: testutil.DiscardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	dbOpts := []model.Option{
		model.WithLogger(cfg.logger),
		model.WithTokenGenerator(testutil.NewFixedTokenGenerator(scenario.Token)),
		model.WithMetrics(cfg.metrics),
	}
	if scenario.TicksPerSecond != 0 {
		dbOpts = append(dbOpts, model.WithTicksPerSecond(scenario.TicksPerSecond))
	}
	db, err := model.New(scenario.Name, dbOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	rec, err := store.NewRecorder(ctx, st, db,
		store.WithRecorderLogger(cfg.logger),
		store.WithRecorderMetrics(cfg.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start journal: %w", err)
	}

	h := &Harness{
		store:     st,
		recorder:  rec,
		db:        db,
		instances: make(map[string]instance),
		logger:    cfg.logger,
	}

	if err := h.buildVocab(ctx, scenario.Vocab); err != nil {
		return nil, err
	}
	for i, step := range scenario.Instances {
		if err := h.createInstance(step); err != nil {
			return nil, fmt.Errorf("instance %d (%s): %w", i, step.Name, err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h.executeStep(ctx, i, step, result)
	}

	for name, inst := range h.instances {
		result.Instances[name] = inst.String()
	}
	for _, ve := range h.elements() {
		result.Elements[ve.Name()] = ve.DBString()
	}

	actx := &AssertionContext{
		Ctx:       ctx,
		Store:     st,
		DB:        db,
		Instances: h.instances,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) buildVocab(ctx context.Context, paths []string) error {
	spec, err := compiler.LoadVocabFiles(paths...)
	if err != nil {
		return fmt.Errorf("failed to load vocab: %w", err)
	}
	if errs := compiler.Validate(spec); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("invalid vocab:\n  %s", strings.Join(msgs, "\n  "))
	}
	if _, err := compiler.Build(ctx, h.recorder, spec); err != nil {
		return fmt.Errorf("failed to register vocab: %w", err)
	}
	return nil
}

func (h *Harness) elements() []model.VocabElement {
	var out []model.VocabElement
	for _, id := range h.db.Vocab().IDs() {
		if ve, err := h.db.Vocab().VocabElement(id); err == nil {
			out = append(out, ve)
		}
	}
	return out
}

// executeStep applies one edit, records it in the trace and checks it
// against the step's expected outcome.
func (h *Harness) executeStep(ctx context.Context, i int, step EditStep, result *Result) {
	before := h.snapshot()

	id, err := h.apply(ctx, step)
	outcome := outcomeOf(err)

	after := h.snapshot()
	updated := 0
	for name, s := range after {
		if before[name] != s {
			updated++
		}
	}

	result.AddTrace(TraceEvent{
		Step:      i,
		Op:        step.Op,
		Element:   step.Element,
		ElementID: int64(id),
		Outcome:   outcome,
		Updated:   updated,
		LastID:    int64(h.db.Clock().Current()),
	})

	switch {
	case step.ExpectError == "" && err != nil:
		result.AddError(fmt.Sprintf("steps[%d] %s %s: %v", i, step.Op, step.Element, err))
	case step.ExpectError != "" && outcome != step.ExpectError:
		result.AddError(fmt.Sprintf("steps[%d] %s %s: expected error %s, got %s", i, step.Op, step.Element, step.ExpectError, outcome))
	}

	h.logger.Info("step applied",
		"step", i,
		"op", step.Op,
		"element", step.Element,
		"outcome", outcome,
		"updated", updated,
	)
}

func (h *Harness) snapshot() map[string]string {
	out := make(map[string]string, len(h.instances))
	for name, inst := range h.instances {
		out[name] = inst.String()
	}
	return out
}

// outcomeOf maps an edit error to its trace outcome.
func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var ce *model.ConsistencyError
	if errors.As(err, &ce) {
		return string(ce.Code)
	}
	return OutcomeError
}

// apply performs the edit and returns the ID of the element it touched.
func (h *Harness) apply(ctx context.Context, step EditStep) (model.ID, error) {
	if step.Op == OpAddElement {
		return h.addElement(ctx, step)
	}

	cur, err := h.db.Vocab().VocabElementByName(step.Element)
	if err != nil {
		return model.InvalidID, err
	}
	if step.Op == OpRemoveElement {
		return cur.ID(), h.recorder.RemoveVocabElement(ctx, cur.ID())
	}

	spec, err := ir.FromElement(cur)
	if err != nil {
		return cur.ID(), err
	}
	if err := editSpec(&spec, step); err != nil {
		return cur.ID(), err
	}
	ve, err := ir.ApplyTo(cur, spec)
	if err != nil {
		return cur.ID(), err
	}
	return cur.ID(), h.recorder.ReplaceVocabElement(ctx, ve)
}

func (h *Harness) addElement(ctx context.Context, step EditStep) (model.ID, error) {
	s := ir.ElementSpec{
		Kind: step.Kind,
		Name: step.Element,
		Type: strings.ToUpper(step.Type),
		Args: make([]ir.ArgSpec, 0, len(step.Args)),
	}
	for _, d := range step.Args {
		as, err := d.spec()
		if err != nil {
			return model.InvalidID, err
		}
		s.Args = append(s.Args, as)
	}
	ve, err := ir.Build(h.db, s)
	if err != nil {
		return model.InvalidID, err
	}
	return h.recorder.AddElement(ctx, ve)
}

// editSpec rewrites spec as step describes. Arguments keep their IDs, so
// ir.ApplyTo turns the result into in-place edits.
func editSpec(spec *ir.ElementSpec, step EditStep) error {
	// Recorded mirror IDs only matter when replaying a journal.
	spec.CPArgIDs = nil

	if step.Op == OpRenameElement {
		spec.Name = step.To
		return nil
	}
	if step.Op == OpSetVarLen {
		spec.VarLen = step.VarLen
		return nil
	}
	if step.Op == OpAddArg {
		as, err := step.Decl.spec()
		if err != nil {
			return err
		}
		spec.Args = slices.Insert(spec.Args, position(step.At, len(spec.Args)), as)
		return nil
	}

	pos := slices.IndexFunc(spec.Args, func(a ir.ArgSpec) bool { return a.Name == step.Arg })
	if pos < 0 {
		return &model.ConsistencyError{
			Code:    model.ErrCodeNotFound,
			Op:      "harness." + step.Op,
			Message: fmt.Sprintf("%s has no argument %s", spec.Name, step.Arg),
		}
	}
	a := &spec.Args[pos]

	switch step.Op {
	case OpDeleteArg:
		spec.Args = slices.Delete(spec.Args, pos, pos+1)
	case OpRenameArg:
		a.Name = step.To
	case OpRetypeArg:
		*a = ir.ArgSpec{ID: a.ID, Name: a.Name, Type: strings.ToUpper(step.Type), Hidden: a.Hidden}
	case OpMoveArg:
		moved := *a
		spec.Args = slices.Delete(spec.Args, pos, pos+1)
		spec.Args = slices.Insert(spec.Args, position(step.At, len(spec.Args)), moved)
	case OpSetRange:
		a.Min, a.Max = "", ""
		a.SubRange = len(step.Range) > 0
		if a.SubRange {
			texts, err := boundTexts(step.Range)
			if err != nil {
				return err
			}
			a.Min, a.Max = texts[0], texts[1]
		}
	case OpSetApproved:
		a.SubRange = len(step.Approved) > 0
		a.Approved = step.Approved
	}
	return nil
}

// position clamps an optional target index; nil appends.
func position(at *int, n int) int {
	if at == nil || *at > n {
		return n
	}
	return max(*at, 0)
}

// spec converts the declaration into an ArgSpec without ID.
func (d ArgDecl) spec() (ir.ArgSpec, error) {
	as := ir.ArgSpec{
		Name:     d.Name,
		Type:     strings.ToUpper(d.Type),
		Hidden:   d.Hidden,
		Approved: d.Approved,
	}
	if len(d.Range) > 0 {
		texts, err := boundTexts(d.Range)
		if err != nil {
			return ir.ArgSpec{}, fmt.Errorf("%s: %w", d.Name, err)
		}
		as.Min, as.Max = texts[0], texts[1]
	}
	as.SubRange = len(d.Range) > 0 || len(d.Approved) > 0
	return as, nil
}

// boundTexts renders a YAML [min, max] as ArgSpec bound text.
func boundTexts(r []any) ([2]string, error) {
	var out [2]string
	if len(r) != 2 {
		return out, fmt.Errorf("range must be [min, max], got %d values", len(r))
	}
	for i, v := range r {
		switch b := v.(type) {
		case int:
			out[i] = strconv.Itoa(b)
		case float64:
			out[i] = strconv.FormatFloat(b, 'g', -1, 64)
		case string:
			out[i] = b
		default:
			return out, fmt.Errorf("unsupported bound %v (%T)", v, v)
		}
	}
	return out, nil
}
