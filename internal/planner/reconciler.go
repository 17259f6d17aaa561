package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/2beens/gymplan/internal/catalog"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/internal/textgen"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=reconciler_mocks_test.go -package=planner_test

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4000
	DefaultTimeout     = 25 * time.Second

	// CreatedByGenerator marks catalog entries added during plan generation.
	CreatedByGenerator = "generator"
)

type exerciseCatalog interface {
	List(ctx context.Context) ([]catalog.Exercise, error)
	Create(ctx context.Context, exercise catalog.Exercise) (*catalog.Exercise, error)
}

type detailGenerator interface {
	Generate(ctx context.Context, name string, examples []catalog.Exercise) (*ExerciseDetail, textgen.Usage, error)
}

type Options struct {
	Temperature float64
	MaxTokens   int
	// Timeout bounds every single text generation call.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Temperature <= 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Reconciler turns a free-text request into a PlanDraft whose exercise references all
// resolve to catalog entries, creating missing exercises along the way.
// It holds no locks: concurrent generations coordinate only through the catalog's
// unique name constraint.
type Reconciler struct {
	catalog exerciseCatalog
	client  textgen.Client
	details detailGenerator
	options Options
}

func NewReconciler(exCatalog exerciseCatalog, client textgen.Client, options Options) *Reconciler {
	options = options.withDefaults()
	return &Reconciler{
		catalog: exCatalog,
		client:  client,
		details: NewDetailGenerator(client, options.Temperature, options.MaxTokens, options.Timeout),
		options: options,
	}
}

// NewReconcilerWithDetailGenerator is NewReconciler with a custom exercise detail source.
func NewReconcilerWithDetailGenerator(exCatalog exerciseCatalog, client textgen.Client, details detailGenerator, options Options) *Reconciler {
	r := NewReconciler(exCatalog, client, options)
	r.details = details
	return r
}

type generation struct {
	mapping    map[string]string
	created    []string
	totalUsage textgen.Usage
}

func (r *Reconciler) Generate(ctx context.Context, prompt string) (_ *Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "planner.generate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, newError(ErrInvalidInput, errors.New("prompt is empty"))
	}
	if n := utf8.RuneCountInString(prompt); n > MaxPromptLength {
		return nil, newError(ErrInvalidInput, fmt.Errorf("prompt length %d exceeds %d", n, MaxPromptLength))
	}

	snapshot, err := r.catalog.List(ctx)
	if err != nil {
		return nil, newError(ErrCatalogUnavailable, fmt.Errorf("list catalog: %w", err))
	}
	span.SetAttributes(attribute.Int("catalog.size", len(snapshot)))

	draft, missing, usage, err := r.generateDraft(ctx, prompt, snapshot)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("plan.workouts", len(draft.Workouts)),
		attribute.Int("plan.missing_exercises", len(missing)),
	)

	gen := &generation{
		mapping:    make(map[string]string),
		created:    make([]string, 0),
		totalUsage: usage,
	}
	for _, name := range missing {
		if err := r.materialize(ctx, gen, name); err != nil {
			return nil, err
		}
	}

	if err := r.resolve(ctx, gen, draft); err != nil {
		return nil, err
	}

	log.Debugf("plan [%s] generated: %d workouts, %d exercises created", draft.Name, len(draft.Workouts), len(gen.created))

	return &Result{
		Plan:             *draft,
		CreatedExercises: gen.created,
		Usage:            usage,
		TotalUsage:       gen.totalUsage,
	}, nil
}

// generateDraft runs the single plan generation call, then validates and normalizes its output.
func (r *Reconciler) generateDraft(ctx context.Context, prompt string, snapshot []catalog.Exercise) (*PlanDraft, []string, textgen.Usage, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.options.Timeout)
	defer cancel()

	completion, err := r.client.Complete(callCtx, textgen.Request{
		SystemPrompt:   planSystemPrompt(snapshot),
		UserPrompt:     planUserPrompt(prompt),
		ResponseFormat: textgen.ResponseFormatJSON,
		Temperature:    r.options.Temperature,
		MaxTokens:      r.options.MaxTokens,
	})
	if err != nil {
		return nil, nil, textgen.Usage{}, newError(ErrGenerationFailed, err)
	}

	doc, err := decodeGenerated(completion.Content)
	if err != nil {
		return nil, nil, completion.Usage, newError(ErrGenerationFailed, err)
	}

	builder := newDraftBuilder(catalog.NewIndex(snapshot))
	draft, err := builder.build(doc)
	if err != nil {
		return nil, nil, completion.Usage, err
	}

	return draft, builder.missing, completion.Usage, nil
}

// materialize makes sure the catalog holds an exercise for name, adopting an existing
// row whenever one shows up, and records the requested name to canonical name mapping.
func (r *Reconciler) materialize(ctx context.Context, gen *generation, name string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "planner.materialize")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.name", name))

	creationFailed := func(cause error) error {
		return &Error{
			Kind:    ErrExerciseCreationFailed,
			Names:   []string{name},
			Created: append([]string(nil), gen.created...),
			Err:     cause,
		}
	}

	current, err := r.catalog.List(ctx)
	if err != nil {
		return creationFailed(fmt.Errorf("re-fetch catalog: %w", err))
	}
	index := catalog.NewIndex(current)
	if existing, ok := index.Lookup(name); ok {
		log.Debugf("exercise [%s] appeared in catalog as [%s], adopting", name, existing.Name)
		gen.mapping[catalog.NameKey(name)] = existing.Name
		return nil
	}

	detail, usage, err := r.details.Generate(ctx, name, similarExamples(name, current))
	gen.totalUsage = gen.totalUsage.Add(usage)
	if err != nil {
		return creationFailed(fmt.Errorf("generate exercise detail: %w", err))
	}

	if existing, ok := index.Lookup(detail.Name); ok {
		log.Debugf("exercise [%s] generated as known [%s], adopting", name, existing.Name)
		gen.mapping[catalog.NameKey(name)] = existing.Name
		return nil
	}

	created, err := r.catalog.Create(ctx, catalog.Exercise{
		Name:        detail.Name,
		MuscleGroup: detail.MuscleGroup,
		Equipment:   detail.Equipment,
		Description: detail.Description,
		CreatedBy:   CreatedByGenerator,
	})
	if err != nil {
		if !errors.Is(err, catalog.ErrExerciseExists) {
			return creationFailed(fmt.Errorf("create [%s]: %w", detail.Name, err))
		}

		// lost a race with a concurrent creator, adopt the winner's row
		afterCollision, listErr := r.catalog.List(ctx)
		if listErr != nil {
			return creationFailed(fmt.Errorf("re-fetch catalog after collision: %w", listErr))
		}
		winner, ok := catalog.NewIndex(afterCollision).Lookup(detail.Name)
		if !ok {
			return creationFailed(fmt.Errorf("exercise [%s] collided but is not in catalog: %w", detail.Name, err))
		}
		log.Infof("exercise [%s] created concurrently, adopting [%s]", detail.Name, winner.Name)
		gen.mapping[catalog.NameKey(name)] = winner.Name
		return nil
	}

	log.Infof("exercise [%s] added to catalog: %d [%s]", created.Name, created.ID, created.MuscleGroup)
	gen.mapping[catalog.NameKey(name)] = created.Name
	gen.created = append(gen.created, created.Name)
	return nil
}

// resolve rewrites every exercise reference to its canonical catalog name and checks
// that each one exists in the catalog as of now.
func (r *Reconciler) resolve(ctx context.Context, gen *generation, draft *PlanDraft) error {
	final, err := r.catalog.List(ctx)
	if err != nil {
		return &Error{
			Kind:    ErrCatalogUnavailable,
			Created: gen.created,
			Err:     fmt.Errorf("list final catalog: %w", err),
		}
	}
	index := catalog.NewIndex(final)

	for i := range draft.Workouts {
		exercises := draft.Workouts[i].Exercises
		for j := range exercises {
			ref := exercises[j].ExerciseName
			if mapped, ok := gen.mapping[catalog.NameKey(ref)]; ok {
				ref = mapped
			}
			if canonical, ok := index.Lookup(ref); ok {
				ref = canonical.Name
			}
			exercises[j].ExerciseName = ref
		}
	}

	unresolvedSet := make(map[string]bool)
	for _, ref := range draft.ExerciseNames() {
		if _, ok := index.Lookup(ref); !ok {
			unresolvedSet[ref] = true
		}
	}
	if len(unresolvedSet) == 0 {
		return nil
	}

	unresolved := make([]string, 0, len(unresolvedSet))
	for name := range unresolvedSet {
		unresolved = append(unresolved, name)
	}
	sort.Strings(unresolved)

	return &Error{
		Kind:    ErrUnresolvedExercises,
		Names:   unresolved,
		Created: gen.created,
	}
}
