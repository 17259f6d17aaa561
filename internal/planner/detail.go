package planner

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/2beens/gymplan/internal/catalog"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/internal/textgen"

	"go.opentelemetry.io/otel/attribute"
)

const maxDetailExamples = 10

// ExerciseDetail is the generated catalog definition of a missing exercise.
type ExerciseDetail struct {
	Name        string
	MuscleGroup catalog.MuscleGroup
	Equipment   catalog.Equipment
	Description string
}

// DetailGenerator asks the text generation service to describe one exercise.
type DetailGenerator struct {
	client      textgen.Client
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

func NewDetailGenerator(client textgen.Client, temperature float64, maxTokens int, timeout time.Duration) *DetailGenerator {
	return &DetailGenerator{
		client:      client,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
	}
}

// Generate returns the exercise definition with muscle group and equipment already
// validated: an unknown muscle group becomes "other", unknown equipment is cleared.
func (g *DetailGenerator) Generate(ctx context.Context, name string, examples []catalog.Exercise) (_ *ExerciseDetail, _ textgen.Usage, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "planner.detail.generate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("exercise.name", name),
		attribute.Int("examples", len(examples)),
	)

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	completion, err := g.client.Complete(callCtx, textgen.Request{
		SystemPrompt:   exerciseDetailSystemPrompt(examples),
		UserPrompt:     exerciseDetailUserPrompt(name),
		ResponseFormat: textgen.ResponseFormatJSON,
		Temperature:    g.temperature,
		MaxTokens:      g.maxTokens,
	})
	var usage textgen.Usage
	if completion != nil {
		usage = completion.Usage
	}
	if err != nil {
		return nil, usage, fmt.Errorf("complete: %w", err)
	}

	doc, err := decodeGenerated(completion.Content)
	if err != nil {
		return nil, usage, err
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, usage, fmt.Errorf("generated exercise detail is not an object")
	}

	return parseExerciseDetail(name, obj), usage, nil
}

func parseExerciseDetail(requestedName string, obj map[string]any) *ExerciseDetail {
	detail := &ExerciseDetail{
		Name:        requestedName,
		MuscleGroup: catalog.MuscleGroupOther,
	}

	if generatedName, ok := stringField(obj, "name"); ok && generatedName != "" && utf8.RuneCountInString(generatedName) <= 100 {
		detail.Name = generatedName
	}
	if mg, ok := stringField(obj, "muscleGroup"); ok {
		if muscleGroup := catalog.MuscleGroup(strings.ToLower(mg)); muscleGroup.IsValid() {
			detail.MuscleGroup = muscleGroup
		}
	}
	if eq, ok := stringField(obj, "equipment"); ok {
		if equipment := catalog.Equipment(strings.ToLower(eq)); equipment.IsValid() {
			detail.Equipment = equipment
		}
	}
	if description, ok := stringField(obj, "description"); ok {
		detail.Description = description
	}

	return detail
}

// similarExamples picks up to maxDetailExamples catalog entries, those sharing
// a word with name first, then the rest in catalog order.
func similarExamples(name string, exercises []catalog.Exercise) []catalog.Exercise {
	words := make(map[string]bool)
	for _, w := range strings.Fields(catalog.NameKey(name)) {
		words[w] = true
	}

	similar := make([]catalog.Exercise, 0, maxDetailExamples)
	var rest []catalog.Exercise
	for _, e := range exercises {
		if sharesWord(e.Name, words) {
			similar = append(similar, e)
		} else {
			rest = append(rest, e)
		}
	}
	examples := append(similar, rest...)
	if len(examples) > maxDetailExamples {
		examples = examples[:maxDetailExamples]
	}
	return examples
}

func sharesWord(name string, words map[string]bool) bool {
	for _, w := range strings.Fields(catalog.NameKey(name)) {
		if words[w] {
			return true
		}
	}
	return false
}
