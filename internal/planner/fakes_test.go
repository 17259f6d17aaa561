package planner_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymplan/internal/catalog"
	"github.com/2beens/gymplan/internal/textgen"
)

// memCatalog is an in-memory exercise catalog with a case-sensitive unique name constraint.
type memCatalog struct {
	mutex       sync.Mutex
	exercises   []catalog.Exercise
	nextID      int64
	listCalls   int
	createCalls int

	// beforeCreate and afterCreate run unlocked around a Create
	beforeCreate func(name string)
	afterCreate  func(name string)
	failCreate   map[string]error
	// hidden names are left out of List results
	hidden map[string]bool
}

func newMemCatalog(names ...string) *memCatalog {
	c := &memCatalog{
		nextID:     1,
		hidden:     make(map[string]bool),
		failCreate: make(map[string]error),
	}
	for _, name := range names {
		c.add(catalog.Exercise{Name: name, MuscleGroup: catalog.MuscleGroupOther})
	}
	return c
}

func (c *memCatalog) add(e catalog.Exercise) catalog.Exercise {
	e.ID = c.nextID
	c.nextID++
	e.CreatedAt = time.Now()
	c.exercises = append(c.exercises, e)
	return e
}

func (c *memCatalog) List(_ context.Context) ([]catalog.Exercise, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.listCalls++
	list := make([]catalog.Exercise, 0, len(c.exercises))
	for _, e := range c.exercises {
		if c.hidden[e.Name] {
			continue
		}
		list = append(list, e)
	}
	return list, nil
}

func (c *memCatalog) Create(_ context.Context, exercise catalog.Exercise) (*catalog.Exercise, error) {
	if c.beforeCreate != nil {
		c.beforeCreate(exercise.Name)
	}

	created, err := c.create(exercise)
	if err != nil {
		return nil, err
	}

	if c.afterCreate != nil {
		c.afterCreate(exercise.Name)
	}
	return created, nil
}

func (c *memCatalog) create(exercise catalog.Exercise) (*catalog.Exercise, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.createCalls++
	if err, ok := c.failCreate[exercise.Name]; ok {
		return nil, err
	}
	for _, e := range c.exercises {
		if e.Name == exercise.Name {
			return nil, fmt.Errorf("%w: %s", catalog.ErrExerciseExists, exercise.Name)
		}
	}
	created := c.add(exercise)
	return &created, nil
}

func (c *memCatalog) hide(name string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.hidden[name] = true
}

func (c *memCatalog) insertConcurrently(e catalog.Exercise) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.add(e)
}

func (c *memCatalog) byName(name string) []catalog.Exercise {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	var found []catalog.Exercise
	for _, e := range c.exercises {
		if catalog.NameKey(e.Name) == catalog.NameKey(name) {
			found = append(found, e)
		}
	}
	return found
}

func (c *memCatalog) stats() (listCalls, createCalls int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.listCalls, c.createCalls
}

// scriptedClient answers plan and exercise detail requests from test supplied functions.
type scriptedClient struct {
	mutex       sync.Mutex
	plan        func(ctx context.Context, req textgen.Request) (*textgen.Completion, error)
	detail      func(name string) (*textgen.Completion, error)
	planCalls   int
	detailCalls int
	requests    []textgen.Request
}

func (c *scriptedClient) Complete(ctx context.Context, req textgen.Request) (*textgen.Completion, error) {
	c.mutex.Lock()
	c.requests = append(c.requests, req)
	isDetail := strings.HasPrefix(req.UserPrompt, "Describe the exercise: ")
	if isDetail {
		c.detailCalls++
	} else {
		c.planCalls++
	}
	c.mutex.Unlock()

	if isDetail {
		if c.detail == nil {
			return nil, fmt.Errorf("unexpected detail request: %s", req.UserPrompt)
		}
		return c.detail(strings.TrimPrefix(req.UserPrompt, "Describe the exercise: "))
	}
	if c.plan == nil {
		return nil, fmt.Errorf("unexpected plan request")
	}
	return c.plan(ctx, req)
}

func (c *scriptedClient) calls() (planCalls, detailCalls int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.planCalls, c.detailCalls
}

func respondWith(content string, usage textgen.Usage) func(context.Context, textgen.Request) (*textgen.Completion, error) {
	return func(context.Context, textgen.Request) (*textgen.Completion, error) {
		return &textgen.Completion{Content: content, Usage: usage}, nil
	}
}

// detailFor describes every requested exercise as a shoulder machine exercise with the requested name.
func detailFor(usage textgen.Usage) func(name string) (*textgen.Completion, error) {
	return func(name string) (*textgen.Completion, error) {
		detailJson, err := json.Marshal(map[string]any{
			"name":        name,
			"muscleGroup": "shoulders",
			"equipment":   "machine",
			"description": "generated " + name,
		})
		if err != nil {
			return nil, err
		}
		return &textgen.Completion{Content: string(detailJson), Usage: usage}, nil
	}
}

type ex map[string]any

func planJSON(workouts map[string][]ex) string {
	return planJSONOrdered(3, orderedWorkouts(workouts)...)
}

type workoutJSON struct {
	name      string
	exercises []ex
}

func orderedWorkouts(workouts map[string][]ex) []workoutJSON {
	var ordered []workoutJSON
	for _, name := range []string{"Day A", "Day B", "Day C"} {
		if exercises, ok := workouts[name]; ok {
			ordered = append(ordered, workoutJSON{name: name, exercises: exercises})
		}
	}
	return ordered
}

func planJSONOrdered(workoutsPerWeek int, workouts ...workoutJSON) string {
	rawWorkouts := make([]any, 0, len(workouts))
	for _, w := range workouts {
		exercises := make([]any, 0, len(w.exercises))
		for _, e := range w.exercises {
			exercises = append(exercises, map[string]any(e))
		}
		rawWorkouts = append(rawWorkouts, map[string]any{
			"name":      w.name,
			"exercises": exercises,
		})
	}
	planBytes, err := json.Marshal(map[string]any{
		"name":            "Strength Builder",
		"description":     "three days a week",
		"workoutsPerWeek": workoutsPerWeek,
		"workouts":        rawWorkouts,
	})
	if err != nil {
		panic(err)
	}
	return string(planBytes)
}
