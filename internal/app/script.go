package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"projectboard/internal/domain"
)

// Script is a sequence of board actions, usually read from YAML:
//
//	steps:
//	  - add: {title: Build shed, description: Construct a garden shed, people: "3"}
//	  - move: {ref: "#1", to: finished}
type Script struct {
	Steps []Step `yaml:"steps"`
}

type Step struct {
	Add  *AddStep  `yaml:"add,omitempty"`
	Move *MoveStep `yaml:"move,omitempty"`
	Drop *MoveStep `yaml:"drop,omitempty"`
}

type AddStep struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	People      string `yaml:"people"`
}

type MoveStep struct {
	ID  string        `yaml:"id,omitempty"`
	Ref string        `yaml:"ref,omitempty"`
	To  domain.Status `yaml:"to"`
}

// StepResult reports what a step did.
type StepResult struct {
	Index   int
	Action  string
	ID      string
	Skipped string
}

var ErrUnknownRecord = errors.New("unknown record")

func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("invalid script yaml: %w", err)
	}
	for i, st := range s.Steps {
		n := 0
		for _, set := range []bool{st.Add != nil, st.Move != nil, st.Drop != nil} {
			if set {
				n++
			}
		}
		if n != 1 {
			return s, fmt.Errorf("step %d: exactly one of add, move, drop is required", i+1)
		}
		if mv := st.moveStep(); mv != nil && mv.ID == "" && mv.Ref == "" {
			return s, fmt.Errorf("step %d: id or ref is required", i+1)
		}
	}
	return s, nil
}

func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, err
	}
	return ParseScript(data)
}

func (st Step) moveStep() *MoveStep {
	if st.Move != nil {
		return st.Move
	}
	return st.Drop
}

// Apply runs one step. Invalid form input is returned as an error; a move of
// an unknown record is reported in the result and leaves the board unchanged.
func (b *Board) Apply(ctx context.Context, st Step) (StepResult, error) {
	if err := ctx.Err(); err != nil {
		return StepResult{}, err
	}
	switch {
	case st.Add != nil:
		id, err := b.Input.Submit(st.Add.Title, st.Add.Description, st.Add.People)
		if err != nil {
			return StepResult{Action: "add"}, fmt.Errorf("add %q: %w", st.Add.Title, err)
		}
		return StepResult{Action: "add", ID: id}, nil
	case st.Move != nil, st.Drop != nil:
		mv := st.moveStep()
		action := "move"
		if st.Drop != nil {
			action = "drop"
		}
		ref := mv.ID
		if ref == "" {
			ref = mv.Ref
		}
		id, ok := b.Resolve(ref)
		if !ok {
			return StepResult{Action: action, ID: ref, Skipped: ErrUnknownRecord.Error()}, nil
		}
		if st.Drop != nil {
			b.List(mv.To).Drop(id)
		} else {
			b.Store.MoveRecord(id, mv.To)
		}
		return StepResult{Action: action, ID: id}, nil
	}
	return StepResult{}, errors.New("empty step")
}

// RunScript applies every step in order and stops at the first error.
func (b *Board) RunScript(ctx context.Context, s Script) ([]StepResult, error) {
	results := make([]StepResult, 0, len(s.Steps))
	for i, st := range s.Steps {
		res, err := b.Apply(ctx, st)
		res.Index = i + 1
		results = append(results, res)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if res.Skipped != "" {
			b.Logger.Printf("step %d: %s %s skipped: %s", res.Index, res.Action, res.ID, res.Skipped)
		}
	}
	return results, nil
}

func parseRef(ref string) (int, bool) {
	if !strings.HasPrefix(ref, "#") {
		return 0, false
	}
	n, err := strconv.Atoi(ref[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
