package views

import (
	"errors"
	"strconv"
	"strings"

	"projectboard/internal/config"
	"projectboard/internal/store"
	"projectboard/internal/validate"
)

// ErrInvalidInput is returned when a submission fails validation. The store is
// not touched in that case.
var ErrInvalidInput = errors.New("invalid input, please try again")

// Input is the form that creates records.
type Input struct {
	store *store.Store
	rules config.Validation
}

func NewInput(s *store.Store, rules config.Validation) *Input {
	return &Input{store: s, rules: rules}
}

// Submit validates the raw form fields and adds a record on success.
func (in *Input) Submit(title, description, people string) (string, error) {
	count, ok := parsePeople(people)
	if !ok && (in.rules.People.Required || strings.TrimSpace(people) != "") {
		return "", ErrInvalidInput
	}
	valid := validate.All(
		validate.Validatable{
			Value:     title,
			Required:  in.rules.Title.Required,
			MinLength: in.rules.Title.MinLength,
			MaxLength: in.rules.Title.MaxLength,
		},
		validate.Validatable{
			Value:     description,
			Required:  in.rules.Description.Required,
			MinLength: in.rules.Description.MinLength,
			MaxLength: in.rules.Description.MaxLength,
		},
		validate.Validatable{
			Value:    count,
			Required: in.rules.People.Required,
			Min:      in.rules.People.Min,
			Max:      in.rules.People.Max,
		},
	)
	if !valid {
		return "", ErrInvalidInput
	}
	return in.store.AddRecord(title, description, count), nil
}

func parsePeople(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}
