package rowaction

import "context"

// Question describes a single-value prompt shown to the user.
type Question struct {
	Title       string
	Label       string
	Current     string
	Placeholder string
	Choices     []Choice
}

// Choice is one selectable answer.
type Choice struct {
	Value string
	Label string
}

// Answer is the user's response to a Question. OK is false when the user
// cancelled; Value is then meaningless.
type Answer struct {
	Value string
	OK    bool
}

// Prompter suspends the caller until the user confirms or cancels.
type Prompter interface {
	Prompt(ctx context.Context, q Question) (Answer, error)
}

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, q Question) (bool, error)
}

// Answered is a Prompter whose answer was already collected, e.g. by a
// submitted HTML form.
type Answered Answer

// Prompt returns the stored answer.
func (a Answered) Prompt(ctx context.Context, _ Question) (Answer, error) {
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}
	return Answer(a), nil
}

// Confirmed is a Confirmer with a fixed decision.
type Confirmed bool

// Confirm returns the stored decision.
func (c Confirmed) Confirm(ctx context.Context, _ Question) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(c), nil
}

// Cancelled is a Prompter that always reports cancellation.
var Cancelled Prompter = Answered{}
