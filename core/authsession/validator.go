package authsession

import "context"

// ValidationOutcome is the credential validator's verdict. Identity holds
// metadata about the authenticated user (e.g. display name, user id) used
// to build the caller-facing message.
type ValidationOutcome struct {
	OK       bool
	Message  string
	Identity map[string]any
}

// Validator checks a credential bundle against the back-end system. It is
// the only collaborator that performs network I/O on the authentication
// path. A returned error means the check itself could not be carried out;
// a rejection is OK=false with the reason in Message.
type Validator interface {
	Validate(ctx context.Context, creds Credentials) (ValidationOutcome, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, creds Credentials) (ValidationOutcome, error)

func (f ValidatorFunc) Validate(ctx context.Context, creds Credentials) (ValidationOutcome, error) {
	return f(ctx, creds)
}
