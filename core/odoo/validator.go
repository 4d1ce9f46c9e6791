package odoo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agentreports/erpauth/core/authsession"
	"github.com/agentreports/erpauth/core/logger"
)

// ConnectionValidator implements authsession.Validator by opening a fresh
// connection to the ERP instance named in the credential bundle.
type ConnectionValidator struct {
	log *slog.Logger
}

// NewConnectionValidator creates the validator. A nil logger falls back to
// slog.Default().
func NewConnectionValidator(log *slog.Logger) *ConnectionValidator {
	if log == nil {
		log = slog.Default()
	}
	return &ConnectionValidator{log: log}
}

// Validate authenticates against the ERP with the supplied credentials.
// Rejections come back as OK=false with a caller-facing message; transport
// faults are returned as errors.
func (v *ConnectionValidator) Validate(ctx context.Context, creds authsession.Credentials) (authsession.ValidationOutcome, error) {
	client := NewClient(creds.URL, creds.Database, creds.Username, creds.Password)

	info, err := client.TestConnection(ctx)
	if errors.Is(err, ErrAuthenticationFailed) {
		return authsession.ValidationOutcome{
			OK:      false,
			Message: "Invalid database, username, or password",
		}, nil
	}
	if err != nil {
		v.log.WarnContext(ctx, "erp connection test failed",
			logger.Component("odoo"), logger.Error(err))
		return authsession.ValidationOutcome{}, err
	}

	name, _ := info["name"].(string)
	if name == "" {
		name = creds.Username
	}

	return authsession.ValidationOutcome{
		OK:       true,
		Message:  fmt.Sprintf("Connection successful! Welcome %s", name),
		Identity: info,
	}, nil
}
