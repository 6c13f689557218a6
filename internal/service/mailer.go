package service

import (
	"context"

	"go-social-core/internal/domain"
)

// MailKind selects the message template a collaborator should deliver.
type MailKind string

const (
	MailActivation MailKind = "activation"
	MailReset      MailKind = "reset"
)

// Mailer is the fire-and-forget delivery contract. The token is the
// plaintext to embed in the activation or reset link; delivery guarantees
// and retries belong to the implementing collaborator.
type Mailer interface {
	Send(ctx context.Context, kind MailKind, u *domain.User, token string) error
}

// NopMailer discards everything. Useful for tests and for embedders that
// wire delivery elsewhere.
type NopMailer struct{}

func (NopMailer) Send(context.Context, MailKind, *domain.User, string) error { return nil }
