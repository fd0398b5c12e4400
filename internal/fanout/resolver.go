package fanout

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/berkayemre/chitchat-notify/internal/models"
)

// Resolver determines which device tokens a message fans out to.
//
// Two strategies: when the message carries a client-supplied token list
// (captured at send time), that list wins, since it avoids both the extra
// directory reads and the race of membership changing between send and
// trigger. Otherwise membership is traversed server-side and each member's
// current token is read.
type Resolver struct {
	dir Directory
	log zerolog.Logger
}

// NewResolver creates a resolver over the given directory.
func NewResolver(dir Directory, log zerolog.Logger) *Resolver {
	return &Resolver{dir: dir, log: log}
}

// Resolve returns the push recipients for a message, excluding the sender.
// Members without a registered token are silently dropped. A failed user
// read skips that member only.
func (r *Resolver) Resolve(ctx context.Context, msg *models.Message, ch *models.Channel) []Recipient {
	if len(msg.PartnerTokens) > 0 {
		recipients := make([]Recipient, 0, len(msg.PartnerTokens))
		for _, token := range msg.PartnerTokens {
			if token == "" {
				continue
			}
			recipients = append(recipients, Recipient{Token: token})
		}
		return recipients
	}

	if ch == nil {
		return nil
	}

	var recipients []Recipient
	for _, uid := range ch.MembersUids {
		if uid == msg.OwnerUID {
			continue
		}

		user, err := r.dir.GetUser(ctx, uid)
		if err != nil {
			r.log.Error().Err(err).
				Str("message_id", msg.ID).
				Str("uid", uid).
				Msg("token read failed, skipping recipient")
			continue
		}
		token := user.Token()
		if token == "" {
			// No registered device; nothing to do for this member.
			continue
		}
		recipients = append(recipients, Recipient{UserID: uid, Token: token})
	}
	return recipients
}
