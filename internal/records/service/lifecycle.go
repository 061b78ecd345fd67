package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"clinic/internal/records/models"
	id "clinic/pkg/domain"
	"clinic/pkg/platform/audit"
	"clinic/pkg/requestcontext"
)

// ActivateUser transitions an inactive user to active.
// Returns InvalidTransition if the user is already active.
func (s *Service) ActivateUser(ctx context.Context, userID id.UserID) (user *models.User, err error) {
	ctx, finish := s.startSpan(ctx, "activate_user", attribute.Int64("user.id", int64(userID)))
	defer func() { finish(&err) }()

	return s.transitionUser(ctx, userID,
		(*models.User).CanActivate,
		(*models.User).ApplyActivation,
		audit.EventUserActivated, "activated",
	)
}

// DeactivateUser transitions an active user to inactive.
// Returns InvalidTransition if the user is already inactive.
func (s *Service) DeactivateUser(ctx context.Context, userID id.UserID) (user *models.User, err error) {
	ctx, finish := s.startSpan(ctx, "deactivate_user", attribute.Int64("user.id", int64(userID)))
	defer func() { finish(&err) }()

	return s.transitionUser(ctx, userID,
		(*models.User).CanDeactivate,
		(*models.User).ApplyDeactivation,
		audit.EventUserDeactivated, "deactivated",
	)
}

// transitionUser uses the Execute callback pattern for atomic
// validate-then-mutate. The store holds the lock (mutex or FOR UPDATE)
// during both, so the guard never sees a stale flag.
func (s *Service) transitionUser(
	ctx context.Context,
	userID id.UserID,
	guard func(*models.User) error,
	apply func(*models.User, time.Time),
	event audit.AuditEvent,
	transition string,
) (*models.User, error) {
	if err := requireID(models.KindUser, int64(userID)); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var user *models.User
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		u, err := s.users.Execute(txCtx, userID,
			guard,
			func(u *models.User) { apply(u, now) },
		)
		if err != nil {
			return wrapLookupErr(err, models.KindUser, int64(userID))
		}
		if err := s.emitAudit(txCtx, event, u.ID, models.KindUser, int64(u.ID)); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementTransition(transition)
	}
	return user, nil
}
