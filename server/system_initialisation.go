package server

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/users"
	"github.com/rs/zerolog/log"
)

// InitialiseSystem makes sure the configured root user exists as an admin.
// With RECREATE_ROOT set the existing root user is deleted and created again,
// which also resets its password.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	username := s.config.GetRootUser()

	existing, err := s.repos.Users.GetByUsername(ctx, username)
	switch {
	case err == nil && !s.config.GetRecreateRoot():
		if !existing.Admin {
			existing.Admin = true
			if err := s.repos.Users.Upsert(ctx, existing); err != nil {
				return fmt.Errorf("[Server InitialiseSystem] failed to promote root user: %w", err)
			}
			log.Warn().Str("username", username).Msg("root user was not an admin, promoted")
		}
		return nil
	case err == nil:
		if err := s.repos.Users.Delete(ctx, existing.ID); err != nil {
			return fmt.Errorf("[Server InitialiseSystem] failed to delete root user: %w", err)
		}
		log.Info().Str("username", username).Msg("recreating root user")
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("[Server InitialiseSystem] failed to look up root user: %w", err)
	}

	root, err := users.New(username, s.config.GetRootPassword(), true)
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to create root user: %w", err)
	}
	if err := s.repos.Users.Upsert(ctx, root); err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to store root user: %w", err)
	}

	log.Info().Str("username", root.Username).Str("user_id", root.ID).Msg("root user created")
	return nil
}
