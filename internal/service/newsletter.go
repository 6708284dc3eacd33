package service

import (
	"context"
	"log/slog"

	"github.com/techinsights/kbsite/internal/core"
	"github.com/techinsights/kbsite/internal/domain/model"
	"github.com/techinsights/kbsite/internal/ports"
)

// NewsletterServiceOptions groups dependencies for NewsletterService.
type NewsletterServiceOptions struct {
	Subscribers core.SubscriberRepository
	Mailer      ports.Mailer // Optional
	Logger      *slog.Logger
}

// NewsletterService handles newsletter signups and the admin subscriber list.
type NewsletterService struct {
	subscribers core.SubscriberRepository
	mailer      ports.Mailer
	logger      *slog.Logger
}

// NewNewsletterService constructs a new NewsletterService.
func NewNewsletterService(opts NewsletterServiceOptions) *NewsletterService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsletterService{
		subscribers: opts.Subscribers,
		mailer:      opts.Mailer,
		logger:      logger,
	}
}

// Subscribe validates and records a signup, then hands the confirmation off
// to the mail dispatcher. The signup is committed before dispatch; a failed
// confirmation send never loses the subscriber.
func (s *NewsletterService) Subscribe(
	ctx context.Context,
	req *model.SubscribeRequest,
) (*model.Subscriber, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.subscribers.Subscribe(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if sendErr := s.mailer.SendConfirmation(ctx, sub.Email); sendErr != nil {
			s.logger.WarnContext(ctx, "confirmation dispatch failed",
				"email", sub.Email, "err", sendErr)
		}
	}

	return sub, nil
}

// Unsubscribe removes a signup by email.
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) (bool, error) {
	return s.subscribers.Unsubscribe(ctx, email)
}

// ListSubscribers returns a page of subscribers for the admin surface.
func (s *NewsletterService) ListSubscribers(
	ctx context.Context,
	limit, offset int,
) ([]*model.Subscriber, error) {
	return s.subscribers.List(ctx, limit, offset)
}

// CountSubscribers returns the total subscriber count.
func (s *NewsletterService) CountSubscribers(ctx context.Context) (int, error) {
	return s.subscribers.Count(ctx)
}
