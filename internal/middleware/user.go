package middleware

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"finbot/internal/domain"
	"finbot/internal/repository"
)

// UserMiddleware registers unknown senders on first contact and drops
// updates from banned users before any handler runs.
func UserMiddleware(users repository.UserRepository, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			telegramID := c.Sender().ID

			user, err := users.GetByTelegramID(telegramID)
			if err != nil {
				logger.Error("failed to load user in middleware",
					zap.Int64("telegram_id", telegramID),
					zap.Error(err),
				)
				return nil
			}

			if user == nil {
				user = &domain.User{
					ID:           uuid.New(),
					TelegramID:   telegramID,
					RegisteredAt: time.Now().Unix(),
					Expectation:  domain.NewExpectation(),
				}
				if err := users.Create(user); err != nil {
					logger.Error("failed to register user",
						zap.Int64("telegram_id", telegramID),
						zap.Error(err),
					)
					return nil
				}
				logger.Info("user registered", zap.Int64("telegram_id", telegramID))
			}

			if user.IsBanned {
				return nil
			}

			return next(c)
		}
	}
}
