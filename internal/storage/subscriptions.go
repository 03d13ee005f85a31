package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

const subscriptionColumns = `id, user_id, subscription_type, start_date, end_date, status`

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	sub := &models.Subscription{}
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.Type, &sub.StartDate,
		&sub.EndDate, &sub.Status); err != nil {
		return nil, err
	}
	return sub, nil
}

// CreateSubscription вставляет новую подписку и возвращает её ID.
// Уникальный индекс по user_id гарантирует не более одной подписки на пользователя.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO subscriptions (user_id, subscription_type, start_date, end_date, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		sub.UserID, sub.Type, sub.StartDate, sub.EndDate, sub.Status).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSubscriptionByID возвращает подписку по её ID.
func (s *Storage) GetSubscriptionByID(ctx context.Context, id int64) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrSubscriptionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetSubscriptionByUserID возвращает подписку пользователя.
func (s *Storage) GetSubscriptionByUserID(ctx context.Context, userID int64) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUserID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrSubscriptionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetActiveSubscriptionByEmail возвращает активную подписку пользователя по его email.
// Используется шлюзом аутентификации для проверки допуска.
func (s *Storage) GetActiveSubscriptionByEmail(ctx context.Context, email string) (*models.Subscription, error) {
	const op = "storage.GetActiveSubscriptionByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.user_id, s.subscription_type, s.start_date, s.end_date, s.status
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE u.email = $1 AND s.status = $2`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, email, models.SubscriptionStatusActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrSubscriptionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// SubscriptionRow строка обхода планировщика: подписка вместе с данными
// владельца. Owner равен nil для строк с потерянной ссылкой на пользователя,
// такие строки обход пропускает.
type SubscriptionRow struct {
	Subscription models.Subscription
	Owner        *SubscriptionOwner
}

// SubscriptionOwner данные владельца подписки, нужные задачам планировщика.
type SubscriptionOwner struct {
	ID     int64
	Email  string
	Prenom string
	Status models.UserStatus
}

// ListSubscriptionsWithOwners возвращает все подписки вместе с владельцами
// (LEFT JOIN, чтобы не терять строки с испорченной ссылкой).
func (s *Storage) ListSubscriptionsWithOwners(ctx context.Context) ([]*SubscriptionRow, error) {
	const op = "storage.ListSubscriptionsWithOwners"
	return s.listRows(ctx, op, `
		SELECT s.id, s.user_id, s.subscription_type, s.start_date, s.end_date, s.status,
		       u.id, u.email, u.prenom, u.status
		FROM subscriptions s
		LEFT JOIN users u ON u.id = s.user_id
		ORDER BY s.id`)
}

// ListActiveSubscriptionsWithOwners возвращает подписки в статусе active
// вместе с владельцами.
func (s *Storage) ListActiveSubscriptionsWithOwners(ctx context.Context) ([]*SubscriptionRow, error) {
	const op = "storage.ListActiveSubscriptionsWithOwners"
	return s.listRows(ctx, op, `
		SELECT s.id, s.user_id, s.subscription_type, s.start_date, s.end_date, s.status,
		       u.id, u.email, u.prenom, u.status
		FROM subscriptions s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.status = 'active'
		ORDER BY s.id`)
}

func (s *Storage) listRows(ctx context.Context, op, query string) ([]*SubscriptionRow, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*SubscriptionRow
	for rows.Next() {
		var r SubscriptionRow
		var ownerID sql.NullInt64
		var ownerEmail, ownerPrenom, ownerStatus sql.NullString
		if err := rows.Scan(&r.Subscription.ID, &r.Subscription.UserID, &r.Subscription.Type,
			&r.Subscription.StartDate, &r.Subscription.EndDate, &r.Subscription.Status,
			&ownerID, &ownerEmail, &ownerPrenom, &ownerStatus); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if ownerID.Valid {
			r.Owner = &SubscriptionOwner{
				ID:     ownerID.Int64,
				Email:  ownerEmail.String,
				Prenom: ownerPrenom.String,
				Status: models.UserStatus(ownerStatus.String),
			}
		}
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSubscription перезаписывает тип и период подписки. Дата окончания
// передаётся уже пересчитанной из start + type.
func (s *Storage) UpdateSubscription(ctx context.Context, id int64, subType models.SubscriptionType,
	startDate, endDate time.Time, status models.SubscriptionStatus) error {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET subscription_type = $2, start_date = $3, end_date = $4, status = $5
			  WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id, subType, startDate, endDate, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrSubscriptionNotFound)
	}
	return nil
}

// ExpireSubscriptionWithOwner переводит подписку и её владельца в статус
// expired одной транзакцией. Пользователь обновляется только если его
// статус ещё не expired.
func (s *Storage) ExpireSubscriptionWithOwner(ctx context.Context, subscriptionID, userID int64) error {
	const op = "storage.ExpireSubscriptionWithOwner"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE subscriptions SET status = 'expired' WHERE id = $1`, subscriptionID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET status = 'expired' WHERE id = $1 AND status <> 'expired'`, userID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteSubscription удаляет подписку. Связь с пользователем держится
// только на стороне подписки, поэтому удаление строки и есть отвязка.
func (s *Storage) DeleteSubscription(ctx context.Context, id int64) error {
	const op = "storage.DeleteSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrSubscriptionNotFound)
	}
	return nil
}
