package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

const cartOrderColumns = "id, user_id, status, order_number, total_amount, confirmed_at"

func scanCartOrder(row interface{ Scan(...any) error }) (*models.CartOrder, error) {
	o := &models.CartOrder{}
	var orderNumber sql.NullString
	var confirmedAt sql.NullTime
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &orderNumber, &o.TotalAmount, &confirmedAt)
	if err != nil {
		return nil, err
	}
	if orderNumber.Valid {
		o.OrderNumber = &orderNumber.String
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		o.ConfirmedAt = &t
	}
	return o, nil
}

// GetCartByUser возвращает текущую корзину пользователя (заказ в статусе CART).
func (s *Storage) GetCartByUser(ctx context.Context, userID int64) (*models.CartOrder, error) {
	const op = "storage.GetCartByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := fmt.Sprintf(`SELECT %s FROM cart_orders WHERE user_id = $1 AND status = 'CART'`, cartOrderColumns)
	order, err := scanCartOrder(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrCartNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// CreateCart создаёт пустую корзину для пользователя. Частичный уникальный
// индекс в БД гарантирует не более одной корзины на пользователя.
func (s *Storage) CreateCart(ctx context.Context, userID int64) (*models.CartOrder, error) {
	const op = "storage.CreateCart"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := fmt.Sprintf(`INSERT INTO cart_orders (user_id, status, total_amount)
		VALUES ($1, 'CART', 0)
		RETURNING %s`, cartOrderColumns)
	order, err := scanCartOrder(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// CartItemRow позиция корзины вместе с данными товара для выдачи наружу.
type CartItemRow struct {
	Item        models.OrderItem
	ProductName string
	ImageURL    string
}

// ListCartItems возвращает позиции заказа вместе с данными товаров.
func (s *Storage) ListCartItems(ctx context.Context, orderID int64) ([]*CartItemRow, error) {
	const op = "storage.ListCartItems"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT i.id, i.order_id, i.product_id, i.quantity, i.price, p.name, p.image_url
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = $1
		ORDER BY i.id`
	rows, err := s.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*CartItemRow
	for rows.Next() {
		r := &CartItemRow{}
		err := rows.Scan(&r.Item.ID, &r.Item.OrderID, &r.Item.ProductID,
			&r.Item.Quantity, &r.Item.Price, &r.ProductName, &r.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AddItem добавляет товар в корзину. Если позиция с таким товаром уже есть,
// количество увеличивается, цена при этом не перезаписывается. Мутация и
// пересчёт суммы выполняются в одной транзакции.
func (s *Storage) AddItem(ctx context.Context, orderID int64, product *models.Product, quantity int) error {
	const op = "storage.AddItem"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var itemID int64
		var current int
		query := `SELECT id, quantity FROM order_items
			WHERE order_id = $1 AND product_id = $2 FOR UPDATE`
		err := tx.QueryRowContext(ctx, query, orderID, product.ID).Scan(&itemID, &current)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			query = `INSERT INTO order_items (order_id, product_id, quantity, price)
				VALUES ($1, $2, $3, $4)`
			if _, err := tx.ExecContext(ctx, query, orderID, product.ID, quantity, product.Price); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			query = `UPDATE order_items SET quantity = $1 WHERE id = $2`
			if _, err := tx.ExecContext(ctx, query, current+quantity, itemID); err != nil {
				return err
			}
		}
		return recalcTotal(ctx, tx, orderID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateItemQuantity изменяет количество позиции корзины.
// Позиция должна принадлежать указанному заказу.
func (s *Storage) UpdateItemQuantity(ctx context.Context, orderID, itemID int64, quantity int) error {
	const op = "storage.UpdateItemQuantity"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkItemOwned(ctx, tx, orderID, itemID); err != nil {
			return err
		}
		query := `UPDATE order_items SET quantity = $1 WHERE id = $2`
		if _, err := tx.ExecContext(ctx, query, quantity, itemID); err != nil {
			return err
		}
		return recalcTotal(ctx, tx, orderID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveItem удаляет позицию из корзины.
func (s *Storage) RemoveItem(ctx context.Context, orderID, itemID int64) error {
	const op = "storage.RemoveItem"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkItemOwned(ctx, tx, orderID, itemID); err != nil {
			return err
		}
		query := `DELETE FROM order_items WHERE id = $1`
		if _, err := tx.ExecContext(ctx, query, itemID); err != nil {
			return err
		}
		return recalcTotal(ctx, tx, orderID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearCart удаляет все позиции корзины и обнуляет сумму.
func (s *Storage) ClearCart(ctx context.Context, orderID int64) error {
	const op = "storage.ClearCart"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := `DELETE FROM order_items WHERE order_id = $1`
		if _, err := tx.ExecContext(ctx, query, orderID); err != nil {
			return err
		}
		return recalcTotal(ctx, tx, orderID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConfirmCart оформляет корзину пользователя: назначает номер заказа и
// переводит заказ в CONFIRMED. Обновление ключуется по (user_id, status='CART'),
// поэтому при конкурентном оформлении ровно один вызов увидит строку,
// остальные получат ErrCartNotFound. Корзина с нулевой суммой оформлена
// быть не может.
func (s *Storage) ConfirmCart(ctx context.Context, userID int64, orderNumber string, confirmedAt time.Time) (*models.CartOrder, error) {
	const op = "storage.ConfirmCart"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var order *models.CartOrder
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var orderID int64
		query := `SELECT id FROM cart_orders WHERE user_id = $1 AND status = 'CART' FOR UPDATE`
		if err := tx.QueryRowContext(ctx, query, userID).Scan(&orderID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrCartNotFound
			}
			return err
		}

		var total float64
		query = `SELECT COALESCE(SUM(price * quantity), 0) FROM order_items WHERE order_id = $1`
		if err := tx.QueryRowContext(ctx, query, orderID).Scan(&total); err != nil {
			return err
		}
		if total <= 0 {
			return models.ErrEmptyCart
		}

		query = fmt.Sprintf(`UPDATE cart_orders
			SET status = 'CONFIRMED', order_number = $1, confirmed_at = $2
			WHERE id = $3 AND status = 'CART'
			RETURNING %s`, cartOrderColumns)
		confirmed, err := scanCartOrder(tx.QueryRowContext(ctx, query, orderNumber, confirmedAt, orderID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrCartNotFound
			}
			return err
		}
		order = confirmed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

func checkItemOwned(ctx context.Context, tx *sql.Tx, orderID, itemID int64) error {
	var owner int64
	query := `SELECT order_id FROM order_items WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, itemID).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrItemNotFound
		}
		return err
	}
	if owner != orderID {
		return models.ErrItemNotOwned
	}
	return nil
}

func recalcTotal(ctx context.Context, tx *sql.Tx, orderID int64) error {
	query := `UPDATE cart_orders
		SET total_amount = COALESCE(
			(SELECT SUM(price * quantity) FROM order_items WHERE order_id = $1), 0)
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, query, orderID)
	return err
}
