package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// CreateAccessRequest сохраняет заявку на доступ и возвращает её ID.
// Повторная заявка с тем же email отклоняется.
func (s *Storage) CreateAccessRequest(ctx context.Context, req models.AccessRequest) (int64, error) {
	const op = "storage.CreateAccessRequest"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM access_requests WHERE email = $1)`, req.Email).Scan(&exists); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return 0, fmt.Errorf("%s: %w", op, models.ErrDuplicateAccessRequest)
	}

	var newID int64
	query := `INSERT INTO access_requests (nom, prenom, email, telephone, adresse_cabinet,
			      num_veterinaire, date_soumission)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		req.Nom, req.Prenom, req.Email, req.Telephone, req.AdresseCabinet,
		req.NumVeterinaire, req.DateSoumission).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

const accessRequestColumns = `id, nom, prenom, email, telephone, adresse_cabinet,
			      num_veterinaire, date_soumission`

// GetAccessRequestByID возвращает заявку по её ID.
func (s *Storage) GetAccessRequestByID(ctx context.Context, id int64) (*models.AccessRequest, error) {
	const op = "storage.GetAccessRequestByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accessRequestColumns + ` FROM access_requests WHERE id = $1`
	r := &models.AccessRequest{}
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.Nom, &r.Prenom, &r.Email,
		&r.Telephone, &r.AdresseCabinet, &r.NumVeterinaire, &r.DateSoumission); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrAccessRequestNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// ListAccessRequests возвращает все заявки в порядке подачи.
func (s *Storage) ListAccessRequests(ctx context.Context) ([]*models.AccessRequest, error) {
	const op = "storage.ListAccessRequests"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accessRequestColumns + ` FROM access_requests ORDER BY date_soumission`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.AccessRequest
	for rows.Next() {
		r := &models.AccessRequest{}
		if err := rows.Scan(&r.ID, &r.Nom, &r.Prenom, &r.Email, &r.Telephone,
			&r.AdresseCabinet, &r.NumVeterinaire, &r.DateSoumission); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
