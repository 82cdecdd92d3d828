package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/biocule/quotation-api/cart"
)

// QuotationStore persists cart items as quotation rows.
type QuotationStore struct {
	db *sql.DB
}

// NewQuotationStore wraps an open database.
func NewQuotationStore(db *sql.DB) *QuotationStore {
	return &QuotationStore{db: db}
}

// StoreQuotation writes every cart item in one transaction and returns the
// stored ids. Re-storing an item with the same id replaces the earlier row,
// so an edited cart can be re-submitted safely.
func (s *QuotationStore) StoreQuotation(ctx context.Context, userID, sessionID string, items []cart.CartItem) ([]string, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("nothing to store: cart is empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin quotation transaction: %w", err)
	}

	storedIDs := make([]string, 0, len(items))
	now := time.Now().UTC()

	for _, item := range items {
		guidelines, err := json.Marshal(item.SelectedGuidelines)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("encode guidelines for item %s: %w", item.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO quotations (
				id, session_id, user_id, config_no, category,
				sample_form, sample_solvent, application, num_samples,
				selected_guidelines, price, sample_description, description,
				created_on, valid_till, stored_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				sample_form = excluded.sample_form,
				sample_solvent = excluded.sample_solvent,
				application = excluded.application,
				num_samples = excluded.num_samples,
				selected_guidelines = excluded.selected_guidelines,
				price = excluded.price,
				sample_description = excluded.sample_description,
				description = excluded.description,
				stored_at = excluded.stored_at`,
			item.ID, sessionID, userID, item.ConfigNo, item.Category,
			item.SampleForm, item.SampleSolvent, item.Application, item.NumSamples,
			string(guidelines), item.Price, item.SampleDescription, item.Description,
			item.CreatedOn.UTC(), item.ValidTill.UTC(), now,
		)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("store quotation item %s: %w", item.ID, err)
		}

		storedIDs = append(storedIDs, item.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit quotation transaction: %w", err)
	}

	return storedIDs, nil
}

// ListBySession returns the stored quotation lines for one session in
// storage order.
func (s *QuotationStore) ListBySession(ctx context.Context, sessionID string) ([]cart.CartItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, config_no, category, sample_form, sample_solvent,
		       application, num_samples, selected_guidelines, price,
		       sample_description, description, created_on, valid_till
		FROM quotations
		WHERE session_id = ?
		ORDER BY stored_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query quotations for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var items []cart.CartItem
	for rows.Next() {
		var item cart.CartItem
		var guidelines string
		if err := rows.Scan(
			&item.ID, &item.ConfigNo, &item.Category, &item.SampleForm,
			&item.SampleSolvent, &item.Application, &item.NumSamples,
			&guidelines, &item.Price, &item.SampleDescription,
			&item.Description, &item.CreatedOn, &item.ValidTill,
		); err != nil {
			return nil, fmt.Errorf("scan quotation row: %w", err)
		}
		if err := json.Unmarshal([]byte(guidelines), &item.SelectedGuidelines); err != nil {
			return nil, fmt.Errorf("decode guidelines for item %s: %w", item.ID, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotation rows: %w", err)
	}

	return items, nil
}

// PurgeExpired deletes quotations whose validity window has passed and
// returns how many rows were removed.
func (s *QuotationStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quotations WHERE valid_till < ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge expired quotations: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count purged quotations: %w", err)
	}

	return removed, nil
}

// Count returns the total number of stored quotation lines.
func (s *QuotationStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count quotations: %w", err)
	}
	return n, nil
}
