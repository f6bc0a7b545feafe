package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diariourbano/portaria/internal/services/portaria/domain"
	"github.com/diariourbano/portaria/internal/services/portaria/storage"
)

const bookColumns = `id, name, number_format, starting_number, next_number, active, created_at, updated_at`

func scanBook(row *sql.Row) (domain.SequenceBook, error) {
	var book domain.SequenceBook
	var active int
	var createdAt int64
	var updatedAt int64
	err := row.Scan(
		&book.ID,
		&book.Name,
		&book.NumberFormat,
		&book.StartingNumber,
		&book.NextNumber,
		&active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SequenceBook{}, storage.ErrNotFound
		}
		return domain.SequenceBook{}, fmt.Errorf("scan sequence book: %w", err)
	}
	book.Active = active == 1
	book.CreatedAt = fromMillis(createdAt)
	book.UpdatedAt = fromMillis(updatedAt)
	return book, nil
}

func activeBookTx(ctx context.Context, q querier) (domain.SequenceBook, error) {
	row := q.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM sequence_books WHERE active = 1`)
	return scanBook(row)
}

// ensureActiveBookTx returns the active book, creating the default book when
// none exists. Callers hold the write transaction, so creation races resolve
// into the single-active unique index instead of duplicate books.
func ensureActiveBookTx(ctx context.Context, tx *sql.Tx, now time.Time) (domain.SequenceBook, error) {
	book, err := activeBookTx(ctx, tx)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return domain.SequenceBook{}, err
	}

	book, err = domain.NewDefaultBook(func() time.Time { return now }, nil)
	if err != nil {
		return domain.SequenceBook{}, err
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO sequence_books (id, name, number_format, starting_number, next_number, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		book.ID,
		book.Name,
		book.NumberFormat,
		book.StartingNumber,
		book.NextNumber,
		toMillis(book.CreatedAt),
		toMillis(book.UpdatedAt),
	); err != nil {
		return domain.SequenceBook{}, fmt.Errorf("create default sequence book: %w", err)
	}
	return book, nil
}

// ActiveBook returns the active sequence book, creating the default book on
// first use.
func (s *Store) ActiveBook(ctx context.Context) (domain.SequenceBook, error) {
	if err := ctx.Err(); err != nil {
		return domain.SequenceBook{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.SequenceBook{}, fmt.Errorf("storage is not configured")
	}

	book, err := activeBookTx(ctx, s.sqlDB)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return domain.SequenceBook{}, err
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return domain.SequenceBook{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()
	book, err = ensureActiveBookTx(ctx, tx, s.now())
	if err != nil {
		return domain.SequenceBook{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.SequenceBook{}, fmt.Errorf("commit default sequence book: %w", err)
	}
	return book, nil
}

// GetBook fetches one sequence book by ID.
func (s *Store) GetBook(ctx context.Context, bookID string) (domain.SequenceBook, error) {
	if err := ctx.Err(); err != nil {
		return domain.SequenceBook{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.SequenceBook{}, fmt.Errorf("storage is not configured")
	}
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return domain.SequenceBook{}, fmt.Errorf("book id is required")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM sequence_books WHERE id = ?`, bookID)
	return scanBook(row)
}

// UpdateBookFormat applies a privileged number-format edit. The cursor and
// allocation history are never touched here.
func (s *Store) UpdateBookFormat(ctx context.Context, bookID, numberFormat string) (domain.SequenceBook, error) {
	if err := ctx.Err(); err != nil {
		return domain.SequenceBook{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.SequenceBook{}, fmt.Errorf("storage is not configured")
	}
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return domain.SequenceBook{}, fmt.Errorf("book id is required")
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return domain.SequenceBook{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(
		ctx,
		`UPDATE sequence_books SET number_format = ?, updated_at = ? WHERE id = ?`,
		numberFormat,
		toMillis(s.now()),
		bookID,
	)
	if err != nil {
		return domain.SequenceBook{}, fmt.Errorf("update book format: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.SequenceBook{}, fmt.Errorf("update book format: %w", err)
	}
	if affected == 0 {
		return domain.SequenceBook{}, storage.ErrNotFound
	}

	row := tx.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM sequence_books WHERE id = ?`, bookID)
	book, err := scanBook(row)
	if err != nil {
		return domain.SequenceBook{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.SequenceBook{}, fmt.Errorf("commit book format: %w", err)
	}
	return book, nil
}

// ListAllocations returns the book's issuance history in issuance order.
func (s *Store) ListAllocations(ctx context.Context, bookID string) ([]domain.AllocationLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return nil, fmt.Errorf("book id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT seq, book_id, formatted_number, padded_number, raw_number, ordinance_id, approver_id, origin_ip, created_at
		 FROM allocation_log WHERE book_id = ? ORDER BY seq`,
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	var out []domain.AllocationLogEntry
	for rows.Next() {
		var entry domain.AllocationLogEntry
		var createdAt int64
		if err := rows.Scan(
			&entry.Seq,
			&entry.BookID,
			&entry.FormattedNumber,
			&entry.PaddedNumber,
			&entry.RawNumber,
			&entry.OrdinanceID,
			&entry.ApproverID,
			&entry.OriginIP,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list allocations: %w", err)
		}
		entry.CreatedAt = fromMillis(createdAt)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return out, nil
}
