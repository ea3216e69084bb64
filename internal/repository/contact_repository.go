package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/contact-gateway/internal/domain"
)

// ContactFilter describes listing parameters.
type ContactFilter struct {
	SearchParam string
	Limit       int
	Offset      int
}

// ContactRepository defines persistence access for contacts.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	Update(ctx context.Context, contact *domain.Contact) error
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	GetByNumber(ctx context.Context, number string) (*domain.Contact, error)
	List(ctx context.Context, filter ContactFilter) ([]domain.Contact, int, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository returns a Postgres-backed implementation.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	extraInfo, err := marshalExtraInfo(contact.ExtraInfo)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO contacts (name, number, email, address, messenger_id, instagram_id, telegram_id, profile_pic_url, extra_info)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		contact.Name,
		contact.Number,
		contact.Email,
		contact.Address,
		contact.MessengerID,
		contact.InstagramID,
		contact.TelegramID,
		contact.ProfilePicURL,
		extraInfo,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
}

func (r *contactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	extraInfo, err := marshalExtraInfo(contact.ExtraInfo)
	if err != nil {
		return err
	}

	const query = `
        UPDATE contacts
        SET name=$1, number=$2, email=$3, address=$4, messenger_id=$5, instagram_id=$6,
            telegram_id=$7, profile_pic_url=$8, extra_info=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		contact.Name,
		contact.Number,
		contact.Email,
		contact.Address,
		contact.MessengerID,
		contact.InstagramID,
		contact.TelegramID,
		contact.ProfilePicURL,
		extraInfo,
		contact.ID,
	).Scan(&contact.UpdatedAt)
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	const query = contactSelect + ` WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *contactRepository) GetByNumber(ctx context.Context, number string) (*domain.Contact, error) {
	const query = contactSelect + ` WHERE number=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, number))
}

func (r *contactRepository) List(ctx context.Context, filter ContactFilter) ([]domain.Contact, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	args := []any{}
	where := ""
	if filter.SearchParam != "" {
		where = ` WHERE name ILIKE $1 OR number LIKE $1`
		args = append(args, "%"+filter.SearchParam+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM contacts` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := contactSelect + where +
		fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	contacts := make([]domain.Contact, 0, limit)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, *contact)
	}
	return contacts, total, rows.Err()
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *contactRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM contacts`)
	return err
}

const contactSelect = `
        SELECT id, name, number, email, address, messenger_id, instagram_id, telegram_id,
               profile_pic_url, extra_info, created_at, updated_at
        FROM contacts`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *contactRepository) scanOne(row pgx.Row) (*domain.Contact, error) {
	return scanContact(row)
}

func scanContact(row rowScanner) (*domain.Contact, error) {
	var contact domain.Contact
	var extraInfo []byte
	if err := row.Scan(
		&contact.ID,
		&contact.Name,
		&contact.Number,
		&contact.Email,
		&contact.Address,
		&contact.MessengerID,
		&contact.InstagramID,
		&contact.TelegramID,
		&contact.ProfilePicURL,
		&extraInfo,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(extraInfo) > 0 {
		if err := json.Unmarshal(extraInfo, &contact.ExtraInfo); err != nil {
			return nil, err
		}
	}
	return &contact, nil
}

func marshalExtraInfo(fields []domain.CustomField) ([]byte, error) {
	if fields == nil {
		fields = []domain.CustomField{}
	}
	return json.Marshal(fields)
}
