package repository

import (
	"context"
	"database/sql"
	"time"

	"onboarding_portal/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type sessionRow struct {
	ID        string       `db:"id"`
	Token     string       `db:"token"`
	UserData  []byte       `db:"user_data"`
	CreatedAt time.Time    `db:"created_at"`
	ExpiresAt sql.NullTime `db:"expires_at"`
}

func toRow(s *model.Session) (sessionRow, error) {
	row := sessionRow{
		ID:        s.ID,
		Token:     s.Token,
		CreatedAt: s.CreatedAt,
		ExpiresAt: sql.NullTime{Time: s.ExpiresAt, Valid: !s.ExpiresAt.IsZero()},
	}
	if s.User != nil {
		data, err := json.Marshal(s.User)
		if err != nil {
			return row, errors.Wrap(err, "failed to marshal session user")
		}
		row.UserData = data
	}
	return row, nil
}

func (row sessionRow) toModel() (*model.Session, error) {
	s := &model.Session{
		ID:        row.ID,
		Token:     row.Token,
		CreatedAt: row.CreatedAt,
	}
	if row.ExpiresAt.Valid {
		s.ExpiresAt = row.ExpiresAt.Time
	}
	if len(row.UserData) > 0 && string(row.UserData) != "null" {
		var user model.User
		if err := json.Unmarshal(row.UserData, &user); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal session user")
		}
		s.User = &user
	}
	return s, nil
}

func (r *Repository) upsertQuery(s *model.Session) (string, []interface{}, error) {
	row, err := toRow(s)
	if err != nil {
		return "", nil, err
	}
	return squirrel.
		Insert(r.table).
		SetMap(map[string]interface{}{
			"id":         row.ID,
			"token":      row.Token,
			"user_data":  row.UserData,
			"created_at": row.CreatedAt,
			"expires_at": row.ExpiresAt,
		}).
		Suffix("ON CONFLICT (id) DO UPDATE SET token = EXCLUDED.token, user_data = EXCLUDED.user_data, expires_at = EXCLUDED.expires_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func (r *Repository) SaveSession(ctx context.Context, s *model.Session) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := r.upsertQuery(s)
		if err != nil {
			return errors.Wrap(err, "failed to build session upsert query")
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "failed to save session %s", s.ID)
		}
		return nil
	})
}

func (r *Repository) selectQuery(id string, now time.Time) (string, []interface{}, error) {
	return squirrel.
		Select("id", "token", "user_data", "created_at", "expires_at").
		From(r.table).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Or{
			squirrel.Eq{"expires_at": nil},
			squirrel.Gt{"expires_at": now},
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func (r *Repository) GetSession(ctx context.Context, id string) (*model.Session, error) {
	query, args, err := r.selectQuery(id, time.Now())
	if err != nil {
		return nil, errors.Wrap(err, "failed to build session select query")
	}

	var row sessionRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to get session %s", id)
	}

	return row.toModel()
}

func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	query, args, err := squirrel.
		Delete(r.table).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "failed to build session delete query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "failed to delete session %s", id)
	}
	return nil
}

// DeleteExpired removes every session that expired before now and returns
// their ids.
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	query, args, err := r.sweepQuery(now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build session sweep query")
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to delete expired sessions")
	}
	return ids, nil
}

func (r *Repository) sweepQuery(now time.Time) (string, []interface{}, error) {
	return squirrel.
		Delete(r.table).
		Where(squirrel.LtOrEq{"expires_at": now}).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}
