package db

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/eisenwinter/veluxidp/db/tables"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var userColumns = []string{
	"userid",
	"password_hash",
	"home_id",
	"bridge",
	"access_token",
	"refresh_token",
	"created_at",
}

// PutUser inserts the user or overwrites the existing record with the same userid
func (d *DataStore) PutUser(ctx context.Context, user *tables.UserRecord) error {
	values := map[string]interface{}{
		"password_hash": user.PasswordHash,
		"home_id":       user.HomeID,
		"bridge":        user.Bridge,
		"access_token":  user.AccessToken,
		"refresh_token": user.RefreshToken,
		"created_at":    user.CreatedAt,
	}
	return d.inTx(ctx, func(tx *sqlx.Tx) error {
		exists, err := d.exists(ctx, tx, "users", sq.Eq{"userid": user.UserID})
		if err != nil {
			return err
		}
		if exists {
			update := d.builder.Update("users").SetMap(values).Where(sq.Eq{"userid": user.UserID})
			_, err = d.execStatement(ctx, update, tx)
		} else {
			values["userid"] = user.UserID
			_, err = d.execStatement(ctx, d.builder.Insert("users").SetMap(values), tx)
		}
		if err != nil {
			d.log.Error("could not store user", zap.Error(err))
		}
		return err
	})
}

func (d *DataStore) User(ctx context.Context, userID string) (*tables.UserRecord, error) {
	var entity tables.UserRecord
	q := d.builder.Select(userColumns...).From("users").Where(sq.Eq{"userid": userID})
	err := d.getStatement(ctx, &entity, q)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		d.log.Error("unable to query database", zap.Error(err))
		return nil, err
	}
	return &entity, nil
}

func (d *DataStore) Users(ctx context.Context) ([]*tables.UserRecord, error) {
	var entities []*tables.UserRecord
	q := d.builder.Select(userColumns...).From("users").OrderBy("created_at DESC")
	err := d.selectStatement(ctx, &entities, q)
	if err != nil {
		return nil, err
	}
	return entities, nil
}
