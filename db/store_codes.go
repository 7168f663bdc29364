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

var authorizationCodeColumns = []string{
	"code",
	"client_id",
	"redirect_uri",
	"velux_user_id",
	"expires_at",
	"redeemed_at",
}

func (d *DataStore) InsertAuthorizationCode(ctx context.Context, code *tables.AuthorizationCode) error {
	return d.inTx(ctx, func(tx *sqlx.Tx) error {
		exists, err := d.exists(ctx, tx, "authorization_codes", sq.Eq{"code": code.Code})
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyExists
		}
		insert := d.builder.Insert("authorization_codes").SetMap(map[string]interface{}{
			"code":          code.Code,
			"client_id":     code.ClientID,
			"redirect_uri":  code.RedirectURI,
			"velux_user_id": code.VeluxUserID,
			"expires_at":    code.ExpiresAt,
			"redeemed_at":   code.RedeemedAt,
		})
		_, err = d.execStatement(ctx, insert, tx)
		if err != nil {
			d.log.Error("could not insert authorization code", zap.Error(err))
		}
		return err
	})
}

func (d *DataStore) AuthorizationCode(ctx context.Context, code string) (*tables.AuthorizationCode, error) {
	var entity tables.AuthorizationCode
	q := d.builder.Select(authorizationCodeColumns...).
		From("authorization_codes").
		Where(sq.Eq{"code": code})
	err := d.getStatement(ctx, &entity, q)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// RedeemAuthorizationCode marks the code as consumed, only one caller can ever succeed
func (d *DataStore) RedeemAuthorizationCode(ctx context.Context, code string, at int64) error {
	update := d.builder.Update("authorization_codes").
		Set("redeemed_at", at).
		Where(sq.And{sq.Eq{"code": code}, sq.Eq{"redeemed_at": nil}})
	rs, err := d.execStatement(ctx, update, nil)
	if err != nil {
		return err
	}
	c, err := rs.RowsAffected()
	if err != nil {
		return err
	}
	if c == 0 {
		exists, err := d.exists(ctx, nil, "authorization_codes", sq.Eq{"code": code})
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrAlreadyRedeemed
	}
	return nil
}

// PurgeExpired removes all codes and tokens which expired before now
func (d *DataStore) PurgeExpired(ctx context.Context, now int64) (int, int, error) {
	codes, err := d.execStatement(ctx,
		d.builder.Delete("authorization_codes").Where(sq.Lt{"expires_at": now}), nil)
	if err != nil {
		return 0, 0, err
	}
	tokens, err := d.execStatement(ctx,
		d.builder.Delete("access_tokens").Where(sq.Lt{"expires_at": now}), nil)
	if err != nil {
		return 0, 0, err
	}
	c, err := codes.RowsAffected()
	if err != nil {
		return 0, 0, err
	}
	t, err := tokens.RowsAffected()
	if err != nil {
		return 0, 0, err
	}
	return int(c), int(t), nil
}
