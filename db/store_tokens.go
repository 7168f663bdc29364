package db

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/eisenwinter/veluxidp/db/tables"
	"go.uber.org/zap"
)

func (d *DataStore) InsertAccessToken(ctx context.Context, token *tables.AccessToken) error {
	insert := d.builder.Insert("access_tokens").SetMap(map[string]interface{}{
		"token":         token.Token,
		"client_id":     token.ClientID,
		"velux_user_id": token.VeluxUserID,
		"created_at":    token.CreatedAt,
		"expires_at":    token.ExpiresAt,
	})
	_, err := d.execStatement(ctx, insert, nil)
	if err != nil {
		d.log.Error("could not insert access token", zap.Error(err))
		return err
	}
	return nil
}

func (d *DataStore) AccessToken(ctx context.Context, token string) (*tables.AccessToken, error) {
	var entity tables.AccessToken
	q := d.builder.Select("token", "client_id", "velux_user_id", "created_at", "expires_at").
		From("access_tokens").
		Where(sq.Eq{"token": token})
	err := d.getStatement(ctx, &entity, q)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}
