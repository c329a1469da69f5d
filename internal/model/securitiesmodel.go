package model

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"tickerlens-api/pkg/match"
	"tickerlens-api/pkg/refdata"
)

// SecurityRow mirrors the securities master table.
type SecurityRow struct {
	Symbol string `db:"symbol"`
	Name   string `db:"name"`
	Type   string `db:"type"`
}

// SecuritiesModel reads and writes the securities master in Postgres.
type SecuritiesModel interface {
	FindAll(ctx context.Context) ([]refdata.Security, error)
	FindOneBySymbol(ctx context.Context, symbol string) (*refdata.Security, error)
	Upsert(ctx context.Context, row refdata.Security) error
}

type defaultSecuritiesModel struct {
	conn sqlx.SqlConn
}

// NewSecuritiesModel returns a model for the securities table.
func NewSecuritiesModel(conn sqlx.SqlConn) SecuritiesModel {
	return &defaultSecuritiesModel{conn: conn}
}

func (m *defaultSecuritiesModel) FindAll(ctx context.Context) ([]refdata.Security, error) {
	const q = `SELECT symbol, name, type FROM securities ORDER BY symbol`
	var rows []SecurityRow
	if err := m.conn.QueryRowsCtx(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("securities: find all: %w", err)
	}
	out := make([]refdata.Security, 0, len(rows))
	for _, r := range rows {
		out = append(out, refdata.Security{
			Symbol: r.Symbol,
			Name:   r.Name,
			Type:   match.AssetType(r.Type),
		})
	}
	return out, nil
}

func (m *defaultSecuritiesModel) FindOneBySymbol(ctx context.Context, symbol string) (*refdata.Security, error) {
	const q = `SELECT symbol, name, type FROM securities WHERE symbol = $1 LIMIT 1`
	var row SecurityRow
	err := m.conn.QueryRowCtx(ctx, &row, q, symbol)
	switch err {
	case nil:
		return &refdata.Security{
			Symbol: row.Symbol,
			Name:   row.Name,
			Type:   match.AssetType(row.Type),
		}, nil
	case sqlx.ErrNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("securities: find %s: %w", symbol, err)
	}
}

func (m *defaultSecuritiesModel) Upsert(ctx context.Context, row refdata.Security) error {
	const q = `INSERT INTO securities (symbol, name, type)
VALUES ($1, $2, $3)
ON CONFLICT (symbol) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type`
	if _, err := m.conn.ExecCtx(ctx, q, row.Symbol, row.Name, string(row.Type)); err != nil {
		return fmt.Errorf("securities: upsert %s: %w", row.Symbol, err)
	}
	return nil
}
