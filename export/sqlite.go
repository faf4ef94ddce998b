package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/utils"
)

// writeSQLite stores the samples in log_data, one REAL column per curve with NULL for
// missing samples, next to the curve table, the well header and an export record.
func writeSQLite(ctx context.Context, path string, ds *model.LogDataset, table *model.DerivedTable) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	columns := table.Columns()
	defs := make([]string, 0, len(columns))
	names := make([]string, 0, len(columns))
	for i, name := range columns {
		def := quote(name) + " REAL"
		if i == 0 {
			def += " PRIMARY KEY"
		}
		defs = append(defs, def)
		names = append(names, quote(name))
	}
	schema := []string{
		fmt.Sprintf("CREATE TABLE log_data (%s)", strings.Join(defs, ", ")),
		`CREATE TABLE curves (
			position INTEGER PRIMARY KEY,
			mnemonic TEXT NOT NULL UNIQUE,
			unit TEXT,
			description TEXT
		)`,
		`CREATE TABLE well (
			mnemonic TEXT NOT NULL,
			unit TEXT,
			value TEXT,
			description TEXT
		)`,
		`CREATE TABLE export_info (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			well TEXT,
			null_value REAL,
			row_count INTEGER NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insert, err := tx.PrepareContext(ctx,
		fmt.Sprintf("INSERT INTO log_data (%s) VALUES (%s)", strings.Join(names, ", "), placeholders))
	if err != nil {
		return err
	}
	defer insert.Close()
	args := make([]interface{}, len(columns))
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		args[0] = row.Depth
		for j, sample := range row.Values {
			args[j+1] = sql.NullFloat64{Float64: sample.Value, Valid: sample.Valid}
		}
		if _, err := insert.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert depth %v: %w", row.Depth, err)
		}
	}

	infos := append([]model.CurveInfo{table.Index}, curveInfos(ds)...)
	for i, info := range infos {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO curves (position, mnemonic, unit, description) VALUES (?, ?, ?, ?)",
			i, info.Mnemonic, info.Unit, info.Description); err != nil {
			return err
		}
	}
	for _, item := range ds.Sections.Well {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO well (mnemonic, unit, value, description) VALUES (?, ?, ?, ?)",
			item.Mnemonic, item.Unit, item.Value, item.Description); err != nil {
			return err
		}
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO export_info (id, created_at, well, null_value, row_count) VALUES (?, ?, ?, ?, ?)",
		id, time.Now().UTC().Format(time.RFC3339), ds.Info.Well, ds.Info.Null, table.Len()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	utils.GetLogger(ctx).Debug("sqlite export committed", zap.String("id", id), zap.String("path", path))
	return db.Close()
}

func curveInfos(ds *model.LogDataset) []model.CurveInfo {
	res := make([]model.CurveInfo, 0, len(ds.Mnemonics()))
	for _, curve := range ds.Curves() {
		res = append(res, curve.CurveInfo)
	}
	return res
}

// quote makes a mnemonic such as "GR:1" usable as a column name.
func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
