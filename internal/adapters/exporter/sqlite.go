package exporter

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/ports"
)

const sqliteSchema = `
DROP TABLE IF EXISTS messages;
DROP TABLE IF EXISTS emoji;
DROP TABLE IF EXISTS smilies;
DROP TABLE IF EXISTS media;
DROP TABLE IF EXISTS urls;
DROP TABLE IF EXISTS diagnostics;
DROP TABLE IF EXISTS malformed;

CREATE TABLE messages (
    row_index     INTEGER PRIMARY KEY,
    datetime      TEXT,
    sender        TEXT,
    anonymous     TEXT,
    message       TEXT,
    flat          TEXT,
    tokens        TEXT,
    token_count   INTEGER NOT NULL DEFAULT 0,
    location_kind TEXT,
    latitude      REAL,
    longitude     REAL,
    system_kind   TEXT,
    system_text   TEXT,
    time_order    INTEGER,
    display_order INTEGER
);

CREATE TABLE emoji (
    row_index   INTEGER NOT NULL,
    position    INTEGER NOT NULL,
    glyph       TEXT NOT NULL,
    description TEXT NOT NULL,
    PRIMARY KEY (row_index, position)
);

CREATE TABLE smilies (row_index INTEGER NOT NULL, position INTEGER NOT NULL, value TEXT NOT NULL, PRIMARY KEY (row_index, position));
CREATE TABLE media   (row_index INTEGER NOT NULL, position INTEGER NOT NULL, value TEXT NOT NULL, PRIMARY KEY (row_index, position));
CREATE TABLE urls    (row_index INTEGER NOT NULL, position INTEGER NOT NULL, value TEXT NOT NULL, PRIMARY KEY (row_index, position));

CREATE TABLE diagnostics (key TEXT PRIMARY KEY, value TEXT NOT NULL);
CREATE TABLE malformed (block_index INTEGER PRIMARY KEY, prefix TEXT NOT NULL, reason TEXT NOT NULL);
`

// SQLiteExporter реализует интерфейс Exporter для записи таблицы в базу SQLite.
// Последовательные колонки хранятся в отдельных таблицах по одной строке на значение.
// Существующие таблицы в файле перезаписываются.
type SQLiteExporter struct {
	path string
}

// NewSQLiteExporter создает новый экземпляр SQLiteExporter.
func NewSQLiteExporter(path string) ports.Exporter {
	return &SQLiteExporter{path: path}
}

// Export записывает таблицу и диагностику в одной транзакции.
func (e *SQLiteExporter) Export(result *domain.ParseResult) (err error) {
	if dir := filepath.Dir(e.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", e.path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = insertMessages(tx, tableOf(result)); err != nil {
		return err
	}
	if result != nil && result.Diagnostics != nil {
		if err = insertDiagnostics(tx, result.Diagnostics); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertMessages(tx *sql.Tx, table *domain.ChatTable) error {
	msgStmt, err := tx.Prepare(`INSERT INTO messages (
		row_index, datetime, sender, anonymous, message, flat, tokens, token_count,
		location_kind, latitude, longitude, system_kind, system_text, time_order, display_order
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare messages: %w", err)
	}
	defer msgStmt.Close()

	emojiStmt, err := tx.Prepare("INSERT INTO emoji (row_index, position, glyph, description) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare emoji: %w", err)
	}
	defer emojiStmt.Close()

	valueStmts := make(map[string]*sql.Stmt, 3)
	for _, name := range []string{"smilies", "media", "urls"} {
		stmt, err := tx.Prepare("INSERT INTO " + name + " (row_index, position, value) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("prepare %s: %w", name, err)
		}
		defer stmt.Close()
		valueStmts[name] = stmt
	}

	for i := range table.Records {
		r := &table.Records[i]
		if _, err := msgStmt.Exec(messageArgs(table, i, r)...); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
		for pos, em := range r.Emoji {
			if _, err := emojiStmt.Exec(i, pos, em.Glyph, em.Description); err != nil {
				return fmt.Errorf("insert emoji: %w", err)
			}
		}
		for name, values := range map[string][]string{"smilies": r.Smilies, "media": r.MediaRefs, "urls": r.URLs} {
			for pos, v := range values {
				if _, err := valueStmts[name].Exec(i, pos, v); err != nil {
					return fmt.Errorf("insert %s: %w", name, err)
				}
			}
		}
	}
	return nil
}

func messageArgs(table *domain.ChatTable, i int, r *domain.MessageRecord) []any {
	args := []any{
		i,
		nullString(formatTime(r.Timestamp)),
		nullString(r.Sender),
		nil,
		ptrValue(r.RawMessage),
		ptrValue(r.FlatMessage),
		nullString(strings.Join(r.Tokens, " ")),
		r.TokenCount,
		nil, nil, nil,
		nil, nil,
		nil, nil,
	}
	if table.HasAnonymous {
		args[3] = nullString(r.Anonymous)
	}
	if r.Location != nil {
		args[8] = string(r.Location.Kind)
		if r.Location.Latitude != nil {
			args[9] = *r.Location.Latitude
		}
		if r.Location.Longitude != nil {
			args[10] = *r.Location.Longitude
		}
	}
	if r.SystemEvent != nil {
		args[11] = string(r.SystemEvent.Kind)
		args[12] = r.SystemEvent.Text
	}
	if table.HasTimeOrder {
		args[13] = r.TimeOrder
	}
	if table.HasDisplayOrder {
		args[14] = r.DisplayOrder
	}
	return args
}

func insertDiagnostics(tx *sql.Tx, d *domain.Diagnostics) error {
	values := map[string]string{
		"platform":           string(d.Platform),
		"language":           string(d.Language),
		"segments":           fmt.Sprint(d.Segments),
		"preamble_length":    fmt.Sprint(d.PreambleLength),
		"pruned":             fmt.Sprint(d.Pruned),
		"removed_by_consent": fmt.Sprint(d.RemovedByConsent),
		"warnings":           strings.Join(d.WarningMessages(), "; "),
	}
	for k, v := range values {
		if _, err := tx.Exec("INSERT INTO diagnostics (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("insert diagnostics: %w", err)
		}
	}
	for _, m := range d.Malformed {
		if _, err := tx.Exec("INSERT INTO malformed (block_index, prefix, reason) VALUES (?, ?, ?)", m.Index, m.Prefix, m.Reason); err != nil {
			return fmt.Errorf("insert malformed: %w", err)
		}
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func ptrValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
