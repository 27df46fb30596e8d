// Package export pushes stored analyses into an external research
// database so a class corpus can be queried outside the app. MySQL,
// PostgreSQL, and MongoDB targets are supported; rows are upserted by
// analysis ID so repeated exports converge.
package export

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"inkwell/internal/domain"
)

const (
	tableName       = "inkwell_analyses"
	mongoDatabase   = "inkwell"
	mongoCollection = "analyses"
)

// Export writes the analyses to the target described by driver and DSN.
// Returns the number of records written.
func Export(ctx context.Context, driver, dsn string, analyses []domain.Analysis) (int, error) {
	switch driver {
	case "mysql", "postgres":
		return exportSQL(ctx, driver, dsn, analyses)
	case "mongodb":
		return exportMongo(ctx, dsn, analyses)
	default:
		return 0, fmt.Errorf("unsupported export driver %q", driver)
	}
}

func exportSQL(ctx context.Context, driver, dsn string, analyses []domain.Analysis) (int, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("connect to %s: %w", driver, err)
	}

	if _, err := db.ExecContext(ctx, createTableStmt(driver)); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	stmt := upsertStmt(driver)
	written := 0
	for _, a := range analyses {
		_, err := db.ExecContext(ctx, stmt,
			a.ID, string(a.Source), a.Transcription, a.Language, a.Summary,
			a.Tone, a.DevicesJSON, a.VocabularyJSON, a.QuestionsJSON,
			a.Model, a.CreatedAt,
		)
		if err != nil {
			return written, fmt.Errorf("upsert analysis %s: %w", a.ID, err)
		}
		written++
	}
	return written, nil
}

func createTableStmt(driver string) string {
	textType := "TEXT"
	if driver == "mysql" {
		textType = "MEDIUMTEXT"
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(64) PRIMARY KEY,
		source VARCHAR(16) NOT NULL,
		transcription %s NOT NULL,
		language VARCHAR(8) NOT NULL,
		summary %s NOT NULL,
		tone VARCHAR(255) NOT NULL,
		devices_json %s NOT NULL,
		vocabulary_json %s NOT NULL,
		questions_json %s NOT NULL,
		model VARCHAR(64) NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`, tableName, textType, textType, textType, textType, textType)
}

func upsertStmt(driver string) string {
	if driver == "mysql" {
		return fmt.Sprintf(`INSERT INTO %s
			(id, source, transcription, language, summary, tone, devices_json, vocabulary_json, questions_json, model, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
			transcription = VALUES(transcription), language = VALUES(language),
			summary = VALUES(summary), tone = VALUES(tone),
			devices_json = VALUES(devices_json), vocabulary_json = VALUES(vocabulary_json),
			questions_json = VALUES(questions_json), model = VALUES(model)`, tableName)
	}
	return fmt.Sprintf(`INSERT INTO %s
		(id, source, transcription, language, summary, tone, devices_json, vocabulary_json, questions_json, model, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
		transcription = EXCLUDED.transcription, language = EXCLUDED.language,
		summary = EXCLUDED.summary, tone = EXCLUDED.tone,
		devices_json = EXCLUDED.devices_json, vocabulary_json = EXCLUDED.vocabulary_json,
		questions_json = EXCLUDED.questions_json, model = EXCLUDED.model`, tableName)
}

func exportMongo(ctx context.Context, uri string, analyses []domain.Analysis) (int, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return 0, fmt.Errorf("connect to mongodb: %w", err)
	}
	defer client.Disconnect(ctx)

	coll := client.Database(mongoDatabase).Collection(mongoCollection)
	written := 0
	for _, a := range analyses {
		doc := bson.M{
			"_id":           a.ID,
			"source":        a.Source,
			"transcription": a.Transcription,
			"language":      a.Language,
			"summary":       a.Summary,
			"tone":          a.Tone,
			"devices":       a.DevicesJSON,
			"vocabulary":    a.VocabularyJSON,
			"questions":     a.QuestionsJSON,
			"model":         a.Model,
			"createdAt":     a.CreatedAt,
		}
		_, err := coll.ReplaceOne(ctx, bson.M{"_id": a.ID}, doc, options.Replace().SetUpsert(true))
		if err != nil {
			return written, fmt.Errorf("upsert analysis %s: %w", a.ID, err)
		}
		written++
	}
	return written, nil
}
