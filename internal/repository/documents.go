// Package repository stores validated records in the document database.
package repository

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/joseph-ayodele/docpipeline/internal/job"
)

// Document is the stored shape of one processed document.
type Document struct {
	TaskID           string             `bson:"task_id"`
	ResultIndex      int                `bson:"result_index"`
	FilePath         string             `bson:"file_path"`
	ExtractedData    map[string]any     `bson:"extracted_data"`
	ProcessingStatus string             `bson:"processing_status"`
	ValidationError  string             `bson:"validation_error,omitempty"`
	UsageMetadata    job.UsageMetadata  `bson:"usage_metadata"`
	BatchInfo        job.BatchJob       `bson:"batch_info"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

// DocumentRepository is the persistence interface the pipeline depends on.
type DocumentRepository interface {
	EnsureIndexes(ctx context.Context) error
	// Insert stores one record as an independent document (batch path).
	Insert(ctx context.Context, rec job.ValidatedRecord) error
	// Upsert stores one record keyed by task_id, overwriting any previous
	// write for the same task (single-document path; retries are idempotent).
	Upsert(ctx context.Context, rec job.ValidatedRecord) error
}

type mongoRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// Open connects to the document database and returns the repository plus a
// cleanup func that disconnects the client.
func Open(ctx context.Context, uri, database, collection string, dialTimeout time.Duration, logger *slog.Logger) (DocumentRepository, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		logger.Error("database ping failed", "error", err)
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}

	cleanup := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Warn("database disconnect error", "error", err)
		}
	}

	logger.Info("successfully connected to database", "database", database, "collection", collection)
	return &mongoRepository{
		coll:   client.Database(database).Collection(collection),
		logger: logger,
	}, cleanup, nil
}

// EnsureIndexes creates the query indexes: task_id, file_path,
// processing_status, created_at.
func (r *mongoRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "task_id", Value: 1}}},
		{Keys: bson.D{{Key: "file_path", Value: 1}}},
		{Keys: bson.D{{Key: "processing_status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		r.logger.Error("failed to create indexes", "error", err)
		return err
	}
	return nil
}

func toDocument(rec job.ValidatedRecord) Document {
	now := time.Now().UTC()
	return Document{
		TaskID:           rec.TaskID,
		ResultIndex:      rec.ResultIndex,
		FilePath:         rec.FilePath,
		ExtractedData:    rec.ExtractedData,
		ProcessingStatus: string(rec.ValidationStatus),
		ValidationError:  rec.ValidationError,
		UsageMetadata:    rec.Usage,
		BatchInfo:        rec.BatchInfo,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (r *mongoRepository) Insert(ctx context.Context, rec job.ValidatedRecord) error {
	res, err := r.coll.InsertOne(ctx, toDocument(rec))
	if err != nil {
		return err
	}
	r.logger.Info("document inserted",
		"task_id", rec.TaskID, "result_index", rec.ResultIndex, "inserted_id", res.InsertedID)
	return nil
}

func (r *mongoRepository) Upsert(ctx context.Context, rec job.ValidatedRecord) error {
	doc := toDocument(rec)
	res, err := r.coll.ReplaceOne(ctx,
		bson.D{{Key: "task_id", Value: rec.TaskID}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	r.logger.Info("document upserted",
		"task_id", rec.TaskID, "matched", res.MatchedCount, "upserted_id", res.UpsertedID)
	return nil
}
