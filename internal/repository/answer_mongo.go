package repository

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devinsight/devinsight/internal/models"
)

// AnswerRepository provides Mongo-backed persistence for generated answers.
// The document _id is the normalized question text, so a repeated question
// replaces its previous answer.
type AnswerRepository struct {
	col *mongo.Collection
	log zerolog.Logger
}

// NewAnswerRepository returns a repository over the "answers" collection.
func NewAnswerRepository(db *mongo.Database, log zerolog.Logger) *AnswerRepository {
	return &AnswerRepository{
		col: db.Collection("answers"),
		log: log.With().Str("component", "answers").Logger(),
	}
}

// FindByQuestion returns the cached answer for a normalized question, or
// nil with no error when nothing is cached so callers regenerate.
func (r *AnswerRepository) FindByQuestion(ctx context.Context, question string) (*models.CachedAnswer, error) {
	var cached models.CachedAnswer
	err := r.col.FindOne(ctx, bson.M{"_id": question}).Decode(&cached)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		r.log.Error().Err(err).Str("question", question).Msg("cache read failed")
		return nil, err
	}
	return &cached, nil
}

// Upsert inserts or replaces the answer with the same _id.
func (r *AnswerRepository) Upsert(ctx context.Context, answer models.CachedAnswer) error {
	_, err := r.col.ReplaceOne(
		ctx,
		bson.M{"_id": answer.ID},
		answer,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		r.log.Error().Err(err).Str("question", answer.ID).Msg("cache write failed")
		return err
	}
	return nil
}
