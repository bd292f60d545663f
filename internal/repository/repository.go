package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/minsukang/accounts/internal/domain/shared"
	"github.com/minsukang/accounts/pkg/logger"
)

// Filter is a conjunction of field constraints. An empty filter matches
// every document in the collection.
type Filter map[string]interface{}

// Update is a partial-field replacement applied via $set. It never
// replaces the whole document.
type Update map[string]interface{}

// Identifiable is implemented by entity pointer types so the repository
// can assign the identifier exactly once, at creation.
type Identifiable interface {
	ObjectID() bson.ObjectID
	SetObjectID(id bson.ObjectID)
}

// Repository provides collection-agnostic CRUD with uniform error
// semantics, bound to one named collection at construction. T is the
// entity type; PT is *T and must be Identifiable.
type Repository[T any, PT interface {
	*T
	Identifiable
}] struct {
	coll   *mongo.Collection
	name   string
	logger *logger.Logger
}

// New creates a repository bound to the named collection
func New[T any, PT interface {
	*T
	Identifiable
}](db *mongo.Database, collection string, log *logger.Logger) *Repository[T, PT] {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Repository[T, PT]{
		coll:   db.Collection(collection),
		name:   collection,
		logger: log.WithComponent("repository").WithField("collection", collection),
	}
}

// Create assigns a client-side identifier when unset, persists the
// document and returns it as stored.
func (r *Repository[T, PT]) Create(ctx context.Context, doc PT) (PT, error) {
	if doc.ObjectID().IsZero() {
		doc.SetObjectID(bson.NewObjectID())
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, shared.ErrAlreadyExists(r.name)
		}
		return nil, shared.ErrStoreUnavailable(err)
	}

	return doc, nil
}

// FindOne returns the first document matching filter, or NotFound.
// Callers must supply a filter sufficient to be unambiguous when
// uniqueness matters.
func (r *Repository[T, PT]) FindOne(ctx context.Context, filter Filter) (PT, error) {
	var doc T
	err := r.coll.FindOne(ctx, bson.M(filter)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.warnNotFound("FindOne", filter)
			return nil, shared.ErrNotFound(r.name)
		}
		return nil, shared.ErrStoreUnavailable(err)
	}
	return PT(&doc), nil
}

// Find returns all documents matching filter. An empty result is not
// an error.
func (r *Repository[T, PT]) Find(ctx context.Context, filter Filter) ([]PT, error) {
	cursor, err := r.coll.Find(ctx, bson.M(filter))
	if err != nil {
		return nil, shared.ErrStoreUnavailable(err)
	}

	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, shared.ErrStoreUnavailable(err)
	}

	out := make([]PT, 0, len(docs))
	for i := range docs {
		out = append(out, PT(&docs[i]))
	}
	return out, nil
}

// FindOneAndUpdate atomically applies a $set update to the first
// matching document and returns the post-update state. The locate and
// modify steps happen as one store-side operation; composing a separate
// find and update here would reintroduce a race.
func (r *Repository[T, PT]) FindOneAndUpdate(ctx context.Context, filter Filter, update Update) (PT, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc T
	err := r.coll.FindOneAndUpdate(ctx, bson.M(filter), bson.M{"$set": bson.M(update)}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.warnNotFound("FindOneAndUpdate", filter)
			return nil, shared.ErrNotFound(r.name)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, shared.ErrAlreadyExists(r.name)
		}
		return nil, shared.ErrStoreUnavailable(err)
	}
	return PT(&doc), nil
}

// FindOneAndDelete atomically removes the first matching document and
// returns its pre-deletion state.
func (r *Repository[T, PT]) FindOneAndDelete(ctx context.Context, filter Filter) (PT, error) {
	var doc T
	err := r.coll.FindOneAndDelete(ctx, bson.M(filter)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.warnNotFound("FindOneAndDelete", filter)
			return nil, shared.ErrNotFound(r.name)
		}
		return nil, shared.ErrStoreUnavailable(err)
	}
	return PT(&doc), nil
}

// warnNotFound echoes the failed filter for operability. Update values
// are deliberately not logged; they may carry credential material.
func (r *Repository[T, PT]) warnNotFound(op string, filter Filter) {
	r.logger.Warn("Document not found",
		zap.String("operation", op),
		zap.Any("filter", filter),
	)
}

// ParseID converts a 24-hex-character identifier into its typed form.
// Malformed input is a distinct InvalidIdentifier condition, not a
// generic store error.
func ParseID(raw string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return bson.NilObjectID, shared.ErrInvalidIdentifier(raw)
	}
	return id, nil
}
