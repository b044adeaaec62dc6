package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore implements Store on a single "packages" collection; each
// document embeds its uploads array.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore wraps the packages collection of the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("packages")}
}

type mongoUpload struct {
	Version     string            `bson:"version"`
	Description string            `bson:"description"`
	Files       map[string]string `bson:"files"`
	CreatedAt   time.Time         `bson:"created_at"`
}

type mongoPackage struct {
	Name      string        `bson:"_id"`
	Owner     string        `bson:"owner"`
	Uploads   []mongoUpload `bson:"uploads"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// GetPackage retrieves a package document by name.
func (s *MongoStore) GetPackage(ctx context.Context, name string) (*Package, error) {
	var doc mongoPackage
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("catalog: find package: %w", err)
	}
	return docToPackage(doc)
}

// ListPackages returns summaries ordered by name.
func (s *MongoStore) ListPackages(ctx context.Context) ([]Summary, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("catalog: list packages: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []Summary
	for cursor.Next(ctx) {
		var doc mongoPackage
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("catalog: decode package: %w", err)
		}
		pkg, err := docToPackage(doc)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, Summarize(pkg))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate packages: %w", err)
	}

	return summaries, nil
}

// CreateUpload appends an upload, inserting the package document on first
// publish. The filter excludes documents already containing the version so a
// duplicate publish matches nothing instead of double-recording.
func (s *MongoStore) CreateUpload(ctx context.Context, name string, isUpdate bool, owner uuid.UUID, upload Upload) error {
	now := time.Now()
	createdAt := upload.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	up := mongoUpload{
		Version:     upload.Version,
		Description: upload.Description,
		Files:       upload.Files,
		CreatedAt:   createdAt,
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": name, "uploads.version": bson.M{"$ne": upload.Version}},
		bson.M{
			"$push":        bson.M{"uploads": up},
			"$set":         bson.M{"updated_at": now},
			"$setOnInsert": bson.M{"owner": owner.String(), "created_at": now},
		},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Upsert raced with the document existing but holding the version.
			return ErrVersionExists
		}
		return fmt.Errorf("catalog: record upload: %w", err)
	}

	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrVersionExists
	}
	return nil
}

func docToPackage(doc mongoPackage) (*Package, error) {
	owner, err := uuid.Parse(doc.Owner)
	if err != nil {
		return nil, fmt.Errorf("catalog: invalid owner id %q: %w", doc.Owner, err)
	}

	pkg := &Package{
		Name:      doc.Name,
		Owner:     owner,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, u := range doc.Uploads {
		pkg.Uploads = append(pkg.Uploads, Upload{
			Version:     u.Version,
			Description: u.Description,
			Files:       u.Files,
			CreatedAt:   u.CreatedAt,
		})
	}
	return pkg, nil
}
