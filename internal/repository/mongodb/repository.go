package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aquaexport/seatrace/internal/domain/models"
)

// Repository defines the mismatch-report history store. Only advisory scan
// output lands here; shipment entity data itself stays on the backend.
type Repository interface {
	SaveMismatchReports(ctx context.Context, reports []models.MismatchReport) error
	ListMismatchReports(ctx context.Context, shipmentID string, limit int64) ([]models.MismatchReport, error)
}

// MongoDBRepository implements Repository on MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "mismatch_reports",
	}, nil
}

// SaveMismatchReports appends a batch of scan findings. A no-op on an empty
// batch so sweep code does not need to special-case clean scans.
func (r *MongoDBRepository) SaveMismatchReports(ctx context.Context, reports []models.MismatchReport) error {
	if len(reports) == 0 {
		return nil
	}

	docs := make([]interface{}, len(reports))
	for i, report := range reports {
		docs[i] = report
	}

	collection := r.client.Database(r.dbName).Collection(r.collName)
	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert mismatch reports: %w", err)
	}
	return nil
}

// ListMismatchReports returns the most recent findings for a shipment,
// newest first.
func (r *MongoDBRepository) ListMismatchReports(ctx context.Context, shipmentID string, limit int64) ([]models.MismatchReport, error) {
	collection := r.client.Database(r.dbName).Collection(r.collName)

	findOptions := options.Find().
		SetSort(bson.D{{Key: "detected_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, bson.M{"shipment_id": shipmentID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to query mismatch reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []models.MismatchReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode mismatch reports: %w", err)
	}
	return reports, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
