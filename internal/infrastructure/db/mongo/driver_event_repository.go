package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

const (
	collectionDeliveries  = "deliveries"
	collectionTransitions = "mode_transitions"
)

// DriverEventRepository implements ports.DriverEventRepository using MongoDB.
type DriverEventRepository struct {
	db *mongo.Database
}

// NewDriverEventRepository creates a new DriverEventRepository.
func NewDriverEventRepository(db *mongo.Database) *DriverEventRepository {
	return &DriverEventRepository{db: db}
}

var _ ports.DriverEventRepository = (*DriverEventRepository)(nil)

// InsertDelivery persists a completed delivery with its checklist snapshot.
// A record with a start time is upserted on (driver_id, started_at), so
// writing the same delivery again is a no-op.
func (r *DriverEventRepository) InsertDelivery(ctx context.Context, rec domain.DeliveryRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	coll := r.db.Collection(collectionDeliveries)
	doc := deliveryDoc(rec)
	if rec.StartedAt.IsZero() {
		_, err := coll.InsertOne(ctx, doc)
		return err
	}

	filter := bson.M{"driver_id": doc.DriverID, "started_at": doc.StartedAt}
	_, err := coll.UpdateOne(ctx, filter, bson.M{"$setOnInsert": doc}, options.Update().SetUpsert(true))
	return err
}

// InsertTransition appends a mode change to the mode_transitions audit collection.
func (r *DriverEventRepository) InsertTransition(ctx context.Context, t domain.ModeTransition) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"driver_id":   t.DriverID,
		"from":        string(t.From),
		"to":          string(t.To),
		"speed":       t.Inputs.Speed,
		"clocked_in":  t.Inputs.IsClockedIn,
		"at":          t.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if t.Inputs.DistanceToCustomer != nil {
		doc["distance_to_customer"] = *t.Inputs.DistanceToCustomer
	}

	_, err := r.db.Collection(collectionTransitions).InsertOne(ctx, doc)
	return err
}

// RecentDeliveries returns the driver's latest deliveries, newest first.
func (r *DriverEventRepository) RecentDeliveries(ctx context.Context, driverID string, limit int) ([]domain.DeliveryRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "completed_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.db.Collection(collectionDeliveries).Find(ctx, bson.M{"driver_id": driverID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []deliveryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.DeliveryRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

type checklistDocument struct {
	ID        int    `bson:"id"`
	Task      string `bson:"task"`
	Completed bool   `bson:"completed"`
}

type deliveryDocument struct {
	DriverID    string              `bson:"driver_id"`
	StopName    string              `bson:"stop_name"`
	StopAddress string              `bson:"stop_address"`
	Fuel        string              `bson:"fuel"`
	Checklist   []checklistDocument `bson:"checklist"`
	StartedAt   time.Time           `bson:"started_at,omitempty"`
	CompletedAt time.Time           `bson:"completed_at"`
}

func deliveryDoc(rec domain.DeliveryRecord) deliveryDocument {
	items := make([]checklistDocument, 0, len(rec.Checklist))
	for _, it := range rec.Checklist {
		items = append(items, checklistDocument{ID: it.ID, Task: it.Task, Completed: it.Completed})
	}
	return deliveryDocument{
		DriverID:    rec.DriverID,
		StopName:    rec.Stop.Name,
		StopAddress: rec.Stop.Address,
		Fuel:        rec.Stop.Fuel,
		Checklist:   items,
		StartedAt:   rec.StartedAt.UTC(),
		CompletedAt: rec.CompletedAt.UTC(),
	}
}

func (d deliveryDocument) toDomain() domain.DeliveryRecord {
	items := make(domain.Checklist, 0, len(d.Checklist))
	for _, it := range d.Checklist {
		items = append(items, domain.ChecklistItem{ID: it.ID, Task: it.Task, Completed: it.Completed})
	}
	return domain.DeliveryRecord{
		DriverID:    d.DriverID,
		Stop:        domain.Stop{Name: d.StopName, Address: d.StopAddress, Fuel: d.Fuel},
		Checklist:   items,
		StartedAt:   d.StartedAt,
		CompletedAt: d.CompletedAt,
	}
}
