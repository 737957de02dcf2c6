// Package settings exposes the pricing and business parameters. The source
// is a MongoDB key-value collection; every read degrades to the documented
// defaults when a key is missing or the source is unreachable, so pricing
// never fails on a settings outage.
package settings

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

const CollectionName = "Settings"

// Parameter keys in the Settings collection.
const (
	KeyBaseOccupancy     = "base_occupancy"
	KeyBaseRate          = "base_rate"
	KeyMinHours          = "min_hours"
	KeyExtraPersonRate   = "extra_person_rate"
	KeyCombinedThreshold = "combined_threshold"
	KeyVATPercent        = "vat_percent"
)

// Defaults returns the documented fallback parameters.
func Defaults() model.Settings {
	return model.Settings{
		BaseOccupancy:     3,
		BaseRate:          44000,
		MinHours:          2,
		ExtraPersonRate:   5000,
		CombinedThreshold: 10,
		VATPercent:        10,
	}
}

// Provider yields a read-only settings snapshot for one request.
type Provider interface {
	Snapshot(ctx context.Context) model.Settings
}

type entry struct {
	Key   string  `bson:"key"`
	Value float64 `bson:"value"`
}

type mongoProvider struct {
	collection *mongo.Collection
	log        *logger.Logger
}

func NewMongoProvider(db *mongo.Database, log *logger.Logger) Provider {
	return &mongoProvider{
		collection: db.Collection(CollectionName),
		log:        log,
	}
}

func (p *mongoProvider) Snapshot(ctx context.Context) model.Settings {
	snapshot := Defaults()

	cursor, err := p.collection.Find(ctx, bson.M{})
	if err != nil {
		p.log.Warn("Failed to read settings, using defaults", "error", err)
		return snapshot
	}
	defer cursor.Close(ctx)

	var entries []entry
	if err := cursor.All(ctx, &entries); err != nil {
		p.log.Warn("Failed to decode settings, using defaults", "error", err)
		return snapshot
	}

	for _, e := range entries {
		switch e.Key {
		case KeyBaseOccupancy:
			snapshot.BaseOccupancy = int(e.Value)
		case KeyBaseRate:
			snapshot.BaseRate = int64(e.Value)
		case KeyMinHours:
			snapshot.MinHours = e.Value
		case KeyExtraPersonRate:
			snapshot.ExtraPersonRate = int64(e.Value)
		case KeyCombinedThreshold:
			snapshot.CombinedThreshold = int(e.Value)
		case KeyVATPercent:
			snapshot.VATPercent = e.Value
		}
	}

	return snapshot
}

// Static wraps a fixed snapshot; used in tests and tools.
type Static struct {
	Settings model.Settings
}

func (s Static) Snapshot(context.Context) model.Settings {
	return s.Settings
}
