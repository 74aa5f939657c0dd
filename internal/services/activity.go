package services

import (
	"encoding/json"
	"log"

	"github.com/munhub-dev/munhub/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityRecorder appends admin mutations to the audit trail. Recording
// failures are logged, never propagated: the audit trail must not fail the
// action it describes.
type ActivityRecorder struct {
	conn *gorm.DB
}

func NewActivityRecorder(conn *gorm.DB) *ActivityRecorder {
	return &ActivityRecorder{conn: conn}
}

func (r *ActivityRecorder) Record(actorID uint, action, entityType string, entityID uint, metadata map[string]interface{}) {
	entry := models.ActivityLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}

	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			log.Printf("Failed to marshal activity metadata for %s: %v", action, err)
		} else {
			entry.Metadata = datatypes.JSON(raw)
		}
	}

	if err := r.conn.Create(&entry).Error; err != nil {
		log.Printf("Failed to record activity %s: %v", action, err)
	}
}
