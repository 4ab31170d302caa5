// Package cache is the read-model cache for the application subsystem.
//
// Entries are keyed by semantic identity so a mutation knows exactly which
// views it touches. Correctness comes from synchronous invalidation at
// mutation time; the staleness TTL is only a backstop that bounds how long a
// forgotten key can live.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ViewCache stores serialized read models. A miss is (nil, false, nil);
// errors are reserved for transport failures so callers can fall through to
// the authoritative store.
type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// ApplicationKey caches a single application view.
func ApplicationKey(id primitive.ObjectID) string {
	return "application:" + id.Hex()
}

// PrincipalKey caches a principal's identity/role view.
func PrincipalKey(id primitive.ObjectID) string {
	return "principal:" + id.Hex()
}

// ListKey caches one page of a status-filtered listing.
func ListKey(status *domain.ApplicationStatus, limit, skip int64) string {
	s := "all"
	if status != nil {
		s = string(*status)
	}
	return fmt.Sprintf("applications:status=%s:limit=%d:skip=%d", s, limit, skip)
}

// ListKeyPrefix matches every page of every listing. Listings are invalidated
// wholesale on mutation because a status change moves the record between
// filtered views.
const ListKeyPrefix = "applications:status="
