package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-reunite/internal/domain/admin"
	"pet-reunite/internal/domain/businesses"
	"pet-reunite/internal/domain/campaigns"
	"pet-reunite/internal/platform/geo"
)

func TestArgs_BuildsPositionalWhere(t *testing.T) {
	var a args
	assert.Equal(t, "", a.clause())

	a.where("status = " + a.add("lost"))
	a.where("district = " + a.add("Miraflores"))

	assert.Equal(t, " WHERE status = $1 AND district = $2", a.clause())
	assert.Equal(t, []any{"lost", "Miraflores"}, a.vals)
	assert.Equal(t, "$3", a.add(20))
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, "%firulais%", likePattern("  firulais "))
	assert.Equal(t, `%100\%\_ok%`, likePattern("100%_ok"))
}

func TestLimitOrDefault(t *testing.T) {
	assert.Equal(t, 20, limitOrDefault(0))
	assert.Equal(t, 20, limitOrDefault(-3))
	assert.Equal(t, 5, limitOrDefault(5))
}

func TestIsUUID(t *testing.T) {
	assert.True(t, isUUID("7d1f4a1e-8f0a-4a38-9b7c-2f1b6f0f1c11"))
	assert.False(t, isUUID("pet-1"))
	assert.False(t, isUUID(""))
}

func TestBusinessListQuery(t *testing.T) {
	query, vals, err := businessListQuery(businesses.ListFilter{}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY verified DESC, rating_avg DESC, name ASC LIMIT 20 OFFSET 0")
	assert.Empty(t, vals)

	near := geo.Point{Lat: -12.1, Lng: -77.0}
	query, vals, err = businessListQuery(businesses.ListFilter{
		Type:         businesses.TypeVeterinary,
		VerifiedOnly: true,
		Query:        "50%",
		Near:         &near,
		RadiusKm:     3,
		Limit:        5,
		Offset:       10,
	}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE type = $1 AND verified AND (name ILIKE $2 OR description ILIKE $3)")
	assert.Contains(t, query, "lat BETWEEN $4 AND $5 AND lng BETWEEN $6 AND $7")
	assert.Contains(t, query, "radians(lat - $8::float8)")
	assert.Contains(t, query, "radians(lng - $10::float8)")
	assert.Contains(t, query, "<= $11")
	assert.Contains(t, query, "LIMIT 5 OFFSET 10")
	require.Len(t, vals, 11)
	assert.Equal(t, "veterinary", vals[0])
	assert.Equal(t, `%50\%%`, vals[1])
	assert.Equal(t, []any{near.Lat, near.Lat, near.Lng, 3.0}, vals[7:])
}

func TestCampaignListQuery(t *testing.T) {
	after := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	query, vals, err := campaignListQuery(campaigns.ListFilter{
		Statuses:  []campaigns.Status{campaigns.StatusPublished},
		District:  "Surco",
		EndsAfter: after,
		Offset:    -1,
	}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE status IN ($1) AND lower(district) = lower($2) AND ends_at >= $3")
	assert.Contains(t, query, "ORDER BY starts_at ASC, id ASC LIMIT 20 OFFSET 0")
	assert.Equal(t, []any{"published", "Surco", after}, vals)
}

func TestAuditListQuery(t *testing.T) {
	query, vals, err := auditListQuery(admin.AuditFilter{TargetType: "pet", TargetID: "p1", Limit: 50}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "FROM admin_audit WHERE target_id = $1 AND target_type = $2")
	assert.Contains(t, query, "LIMIT 50 OFFSET 0")
	assert.Equal(t, []any{"p1", "pet"}, vals)
}
