package seeder

import (
	"context"
	"log"

	"github.com/communityempower/ai-gateway/internal/auth"
)

const (
	TestAPIKey   = "dev-assist-key-12345"
	TestTenantID = "00000000-0000-0000-0000-000000000001"
)

// SeedTestAPIKey creates a development API key so the assistant endpoints
// can be exercised without provisioning a tenant first.
func SeedTestAPIKey(ctx context.Context, store auth.Store) {
	apiKey := &auth.APIKey{
		TenantID: TestTenantID,
		KeyHash:  auth.HashKey(TestAPIKey),
		Label:    "development",
		Active:   true,
	}

	err := store.Create(ctx, apiKey)
	if err != nil {
		log.Printf("[Seeder] API key may already exist, skipping: %v", err)
		return
	}
	log.Printf("[Seeder] Test API key created successfully")
	log.Printf("[Seeder] Key: %s", TestAPIKey)
	log.Printf("[Seeder] TenantID: %s", TestTenantID)
}
