package capabilities

import "context"

// Resolver responde si un usuario tiene una capability de su plan.
// La implementación real vive en adapters/capabilities/plansfeatures.
type Resolver interface {
	Has(ctx context.Context, userID, capability string) (bool, error)
}
