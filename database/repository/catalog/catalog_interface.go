package catalogRepo

import (
	"context"

	"maidbook/models"
)

// CatalogRepository reads the location, plan and add-on reference data.
type CatalogRepository interface {
	// ListLocationsForService returns locations offering the service, by name.
	ListLocationsForService(ctx context.Context, serviceID string) ([]models.Location, error)
	// ListPlans returns the plans of a service in a location, cheapest first.
	ListPlans(ctx context.Context, locationID, serviceID string) ([]models.Plan, error)
	// ListAddOnQuestions returns a plan's questions in display order.
	ListAddOnQuestions(ctx context.Context, planID string) ([]models.AddOnQuestion, error)
}
