package agent

import "github.com/hiremind/backend/models"

// ExpandContexts returns the ordered search contexts for a resume location:
// Local(city), National(country), Remote when a city is known, otherwise
// National(country), Remote.
func ExpandContexts(hasCity bool, city, country string) []models.SearchContext {
	contexts := make([]models.SearchContext, 0, 3)
	if hasCity {
		contexts = append(contexts, models.SearchContext{Type: models.ContextLocal, Location: city})
	}
	return append(contexts,
		models.SearchContext{Type: models.ContextNational, Location: country},
		models.SearchContext{Type: models.ContextRemote},
	)
}
