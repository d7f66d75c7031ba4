// Package enrich resolves a user's movie associations into enriched
// records via the metadata client.
package enrich

import (
	"context"
	"log"

	"github.com/CoolCoder0110/Movie-API/pkg/models"
)

// Lookup resolves one imdb id. Implemented by *omdb.Client.
type Lookup interface {
	Lookup(ctx context.Context, imdbID string) (models.EnrichedMovie, error)
}

// Enricher turns association lists into enriched movie lists.
type Enricher struct {
	client Lookup
}

// New creates an Enricher over the given metadata client.
func New(client Lookup) *Enricher {
	return &Enricher{client: client}
}

// EnrichAll resolves each association in input order, one lookup per
// entry — identical imdb ids are looked up again, never cached. A
// failed lookup drops that item from the output and nothing else:
// best effort, no partial-error signal. Provider not-found results
// are included as the sentinel record.
func (e *Enricher) EnrichAll(ctx context.Context, movies []models.Movie) []models.EnrichedMovie {
	enriched := make([]models.EnrichedMovie, 0, len(movies))
	for _, m := range movies {
		movie, err := e.client.Lookup(ctx, m.IMDBID)
		if err != nil {
			log.Printf("[Enrich] Skipping %s: %v", m.IMDBID, err)
			continue
		}
		enriched = append(enriched, movie)
	}
	return enriched
}
