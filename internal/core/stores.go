package core

import "github.com/valter-silva-au/seqthink/pkg/models"

// SessionStore is the persistence capability the thinking service needs.
// Get returns a copy the caller may mutate before handing it to Persist.
type SessionStore interface {
	Get(id string) (*models.AnalysisSession, bool)
	Persist(session *models.AnalysisSession) error
	List() []models.AnalysisSession
}
