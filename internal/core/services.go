package core

import (
	"github.com/Miandari/dailygrit/internal/lock"
	"github.com/Miandari/dailygrit/internal/repository"
	"github.com/Miandari/dailygrit/pkg/metrics"
	"github.com/Miandari/dailygrit/pkg/utils"
)

// Services bundles every service the transports need
type Services struct {
	Tokens        TokenService
	Entries       EntryService
	Recalculation RecalculationService
	Challenges    ChallengeService
	Participants  ParticipantService
}

// NewServices wires the services over one store, locker and clock
func NewServices(store repository.Store, locker lock.Locker, clock utils.Clock, recorder *metrics.Recorder, tokens TokenService) *Services {
	recalc := NewRecalculationService(store, locker, recorder)
	return &Services{
		Tokens:        tokens,
		Entries:       NewEntryService(store, locker, clock, recorder),
		Recalculation: recalc,
		Challenges:    NewChallengeService(store, recalc, clock),
		Participants:  NewParticipantService(store, locker, clock),
	}
}
