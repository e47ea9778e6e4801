package booking

import "floorkeeper/internal/models"

// Action is a lifecycle verb applied to a reservation or block
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
	ActionNoShow   Action = "no_show"
	ActionActivate Action = "activate"
	// ActionUpdate is not a transition; it is checked against the live states
	ActionUpdate Action = "update"
)

// ReservationTransition is one legal reservation state change
type ReservationTransition struct {
	From   models.ReservationStatus
	Action Action
	To     models.ReservationStatus
}

// BlockTransition is one legal block state change
type BlockTransition struct {
	From   models.BlockStatus
	Action Action
	To     models.BlockStatus
}

// reservationTransitions is the authoritative reservation state machine.
// completada, cancelada and no_show are terminal.
var reservationTransitions = []ReservationTransition{
	{From: models.ReservationPending, Action: ActionConfirm, To: models.ReservationConfirmed},
	{From: models.ReservationPending, Action: ActionCancel, To: models.ReservationCancelled},
	{From: models.ReservationConfirmed, Action: ActionCancel, To: models.ReservationCancelled},
	{From: models.ReservationConfirmed, Action: ActionComplete, To: models.ReservationCompleted},
	{From: models.ReservationConfirmed, Action: ActionNoShow, To: models.ReservationNoShow},
}

// blockTransitions is the authoritative block state machine.
// completado and cancelado are terminal.
var blockTransitions = []BlockTransition{
	{From: models.BlockScheduled, Action: ActionActivate, To: models.BlockActive},
	{From: models.BlockScheduled, Action: ActionCancel, To: models.BlockCancelled},
	{From: models.BlockActive, Action: ActionComplete, To: models.BlockCompleted},
	{From: models.BlockActive, Action: ActionCancel, To: models.BlockCancelled},
}

type reservationKey struct {
	From   models.ReservationStatus
	Action Action
}

type blockKey struct {
	From   models.BlockStatus
	Action Action
}

var reservationMap = func() map[reservationKey]models.ReservationStatus {
	m := make(map[reservationKey]models.ReservationStatus)
	for _, t := range reservationTransitions {
		m[reservationKey{t.From, t.Action}] = t.To
	}
	return m
}()

var blockMap = func() map[blockKey]models.BlockStatus {
	m := make(map[blockKey]models.BlockStatus)
	for _, t := range blockTransitions {
		m[blockKey{t.From, t.Action}] = t.To
	}
	return m
}()

// NextReservationStatus returns the state reached by applying action, if legal
func NextReservationStatus(from models.ReservationStatus, action Action) (models.ReservationStatus, bool) {
	to, ok := reservationMap[reservationKey{from, action}]
	return to, ok
}

// NextBlockStatus returns the state reached by applying action, if legal
func NextBlockStatus(from models.BlockStatus, action Action) (models.BlockStatus, bool) {
	to, ok := blockMap[blockKey{from, action}]
	return to, ok
}

// ReservationActionsFrom lists the actions accepted in a reservation state
func ReservationActionsFrom(status models.ReservationStatus) []string {
	actions := make([]string, 0)
	for _, t := range reservationTransitions {
		if t.From == status {
			actions = append(actions, string(t.Action))
		}
	}
	return actions
}

// BlockActionsFrom lists the actions accepted in a block state
func BlockActionsFrom(status models.BlockStatus) []string {
	actions := make([]string, 0)
	for _, t := range blockTransitions {
		if t.From == status {
			actions = append(actions, string(t.Action))
		}
	}
	return actions
}

// ReservationTransitions returns the full reservation state machine
func ReservationTransitions() []ReservationTransition {
	return reservationTransitions
}

// BlockTransitions returns the full block state machine
func BlockTransitions() []BlockTransition {
	return blockTransitions
}

// withdrawnStatus is the table estado an active block of the given type imposes
func withdrawnStatus(t models.BlockType) models.TableStatus {
	if t == models.BlockMaintenance {
		return models.TableMaintenance
	}
	return models.TableOutOfOrder
}
