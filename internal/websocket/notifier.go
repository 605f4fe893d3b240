package programws

import (
	"strconv"

	"github.com/silverxhexhaj/nutricoach-sub001/internal/models"
)

// Notifier adapts the hub to the event methods the services call.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) ProgramAssigned(assignment *models.ClientProgram) {
	n.hub.Publish(&Event{
		Type:            EventProgramAssigned,
		UserID:          strconv.FormatInt(assignment.ClientID, 10),
		ClientProgramID: strconv.FormatInt(assignment.ID, 10),
		ProgramID:       strconv.FormatInt(assignment.ProgramID, 10),
	})
}

func (n *Notifier) ProgramUnassigned(assignment *models.ClientProgram) {
	n.hub.Publish(&Event{
		Type:            EventProgramUnassigned,
		UserID:          strconv.FormatInt(assignment.ClientID, 10),
		ClientProgramID: strconv.FormatInt(assignment.ID, 10),
		ProgramID:       strconv.FormatInt(assignment.ProgramID, 10),
	})
}

func (n *Notifier) OverrideSaved(clientID int64, clientProgramID int64) {
	n.hub.Publish(&Event{
		Type:            EventOverrideUpdated,
		UserID:          strconv.FormatInt(clientID, 10),
		ClientProgramID: strconv.FormatInt(clientProgramID, 10),
	})
}
