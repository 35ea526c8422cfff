package client

import (
	"fmt"
)

// Dashboard tab names used by the host pages.
const (
	TabAusschreibungen = "ausschreibungen"
	TabAngebote        = "angebote"
	TabAuftraege       = "auftraege"
	TabTermine         = "termine"
	TabContracts       = "contracts"
)

// tabForType is the static type->tab dispatch table. Types missing here
// intentionally produce no tab switch; extend the table when the server
// grows a new notification type.
var tabForType = map[string]string{
	TypeNewOffer:              TabAngebote,
	TypeNewTender:             TabAusschreibungen,
	TypePreliminaryAccepted:   TabAuftraege,
	TypeOfferConfirmed:        TabAuftraege,
	TypeOfferRejected:         TabAngebote,
	TypeAwarded:               TabAuftraege,
	TypeScheduleChangeRequest: TabContracts,
}

// Dispatcher routes a clicked notification to exactly one side effect:
// a tab switch, a deep navigation or a schedule reload. Callbacks the
// host did not provide are skipped silently.
type Dispatcher struct {
	Poller         *NotificationPoller
	SwitchTab      func(tab string)
	Navigate       func(route string)
	ReloadSchedule func()
}

// HandleClick processes one user click. Mark-read is fired first and
// not awaited; navigation must not wait for the round-trip.
func (d *Dispatcher) HandleClick(n Notification) {
	if d.Poller != nil {
		go d.Poller.MarkRead(n.ID)
	}

	switch n.Type {
	case TypeAppointmentRequest, TypeAppointmentConfirmed:
		offerID := n.Metadata.FirstString("appointment_offer_id", "offer_id", "offerId")
		if offerID == "" && n.ReferenceID != nil {
			offerID = fmt.Sprintf("%d", *n.ReferenceID)
		}
		if offerID != "" && d.Navigate != nil {
			d.Navigate("/" + TabTermine + "/" + offerID)
		}
	case TypeDeadlineWarning:
		if n.Metadata.FirstString("action") == "view_tenders" && d.SwitchTab != nil {
			d.SwitchTab(TabAusschreibungen)
		}
	case TypeScheduleGenerated:
		if d.ReloadSchedule != nil {
			d.ReloadSchedule()
		}
	default:
		if tab, ok := tabForType[n.Type]; ok && d.SwitchTab != nil {
			d.SwitchTab(tab)
		}
	}
}
