package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleSupplier Role = "supplier"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleSupplier:
		return true
	}
	return false
}

// Action is a capability code checked before exposing or executing an operation.
type Action string

const (
	ActionProductView       Action = "product:view"
	ActionProductCreate     Action = "product:create"
	ActionProductUpdate     Action = "product:update"
	ActionOrderView         Action = "order:view"
	ActionOrderCreate       Action = "order:create"
	ActionOrderUpdateStatus Action = "order:update_status"
	ActionInventoryView     Action = "inventory:view"
	ActionInventoryAdjust   Action = "inventory:adjust"
	ActionDashboardView     Action = "dashboard:view"
	ActionReportGenerate    Action = "report:generate"
	ActionTeamView          Action = "team:view"
	ActionTeamManage        Action = "team:manage"
)

// AllActions lists every capability in display order.
var AllActions = []Action{
	ActionProductView, ActionProductCreate, ActionProductUpdate,
	ActionOrderView, ActionOrderCreate, ActionOrderUpdateStatus,
	ActionInventoryView, ActionInventoryAdjust,
	ActionDashboardView, ActionReportGenerate,
	ActionTeamView, ActionTeamManage,
}

var supplierActions = map[Action]bool{
	ActionProductView:   true,
	ActionOrderView:     true,
	ActionInventoryView: true,
	ActionDashboardView: true,
}

// CanPerform is the single capability check. Admin may do everything, staff
// everything except team management, suppliers are read-only.
func CanPerform(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleStaff:
		return action != ActionTeamView && action != ActionTeamManage
	case RoleSupplier:
		return supplierActions[action]
	}
	return false
}

func CapabilitiesOf(role Role) []Action {
	actions := make([]Action, 0, len(AllActions))
	for _, a := range AllActions {
		if CanPerform(role, a) {
			actions = append(actions, a)
		}
	}
	return actions
}

// Actor identifies who is calling a mutating operation. It is passed explicitly
// into every service call instead of being read from ambient session state.
type Actor struct {
	ID   uuid.UUID
	Role Role
	Name string
}

func (a Actor) Can(action Action) bool {
	return a.ID != uuid.Nil && CanPerform(a.Role, action)
}
