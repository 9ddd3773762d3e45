package models

import (
	"time"

	"github.com/google/uuid"
)

// Condition is an observed state of one inspected item.
type Condition string

const (
	ConditionExcellent     Condition = "Excellent"
	ConditionGood          Condition = "Good"
	ConditionFair          Condition = "Fair"
	ConditionPoor          Condition = "Poor"
	ConditionDamaged       Condition = "Damaged"
	ConditionMissing       Condition = "Missing"
	ConditionWorking       Condition = "Working"
	ConditionNotWorking    Condition = "Not Working"
	ConditionLocking       Condition = "Locking"
	ConditionNotLocking    Condition = "Not Locking"
	ConditionNotApplicable Condition = "Not Applicable"
)

// Allowed values per inspected item.
var (
	SurfaceConditions = []Condition{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged, ConditionNotApplicable}
	FixtureConditions = []Condition{ConditionWorking, ConditionNotWorking, ConditionDamaged, ConditionMissing, ConditionNotApplicable}
	WindowConditions  = []Condition{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged, ConditionMissing, ConditionNotApplicable}
	DoorConditions    = []Condition{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged, ConditionMissing, ConditionLocking, ConditionNotLocking, ConditionNotApplicable}
)

// Rating is the derived overall verdict of an inspection.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
	RatingCritical  Rating = "Critical"
)

// RoomImages holds evidence image references, one list per condition field.
type RoomImages struct {
	Floor  []string `json:"floor"`
	Wall   []string `json:"wall"`
	Switch []string `json:"switch"`
	Window []string `json:"window"`
	Door   []string `json:"door"`
}

// RoomConditions is the condition group shared by every inspected room.
type RoomConditions struct {
	Floor  Condition  `json:"floor" validate:"omitempty,surface"`
	Wall   Condition  `json:"wall" validate:"omitempty,surface"`
	Switch Condition  `json:"switch" validate:"omitempty,fixture"`
	Window Condition  `json:"window" validate:"omitempty,window"`
	Door   Condition  `json:"door" validate:"omitempty,door"`
	Images RoomImages `json:"images"`
}

// KitchenConditions is a room with a stove.
type KitchenConditions struct {
	RoomConditions
	Stove       Condition `json:"stove" validate:"omitempty,fixture"`
	StoveImages []string  `json:"stoveImages"`
}

// ApplyDefaults fills unset fields with the values an inspector would assume.
func (r *RoomConditions) ApplyDefaults() {
	if r.Floor == "" {
		r.Floor = ConditionFair
	}
	if r.Wall == "" {
		r.Wall = ConditionFair
	}
	if r.Switch == "" {
		r.Switch = ConditionWorking
	}
	if r.Window == "" {
		r.Window = ConditionFair
	}
	if r.Door == "" {
		r.Door = ConditionFair
	}
	r.Images.normalize()
}

// normalize replaces nil lists so they serialize as empty arrays.
func (i *RoomImages) normalize() {
	for _, l := range []*[]string{&i.Floor, &i.Wall, &i.Switch, &i.Window, &i.Door} {
		if *l == nil {
			*l = []string{}
		}
	}
}

// ApplyDefaults fills unset room fields and the stove.
func (k *KitchenConditions) ApplyDefaults() {
	k.RoomConditions.ApplyDefaults()
	if k.Stove == "" {
		k.Stove = ConditionWorking
	}
	if k.StoveImages == nil {
		k.StoveImages = []string{}
	}
}

// Values returns the room's condition fields in a fixed order.
func (r RoomConditions) Values() []Condition {
	return []Condition{r.Floor, r.Wall, r.Switch, r.Window, r.Door}
}

// Values returns the kitchen's condition fields, room fields first.
func (k KitchenConditions) Values() []Condition {
	return append(k.RoomConditions.Values(), k.Stove)
}

// Inspection is an append-only record of one property inspection.
type Inspection struct {
	InspectionID uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"userId"`      // Subject of the inspection
	OrgID        uuid.UUID `json:"organizationId"`
	InspectorID  uuid.UUID `json:"inspectedBy"` // May differ from the owner

	Room1   RoomConditions    `json:"room1"`
	Room2   RoomConditions    `json:"room2"`
	Kitchen KitchenConditions `json:"kitchen"`

	Notes         string `json:"notes"`
	OverallRating Rating `json:"overallRating"` // Derived, never client supplied

	InspectedAt time.Time `json:"inspectionDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Conditions flattens the 16 condition fields: room1, room2, then kitchen.
func (i *Inspection) Conditions() []Condition {
	out := make([]Condition, 0, 16)
	out = append(out, i.Room1.Values()...)
	out = append(out, i.Room2.Values()...)
	out = append(out, i.Kitchen.Values()...)
	return out
}
