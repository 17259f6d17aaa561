package catalog

import (
	"strings"
	"time"
)

type MuscleGroup string

const (
	MuscleGroupChest     MuscleGroup = "chest"
	MuscleGroupBack      MuscleGroup = "back"
	MuscleGroupShoulders MuscleGroup = "shoulders"
	MuscleGroupArms      MuscleGroup = "arms"
	MuscleGroupLegs      MuscleGroup = "legs"
	MuscleGroupCore      MuscleGroup = "core"
	MuscleGroupCardio    MuscleGroup = "cardio"
	MuscleGroupOther     MuscleGroup = "other"
)

var MuscleGroups = []MuscleGroup{
	MuscleGroupChest,
	MuscleGroupBack,
	MuscleGroupShoulders,
	MuscleGroupArms,
	MuscleGroupLegs,
	MuscleGroupCore,
	MuscleGroupCardio,
	MuscleGroupOther,
}

func (mg MuscleGroup) IsValid() bool {
	switch mg {
	case MuscleGroupChest,
		MuscleGroupBack,
		MuscleGroupShoulders,
		MuscleGroupArms,
		MuscleGroupLegs,
		MuscleGroupCore,
		MuscleGroupCardio,
		MuscleGroupOther:
		return true
	default:
		return false
	}
}

// Equipment is optional on an exercise; the empty value means none is set.
type Equipment string

const (
	EquipmentMachine    Equipment = "machine"
	EquipmentDumbbell   Equipment = "dumbbell"
	EquipmentBarbell    Equipment = "barbell"
	EquipmentBodyweight Equipment = "bodyweight"
	EquipmentOther      Equipment = "other"
)

var EquipmentTypes = []Equipment{
	EquipmentMachine,
	EquipmentDumbbell,
	EquipmentBarbell,
	EquipmentBodyweight,
	EquipmentOther,
}

func (e Equipment) IsValid() bool {
	switch e {
	case EquipmentMachine,
		EquipmentDumbbell,
		EquipmentBarbell,
		EquipmentBodyweight,
		EquipmentOther:
		return true
	default:
		return false
	}
}

// Exercise is a catalog entry. Its identity is the case-insensitive name,
// while Name holds the canonical (stored) spelling.
type Exercise struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	MuscleGroup MuscleGroup `json:"muscleGroup"`
	Equipment   Equipment   `json:"equipment,omitempty"`
	Description string      `json:"description,omitempty"`
	CreatedBy   string      `json:"createdBy,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// NameKey is the lookup key used for case-insensitive name matching.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Index is a case-insensitive name lookup over a catalog snapshot.
type Index map[string]Exercise

func NewIndex(exercises []Exercise) Index {
	idx := make(Index, len(exercises))
	for _, e := range exercises {
		key := NameKey(e.Name)
		// keep the oldest row if the store holds case variants of one name
		if existing, ok := idx[key]; ok && existing.ID != 0 && existing.ID < e.ID {
			continue
		}
		idx[key] = e
	}
	return idx
}

func (idx Index) Lookup(name string) (Exercise, bool) {
	e, ok := idx[NameKey(name)]
	return e, ok
}
