package types

// Counter is the single source of truth for display-id sequences. The
// increment-and-fetch on its row is the one atomic primitive the system
// relies on; ids are never reused or skipped.
type Counter struct {
	Name string `gorm:"primaryKey;column:name"`
	Seq  int64  `gorm:"not null;column:seq"`
}

func (Counter) TableName() string {
	return "counters"
}

const (
	CounterChildID         = "childId"
	CounterParentStaffID   = "parentStaffId"
	CounterSpecialistStaff = "specialistStaffId"
	CounterAdminStaffID    = "adminStaffId"
)
