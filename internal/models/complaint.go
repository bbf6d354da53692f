package models

// Complaint lifecycle states.
const (
	ComplaintPending    = "pending"
	ComplaintInProgress = "in_progress"
	ComplaintResolved   = "resolved"
	ComplaintRejected   = "rejected"
)

// Complaint is a grievance filed by one account against another. Both sides
// are identified by an id plus account kind, mirroring notification
// recipients.
type Complaint struct {
	BaseModel

	ComplainantID   string `gorm:"type:uuid;index;not null" json:"complainant_id"`
	ComplainantType string `gorm:"type:varchar(16);not null" json:"complainant_type"`
	AccusedID       string `gorm:"type:uuid;index;not null" json:"accused_id"`
	AccusedType     string `gorm:"type:varchar(16);not null" json:"accused_type"`

	Subject     string `gorm:"type:varchar(255);not null" json:"subject"`
	Description string `gorm:"type:text;not null" json:"description"`

	Status        string `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	AdminResponse string `gorm:"type:text" json:"admin_response,omitempty"`
}
