package models

// AuditLog records who changed which finance record, for accountability.
type AuditLog struct {
	Base
	UserID       *string `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action       string  `gorm:"not null" json:"action"`
	ResourceType string  `gorm:"not null;index:idx_audit_logs_resource" json:"resource_type"`
	ResourceID   string  `gorm:"index:idx_audit_logs_resource" json:"resource_id"`
	IPAddress    string  `json:"ip_address"`
	Changes      string  `json:"changes,omitempty"`
}
