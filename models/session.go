package models

// SessionGroup groups sessions in the session picker
type SessionGroup struct {
	SessionGroupID string `json:"session_group_id"`
	Name           string `json:"name" validate:"required,max=128"`
}

// Session binds a table, region and optional credential profile
type Session struct {
	SessionID         string `json:"session_id"`
	Name              string `json:"name" validate:"required,max=128"`
	TableName         string `json:"table_name" validate:"required,min=3,max=255"`
	Region            string `json:"region" validate:"required"`
	CredentialProfile string `json:"credential_profile,omitempty"`
	SessionGroupID    string `json:"session_group_id" validate:"required"`
}

// SessionUpdate carries the session fields to change; nil fields are left untouched
type SessionUpdate struct {
	Name              *string `json:"name,omitempty" validate:"omitempty,min=1,max=128"`
	TableName         *string `json:"table_name,omitempty" validate:"omitempty,min=3,max=255"`
	Region            *string `json:"region,omitempty" validate:"omitempty,min=1"`
	CredentialProfile *string `json:"credential_profile,omitempty"`
	SessionGroupID    *string `json:"session_group_id,omitempty" validate:"omitempty,min=1"`
}
