package entities

import (
	"time"

	"github.com/google/uuid"
)

// KYCStatus is the lifecycle state of a verification request and, mirrored,
// of the owning profile.
type KYCStatus string

const (
	KYCStatusNone        KYCStatus = "none"
	KYCStatusSubmitted   KYCStatus = "submitted"
	KYCStatusUnderReview KYCStatus = "under_review"
	KYCStatusVerified    KYCStatus = "verified"
	KYCStatusRejected    KYCStatus = "rejected"
	// KYCStatusApproved is an alias some older profile rows still carry.
	// Treated as equivalent to verified when read.
	KYCStatusApproved KYCStatus = "approved"
)

// IsReviewOutcome reports whether s is a status an admin may set.
func (s KYCStatus) IsReviewOutcome() bool {
	switch s {
	case KYCStatusVerified, KYCStatusRejected, KYCStatusUnderReview:
		return true
	}
	return false
}

// IsTerminal reports whether s ends the review lifecycle.
func (s KYCStatus) IsTerminal() bool {
	return s == KYCStatusVerified || s == KYCStatusRejected || s == KYCStatusApproved
}

// DocType enumerates the accepted document kinds.
type DocType string

const (
	DocTypeIDCard         DocType = "id_card"
	DocTypeProofOfAddress DocType = "proof_of_address"
	DocTypeSelfie         DocType = "selfie"
	DocTypeUnknown        DocType = "unknown"
)

// KYCRequest is a single verification attempt. Requests are never deleted;
// rejected requests remain as history.
type KYCRequest struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	Status       KYCStatus  `json:"status" db:"status"`
	SubmittedAt  time.Time  `json:"submitted_at" db:"submitted_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewedBy   *uuid.UUID `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewReason *string    `json:"review_reason,omitempty" db:"review_reason"`
	Metadata     JSONMap    `json:"metadata,omitempty" db:"metadata"`
}

// KYCDocument is one uploaded artifact attached to a request. StoragePath is
// an opaque reference into the object store; it is never exposed directly,
// only through a short-lived signed URL issued to admins.
type KYCDocument struct {
	ID          uuid.UUID `json:"id" db:"id"`
	RequestID   uuid.UUID `json:"request_id" db:"request_id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	DocType     DocType   `json:"doc_type" db:"doc_type"`
	StoragePath string    `json:"-" db:"storage_path"`
	FileName    string    `json:"file_name" db:"file_name"`
	MimeType    string    `json:"mime_type" db:"mime_type"`
	Size        int64     `json:"size" db:"size"`
	Meta        JSONMap   `json:"meta,omitempty" db:"meta"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// KYCDocumentDescriptor is the client-declared shape of an already-uploaded
// document. Only metadata shape is validated here, never the stored bytes.
type KYCDocumentDescriptor struct {
	StoragePath string                 `json:"storage_path" validate:"required,storage_path"`
	DocType     string                 `json:"doc_type" validate:"required,doc_type"`
	FileName    string                 `json:"file_name" validate:"required,max=255"`
	MimeType    string                 `json:"mime_type" validate:"required,max=127"`
	Size        int64                  `json:"size" validate:"gt=0"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

// KYCSubmitRequest is the document-intake payload.
type KYCSubmitRequest struct {
	UserID    uuid.UUID               `json:"-"` // set from auth context
	Documents []KYCDocumentDescriptor `json:"documents"`
	Metadata  map[string]interface{}  `json:"metadata,omitempty"`
}

// KYCSubmitResponse is returned after a successful submission.
type KYCSubmitResponse struct {
	RequestID     uuid.UUID `json:"request_id"`
	Status        KYCStatus `json:"status"`
	SubmittedAt   time.Time `json:"submitted_at"`
	DocumentCount int       `json:"document_count"`
}

// KYCStatusResponse reports the caller's current verification state.
type KYCStatusResponse struct {
	UserID          uuid.UUID  `json:"user_id"`
	Status          KYCStatus  `json:"status"`
	HasSubmitted    bool       `json:"has_submitted"`
	LastSubmittedAt *time.Time `json:"last_submitted_at,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
}

// KYCRequestDetail is the admin view of a request with its documents.
type KYCRequestDetail struct {
	KYCRequest
	Documents []KYCDocument `json:"documents"`
}

// KYCReviewRequest is the admin review payload.
type KYCReviewRequest struct {
	RequestID uuid.UUID `json:"request_id" validate:"required"`
	Status    string    `json:"status" validate:"required,review_status"`
	Reason    string    `json:"reason,omitempty" validate:"max=2000"`
}
