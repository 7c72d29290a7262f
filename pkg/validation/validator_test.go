package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
)

func descriptor() entities.KYCDocumentDescriptor {
	return entities.KYCDocumentDescriptor{
		StoragePath: "kyc/user-1/id-front.jpg",
		DocType:     "id_card",
		FileName:    "id-front.jpg",
		MimeType:    "image/jpeg",
		Size:        240000,
	}
}

func TestValidDescriptorPasses(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(descriptor()))
}

func TestDescriptorRequiresStoragePath(t *testing.T) {
	v := New()
	d := descriptor()
	d.StoragePath = ""
	assert.Error(t, v.Validate(d))
}

func TestStoragePathRejectsTraversalCharacters(t *testing.T) {
	v := New()
	for _, path := range []string{
		"../etc/passwd",
		"/absolute/path",
		"kyc/user 1/id.jpg",
		strings.Repeat("a", 513),
	} {
		d := descriptor()
		d.StoragePath = path
		assert.Error(t, v.Validate(d), "path %q must be rejected", path)
	}
}

func TestDocTypeEnum(t *testing.T) {
	v := New()
	for _, docType := range []string{"id_card", "proof_of_address", "selfie", "unknown"} {
		d := descriptor()
		d.DocType = docType
		assert.NoError(t, v.Validate(d))
	}

	d := descriptor()
	d.DocType = "passport_scan"
	assert.Error(t, v.Validate(d))
}

func TestDescriptorRequiresPositiveSize(t *testing.T) {
	v := New()
	d := descriptor()
	d.Size = 0
	assert.Error(t, v.Validate(d))
}

func TestReviewStatusEnum(t *testing.T) {
	v := New()
	req := entities.KYCReviewRequest{RequestID: uuid.New(), Status: "verified"}
	require.NoError(t, v.Validate(req))

	req.Status = "approved"
	assert.Error(t, v.Validate(req), "legacy alias is not a valid review decision")

	req.Status = "escalated"
	assert.Error(t, v.Validate(req))
}

func TestReviewReasonLengthCap(t *testing.T) {
	v := New()
	req := entities.KYCReviewRequest{RequestID: uuid.New(), Status: "rejected", Reason: strings.Repeat("x", 2001)}
	assert.Error(t, v.Validate(req))
}
