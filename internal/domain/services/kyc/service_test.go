package kyc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
	"github.com/vantage-service/vantage_service/internal/domain/repositories"
	apperrors "github.com/vantage-service/vantage_service/pkg/errors"
)

type fakeKYCRepo struct {
	requests  map[uuid.UUID]*entities.KYCRequest
	documents map[uuid.UUID][]*entities.KYCDocument

	attachErr  error
	deletedIDs []uuid.UUID
}

func newFakeKYCRepo() *fakeKYCRepo {
	return &fakeKYCRepo{
		requests:  make(map[uuid.UUID]*entities.KYCRequest),
		documents: make(map[uuid.UUID][]*entities.KYCDocument),
	}
}

func (f *fakeKYCRepo) CreateRequest(_ context.Context, req *entities.KYCRequest) error {
	clone := *req
	f.requests[req.ID] = &clone
	return nil
}

func (f *fakeKYCRepo) DeleteRequest(_ context.Context, id uuid.UUID) error {
	delete(f.requests, id)
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeKYCRepo) AttachDocuments(_ context.Context, docs []*entities.KYCDocument) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	for _, doc := range docs {
		f.documents[doc.RequestID] = append(f.documents[doc.RequestID], doc)
	}
	return nil
}

func (f *fakeKYCRepo) GetRequest(_ context.Context, id uuid.UUID) (*entities.KYCRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "kyc request not found")
	}
	return req, nil
}

func (f *fakeKYCRepo) GetRequestDetail(ctx context.Context, id uuid.UUID) (*entities.KYCRequestDetail, error) {
	req, err := f.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	docs := make([]entities.KYCDocument, 0, len(f.documents[id]))
	for _, d := range f.documents[id] {
		docs = append(docs, *d)
	}
	return &entities.KYCRequestDetail{KYCRequest: *req, Documents: docs}, nil
}

func (f *fakeKYCRepo) LatestRequestByUser(_ context.Context, userID uuid.UUID) (*entities.KYCRequest, error) {
	var latest *entities.KYCRequest
	for _, req := range f.requests {
		if req.UserID != userID {
			continue
		}
		if latest == nil || req.SubmittedAt.After(latest.SubmittedAt) {
			latest = req
		}
	}
	if latest == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "no kyc request for user")
	}
	return latest, nil
}

func (f *fakeKYCRepo) ListRequests(_ context.Context, _ repositories.KYCRequestFilter) ([]*entities.KYCRequest, int64, error) {
	out := make([]*entities.KYCRequest, 0, len(f.requests))
	for _, req := range f.requests {
		out = append(out, req)
	}
	return out, int64(len(out)), nil
}

func (f *fakeKYCRepo) UpdateReview(_ context.Context, id uuid.UUID, status entities.KYCStatus, reviewedBy uuid.UUID, reason *string, reviewedAt time.Time) error {
	req, ok := f.requests[id]
	if !ok {
		return apperrors.New(apperrors.KindNotFound, "kyc request not found")
	}
	req.Status = status
	req.ReviewedAt = &reviewedAt
	req.ReviewedBy = &reviewedBy
	req.ReviewReason = reason
	return nil
}

func (f *fakeKYCRepo) GetDocument(_ context.Context, id uuid.UUID) (*entities.KYCDocument, error) {
	for _, docs := range f.documents {
		for _, doc := range docs {
			if doc.ID == id {
				return doc, nil
			}
		}
	}
	return nil, apperrors.New(apperrors.KindNotFound, "kyc document not found")
}

type fakeUserRepo struct {
	profiles map[uuid.UUID]*entities.Profile

	setStatusErr error
	adjustErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{profiles: make(map[uuid.UUID]*entities.Profile)}
}

func (f *fakeUserRepo) addProfile(isAdmin bool) *entities.Profile {
	p := &entities.Profile{
		UserID:    uuid.New(),
		Email:     uuid.NewString() + "@example.com",
		IsAdmin:   isAdmin,
		KYCStatus: entities.KYCStatusNone,
		Balance:   decimal.Zero,
	}
	f.profiles[p.UserID] = p
	return p
}

func (f *fakeUserRepo) GetProfile(_ context.Context, userID uuid.UUID) (*entities.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "user not found")
	}
	return p, nil
}

func (f *fakeUserRepo) SetKYCStatus(_ context.Context, userID uuid.UUID, update repositories.ProfileKYCUpdate) error {
	if f.setStatusErr != nil {
		return f.setStatusErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return apperrors.New(apperrors.KindNotFound, "user not found")
	}
	p.KYCStatus = update.Status
	if update.RequestedAt != nil {
		p.KYCRequestedAt = update.RequestedAt
	}
	p.KYCRejectionReason = update.RejectionReason
	return nil
}

func (f *fakeUserRepo) AdjustBalance(_ context.Context, userID uuid.UUID, delta decimal.Decimal, _ string) (decimal.Decimal, error) {
	if f.adjustErr != nil {
		return decimal.Zero, f.adjustErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return decimal.Zero, apperrors.New(apperrors.KindNotFound, "user not found")
	}
	p.Balance = p.Balance.Add(delta)
	return p.Balance, nil
}

func validDescriptor() entities.KYCDocumentDescriptor {
	return entities.KYCDocumentDescriptor{
		StoragePath: "kyc/user/id-front.jpg",
		DocType:     "id_card",
		FileName:    "id-front.jpg",
		MimeType:    "image/jpeg",
		Size:        120_000,
	}
}

func TestSubmitCreatesRequestAndAdvancesProfile(t *testing.T) {
	kycRepo := newFakeKYCRepo()
	userRepo := newFakeUserRepo()
	user := userRepo.addProfile(false)
	svc := NewService(kycRepo, userRepo, zap.NewNop())

	resp, err := svc.Submit(context.Background(), &entities.KYCSubmitRequest{
		UserID:    user.UserID,
		Documents: []entities.KYCDocumentDescriptor{validDescriptor(), validDescriptor()},
	})
	require.NoError(t, err)

	assert.Equal(t, entities.KYCStatusSubmitted, resp.Status)
	assert.Equal(t, 2, resp.DocumentCount)

	stored, err := kycRepo.GetRequest(context.Background(), resp.RequestID)
	require.NoError(t, err)
	assert.Equal(t, entities.KYCStatusSubmitted, stored.Status)
	assert.Len(t, kycRepo.documents[resp.RequestID], 2)

	assert.Equal(t, entities.KYCStatusSubmitted, user.KYCStatus)
	assert.NotNil(t, user.KYCRequestedAt)
}

func TestSubmitWithNoDocumentsFails(t *testing.T) {
	kycRepo := newFakeKYCRepo()
	userRepo := newFakeUserRepo()
	user := userRepo.addProfile(false)
	svc := NewService(kycRepo, userRepo, zap.NewNop())

	_, err := svc.Submit(context.Background(), &entities.KYCSubmitRequest{UserID: user.UserID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidSubmission))

	assert.Empty(t, kycRepo.requests, "no request row may exist after a rejected submission")
	assert.Equal(t, entities.KYCStatusNone, user.KYCStatus)
}

func TestSubmitRollsBackRequestWhenAttachFails(t *testing.T) {
	kycRepo := newFakeKYCRepo()
	kycRepo.attachErr = apperrors.New(apperrors.KindUpstreamFailure, "attach failed")
	userRepo := newFakeUserRepo()
	user := userRepo.addProfile(false)
	svc := NewService(kycRepo, userRepo, zap.NewNop())

	_, err := svc.Submit(context.Background(), &entities.KYCSubmitRequest{
		UserID:    user.UserID,
		Documents: []entities.KYCDocumentDescriptor{validDescriptor()},
	})
	require.Error(t, err)

	assert.Empty(t, kycRepo.requests, "partial submission must not stay visible")
	assert.Len(t, kycRepo.deletedIDs, 1)
	assert.Equal(t, entities.KYCStatusNone, user.KYCStatus)
}

func TestSubmitNormalizesUnknownDocTypes(t *testing.T) {
	kycRepo := newFakeKYCRepo()
	userRepo := newFakeUserRepo()
	user := userRepo.addProfile(false)
	svc := NewService(kycRepo, userRepo, zap.NewNop())

	desc := validDescriptor()
	desc.DocType = "utility_bill"
	resp, err := svc.Submit(context.Background(), &entities.KYCSubmitRequest{
		UserID:    user.UserID,
		Documents: []entities.KYCDocumentDescriptor{desc},
	})
	require.NoError(t, err)

	docs := kycRepo.documents[resp.RequestID]
	require.Len(t, docs, 1)
	assert.Equal(t, entities.DocTypeUnknown, docs[0].DocType)
}

func TestStatusWithoutSubmissionReportsProfileProjection(t *testing.T) {
	kycRepo := newFakeKYCRepo()
	userRepo := newFakeUserRepo()
	user := userRepo.addProfile(false)
	svc := NewService(kycRepo, userRepo, zap.NewNop())

	status, err := svc.Status(context.Background(), user.UserID)
	require.NoError(t, err)

	assert.Equal(t, entities.KYCStatusNone, status.Status)
	assert.False(t, status.HasSubmitted)
	assert.Nil(t, status.LastSubmittedAt)
}

func TestStatusAfterSubmission(t *testing.T) {
	kycRepo := newFakeKYCRepo()
	userRepo := newFakeUserRepo()
	user := userRepo.addProfile(false)
	svc := NewService(kycRepo, userRepo, zap.NewNop())

	_, err := svc.Submit(context.Background(), &entities.KYCSubmitRequest{
		UserID:    user.UserID,
		Documents: []entities.KYCDocumentDescriptor{validDescriptor()},
	})
	require.NoError(t, err)

	status, err := svc.Status(context.Background(), user.UserID)
	require.NoError(t, err)

	assert.Equal(t, entities.KYCStatusSubmitted, status.Status)
	assert.True(t, status.HasSubmitted)
	require.NotNil(t, status.LastSubmittedAt)
}
