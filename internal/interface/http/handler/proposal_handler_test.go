package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/interface/http/dto"
)

type marketplaceFixture struct {
	env      *testEnv
	client   *entity.User
	provider *entity.User
	service  dto.ServiceResponse
}

// newMarketplaceFixture публикует услугу от заказчика и возвращает её вместе с участниками.
func newMarketplaceFixture(t *testing.T) *marketplaceFixture {
	t.Helper()
	env := newTestEnv(t)
	cat := env.store.SeedCategory("Elétrica")
	clientUser, _ := env.store.SeedClient("ana")
	providerUser, _ := env.store.SeedProvider("carlos", cat.ID)

	w, body := env.do(t, http.MethodPost, "/services", remoteServiceBody(cat.ID), clientUser)
	assertStatus(t, w, http.StatusCreated)

	return &marketplaceFixture{
		env:      env,
		client:   clientUser,
		provider: providerUser,
		service:  decodeData[dto.ServiceResponse](t, body),
	}
}

func (f *marketplaceFixture) submit(t *testing.T, provider *entity.User, value string) dto.ProposalResponse {
	t.Helper()
	w, body := f.env.do(t, http.MethodPost, "/proposals", proposalBody(f.service.ID, value), provider)
	assertStatus(t, w, http.StatusCreated)
	return decodeData[dto.ProposalResponse](t, body)
}

func TestSubmitProposalEndpoint(t *testing.T) {
	f := newMarketplaceFixture(t)

	p := f.submit(t, f.provider, "200")
	assert.Equal(t, "200.00", p.Value)
	assert.Equal(t, "pending", p.Status)
	assert.Equal(t, "full", p.PaymentForm)

	svc := f.env.store.Service(f.service.ID)
	assert.Equal(t, valueobject.ServiceStatusNegotiating, svc.Status)
	assert.Contains(t, f.env.notifier.kinds(), valueobject.NotificationNewProposal)

	w, _ := f.env.do(t, http.MethodPost, "/proposals", proposalBody(f.service.ID, "180"), f.provider)
	assertStatus(t, w, http.StatusConflict)

	bad := proposalBody(f.service.ID, "150")
	bad["payment_form"] = "barter"
	other, _ := f.env.store.SeedProvider("duda")
	w, body := f.env.do(t, http.MethodPost, "/proposals", bad, other)
	assertStatus(t, w, http.StatusBadRequest)
	require.NotEmpty(t, body.Errors)
	assert.Equal(t, "payment_form", body.Errors[0].Field)

	w, _ = f.env.do(t, http.MethodPost, "/proposals", proposalBody(f.service.ID, "150"), f.client)
	assertStatus(t, w, http.StatusForbidden)
}

func TestListProposalsRequiresService(t *testing.T) {
	f := newMarketplaceFixture(t)
	f.submit(t, f.provider, "200")

	w, _ := f.env.do(t, http.MethodGet, "/proposals", nil, f.client)
	assertStatus(t, w, http.StatusBadRequest)

	w, body := f.env.do(t, http.MethodGet, "/proposals?service="+f.service.ID.String(), nil, f.client)
	assertStatus(t, w, http.StatusOK)
	assert.Len(t, decodeData[[]dto.ProposalResponse](t, body), 1)

	w, body = f.env.do(t, http.MethodGet, "/proposals/mine", nil, f.provider)
	assertStatus(t, w, http.StatusOK)
	assert.Len(t, decodeData[[]dto.ProposalResponse](t, body), 1)
}

func TestAcceptProposalRejectsSiblings(t *testing.T) {
	f := newMarketplaceFixture(t)
	winner := f.submit(t, f.provider, "200")
	otherUser, _ := f.env.store.SeedProvider("duda")
	loser := f.submit(t, otherUser, "180")

	w, body := f.env.do(t, http.MethodPut, "/proposals/"+winner.ID.String()+"/accept", nil, f.client)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, "accepted", decodeData[dto.ProposalResponse](t, body).Status)

	svc := f.env.store.Service(f.service.ID)
	assert.Equal(t, valueobject.ServiceStatusConfirmed, svc.Status)
	require.NotNil(t, svc.ProviderID)
	assert.Equal(t, winner.ProviderID, *svc.ProviderID)

	assert.Equal(t, valueobject.ProposalStatusRejected, f.env.store.Proposal(loser.ID).Status)
	assert.Contains(t, f.env.notifier.kinds(), valueobject.NotificationProposalAccepted)
	assert.Contains(t, f.env.notifier.kinds(), valueobject.NotificationProposalRejected)

	w, _ = f.env.do(t, http.MethodPut, "/proposals/"+winner.ID.String()+"/reject", map[string]any{"reason": "mudei de ideia"}, f.client)
	assertStatus(t, w, http.StatusBadRequest)
}

func TestRejectAndCancelProposal(t *testing.T) {
	f := newMarketplaceFixture(t)
	p := f.submit(t, f.provider, "200")

	w, _ := f.env.do(t, http.MethodPut, "/proposals/"+p.ID.String()+"/reject", nil, f.provider)
	assertStatus(t, w, http.StatusForbidden)

	w, body := f.env.do(t, http.MethodPut, "/proposals/"+p.ID.String()+"/reject", map[string]any{"reason": "caro demais"}, f.client)
	assertStatus(t, w, http.StatusOK)
	rejected := decodeData[dto.ProposalResponse](t, body)
	assert.Equal(t, "rejected", rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "caro demais", *rejected.RejectionReason)

	w, _ = f.env.do(t, http.MethodPut, "/proposals/"+p.ID.String()+"/cancel", nil, f.provider)
	assertStatus(t, w, http.StatusBadRequest)
}
