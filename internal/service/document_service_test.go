package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/activation_api/internal/config"
	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/utils"
)

type docFixture struct {
	svc        *DocumentService
	docs       *memDocumentStore
	settlement *SettlementService
	prices     *memPriceStore
	blobs      *fakeBlobs
	clock      *fixedClock
}

func newDocFixture(t *testing.T) *docFixture {
	t.Helper()
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	managerID := testManager.ID
	resolver := &fakeResolver{
		codes: map[string]models.ContactCodeResolution{
			"MCC001": {Code: "MCC001", DealerDisplayName: "Acme Store", Carrier: "KT", OwningManagerID: &managerID},
			"MCC002": {Code: "MCC002", DealerDisplayName: "Beta Mobile", Carrier: "SKT"},
		},
		owned: map[int][]string{testManager.ID: {"MCC001"}},
	}
	clock := &fixedClock{t: time.Date(2026, 10, 19, 1, 0, 0, 0, time.UTC)}
	prices := newMemPriceStore(7, 8, 9)
	settlement := NewSettlementService(prices)
	settlement.now = clock.Now
	plans := fakePlans{
		7: {ID: 7, Carrier: "KT", PlanName: "5G Standard", MonthlyFee: decimal.NewFromInt(69000), IsActive: true},
		8: {ID: 8, Carrier: "KT", PlanName: "5G Premium", MonthlyFee: decimal.NewFromInt(89000), IsActive: true},
		9: {ID: 9, Carrier: "KT", PlanName: "LTE Legacy", MonthlyFee: decimal.NewFromInt(33000), IsActive: false},
	}
	docs := newMemDocumentStore()
	blobs := &fakeBlobs{}

	svc := NewDocumentService(docs, resolver, settlement, plans, blobs, config.DefaultCarrierSettings(), seoul)
	svc.now = clock.Now
	return &docFixture{svc: svc, docs: docs, settlement: settlement, prices: prices, blobs: blobs, clock: clock}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func kimInput() DocumentInput {
	return DocumentInput{
		CustomerName:  "Kim",
		CustomerPhone: "010-1111-2222",
		Carrier:       "KT",
		ContactCode:   strPtr("MCC001"),
		CustomerType:  models.CustomerNew,
	}
}

func (f *docFixture) setPrice(t *testing.T, planID int, newPrice, portIn int64) {
	t.Helper()
	_, err := f.settlement.SetPrice(context.Background(), testAdmin, SetPriceInput{
		ServicePlanID:    planID,
		NewCustomerPrice: decimal.NewFromInt(newPrice),
		PortInPrice:      decimal.NewFromInt(portIn),
	})
	require.NoError(t, err)
}

func (f *docFixture) activate(t *testing.T, id, planID int) *models.Document {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Transition(ctx, testWorker, id, models.ActivationInProgress, TransitionPayload{})
	require.NoError(t, err)
	doc, err := f.svc.Transition(ctx, testWorker, id, models.ActivationActivated, TransitionPayload{
		ServicePlanID:      intPtr(planID),
		SubscriptionNumber: strPtr("SUB123"),
	})
	require.NoError(t, err)
	return doc
}

func TestDocumentService_KimScenario(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	f.setPrice(t, 7, 30000, 50000)

	doc, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme Store", doc.StoreName)
	assert.Equal(t, models.ActivationWaiting, doc.ActivationStatus)
	assert.Equal(t, models.IntakeReceived, doc.Status)
	assert.Equal(t, "20261019-0001", doc.DocumentNumber)

	activated := f.activate(t, doc.ID, 7)
	assert.Equal(t, models.ActivationActivated, activated.ActivationStatus)
	require.True(t, activated.SettlementAmount.Valid)
	assert.True(t, decimal.NewFromInt(30000).Equal(activated.SettlementAmount.Decimal))
	assert.Equal(t, "Lee", *activated.ActivatedByName)

	// Repricing leaves the settled document alone.
	f.clock.Advance(time.Hour)
	f.setPrice(t, 7, 35000, 55000)
	stored := f.docs.stored(doc.ID)
	assert.True(t, decimal.NewFromInt(30000).Equal(stored.SettlementAmount.Decimal))

	second, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)
	assert.Equal(t, "20261019-0002", second.DocumentNumber)
	settled := f.activate(t, second.ID, 7)
	assert.True(t, decimal.NewFromInt(35000).Equal(settled.SettlementAmount.Decimal))
}

func TestDocumentService_PortInSettlesAtPortInPrice(t *testing.T) {
	f := newDocFixture(t)
	f.setPrice(t, 7, 30000, 50000)
	in := kimInput()
	in.CustomerType = models.CustomerPortIn
	in.PreviousCarrier = strPtr("SKT")

	doc, err := f.svc.Create(context.Background(), testStore, in, nil)
	require.NoError(t, err)

	activated := f.activate(t, doc.ID, 7)
	assert.True(t, decimal.NewFromInt(50000).Equal(activated.SettlementAmount.Decimal))
}

func TestDocumentService_UnpricedPlanLeavesAmountEmpty(t *testing.T) {
	f := newDocFixture(t)
	doc, err := f.svc.Create(context.Background(), testStore, kimInput(), nil)
	require.NoError(t, err)

	activated := f.activate(t, doc.ID, 8)
	assert.False(t, activated.SettlementAmount.Valid)
}

func TestDocumentService_ReactivationKeepsAmountUnlessPlanChanges(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	f.setPrice(t, 7, 30000, 50000)
	f.setPrice(t, 8, 40000, 60000)
	doc, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)
	f.activate(t, doc.ID, 7)

	f.setPrice(t, 7, 35000, 55000)
	again, err := f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationActivated, TransitionPayload{
		ServicePlanID: intPtr(7), SubscriptionNumber: strPtr("SUB123"),
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(30000).Equal(again.SettlementAmount.Decimal))

	switched, err := f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationActivated, TransitionPayload{
		ServicePlanID: intPtr(8), SubscriptionNumber: strPtr("SUB123"),
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40000).Equal(switched.SettlementAmount.Decimal))
}

func TestDocumentService_CancelledThenReactivatedKeepsAmount(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	f.setPrice(t, 7, 30000, 50000)
	doc, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)
	f.activate(t, doc.ID, 7)

	cancelled, err := f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationCancelled, TransitionPayload{})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(30000).Equal(cancelled.SettlementAmount.Decimal))

	f.setPrice(t, 7, 35000, 55000)
	restored, err := f.svc.Transition(ctx, testAdmin, doc.ID, models.ActivationActivated, TransitionPayload{
		ServicePlanID: intPtr(7), SubscriptionNumber: strPtr("SUB123"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActivationActivated, restored.ActivationStatus)
	assert.True(t, decimal.NewFromInt(30000).Equal(restored.SettlementAmount.Decimal))
}

func TestDocumentService_InactivePlanNotFound(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	f.setPrice(t, 9, 10000, 20000)
	doc, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationInProgress, TransitionPayload{})
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationActivated, TransitionPayload{
		ServicePlanID: intPtr(9), SubscriptionNumber: strPtr("SUB123"),
	})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	stored := f.docs.stored(doc.ID)
	assert.Equal(t, models.ActivationInProgress, stored.ActivationStatus)
	assert.False(t, stored.SettlementAmount.Valid)
}

func TestDocumentService_UnresolvedCodeKeepsSuppliedStoreName(t *testing.T) {
	f := newDocFixture(t)
	in := kimInput()
	in.ContactCode = strPtr("UNKNOWN")
	in.StoreName = strPtr("Walk-in Store")

	doc, err := f.svc.Create(context.Background(), testStore, in, nil)
	require.NoError(t, err)
	assert.Equal(t, "Walk-in Store", doc.StoreName)
	assert.Equal(t, "UNKNOWN", *doc.ContactCode)

	in.StoreName = nil
	doc, err = f.svc.Create(context.Background(), testStore, in, nil)
	require.NoError(t, err)
	assert.Equal(t, "", doc.StoreName)
}

func TestDocumentService_CreateStoresAttachment(t *testing.T) {
	f := newDocFixture(t)

	doc, err := f.svc.Create(context.Background(), testStore, kimInput(), &Attachment{
		Filename: "scan.PDF", ContentType: "application/pdf", Data: []byte("%PDF"),
	})
	require.NoError(t, err)
	require.Len(t, f.blobs.keys, 1)
	assert.Regexp(t, `^documents/20261019/[0-9a-f-]{36}\.pdf$`, f.blobs.keys[0])
	assert.Equal(t, "s3://bucket/"+f.blobs.keys[0], *doc.FilePath)
}

func TestDocumentService_OnlyDealerStoresCreate(t *testing.T) {
	f := newDocFixture(t)
	for _, p := range []models.Principal{testWorker, testManager} {
		_, err := f.svc.Create(context.Background(), p, kimInput(), nil)
		assert.ErrorIs(t, err, utils.ErrForbidden)
	}
}

func TestDocumentService_IntakeValidation(t *testing.T) {
	f := newDocFixture(t)
	cases := map[string]func(in *DocumentInput){
		"bad phone":                 func(in *DocumentInput) { in.CustomerPhone = "02-123-4567" },
		"missing name":              func(in *DocumentInput) { in.CustomerName = " " },
		"unknown customer type":     func(in *DocumentInput) { in.CustomerType = "transfer" },
		"previous carrier on new":   func(in *DocumentInput) { in.PreviousCarrier = strPtr("SKT") },
		"port-in without carrier":   func(in *DocumentInput) { in.CustomerType = models.CustomerPortIn },
		"desired number on port-in": func(in *DocumentInput) { in.CustomerType = models.CustomerPortIn; in.PreviousCarrier = strPtr("SKT"); in.DesiredNumber = strPtr("010-9999-9999") },
		"carrier requires email":    func(in *DocumentInput) { in.Carrier = "LGU" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := kimInput()
			mutate(&in)
			_, err := f.svc.Create(context.Background(), testStore, in, nil)
			assert.ErrorIs(t, err, utils.ErrValidationFailed)
		})
	}
}

func TestDocumentService_SalesManagerMutationsAlwaysForbidden(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	statuses := []models.ActivationStatus{
		models.ActivationWaiting, models.ActivationInProgress, models.ActivationActivated,
		models.ActivationNeedsSupplement, models.ActivationCancelled, models.ActivationDiscarded,
		models.ActivationOtherCompleted,
	}

	for _, current := range statuses {
		doc, err := f.svc.Create(ctx, testStore, kimInput(), nil)
		require.NoError(t, err)
		stored := f.docs.stored(doc.ID)
		stored.ActivationStatus = current
		f.docs.docs[doc.ID] = stored

		for _, target := range append(statuses, "bogus") {
			_, err := f.svc.Transition(ctx, testManager, doc.ID, target, TransitionPayload{
				SubscriptionNumber: strPtr("SUB"), DiscardReason: strPtr("x"), SupplementNotes: strPtr("x"),
			})
			assert.ErrorIs(t, err, utils.ErrForbidden, "%s -> %s", current, target)
		}
		_, err = f.svc.Resubmit(ctx, testManager, doc.ID, kimInput(), nil)
		assert.ErrorIs(t, err, utils.ErrForbidden)
		_, err = f.svc.SetIntakeStatus(ctx, testManager, doc.ID, IntakeStatusInput{Status: models.IntakeCompleted})
		assert.ErrorIs(t, err, utils.ErrForbidden)
		assert.ErrorIs(t, f.svc.Delete(ctx, testManager, doc.ID), utils.ErrForbidden)
	}
	_, err := f.svc.Transition(ctx, testManager, 9999, models.ActivationInProgress, TransitionPayload{})
	assert.ErrorIs(t, err, utils.ErrForbidden)
}

func TestDocumentService_TransitionRules(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	doc, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationActivated, TransitionPayload{SubscriptionNumber: strPtr("SUB")})
	assert.ErrorIs(t, err, utils.ErrConflict, "waiting cannot jump to activated")

	_, err = f.svc.Transition(ctx, testWorker, doc.ID, "work_requested", TransitionPayload{})
	assert.ErrorIs(t, err, utils.ErrValidationFailed)

	_, err = f.svc.Transition(ctx, testStore, doc.ID, models.ActivationInProgress, TransitionPayload{})
	assert.ErrorIs(t, err, utils.ErrForbidden, "dealer stores do not process")

	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationDiscarded, TransitionPayload{})
	assert.ErrorIs(t, err, utils.ErrValidationFailed)

	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationNeedsSupplement, TransitionPayload{SupplementNotes: strPtr("  ")})
	assert.ErrorIs(t, err, utils.ErrValidationFailed)

	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationInProgress, TransitionPayload{})
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationInProgress, TransitionPayload{})
	require.NoError(t, err, "re-applying the current state is accepted")

	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationActivated, TransitionPayload{})
	assert.ErrorIs(t, err, utils.ErrValidationFailed, "subscription number required")

	discarded, err := f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationDiscarded, TransitionPayload{DiscardReason: strPtr("duplicate")})
	require.NoError(t, err)
	assert.Equal(t, "duplicate", *discarded.DiscardReason)

	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationInProgress, TransitionPayload{})
	assert.ErrorIs(t, err, utils.ErrForbidden, "terminal states need an admin")

	corrected, err := f.svc.Transition(ctx, testAdmin, doc.ID, models.ActivationInProgress, TransitionPayload{})
	require.NoError(t, err)
	assert.Equal(t, models.ActivationInProgress, corrected.ActivationStatus)
}

func TestDocumentService_SupplementStampsRequester(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	doc, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)

	updated, err := f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationNeedsSupplement, TransitionPayload{SupplementNotes: strPtr("ID copy unreadable")})
	require.NoError(t, err)
	assert.Equal(t, testWorker.ID, *updated.SupplementRequiredBy)
	assert.Equal(t, f.clock.Now(), *updated.SupplementRequiredAt)
	assert.Equal(t, f.clock.Now(), updated.UpdatedAt)
}

func TestDocumentService_FeeModesAreSingleValued(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	doc, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationInProgress, TransitionPayload{})
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationActivated, TransitionPayload{
		SubscriptionNumber: strPtr("SUB"), RegistrationFeeMode: "prepaid,postpaid",
	})
	assert.ErrorIs(t, err, utils.ErrValidationFailed)

	first, err := f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationActivated, TransitionPayload{
		SubscriptionNumber:   strPtr("SUB"),
		RegistrationFeeMode:  models.RegistrationFeePrepaid,
		SimFeeMode:           models.SimFeePostpaid,
		BundleApplication:    models.BundleApplied,
		AdditionalServiceIDs: []int64{3, 4},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationFeePrepaid, first.RegistrationFeeMode)
	assert.Equal(t, []int64{3, 4}, []int64(first.AdditionalServiceIDs))

	second, err := f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationActivated, TransitionPayload{
		SubscriptionNumber:  strPtr("SUB"),
		RegistrationFeeMode: models.RegistrationFeeInstallment,
		BundleApplication:   models.BundleNotApplied,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationFeeInstallment, second.RegistrationFeeMode)
	assert.Equal(t, models.SimFeeUnset, second.SimFeeMode)
	assert.Equal(t, models.BundleNotApplied, second.BundleApplication)
}

func TestDocumentService_CancelKeepsFulfillment(t *testing.T) {
	f := newDocFixture(t)
	f.setPrice(t, 7, 30000, 50000)
	doc, err := f.svc.Create(context.Background(), testStore, kimInput(), nil)
	require.NoError(t, err)
	f.activate(t, doc.ID, 7)

	cancelled, err := f.svc.Transition(context.Background(), testWorker2, doc.ID, models.ActivationCancelled, TransitionPayload{})
	require.NoError(t, err)
	assert.Equal(t, testWorker2.ID, *cancelled.CancelledBy)
	assert.Equal(t, "SUB123", *cancelled.SubscriptionNumber)
	assert.True(t, cancelled.SettlementAmount.Valid)
}

func TestDocumentService_ConcurrentClaimConflicts(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	doc, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)

	// Worker 2 claims the document between worker 1's read and write.
	fired := false
	f.docs.afterGet = func(int) {
		if fired {
			return
		}
		fired = true
		_, err := f.svc.Transition(ctx, testWorker2, doc.ID, models.ActivationInProgress, TransitionPayload{})
		require.NoError(t, err)
	}

	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationInProgress, TransitionPayload{})
	assert.ErrorIs(t, err, utils.ErrConflict)
	assert.Equal(t, 2, f.docs.stored(doc.ID).Version)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestDocumentService_StaleActivationIsNotCounted(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	f.setPrice(t, 7, 30000, 50000)
	doc, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationInProgress, TransitionPayload{})
	require.NoError(t, err)

	fired := false
	f.docs.afterGet = func(int) {
		if fired {
			return
		}
		fired = true
		_, err := f.svc.Transition(ctx, testWorker2, doc.ID, models.ActivationInProgress, TransitionPayload{})
		require.NoError(t, err)
	}

	priced := settlementsCounter.WithLabelValues("priced")
	activated := documentTransitionsCounter.WithLabelValues(string(models.ActivationActivated))
	pricedBefore, activatedBefore := counterValue(t, priced), counterValue(t, activated)

	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationActivated, TransitionPayload{
		ServicePlanID: intPtr(7), SubscriptionNumber: strPtr("SUB123"),
	})
	assert.ErrorIs(t, err, utils.ErrConflict)
	assert.Equal(t, pricedBefore, counterValue(t, priced))
	assert.Equal(t, activatedBefore, counterValue(t, activated))

	f.docs.afterGet = nil
	f.activate(t, doc.ID, 7)
	assert.Equal(t, pricedBefore+1, counterValue(t, priced))
}

func TestDocumentService_Visibility(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	mine, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)

	otherStore := models.WorkerPrincipal{ID: 12, Name: "Beta", Role: models.RoleDealerStore, DealerScope: "Beta Mobile"}
	in := kimInput()
	in.ContactCode = strPtr("MCC002")
	theirs, err := f.svc.Create(ctx, otherStore, in, nil)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, testStore, theirs.ID)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	_, err = f.svc.Get(ctx, testManager, mine.ID)
	assert.NoError(t, err, "MCC001 is owned by the manager")
	_, err = f.svc.Get(ctx, testManager, theirs.ID)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	_, err = f.svc.Get(ctx, testStore, 9999)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	page, err := f.svc.List(ctx, testManager, models.DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, page.Documents, 1)
	assert.Equal(t, mine.ID, page.Documents[0].ID)

	lonely := models.SalesManagerPrincipal{ID: 6, Name: "Nobody"}
	page, err = f.svc.List(ctx, lonely, models.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Documents)

	page, err = f.svc.List(ctx, testWorker, models.DocumentFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Documents, 2)

	scopedWorker := models.WorkerPrincipal{ID: 23, Name: "Yoon", Role: models.RoleDealerWorker, DealerScope: "Beta Mobile"}
	page, err = f.svc.List(ctx, scopedWorker, models.DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, page.Documents, 1)
	assert.Equal(t, theirs.ID, page.Documents[0].ID)
}

func TestDocumentService_WorkRequestedView(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	doc, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)

	_, err = f.svc.SetIntakeStatus(ctx, testWorker, doc.ID, IntakeStatusInput{Status: models.IntakeCompleted})
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, testWorker, doc.ID, models.ActivationInProgress, TransitionPayload{})
	require.NoError(t, err)

	view := models.ViewWorkRequested
	page, err := f.svc.List(ctx, testAdmin, models.DocumentFilter{ActivationStatus: &view})
	require.NoError(t, err)
	require.Len(t, page.Documents, 1)
	assert.Equal(t, doc.ID, page.Documents[0].ID)

	bogus := "archived"
	_, err = f.svc.List(ctx, testAdmin, models.DocumentFilter{ActivationStatus: &bogus})
	assert.ErrorIs(t, err, utils.ErrValidationFailed)
}

func TestDocumentService_Resubmit(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	doc, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)

	_, err = f.svc.SetIntakeStatus(ctx, testWorker, doc.ID, IntakeStatusInput{Status: models.IntakeNeedsSupplement})
	assert.ErrorIs(t, err, utils.ErrValidationFailed, "supplement needs notes")
	_, err = f.svc.SetIntakeStatus(ctx, testWorker, doc.ID, IntakeStatusInput{Status: models.IntakeNeedsSupplement, Notes: strPtr("blurry scan")})
	require.NoError(t, err)

	in := kimInput()
	in.CustomerName = "Kim Minji"
	in.ContactCode = strPtr("mcc002")
	updated, err := f.svc.Resubmit(ctx, testStore, doc.ID, in, nil)
	require.NoError(t, err)
	assert.Equal(t, models.IntakeReceived, updated.Status)
	assert.Equal(t, "Kim Minji", updated.CustomerName)
	assert.Equal(t, "Beta Mobile", updated.StoreName)

	_, err = f.svc.Resubmit(ctx, testWorker, doc.ID, in, nil)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	_, err = f.svc.SetIntakeStatus(ctx, testWorker, doc.ID, IntakeStatusInput{Status: models.IntakeCompleted})
	require.NoError(t, err)
	_, err = f.svc.Resubmit(ctx, testStore, doc.ID, in, nil)
	assert.ErrorIs(t, err, utils.ErrConflict)
}

func TestDocumentService_Delete(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	doc, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)
	done, err := f.svc.Create(ctx, testStore, kimInput(), nil)
	require.NoError(t, err)
	_, err = f.svc.SetIntakeStatus(ctx, testWorker, done.ID, IntakeStatusInput{Status: models.IntakeCompleted})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, testWorker, doc.ID), utils.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, testStore, doc.ID), utils.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, testAdmin, done.ID), utils.ErrConflict)

	require.NoError(t, f.svc.Delete(ctx, testAdmin, doc.ID))
	_, err = f.svc.Get(ctx, testAdmin, doc.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}
