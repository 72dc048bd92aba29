package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/RodrigoFalk/LinkPulse/app/models"
	"github.com/RodrigoFalk/LinkPulse/app/repository"
)

type fakeWebhooks struct {
	repository.WebhookRepository
	byToken map[string]*models.Webhook
	linked  map[uint][]string
}

func (f *fakeWebhooks) GetByToken(token string) (*models.Webhook, error) {
	if w, ok := f.byToken[token]; ok {
		return w, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeWebhooks) GetLinkedProductExternalIDs(webhookID uint) ([]string, error) {
	return f.linked[webhookID], nil
}

type fakeProjects struct {
	repository.ProjectRepository
	byID map[uint]*models.Project
}

func (f *fakeProjects) GetByID(id uint) (*models.Project, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeClicks struct {
	repository.ClickRepository
	byClickID map[string]*models.Click
	byTerm    map[string]*models.Click
	termCalls int
}

func (f *fakeClicks) GetByClickID(clickID string) (*models.Click, error) {
	if c, ok := f.byClickID[clickID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeClicks) GetLatestByAccountAndTerm(accountID uint, term string) (*models.Click, error) {
	f.termCalls++
	if c, ok := f.byTerm[term]; ok && c.AccountID == accountID {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeConversions struct {
	repository.ConversionRepository
	rows        map[string]*models.Conversion
	events      []models.ConversionEvent
	items       []models.ConversionItem
	nextID      uint
	creates     int
	dupOnCreate bool
}

func convKey(accountID uint, txID string) string {
	return fmt.Sprintf("%d|%s", accountID, txID)
}

func (f *fakeConversions) Create(c *models.Conversion) error {
	f.creates++
	key := convKey(c.AccountID, c.TransactionID)
	if f.dupOnCreate || f.rows[key] != nil {
		return errors.New("Error 1062 (23000): Duplicate entry for key 'ux_conversions_account_tx'")
	}
	f.nextID++
	c.ID = f.nextID
	f.rows[key] = c
	return nil
}

func (f *fakeConversions) GetByTransactionID(accountID uint, txID string) (*models.Conversion, error) {
	if c, ok := f.rows[convKey(accountID, txID)]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConversions) UpdateStatus(id uint, status string) error {
	for _, c := range f.rows {
		if c.ID == id {
			c.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeConversions) CreateItems(items []models.ConversionItem) error {
	f.items = append(f.items, items...)
	return nil
}

func (f *fakeConversions) CreateEvent(e *models.ConversionEvent) error {
	f.events = append(f.events, *e)
	return nil
}

type fakeLogs struct {
	repository.WebhookLogRepository
	created []models.WebhookLog
	updated []models.WebhookLog
	byID    map[uint]*models.WebhookLog
}

func (f *fakeLogs) Create(entry *models.WebhookLog) error {
	f.created = append(f.created, *entry)
	return nil
}

func (f *fakeLogs) Update(entry *models.WebhookLog) error {
	f.updated = append(f.updated, *entry)
	return nil
}

func (f *fakeLogs) GetByID(id uint) (*models.WebhookLog, error) {
	if l, ok := f.byID[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeLeadSink struct {
	leads []*models.Lead
}

func (f *fakeLeadSink) Enqueue(lead *models.Lead) {
	f.leads = append(f.leads, lead)
}

type fixture struct {
	service     *Service
	webhooks    *fakeWebhooks
	projects    *fakeProjects
	clicks      *fakeClicks
	conversions *fakeConversions
	logs        *fakeLogs
	leads       *fakeLeadSink
}

func newFixture() *fixture {
	f := &fixture{
		webhooks:    &fakeWebhooks{byToken: map[string]*models.Webhook{}, linked: map[uint][]string{}},
		projects:    &fakeProjects{byID: map[uint]*models.Project{}},
		clicks:      &fakeClicks{byClickID: map[string]*models.Click{}, byTerm: map[string]*models.Click{}},
		conversions: &fakeConversions{rows: map[string]*models.Conversion{}},
		logs:        &fakeLogs{byID: map[uint]*models.WebhookLog{}},
		leads:       &fakeLeadSink{},
	}
	f.webhooks.byToken["tok-live"] = &models.Webhook{
		ID:        7,
		AccountID: 42,
		Platform:  models.PlatformAuto,
		Token:     "tok-live",
		IsActive:  true,
	}
	f.service = NewService(&repository.Repositories{
		Webhook:    f.webhooks,
		Project:    f.projects,
		SmartLink:  nil,
		Click:      f.clicks,
		Conversion: f.conversions,
		WebhookLog: f.logs,
		Lead:       nil,
	}, f.leads)
	return f
}

func approvedPayload(txID, clickID string) map[string]interface{} {
	raw := fmt.Sprintf(`{
		"event": "PURCHASE_APPROVED",
		"data": {
			"purchase": {
				"transaction": %q,
				"status": "APPROVED",
				"price": {"value": 26.99, "currency_value": "BRL"},
				"payment": {"type": "PIX"},
				"origin": {"sck": %q}
			},
			"product": {"id": 4487000, "name": "Curso de Marketing"},
			"buyer": {"name": "Maria Souza", "email": "maria@example.com"}
		}
	}`, txID, clickID)
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		panic(err)
	}
	return obj
}

func refundPayload(txID string) map[string]interface{} {
	obj := approvedPayload(txID, "")
	obj["event"] = "PURCHASE_REFUNDED"
	return obj
}

func TestProcessApprovedSaleWithAttribution(t *testing.T) {
	f := newFixture()
	projectID := uint(3)
	f.clicks.byClickID["clk_abc"] = &models.Click{
		ID:          1,
		ClickID:     "clk_abc",
		SmartLinkID: 11,
		VariantID:   21,
		AccountID:   42,
		ProjectID:   &projectID,
		UTMSource:   "facebook",
	}

	result, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("TX-1", "clk_abc"), 0)
	require.NoError(t, err)
	assert.Equal(t, DecisionProcessed, result.Decision)
	assert.Equal(t, models.SaleStatusApproved, result.LogStatus)

	conv := f.conversions.rows[convKey(42, "TX-1")]
	require.NotNil(t, conv)
	assert.True(t, conv.IsAttributed)
	assert.Equal(t, "clk_abc", conv.AttributedClickID)
	require.NotNil(t, conv.SmartLinkID)
	assert.Equal(t, uint(11), *conv.SmartLinkID)
	require.NotNil(t, conv.ProjectID)
	assert.Equal(t, projectID, *conv.ProjectID)
	assert.InDelta(t, 26.99, conv.Amount, 0.001)
	assert.Equal(t, models.PlatformHotmart, conv.Platform)

	require.Len(t, f.logs.created, 1)
	assert.Equal(t, models.SaleStatusApproved, f.logs.created[0].Status)
	assert.True(t, f.logs.created[0].IsAttributed)

	require.Len(t, f.conversions.events, 1)
	assert.Equal(t, models.SaleStatusApproved, f.conversions.events[0].Status)

	require.Len(t, f.leads.leads, 1)
	assert.Equal(t, "maria@example.com", f.leads.leads[0].Email)
}

func TestProcessUnattributedSaleStillPersists(t *testing.T) {
	f := newFixture()

	result, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("TX-2", "clk_nobody"), 0)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusApproved, result.LogStatus)

	conv := f.conversions.rows[convKey(42, "TX-2")]
	require.NotNil(t, conv)
	assert.False(t, conv.IsAttributed)
	assert.Empty(t, conv.AttributedClickID)
	assert.Nil(t, conv.SmartLinkID)
}

func TestProcessDuplicateTransaction(t *testing.T) {
	f := newFixture()

	_, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("TX-3", ""), 0)
	require.NoError(t, err)

	result, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("TX-3", ""), 0)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusDuplicate, result.LogStatus)

	// Only the first delivery inserted a row.
	assert.Equal(t, 1, f.conversions.creates)
	require.Len(t, f.logs.created, 2)
	assert.Equal(t, models.SaleStatusDuplicate, f.logs.created[1].Status)
}

func TestProcessDuplicateStillResolvesAttribution(t *testing.T) {
	f := newFixture()
	f.clicks.byClickID["clk_dup"] = &models.Click{
		ID: 1, ClickID: "clk_dup", SmartLinkID: 5, VariantID: 6, AccountID: 42,
	}

	_, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("TX-4", "clk_dup"), 0)
	require.NoError(t, err)
	result, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("TX-4", "clk_dup"), 0)
	require.NoError(t, err)

	assert.Equal(t, models.SaleStatusDuplicate, result.LogStatus)
	dup := f.logs.created[1]
	assert.True(t, dup.IsAttributed)
	require.NotNil(t, dup.SmartLinkID)
	assert.Equal(t, uint(5), *dup.SmartLinkID)
}

func TestProcessDuplicateKeyRace(t *testing.T) {
	f := newFixture()
	f.conversions.dupOnCreate = true

	result, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("TX-5", ""), 0)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusDuplicate, result.LogStatus)
}

func TestProcessNegativeEventUpdatesInPlace(t *testing.T) {
	f := newFixture()

	_, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("TX-6", ""), 0)
	require.NoError(t, err)

	result, err := f.service.Process("tok-live", []byte(`{}`), refundPayload("TX-6"), 0)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusRefunded, result.LogStatus)

	// Same row, new status, one extra audit event. No second conversion.
	assert.Equal(t, 1, f.conversions.creates)
	conv := f.conversions.rows[convKey(42, "TX-6")]
	require.NotNil(t, conv)
	assert.Equal(t, models.SaleStatusRefunded, conv.Status)

	require.Len(t, f.conversions.events, 2)
	assert.Equal(t, models.SaleStatusApproved, f.conversions.events[0].Status)
	assert.Equal(t, models.SaleStatusRefunded, f.conversions.events[1].Status)
}

func TestProcessNegativeEventForUnknownTransaction(t *testing.T) {
	f := newFixture()

	result, err := f.service.Process("tok-live", []byte(`{}`), refundPayload("TX-GHOST"), 0)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusIgnored, result.LogStatus)

	require.Len(t, f.logs.created, 1)
	assert.Contains(t, f.logs.created[0].IgnoreReason, "TX-GHOST")
	assert.Zero(t, f.conversions.creates)
}

func TestProcessUnknownToken(t *testing.T) {
	f := newFixture()

	result, err := f.service.Process("tok-unknown", []byte(`{"a":1}`), map[string]interface{}{"a": float64(1)}, 0)
	require.NoError(t, err)
	assert.Equal(t, DecisionUnknownToken, result.Decision)

	require.Len(t, f.logs.created, 1)
	assert.Equal(t, models.SaleStatusError, f.logs.created[0].Status)
	assert.Equal(t, "Invalid webhook token", f.logs.created[0].IgnoreReason)
	assert.Nil(t, f.logs.created[0].WebhookID)
}

func TestProcessInactiveWebhookWritesNoLog(t *testing.T) {
	f := newFixture()
	f.webhooks.byToken["tok-off"] = &models.Webhook{ID: 8, AccountID: 42, Token: "tok-off", IsActive: false}

	result, err := f.service.Process("tok-off", []byte(`{}`), approvedPayload("TX-7", ""), 0)
	require.NoError(t, err)
	assert.Equal(t, DecisionInactiveWebhook, result.Decision)
	assert.Empty(t, f.logs.created)
}

func TestProcessInactiveProjectSoftSkips(t *testing.T) {
	f := newFixture()
	projectID := uint(9)
	f.webhooks.byToken["tok-live"].ProjectID = &projectID
	f.projects.byID[projectID] = &models.Project{ID: projectID, AccountID: 42, IsActive: false}

	result, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("TX-8", ""), 0)
	require.NoError(t, err)
	assert.Equal(t, DecisionSkippedProject, result.Decision)
	assert.Empty(t, f.logs.created)
	assert.Zero(t, f.conversions.creates)
}

func TestProcessUnknownPayloadFormat(t *testing.T) {
	f := newFixture()

	obj := map[string]interface{}{"hello": "world"}
	result, err := f.service.Process("tok-live", []byte(`{"hello":"world"}`), obj, 0)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusIgnored, result.LogStatus)

	require.Len(t, f.logs.created, 1)
	assert.Equal(t, "Unknown payload format", f.logs.created[0].IgnoreReason)
}

func TestProcessMissingTransactionID(t *testing.T) {
	f := newFixture()

	result, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("", ""), 0)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusError, result.LogStatus)

	require.Len(t, f.logs.created, 1)
	assert.Equal(t, "Missing transaction id", f.logs.created[0].IgnoreReason)
	assert.Zero(t, f.conversions.creates)
}

func TestProcessProductNotLinked(t *testing.T) {
	f := newFixture()
	f.webhooks.linked[7] = []string{"999111"}

	result, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("TX-9", ""), 0)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusIgnored, result.LogStatus)

	require.Len(t, f.logs.created, 1)
	assert.Contains(t, f.logs.created[0].IgnoreReason, "Product not linked")
	assert.Zero(t, f.conversions.creates)
}

func TestProcessLinkedProductMatchAllows(t *testing.T) {
	f := newFixture()
	f.webhooks.linked[7] = []string{"4487000"}

	result, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("TX-10", ""), 0)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusApproved, result.LogStatus)
	assert.Equal(t, 1, f.conversions.creates)
}

func TestProcessNonApprovedEventIgnored(t *testing.T) {
	f := newFixture()
	obj := approvedPayload("TX-11", "")
	obj["event"] = "PURCHASE_BILLET_PRINTED"
	data := obj["data"].(map[string]interface{})
	data["purchase"].(map[string]interface{})["status"] = "billet_printed"

	result, err := f.service.Process("tok-live", []byte(`{}`), obj, 0)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusIgnored, result.LogStatus)
	assert.Zero(t, f.conversions.creates)

	require.Len(t, f.logs.created, 1)
	assert.Contains(t, f.logs.created[0].IgnoreReason, "Unhandled event type")
}

func TestProcessReprocessUpdatesExistingLog(t *testing.T) {
	f := newFixture()
	f.logs.byID[55] = &models.WebhookLog{ID: 55, Status: models.SaleStatusError}

	result, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("TX-12", ""), 55)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusApproved, result.LogStatus)

	assert.Empty(t, f.logs.created)
	require.Len(t, f.logs.updated, 1)
	assert.Equal(t, uint(55), f.logs.updated[0].ID)
	assert.Equal(t, models.SaleStatusApproved, f.logs.updated[0].Status)
}

func TestProcessReprocessMissingLogAppends(t *testing.T) {
	f := newFixture()

	_, err := f.service.Process("tok-live", []byte(`{}`), approvedPayload("TX-13", ""), 777)
	require.NoError(t, err)

	assert.Empty(t, f.logs.updated)
	require.Len(t, f.logs.created, 1)
}

func TestProcessLeadSkippedWithoutEmail(t *testing.T) {
	f := newFixture()
	obj := approvedPayload("TX-14", "")
	data := obj["data"].(map[string]interface{})
	data["buyer"].(map[string]interface{})["email"] = ""

	_, err := f.service.Process("tok-live", []byte(`{}`), obj, 0)
	require.NoError(t, err)
	assert.Empty(t, f.leads.leads)
}
