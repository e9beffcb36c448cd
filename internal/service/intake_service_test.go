package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboardhq/intake/internal/extract"
	"github.com/onboardhq/intake/internal/models"
)

// fakeStore records inserts and can fail per table.
type fakeStore struct {
	nextID    int64
	clients   []*models.Client
	brandKits []*models.BrandKit
	markets   []*models.Market
	systems   []*models.Systems
	statuses  []*models.Status
	failTable string
}

func (f *fakeStore) fail(table string) error {
	if f.failTable == table {
		return errors.New("insert " + table + ": status 500: connection refused")
	}
	return nil
}

func (f *fakeStore) CreateClient(ctx context.Context, record *models.Client) (*models.Client, error) {
	if err := f.fail("clients"); err != nil {
		return nil, err
	}
	f.nextID++
	created := *record
	created.ID = f.nextID
	f.clients = append(f.clients, &created)
	return &created, nil
}

func (f *fakeStore) CreateBrandKit(ctx context.Context, record *models.BrandKit) (*models.BrandKit, error) {
	if err := f.fail("brand_kits"); err != nil {
		return nil, err
	}
	f.brandKits = append(f.brandKits, record)
	return record, nil
}

func (f *fakeStore) CreateMarket(ctx context.Context, record *models.Market) (*models.Market, error) {
	if err := f.fail("markets"); err != nil {
		return nil, err
	}
	f.markets = append(f.markets, record)
	return record, nil
}

func (f *fakeStore) CreateSystems(ctx context.Context, record *models.Systems) (*models.Systems, error) {
	if err := f.fail("systems"); err != nil {
		return nil, err
	}
	f.systems = append(f.systems, record)
	return record, nil
}

func (f *fakeStore) CreateStatus(ctx context.Context, record *models.Status) (*models.Status, error) {
	if err := f.fail("status"); err != nil {
		return nil, err
	}
	f.statuses = append(f.statuses, record)
	return record, nil
}

// fakeMirror swaps each source URL for a durable one, optionally dropping
// URLs that match failURL.
type fakeMirror struct {
	failURL string
	calls   []string
}

func (f *fakeMirror) MirrorAll(ctx context.Context, clientID int64, category string, sourceURLs []string) []string {
	f.calls = append(f.calls, category)
	var out []string
	for _, src := range sourceURLs {
		if src == f.failURL {
			continue
		}
		out = append(out, "https://storage.example.com/"+category+"/mirrored")
	}
	return out
}

func newTestService(store *fakeStore, m *fakeMirror) *IntakeService {
	return NewIntakeService(store, m, nil)
}

func TestProcessSubmission_Success(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeMirror{})

	clientID, err := svc.ProcessSubmission(context.Background(), extract.Payload{
		"email":               "a@b.com",
		"legal_business_name": "Acme LLC",
		"tier":                "growth",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), clientID)
	require.Len(t, store.clients, 1)
	assert.Equal(t, "a@b.com", store.clients[0].Email)
	assert.Equal(t, "Acme LLC", store.clients[0].LegalBusinessName)
	assert.Equal(t, "Growth", store.clients[0].Tier)
	assert.Empty(t, store.brandKits, "no brand attributes, no brand kit row")
}

func TestProcessSubmission_MissingEmail(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeMirror{})

	_, err := svc.ProcessSubmission(context.Background(), extract.Payload{
		"legal_business_name": "Acme LLC",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "email", validationErr.Field)
	assert.Equal(t, "Missing required field: email", err.Error())
	assert.Empty(t, store.clients, "no writes before validation passes")
}

func TestProcessSubmission_EmailCheckedBeforeLegalName(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeMirror{})

	_, err := svc.ProcessSubmission(context.Background(), extract.Payload{})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "email", validationErr.Field)
}

func TestProcessSubmission_ContactNameFallback(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeMirror{})

	_, err := svc.ProcessSubmission(context.Background(), extract.Payload{
		"email":        "a@b.com",
		"contact_name": "Jordan Smith",
	})

	require.NoError(t, err)
	require.Len(t, store.clients, 1)
	assert.Equal(t, "Jordan Smith", store.clients[0].LegalBusinessName)
}

func TestProcessSubmission_MissingLegalName(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeMirror{})

	_, err := svc.ProcessSubmission(context.Background(), extract.Payload{
		"email": "a@b.com",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "legal_name", validationErr.Field)
}

func TestProcessSubmission_TierDefaultsToStarter(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeMirror{})

	_, err := svc.ProcessSubmission(context.Background(), extract.Payload{
		"email":               "a@b.com",
		"legal_business_name": "Acme LLC",
	})

	require.NoError(t, err)
	assert.Equal(t, "Starter", store.clients[0].Tier)
}

func TestProcessSubmission_PackageQuestionStoredAsPremium(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeMirror{})

	_, err := svc.ProcessSubmission(context.Background(), extract.Payload{
		"email":               "a@b.com",
		"legal_business_name": "Acme LLC",
		"submission": map[string]interface{}{
			"questions": []interface{}{
				map[string]interface{}{"name": "Package", "value": "pro"},
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Premium", store.clients[0].Tier)
}

func TestProcessSubmission_ClientInsertFatal(t *testing.T) {
	store := &fakeStore{failTable: "clients"}
	svc := newTestService(store, &fakeMirror{})

	_, err := svc.ProcessSubmission(context.Background(), extract.Payload{
		"email":               "a@b.com",
		"legal_business_name": "Acme LLC",
	})

	require.Error(t, err)
	var validationErr *ValidationError
	assert.False(t, errors.As(err, &validationErr), "store failure is not a validation error")
	assert.Empty(t, store.brandKits, "no secondary writes after fatal client insert")
}

func TestProcessSubmission_BrandKitWithMirroredAssets(t *testing.T) {
	store := &fakeStore{}
	m := &fakeMirror{}
	svc := newTestService(store, m)

	clientID, err := svc.ProcessSubmission(context.Background(), extract.Payload{
		"email":               "a@b.com",
		"legal_business_name": "Acme LLC",
		"primary_color":       "#112233",
		"logo_urls":           []interface{}{"https://forms.example.com/logo.png"},
	})

	require.NoError(t, err)
	require.Len(t, store.brandKits, 1)

	kit := store.brandKits[0]
	assert.Equal(t, clientID, kit.ClientID)
	assert.Equal(t, "#112233", kit.PrimaryColor)
	assert.Equal(t, []string{"https://storage.example.com/logos/mirrored"}, kit.LogoURLs,
		"brand kit stores durable URLs, never third-party ones")
	assert.Equal(t, []string{"logos", "headshots"}, m.calls, "mirroring runs before the kit insert")
}

func TestProcessSubmission_FailedAssetOmittedFromKit(t *testing.T) {
	store := &fakeStore{}
	m := &fakeMirror{failURL: "https://forms.example.com/broken.png"}
	svc := newTestService(store, m)

	clientID, err := svc.ProcessSubmission(context.Background(), extract.Payload{
		"email":               "a@b.com",
		"legal_business_name": "Acme LLC",
		"primary_color":       "#112233",
		"logo_urls":           []interface{}{"https://forms.example.com/broken.png"},
	})

	require.NoError(t, err, "a failed asset never fails the request")
	assert.Equal(t, int64(1), clientID)
	require.Len(t, store.brandKits, 1)
	assert.Empty(t, store.brandKits[0].LogoURLs)
}

func TestProcessSubmission_BrandKitFailureNonFatal(t *testing.T) {
	store := &fakeStore{failTable: "brand_kits"}
	svc := newTestService(store, &fakeMirror{})

	clientID, err := svc.ProcessSubmission(context.Background(), extract.Payload{
		"email":               "a@b.com",
		"legal_business_name": "Acme LLC",
		"font":                "Inter",
	})

	require.NoError(t, err, "client record is the minimum viable outcome")
	assert.Equal(t, int64(1), clientID)
}

func TestProcessSubmission_OperationalRows(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeMirror{})

	clientID, err := svc.ProcessSubmission(context.Background(), extract.Payload{
		"email":               "a@b.com",
		"legal_business_name": "Acme LLC",
		"service_area":        "Austin, TX",
		"crm_url":             "https://crm.example.com/acme",
		"intake_complete":     true,
	})

	require.NoError(t, err)

	require.Len(t, store.markets, 1)
	assert.Equal(t, clientID, store.markets[0].ClientID)
	assert.Equal(t, "Austin, TX", store.markets[0].ServiceArea)

	require.Len(t, store.systems, 1)
	assert.Equal(t, "https://crm.example.com/acme", store.systems[0].CRMURL)

	require.Len(t, store.statuses, 1)
	assert.True(t, store.statuses[0].IntakeComplete)
}

func TestProcessSubmission_OperationalRowsSkippedWhenAbsent(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeMirror{})

	_, err := svc.ProcessSubmission(context.Background(), extract.Payload{
		"email":               "a@b.com",
		"legal_business_name": "Acme LLC",
	})

	require.NoError(t, err)
	assert.Empty(t, store.markets)
	assert.Empty(t, store.systems)
	assert.Empty(t, store.statuses)
}

func TestProcessSubmission_DistinctRowsPerSubmission(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeMirror{})

	payload := extract.Payload{
		"email":               "a@b.com",
		"legal_business_name": "Acme LLC",
	}

	first, err := svc.ProcessSubmission(context.Background(), payload)
	require.NoError(t, err)
	second, err := svc.ProcessSubmission(context.Background(), payload)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "inserts are not deduplicated by email")
	assert.Len(t, store.clients, 2)
}

func TestGetStats(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeMirror{})

	_, _ = svc.ProcessSubmission(context.Background(), extract.Payload{
		"email":               "a@b.com",
		"legal_business_name": "Acme LLC",
	})
	_, _ = svc.ProcessSubmission(context.Background(), extract.Payload{})

	stats := svc.GetStats()
	assert.Equal(t, int64(2), stats.TotalSubmissions)
	assert.Equal(t, int64(1), stats.SuccessfulSubmissions)
	assert.Equal(t, int64(1), stats.FailedSubmissions)
	assert.False(t, stats.LastSubmission.IsZero())
}
