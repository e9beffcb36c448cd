package service

import (
	"context"
	"sync"
	"time"

	"github.com/onboardhq/intake/internal/extract"
	"github.com/onboardhq/intake/internal/logging"
	"github.com/onboardhq/intake/internal/models"
)

// DataStore is the slice of the data-store client the orchestrator needs.
type DataStore interface {
	CreateClient(ctx context.Context, record *models.Client) (*models.Client, error)
	CreateBrandKit(ctx context.Context, record *models.BrandKit) (*models.BrandKit, error)
	CreateMarket(ctx context.Context, record *models.Market) (*models.Market, error)
	CreateSystems(ctx context.Context, record *models.Systems) (*models.Systems, error)
	CreateStatus(ctx context.Context, record *models.Status) (*models.Status, error)
}

// AssetMirror copies third-party file URLs into durable storage.
type AssetMirror interface {
	MirrorAll(ctx context.Context, clientID int64, category string, sourceURLs []string) []string
}

// ValidationError reports a required business field that no extraction
// strategy could produce. Its message is safe to return to the caller.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "Missing required field: " + e.Field
}

type IntakeService struct {
	store      DataStore
	mirror     AssetMirror
	logger     *logging.Logger
	stats      models.IntakeStats
	statsMutex sync.RWMutex
}

func NewIntakeService(store DataStore, mirror AssetMirror, logger *logging.Logger) *IntakeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IntakeService{
		store:  store,
		mirror: mirror,
		logger: logger,
	}
}

// ProcessSubmission runs one submission end to end: extract, validate,
// persist the client row, mirror assets, then persist dependent rows.
// The client row is the only fatal write; dependent rows degrade to log
// lines because the client record is the minimum viable outcome.
func (s *IntakeService) ProcessSubmission(ctx context.Context, payload extract.Payload) (int64, error) {
	fields := extract.Extract(payload)

	if fields.Email == "" {
		s.recordOutcome(false)
		return 0, &ValidationError{Field: "email"}
	}

	legalName := fields.LegalName
	if legalName == "" {
		legalName = fields.ContactName
	}
	if legalName == "" {
		s.recordOutcome(false)
		return 0, &ValidationError{Field: "legal_name"}
	}

	// NormalizeTier always succeeds via its default, so this check should be
	// unreachable. It stays so a future normalization change cannot silently
	// store an empty tier.
	tier := extract.NormalizeTier(fields.Tier)
	if tier == "" {
		s.recordOutcome(false)
		return 0, &ValidationError{Field: "tier"}
	}

	client, err := s.store.CreateClient(ctx, &models.Client{
		Email:             fields.Email,
		LegalBusinessName: legalName,
		ContactName:       fields.ContactName,
		Tier:              tier,
		Brokerage:         fields.Brokerage,
		Website:           fields.Website,
		Phone:             fields.Phone,
	})
	if err != nil {
		s.recordOutcome(false)
		return 0, err
	}

	s.logger.InfoContext(ctx, "Client created",
		"client_id", client.ID,
		"tier", tier,
	)

	s.persistBrandKit(ctx, client.ID, fields)
	s.persistOperational(ctx, client.ID, fields)

	s.recordOutcome(true)
	return client.ID, nil
}

// persistBrandKit mirrors assets and writes the brand kit row. Mirroring runs
// first so the kit stores durable URLs, never third-party ones.
func (s *IntakeService) persistBrandKit(ctx context.Context, clientID int64, fields extract.Fields) {
	logoURLs := s.mirror.MirrorAll(ctx, clientID, "logos", fields.LogoURLs)
	headshotURLs := s.mirror.MirrorAll(ctx, clientID, "headshots", fields.HeadshotURLs)
	s.recordMirrored(int64(len(logoURLs) + len(headshotURLs)))

	kit := &models.BrandKit{
		ClientID:       clientID,
		PrimaryColor:   fields.PrimaryColor,
		SecondaryColor: fields.SecondaryColor,
		Font:           fields.Font,
		Disclaimer:     fields.Disclaimer,
		LogoURLs:       logoURLs,
		HeadshotURLs:   headshotURLs,
	}
	if kit.IsEmpty() {
		return
	}

	if _, err := s.store.CreateBrandKit(ctx, kit); err != nil {
		s.logger.WarnContext(ctx, "Brand kit insert failed",
			"client_id", clientID,
			"error", err.Error(),
		)
	}
}

// persistOperational writes the market, systems, and status rows for the
// fields the submission carried. Each write degrades independently.
func (s *IntakeService) persistOperational(ctx context.Context, clientID int64, fields extract.Fields) {
	if fields.ServiceArea != "" {
		if _, err := s.store.CreateMarket(ctx, &models.Market{
			ClientID:    clientID,
			ServiceArea: fields.ServiceArea,
		}); err != nil {
			s.logger.WarnContext(ctx, "Market insert failed",
				"client_id", clientID,
				"error", err.Error(),
			)
		}
	}

	if fields.CRMURL != "" || fields.CalendarURL != "" {
		if _, err := s.store.CreateSystems(ctx, &models.Systems{
			ClientID:    clientID,
			CRMURL:      fields.CRMURL,
			CalendarURL: fields.CalendarURL,
		}); err != nil {
			s.logger.WarnContext(ctx, "Systems insert failed",
				"client_id", clientID,
				"error", err.Error(),
			)
		}
	}

	if fields.IntakeComplete {
		if _, err := s.store.CreateStatus(ctx, &models.Status{
			ClientID:       clientID,
			IntakeComplete: true,
		}); err != nil {
			s.logger.WarnContext(ctx, "Status insert failed",
				"client_id", clientID,
				"error", err.Error(),
			)
		}
	}
}

func (s *IntakeService) recordOutcome(success bool) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TotalSubmissions++
	s.stats.LastSubmission = time.Now()
	if success {
		s.stats.SuccessfulSubmissions++
	} else {
		s.stats.FailedSubmissions++
	}
}

func (s *IntakeService) recordMirrored(count int64) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()
	s.stats.AssetsMirrored += count
}

func (s *IntakeService) GetStats() models.IntakeStats {
	s.statsMutex.RLock()
	defer s.statsMutex.RUnlock()
	return s.stats
}
