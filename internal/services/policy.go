package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/budgetkeeper/internal/biometric"
	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/repomanager"
)

// PolicyService decides whether an action needs a fresh authentication and
// whether a data category is masked. Authentication checks fail closed,
// masking fails open.
type PolicyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	users       CurrentUserProvider
	prompt      biometric.Prompt
	log         logging.Logger
}

func NewPolicyService(db *sql.DB, m repomanager.RepositoryManager, users CurrentUserProvider, prompt biometric.Prompt, log logging.Logger) *PolicyService {
	return &PolicyService{db: db, repomanager: m, users: users, prompt: prompt, log: log}
}

func (s *PolicyService) settings(ctx context.Context) (*models.SecuritySettings, bool, error) {
	userID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return nil, false, nil
	}

	settings, err := s.repomanager.SecuritySettings(s.db).Get(ctx, userID)
	if err != nil {
		return nil, true, err
	}
	return settings, true, nil
}

func (s *PolicyService) RequiresAuthentication(ctx context.Context, action models.Action) bool {
	settings, hasUser, err := s.settings(ctx)
	if !hasUser {
		return false
	}
	if err != nil {
		s.log.Warn(ctx, "security settings unavailable, requiring authentication", "action", action, "error", err)
		return true
	}

	if _, ok := models.HighSecurityActions[action]; ok && settings.SecurityLevel == models.SecurityLevelHigh {
		return true
	}
	if _, ok := models.MediumSecurityActions[action]; ok &&
		(settings.SecurityLevel == models.SecurityLevelMedium || settings.SecurityLevel == models.SecurityLevelHigh) {
		return true
	}
	if _, ok := models.SensitiveActions[action]; ok && settings.RequireAuthForSensitiveActions {
		return true
	}
	if settings.PrivacyMode == models.PrivacyModeMaximum {
		return true
	}
	return false
}

func (s *PolicyService) ShouldHideData(ctx context.Context, category models.DataCategory) bool {
	settings, hasUser, err := s.settings(ctx)
	if !hasUser {
		return false
	}
	if err != nil {
		s.log.Warn(ctx, "security settings unavailable, showing data", "category", category, "error", err)
		return false
	}

	switch category {
	case models.DataBalances:
		return settings.HideBalances
	case models.DataTransactions:
		return settings.HideTransactions
	case models.DataBudgets:
		return settings.HideBudgets
	default:
		return false
	}
}

// Authorize runs the biometric prompt when action requires authentication.
func (s *PolicyService) Authorize(ctx context.Context, action models.Action) error {
	if !s.RequiresAuthentication(ctx, action) {
		return nil
	}

	res, err := s.prompt.Authenticate(ctx, biometric.Options{
		PromptMessage: fmt.Sprintf("Verifikasi identitas untuk %s", action),
		FallbackLabel: "Gunakan kata sandi",
		CancelLabel:   "Batal",
	})
	if err != nil {
		return fmt.Errorf("biometric prompt: %w", err)
	}
	if !res.Success {
		return common.ErrAuthRequired
	}
	return nil
}
