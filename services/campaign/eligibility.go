package campaign

import (
	"strings"

	"airdrop-ledger/pkg/celengine"

	"github.com/google/cel-go/cel"
)

func eligibilityEnv() (*cel.Env, error) {
	return celengine.GetOrBuildEnv(map[string]any{
		"user":     map[string]any{},
		"account":  map[string]any{},
		"campaign": map[string]any{},
	})
}

// ValidateEligibility compiles expr against the user/account/campaign
// variables. An empty expression is always valid.
func ValidateEligibility(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}

	env, err := eligibilityEnv()
	if err != nil {
		return err
	}
	return celengine.ValidateExpression(env, expr)
}

// Eligible evaluates the campaign's eligibility expression. Campaigns without
// one admit everybody.
func (c *Campaign) Eligible(user, account map[string]any) (bool, error) {
	if strings.TrimSpace(c.EligibilityExpr) == "" {
		return true, nil
	}

	env, err := eligibilityEnv()
	if err != nil {
		return false, err
	}

	return celengine.Evaluate(env, c.EligibilityExpr, map[string]any{
		"user":     user,
		"account":  account,
		"campaign": c.Attributes(),
	})
}
