package main

import (
	"os"

	salesforceapi "github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-qualifier/internal/activity"
	"github.com/sells-group/lead-qualifier/internal/crm"
	"github.com/sells-group/lead-qualifier/internal/dedup"
	"github.com/sells-group/lead-qualifier/internal/notify"
	"github.com/sells-group/lead-qualifier/internal/pipeline"
	"github.com/sells-group/lead-qualifier/internal/qualify"
	"github.com/sells-group/lead-qualifier/internal/scoring"
	anthropicpkg "github.com/sells-group/lead-qualifier/pkg/anthropic"
	"github.com/sells-group/lead-qualifier/pkg/hubspot"
	sfpkg "github.com/sells-group/lead-qualifier/pkg/salesforce"
	"github.com/sells-group/lead-qualifier/pkg/slack"
)

// serviceEnv holds the initialized clients and the assembled pipeline used
// by the serve and qualify commands.
type serviceEnv struct {
	Pipeline *pipeline.Pipeline
	Log      *activity.Log
	Dedup    *dedup.Cache
	Criteria scoring.Criteria
}

// initService validates config, builds every API client, and assembles the
// qualification pipeline.
func initService() (*serviceEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	criteria, err := scoring.Load(cfg.Scoring.CriteriaPath)
	if err != nil {
		return nil, err
	}

	chatOpts := []slack.Option{}
	if cfg.Slack.BaseURL != "" {
		chatOpts = append(chatOpts, slack.WithBaseURL(cfg.Slack.BaseURL))
	}
	chat := slack.NewClient(cfg.Slack.BotToken, chatOpts...)

	ai := anthropicpkg.NewClient(cfg.Anthropic.Key, cfg.Anthropic.BaseURL)

	crmClient, err := initCRM()
	if err != nil {
		return nil, err
	}

	log := activity.NewLog(cfg.Pipeline.LogCapacity)
	cache := dedup.New(cfg.Pipeline.DedupWindow())
	qualifier := qualify.New(ai, cfg.Anthropic, criteria)
	notifier := notify.New(chat, cfg.Slack.DMRecipientID)

	return &serviceEnv{
		Pipeline: pipeline.New(cfg.Pipeline, criteria, cache, log, crmClient, qualifier, notifier),
		Log:      log,
		Dedup:    cache,
		Criteria: criteria,
	}, nil
}

// initCRM builds the configured CRM backend.
func initCRM() (crm.Client, error) {
	switch cfg.CRM.Provider {
	case "hubspot":
		opts := []hubspot.Option{hubspot.WithRateLimit(cfg.CRM.RateLimit)}
		if cfg.CRM.HubSpot.BaseURL != "" {
			opts = append(opts, hubspot.WithBaseURL(cfg.CRM.HubSpot.BaseURL))
		}
		return crm.NewHubSpot(hubspot.NewClient(cfg.CRM.HubSpot.Token, opts...)), nil
	case "salesforce":
		sf, err := initSalesforce()
		if err != nil {
			return nil, err
		}
		return crm.NewSalesforce(sf), nil
	default:
		return nil, eris.Errorf("unknown crm provider %q", cfg.CRM.Provider)
	}
}

// initSalesforce authenticates to Salesforce with the JWT bearer flow and
// wraps the session in the rate-limited client.
func initSalesforce() (sfpkg.Client, error) {
	pemData, err := os.ReadFile(cfg.CRM.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce key")
	}

	sf, err := salesforceapi.Init(salesforceapi.Creds{
		Domain:         cfg.CRM.Salesforce.LoginURL,
		Username:       cfg.CRM.Salesforce.Username,
		ConsumerKey:    cfg.CRM.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "salesforce auth")
	}

	zap.L().Info("salesforce authenticated", zap.String("username", cfg.CRM.Salesforce.Username))
	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(cfg.CRM.RateLimit)), nil
}
