// Package pipeline orchestrates the qualification run for one inbound lead
// message: extract, dedup, CRM lookup, AI qualification, scoring, CRM
// update, and the chat reply. Exactly one activity entry is recorded per
// run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-qualifier/internal/activity"
	"github.com/sells-group/lead-qualifier/internal/config"
	"github.com/sells-group/lead-qualifier/internal/crm"
	"github.com/sells-group/lead-qualifier/internal/dedup"
	"github.com/sells-group/lead-qualifier/internal/extract"
	"github.com/sells-group/lead-qualifier/internal/model"
	"github.com/sells-group/lead-qualifier/internal/scoring"
)

// Qualifier produces an AI verdict for a lead.
type Qualifier interface {
	Qualify(ctx context.Context, lead model.Lead) (model.Verdict, error)
}

// Notifier writes qualification results back to the chat workspace.
type Notifier interface {
	ReplyResult(ctx context.Context, scored model.ScoredLead) error
	ReplyDegraded(ctx context.Context, lead model.Lead) error
}

// Pipeline runs the qualification flow. CRM and chat failures are soft
// (recorded as warnings); qualification failure after retries is hard.
type Pipeline struct {
	cfg       config.PipelineConfig
	criteria  scoring.Criteria
	dedup     *dedup.Cache
	log       *activity.Log
	crm       crm.Client
	qualifier Qualifier
	notifier  Notifier
}

// New assembles a Pipeline. crmClient and notifier may be nil, in which
// case the corresponding stages are skipped.
func New(cfg config.PipelineConfig, criteria scoring.Criteria, cache *dedup.Cache,
	log *activity.Log, crmClient crm.Client, qualifier Qualifier, notifier Notifier) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		criteria:  criteria,
		dedup:     cache,
		log:       log,
		crm:       crmClient,
		qualifier: qualifier,
		notifier:  notifier,
	}
}

// Run processes one inbound message end to end and records the terminal
// outcome. It never panics on bad input; malformed messages simply record a
// skip.
func (p *Pipeline) Run(ctx context.Context, channel, threadTS, text string) model.ActivityEntry {
	logger := zap.L().With(zap.String("channel", channel), zap.String("ts", threadTS))

	lead, err := extract.Extract(channel, threadTS, text)
	if err != nil {
		if !errors.Is(err, extract.ErrNoContactInfo) {
			logger.Warn("extraction failed", zap.Error(err))
		}
		return p.log.Record(model.ActivityEntry{
			Outcome: model.OutcomeSkipped,
			Stage:   model.StageExtracted,
			Summary: "no contact information found in message",
		})
	}
	logger = logger.With(zap.String("lead", lead.Identity()))

	if !p.dedup.TryAcquire(lead.Email, time.Now()) {
		logger.Info("duplicate lead skipped")
		return p.log.Record(model.ActivityEntry{
			Outcome:      model.OutcomeSkipped,
			Stage:        model.StageDedupChecked,
			LeadName:     lead.FullName,
			LeadIdentity: lead.Identity(),
			Summary:      fmt.Sprintf("duplicate within dedup window: %s", lead.Identity()),
		})
	}

	return p.process(ctx, logger, lead)
}

// process runs the stages past the dedup gate. The caller holds the dedup
// slot for lead; process always reaches a terminal that either marks it
// processed or releases it, including when a collaborator panics.
func (p *Pipeline) process(ctx context.Context, logger *zap.Logger, lead model.Lead) (entry model.ActivityEntry) {
	stage := model.StageDedupChecked
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		logger.Error("pipeline run panicked",
			zap.Any("panic", r),
			zap.String("stage", string(stage)),
			zap.Stack("stack"))
		// Release rather than MarkProcessed: the run never reached a
		// terminal, so a redelivery may still process this lead.
		p.dedup.Release(lead.Email)
		entry = p.log.Record(model.ActivityEntry{
			Outcome:      model.OutcomeErrored,
			Stage:        stage,
			LeadName:     lead.FullName,
			LeadIdentity: lead.Identity(),
			Summary:      fmt.Sprintf("internal error: %v", r),
		})
	}()

	var warnings []string
	stage = model.StageCrmLookedUp
	contactID, warn := p.lookupCRM(ctx, lead)
	if warn != "" {
		warnings = append(warnings, warn)
	}

	stage = model.StageQualifying
	verdict, err := p.qualifier.Qualify(ctx, lead)
	if err != nil {
		logger.Error("qualification failed", zap.Error(err))
		p.notifyDegraded(ctx, lead)
		// Errored runs still consume the dedup slot so a retry storm cannot
		// hammer the model for the same lead.
		p.dedup.MarkProcessed(lead.Email, time.Now())
		return p.log.Record(model.ActivityEntry{
			Outcome:      model.OutcomeErrored,
			Stage:        model.StageQualifying,
			LeadName:     lead.FullName,
			LeadIdentity: lead.Identity(),
			Summary:      "qualification failed: " + eris.ToString(err, false),
			Warnings:     warnings,
		})
	}

	stage = model.StageScored
	scored := scoring.Score(verdict, lead, p.criteria)
	logger.Info("lead scored",
		zap.Int("score", scored.Score),
		zap.String("classification", string(scored.Classification)))

	stage = model.StageCrmUpdated
	if warn := p.updateCRM(ctx, contactID, scored); warn != "" {
		warnings = append(warnings, warn)
	}
	stage = model.StageNotified
	if warn := p.notifyResult(ctx, scored); warn != "" {
		warnings = append(warnings, warn)
	}

	p.dedup.MarkProcessed(lead.Email, time.Now())
	return p.log.Record(model.ActivityEntry{
		Outcome:      model.OutcomeLogged,
		Stage:        model.StageNotified,
		LeadName:     lead.FullName,
		LeadIdentity: lead.Identity(),
		Score:        scored.Score,
		Scored:       true,
		Class:        scored.Classification,
		Summary:      scored.Verdict.Reasoning,
		Warnings:     warnings,
	})
}

// lookupCRM checks whether the lead already exists in the CRM. Failures and
// missing configuration degrade to a warning.
func (p *Pipeline) lookupCRM(ctx context.Context, lead model.Lead) (contactID, warning string) {
	if p.crm == nil || lead.Email == "" {
		return "", ""
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.CRMTimeout())
	defer cancel()

	id, err := p.crm.FindByEmail(ctx, lead.Email)
	if err != nil {
		zap.L().Warn("crm lookup failed", zap.String("email", lead.Email), zap.Error(err))
		return "", "crm lookup failed"
	}
	p.log.RecordCRMLookup(id != "")
	return id, ""
}

// updateCRM pushes the qualification status. An existing contact is
// patched; otherwise one is created for leads with an email address.
func (p *Pipeline) updateCRM(ctx context.Context, contactID string, scored model.ScoredLead) (warning string) {
	if p.crm == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.CRMTimeout())
	defer cancel()

	st := crm.StatusFor(scored.Classification)
	switch {
	case contactID != "":
		if err := p.crm.UpdateStatus(ctx, contactID, st); err != nil {
			zap.L().Warn("crm update failed", zap.String("contact_id", contactID), zap.Error(err))
			return "crm update failed"
		}
	case scored.Email != "" && scored.Classification != model.ClassSpam:
		if _, err := p.crm.CreateContact(ctx, scored.Lead, st); err != nil {
			zap.L().Warn("crm create failed", zap.String("email", scored.Email), zap.Error(err))
			return "crm create failed"
		}
	}
	return ""
}

func (p *Pipeline) notifyResult(ctx context.Context, scored model.ScoredLead) (warning string) {
	if p.notifier == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ChatTimeout())
	defer cancel()

	if err := p.notifier.ReplyResult(ctx, scored); err != nil {
		return "chat reply failed"
	}
	return ""
}

func (p *Pipeline) notifyDegraded(ctx context.Context, lead model.Lead) {
	if p.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ChatTimeout())
	defer cancel()

	if err := p.notifier.ReplyDegraded(ctx, lead); err != nil {
		zap.L().Warn("degraded notice failed", zap.String("lead", lead.Identity()), zap.Error(err))
	}
}
