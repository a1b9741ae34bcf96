package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/audit"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime"
)

const defaultSearchLimit = 25

// RuleView is a rule as returned to staff: the row plus its code and nested
// sub-rules.
type RuleView struct {
	*types.Rule
	FullCode             string      `json:"full_code"`
	TruncatedDescription string      `json:"truncated_description,omitempty"`
	CategoryLetter       string      `json:"category_letter,omitempty"`
	CategoryName         string      `json:"category_name,omitempty"`
	SubRules             []*RuleView `json:"sub_rules,omitempty"`
}

type RuleDetail struct {
	*RuleView
	CrossReferences []ReferenceGroup `json:"cross_references"`
}

type RuleService interface {
	List(ctx context.Context, actor workflow.Principal, req ListRulesRequest) ([]*RuleView, error)
	Get(ctx context.Context, actor workflow.Principal, id uuid.UUID) (*RuleDetail, error)
	Search(ctx context.Context, actor workflow.Principal, req SearchRulesRequest) ([]*RuleView, error)

	Create(ctx context.Context, actor workflow.Principal, req CreateRuleRequest) (*RuleView, error)
	Update(ctx context.Context, actor workflow.Principal, id uuid.UUID, req UpdateRuleRequest) (*RuleView, error)
	Approve(ctx context.Context, actor workflow.Principal, id uuid.UUID, req ReviewRequest) (*RuleView, error)
	Reject(ctx context.Context, actor workflow.Principal, id uuid.UUID, req ReviewRequest) (*RuleView, error)
	Delete(ctx context.Context, actor workflow.Principal, id uuid.UUID) (domainagg.DeleteRuleResult, error)
	Restore(ctx context.Context, actor workflow.Principal, id uuid.UUID) (*RuleView, error)
}

type RuleServiceDeps struct {
	Log        *logger.Logger
	Aggregate  domainagg.RuleAggregate
	Rules      repos.RuleRepo
	Codes      repos.RuleCodeRepo
	Categories repos.CategoryRepo
	References CrossReferenceService
	Audit      AuditService
	Notifier   ContentNotifier
}

type ruleService struct {
	deps RuleServiceDeps
	log  *logger.Logger
}

func NewRuleService(deps RuleServiceDeps) RuleService {
	deps.Notifier = notifierOrNop(deps.Notifier)
	return &ruleService{deps: deps, log: deps.Log.With("service", "RuleService")}
}

func (s *ruleService) List(ctx context.Context, actor workflow.Principal, req ListRulesRequest) ([]*RuleView, error) {
	const op = "Rule.List"
	if err := requireRole(op, actor, workflow.RoleEditor); err != nil {
		return nil, err
	}
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	filter := repos.RuleFilter{
		CategoryID: req.CategoryID,
		Scope:      workflow.VisibilityScope(actor),
	}
	if req.Status != "" {
		st := workflow.Status(req.Status)
		filter.Status = &st
	}
	rows, err := s.deps.Rules.List(dbctx.Context{Ctx: ctx}, filter)
	if err != nil {
		return nil, readFailed(op, err)
	}
	views, err := s.views(ctx, op, rows)
	if err != nil {
		return nil, err
	}
	return nest(views), nil
}

// nest attaches sub-rules to parents present in views. A sub-rule whose parent
// was filtered out stays at the top level.
func nest(views []*RuleView) []*RuleView {
	byID := make(map[uuid.UUID]*RuleView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}
	out := make([]*RuleView, 0, len(views))
	for _, v := range views {
		if v.ParentRuleID != nil {
			if parent := byID[*v.ParentRuleID]; parent != nil {
				parent.SubRules = append(parent.SubRules, v)
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

func (s *ruleService) Get(ctx context.Context, actor workflow.Principal, id uuid.UUID) (*RuleDetail, error) {
	const op = "Rule.Get"
	if err := requireRole(op, actor, workflow.RoleEditor); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	rule, err := s.deps.Rules.GetByID(dbc, id)
	if err != nil {
		return nil, readFailed(op, err)
	}
	if rule == nil || !workflow.CanView(actor, rule.Status, rule.SubmittedBy) {
		return nil, domainagg.NotFound(op, "rule", id)
	}
	children, err := s.deps.Rules.List(dbc, repos.RuleFilter{
		ParentRuleID: &rule.ID,
		Scope:        workflow.VisibilityScope(actor),
	})
	if err != nil {
		return nil, readFailed(op, err)
	}
	views, err := s.views(ctx, op, append([]*types.Rule{rule}, children...))
	if err != nil {
		return nil, err
	}
	view := views[0]
	view.SubRules = views[1:]

	detail := &RuleDetail{RuleView: view, CrossReferences: []ReferenceGroup{}}
	if s.deps.References != nil {
		groups, err := s.deps.References.ListEdges(ctx, actor, rule.ID)
		if err != nil {
			return nil, err
		}
		detail.CrossReferences = groups
	}
	return detail, nil
}

func (s *ruleService) Search(ctx context.Context, actor workflow.Principal, req SearchRulesRequest) ([]*RuleView, error) {
	const op = "Rule.Search"
	if err := requireRole(op, actor, workflow.RoleEditor); err != nil {
		return nil, err
	}
	req.Query = strings.TrimSpace(req.Query)
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	if req.Limit == 0 {
		req.Limit = defaultSearchLimit
	}
	meta := TrackMeta{
		ActionType:   audit.ActionSearch,
		ResourceType: audit.ResourceRule,
		Details:      map[string]any{"query": req.Query, "limit": req.Limit},
	}
	return Tracked(ctx, s.deps.Audit, meta, func(ctx context.Context) ([]*RuleView, error) {
		rows, err := s.deps.Rules.Search(dbctx.Context{Ctx: ctx}, req.Query, workflow.VisibilityScope(actor), req.Limit)
		if err != nil {
			return nil, readFailed(op, err)
		}
		return s.views(ctx, op, rows)
	}, nil)
}

func (s *ruleService) Create(ctx context.Context, actor workflow.Principal, req CreateRuleRequest) (*RuleView, error) {
	const op = "Rule.Create"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	res, err := s.deps.Aggregate.Create(ctx, domainagg.CreateRuleInput{
		Actor:           actor,
		CategoryID:      req.CategoryID,
		ParentRuleID:    req.ParentRuleID,
		Title:           req.Title,
		Content:         req.Content,
		Images:          req.Images,
		RequestedStatus: workflow.Status(req.Status),
	})
	if err != nil {
		return nil, err
	}
	return s.afterWrite(ctx, op, actor, realtime.ActionCreate, res)
}

func (s *ruleService) Update(ctx context.Context, actor workflow.Principal, id uuid.UUID, req UpdateRuleRequest) (*RuleView, error) {
	const op = "Rule.Update"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	res, err := s.deps.Aggregate.Update(ctx, domainagg.UpdateRuleInput{
		Actor:           actor,
		RuleID:          id,
		Title:           req.Title,
		Content:         req.Content,
		Images:          req.Images,
		RevisionLetter:  req.RevisionLetter,
		RequestedStatus: workflow.Status(req.Status),
	})
	if err != nil {
		return nil, err
	}
	return s.afterWrite(ctx, op, actor, realtime.ActionUpdate, res)
}

func (s *ruleService) Approve(ctx context.Context, actor workflow.Principal, id uuid.UUID, req ReviewRequest) (*RuleView, error) {
	const op = "Rule.Approve"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	res, err := s.deps.Aggregate.Approve(ctx, domainagg.ReviewInput{Actor: actor, ID: id, Notes: req.Notes})
	if err != nil {
		return nil, err
	}
	return s.afterWrite(ctx, op, actor, realtime.ActionApprove, res)
}

func (s *ruleService) Reject(ctx context.Context, actor workflow.Principal, id uuid.UUID, req ReviewRequest) (*RuleView, error) {
	const op = "Rule.Reject"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	res, err := s.deps.Aggregate.Reject(ctx, domainagg.ReviewInput{Actor: actor, ID: id, Notes: req.Notes})
	if err != nil {
		return nil, err
	}
	return s.afterWrite(ctx, op, actor, realtime.ActionReject, res)
}

func (s *ruleService) Delete(ctx context.Context, actor workflow.Principal, id uuid.UUID) (domainagg.DeleteRuleResult, error) {
	res, err := s.deps.Aggregate.Delete(ctx, domainagg.DeleteInput{Actor: actor, ID: id})
	if err != nil {
		return domainagg.DeleteRuleResult{}, err
	}
	s.deps.Notifier.Notify(ctx, realtime.ContentEvent{
		EntityType: realtime.EntityRule,
		EntityID:   res.RuleID,
		Action:     realtime.ActionDelete,
		ActorID:    actor.ID,
	})
	return res, nil
}

func (s *ruleService) Restore(ctx context.Context, actor workflow.Principal, id uuid.UUID) (*RuleView, error) {
	res, err := s.deps.Aggregate.Restore(ctx, domainagg.RestoreInput{Actor: actor, ID: id})
	if err != nil {
		return nil, err
	}
	return s.afterWrite(ctx, "Rule.Restore", actor, realtime.ActionUpdate, res)
}

// afterWrite announces a committed transition and renders the rule. A failed
// render is logged; the write itself already succeeded.
func (s *ruleService) afterWrite(ctx context.Context, op string, actor workflow.Principal, action string, res domainagg.RuleResult) (*RuleView, error) {
	s.deps.Notifier.Notify(ctx, realtime.ContentEvent{
		EntityType: realtime.EntityRule,
		EntityID:   res.Rule.ID,
		Action:     action,
		ActorID:    actor.ID,
		FullCode:   res.FullCode,
		Title:      res.Rule.Title,
	})
	views, err := s.views(ctx, op, []*types.Rule{res.Rule})
	if err != nil {
		s.log.Warn("rule view unavailable after write", "op", op, "rule_id", res.Rule.ID, "error", err)
		return &RuleView{Rule: res.Rule, FullCode: res.FullCode}, nil
	}
	if views[0].FullCode == "" {
		views[0].FullCode = res.FullCode
	}
	return views[0], nil
}

// views decorates rows with their code and category in two batched reads.
func (s *ruleService) views(ctx context.Context, op string, rows []*types.Rule) ([]*RuleView, error) {
	out := make([]*RuleView, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	dbc := dbctx.Context{Ctx: ctx}
	ruleIDs := make([]uuid.UUID, 0, len(rows))
	catIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ruleIDs = append(ruleIDs, r.ID)
		catIDs = append(catIDs, r.CategoryID)
	}
	codes, err := s.deps.Codes.GetByRuleIDs(dbc, ruleIDs)
	if err != nil {
		return nil, readFailed(op, fmt.Errorf("load rule codes: %w", err))
	}
	codeByRule := make(map[uuid.UUID]*types.RuleCode, len(codes))
	for _, c := range codes {
		codeByRule[c.RuleID] = c
	}
	cats, err := s.deps.Categories.GetByIDs(dbc, uniqueIDs(catIDs))
	if err != nil {
		return nil, readFailed(op, fmt.Errorf("load categories: %w", err))
	}
	catByID := make(map[uuid.UUID]*types.Category, len(cats))
	for _, c := range cats {
		catByID[c.ID] = c
	}
	for _, r := range rows {
		v := &RuleView{Rule: r}
		if c := codeByRule[r.ID]; c != nil {
			v.FullCode = c.FullCode
			v.TruncatedDescription = c.TruncatedDescription
		}
		if c := catByID[r.CategoryID]; c != nil {
			v.CategoryLetter = c.LetterCode
			v.CategoryName = c.Name
		}
		out = append(out, v)
	}
	return out, nil
}
