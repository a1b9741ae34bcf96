package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/content"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime"
)

const (
	DirectionOutgoing = "outgoing"
	DirectionIncoming = "incoming"
)

// ReferenceView is one edge as seen from a given rule.
type ReferenceView struct {
	ID               uuid.UUID           `json:"id"`
	ReferenceType    types.ReferenceType `json:"reference_type"`
	ReferenceContext string              `json:"reference_context,omitempty"`
	IsBidirectional  bool                `json:"is_bidirectional"`
	Direction        string              `json:"direction"`
	RuleID           uuid.UUID           `json:"rule_id"`
	FullCode         string              `json:"full_code"`
	Title            string              `json:"title"`
	CategoryName     string              `json:"category_name"`
	CreatedAt        time.Time           `json:"created_at"`
}

type ReferenceGroup struct {
	ReferenceType types.ReferenceType `json:"reference_type"`
	References    []*ReferenceView    `json:"references"`
}

type CrossReferenceService interface {
	ListEdges(ctx context.Context, actor workflow.Principal, ruleID uuid.UUID) ([]ReferenceGroup, error)
	AddEdge(ctx context.Context, actor workflow.Principal, sourceRuleID uuid.UUID, req CreateReferenceRequest) (*types.CrossReference, error)
	RemoveEdge(ctx context.Context, actor workflow.Principal, ruleID, edgeID uuid.UUID) error
}

type CrossReferenceServiceDeps struct {
	Log        *logger.Logger
	Aggregate  domainagg.CrossReferenceAggregate
	Rules      repos.RuleRepo
	Codes      repos.RuleCodeRepo
	Categories repos.CategoryRepo
	Refs       repos.CrossReferenceRepo
	Notifier   ContentNotifier
}

type crossReferenceService struct {
	deps CrossReferenceServiceDeps
	log  *logger.Logger
}

func NewCrossReferenceService(deps CrossReferenceServiceDeps) CrossReferenceService {
	deps.Notifier = notifierOrNop(deps.Notifier)
	return &crossReferenceService{deps: deps, log: deps.Log.With("service", "CrossReferenceService")}
}

func (s *crossReferenceService) ListEdges(ctx context.Context, actor workflow.Principal, ruleID uuid.UUID) ([]ReferenceGroup, error) {
	const op = "CrossReference.List"
	if !actor.Valid() {
		return nil, requireRole(op, actor, workflow.RoleEditor)
	}
	rule, err := s.deps.Rules.GetByID(dbctx.Context{Ctx: ctx}, ruleID)
	if err != nil {
		return nil, readFailed(op, err)
	}
	if rule == nil || !workflow.CanView(actor, rule.Status, rule.SubmittedBy) {
		return nil, domainagg.NotFound(op, "rule", ruleID)
	}
	return s.listEdges(ctx, op, ruleID)
}

// listEdges skips the visibility check on ruleID; callers have done it.
func (s *crossReferenceService) listEdges(ctx context.Context, op string, ruleID uuid.UUID) ([]ReferenceGroup, error) {
	dbc := dbctx.Context{Ctx: ctx}
	edges, err := s.deps.Refs.ListForRule(dbc, ruleID)
	if err != nil {
		return nil, readFailed(op, err)
	}
	if len(edges) == 0 {
		return []ReferenceGroup{}, nil
	}

	others := make([]uuid.UUID, 0, len(edges))
	for _, e := range edges {
		others = append(others, otherEnd(e, ruleID))
	}
	others = uniqueIDs(others)

	rules, err := s.deps.Rules.GetByIDs(dbc, others)
	if err != nil {
		return nil, readFailed(op, err)
	}
	active := make(map[uuid.UUID]*types.Rule, len(rules))
	categoryIDs := make([]uuid.UUID, 0, len(rules))
	activeIDs := make([]uuid.UUID, 0, len(rules))
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		active[r.ID] = r
		activeIDs = append(activeIDs, r.ID)
		categoryIDs = append(categoryIDs, r.CategoryID)
	}

	codes, err := s.deps.Codes.GetByRuleIDs(dbc, activeIDs)
	if err != nil {
		return nil, readFailed(op, err)
	}
	codeByRule := make(map[uuid.UUID]string, len(codes))
	for _, c := range codes {
		codeByRule[c.RuleID] = c.FullCode
	}
	cats, err := s.deps.Categories.GetByIDs(dbc, uniqueIDs(categoryIDs))
	if err != nil {
		return nil, readFailed(op, err)
	}
	catName := make(map[uuid.UUID]string, len(cats))
	for _, c := range cats {
		catName[c.ID] = c.Name
	}

	grouped := map[types.ReferenceType][]*ReferenceView{}
	for _, e := range edges {
		other := active[otherEnd(e, ruleID)]
		if other == nil {
			continue
		}
		dir := DirectionOutgoing
		if e.SourceRuleID != ruleID {
			dir = DirectionIncoming
		}
		grouped[e.ReferenceType] = append(grouped[e.ReferenceType], &ReferenceView{
			ID:               e.ID,
			ReferenceType:    e.ReferenceType,
			ReferenceContext: e.ReferenceContext,
			IsBidirectional:  e.IsBidirectional,
			Direction:        dir,
			RuleID:           other.ID,
			FullCode:         codeByRule[other.ID],
			Title:            other.Title,
			CategoryName:     catName[other.CategoryID],
			CreatedAt:        e.CreatedAt,
		})
	}

	out := make([]ReferenceGroup, 0, len(grouped))
	for _, t := range content.ReferenceTypes {
		if refs := grouped[t]; len(refs) > 0 {
			out = append(out, ReferenceGroup{ReferenceType: t, References: refs})
		}
	}
	return out, nil
}

func otherEnd(e *types.CrossReference, ruleID uuid.UUID) uuid.UUID {
	if e.SourceRuleID == ruleID {
		return e.TargetRuleID
	}
	return e.SourceRuleID
}

func (s *crossReferenceService) AddEdge(ctx context.Context, actor workflow.Principal, sourceRuleID uuid.UUID, req CreateReferenceRequest) (*types.CrossReference, error) {
	const op = "CrossReference.Add"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	edge, err := s.deps.Aggregate.AddEdge(ctx, domainagg.AddEdgeInput{
		Actor:         actor,
		SourceRuleID:  sourceRuleID,
		TargetRuleID:  req.TargetRuleID,
		Type:          types.ReferenceType(req.ReferenceType),
		Context:       req.ReferenceContext,
		Bidirectional: req.IsBidirectional,
	})
	if err != nil {
		return nil, err
	}
	s.deps.Notifier.Notify(ctx, realtime.ContentEvent{
		EntityType: realtime.EntityCrossReference,
		EntityID:   edge.ID,
		Action:     realtime.ActionCreate,
		ActorID:    actor.ID,
	})
	return edge, nil
}

func (s *crossReferenceService) RemoveEdge(ctx context.Context, actor workflow.Principal, ruleID, edgeID uuid.UUID) error {
	if err := s.deps.Aggregate.RemoveEdge(ctx, domainagg.RemoveEdgeInput{
		Actor:  actor,
		EdgeID: edgeID,
		RuleID: ruleID,
	}); err != nil {
		return err
	}
	s.deps.Notifier.Notify(ctx, realtime.ContentEvent{
		EntityType: realtime.EntityCrossReference,
		EntityID:   edgeID,
		Action:     realtime.ActionDelete,
		ActorID:    actor.ID,
	})
	return nil
}
