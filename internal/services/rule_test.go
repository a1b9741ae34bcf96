package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	repotest "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos/testutil"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/audit"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/ctxutil"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime"
)

func TestRuleListNestsSubRulesAndAppliesVisibility(t *testing.T) {
	h := newSvcHarness(t)
	cat := h.category(t, "C")
	mod := repotest.Moderator()
	author := repotest.Editor()
	other := repotest.Editor()

	main, err := h.rules.Create(h.ctx, mod, CreateRuleRequest{CategoryID: cat.ID, Title: "No RDM", Content: "Do not kill randomly"})
	require.NoError(t, err)
	require.Equal(t, "C.1", main.FullCode)

	sub, err := h.rules.Create(h.ctx, mod, CreateRuleRequest{ParentRuleID: &main.ID, Content: "Exceptions apply during events"})
	require.NoError(t, err)
	require.Equal(t, "C.1.1", sub.FullCode)

	pending, err := h.rules.Create(h.ctx, author, CreateRuleRequest{CategoryID: cat.ID, Title: "No NLR", Content: "New life rule"})
	require.NoError(t, err)
	require.Equal(t, workflow.StatusPending, pending.Status)
	require.Equal(t, "C.2", pending.FullCode)

	seenByOther, err := h.rules.List(h.ctx, other, ListRulesRequest{})
	require.NoError(t, err)
	require.Len(t, seenByOther, 1)
	require.Equal(t, "C.1", seenByOther[0].FullCode)
	require.Equal(t, "C", seenByOther[0].CategoryLetter)
	require.Len(t, seenByOther[0].SubRules, 1)
	require.Equal(t, "C.1.1", seenByOther[0].SubRules[0].FullCode)

	seenByAuthor, err := h.rules.List(h.ctx, author, ListRulesRequest{})
	require.NoError(t, err)
	require.Len(t, seenByAuthor, 2)

	queue, err := h.rules.List(h.ctx, mod, ListRulesRequest{Status: string(workflow.StatusPending)})
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, pending.ID, queue[0].ID)

	_, err = h.rules.List(h.ctx, mod, ListRulesRequest{Status: "published"})
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
}

func TestRuleGetHidesOtherEditorsPendingRule(t *testing.T) {
	h := newSvcHarness(t)
	cat := h.category(t, "C")
	author := repotest.Editor()

	pending, err := h.rules.Create(h.ctx, author, CreateRuleRequest{CategoryID: cat.ID, Content: "pending rule"})
	require.NoError(t, err)

	_, err = h.rules.Get(h.ctx, repotest.Editor(), pending.ID)
	require.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)

	detail, err := h.rules.Get(h.ctx, author, pending.ID)
	require.NoError(t, err)
	require.Equal(t, "C.1", detail.FullCode)
	require.Empty(t, detail.CrossReferences)
}

func TestRuleGetGroupsReferencesAndDropsInactiveEndpoints(t *testing.T) {
	h := newSvcHarness(t)
	cat := h.category(t, "C")
	other := h.category(t, "D")
	mod := repotest.Moderator()

	a, err := h.rules.Create(h.ctx, mod, CreateRuleRequest{CategoryID: cat.ID, Title: "A", Content: "a"})
	require.NoError(t, err)
	b, err := h.rules.Create(h.ctx, mod, CreateRuleRequest{CategoryID: other.ID, Title: "B", Content: "b"})
	require.NoError(t, err)
	c, err := h.rules.Create(h.ctx, mod, CreateRuleRequest{CategoryID: cat.ID, Title: "C", Content: "c"})
	require.NoError(t, err)

	_, err = h.refs.AddEdge(h.ctx, mod, a.ID, CreateReferenceRequest{TargetRuleID: b.ID, ReferenceContext: "see both"})
	require.NoError(t, err)
	_, err = h.refs.AddEdge(h.ctx, mod, c.ID, CreateReferenceRequest{TargetRuleID: a.ID, ReferenceType: "supersedes"})
	require.NoError(t, err)

	detail, err := h.rules.Get(h.ctx, mod, a.ID)
	require.NoError(t, err)
	require.Len(t, detail.CrossReferences, 2)

	related := detail.CrossReferences[0]
	require.EqualValues(t, "related", related.ReferenceType)
	require.Len(t, related.References, 1)
	ref := related.References[0]
	require.Equal(t, DirectionOutgoing, ref.Direction)
	require.Equal(t, b.ID, ref.RuleID)
	require.Equal(t, "D.1", ref.FullCode)
	require.Equal(t, "B", ref.Title)
	require.Equal(t, other.Name, ref.CategoryName)

	supersedes := detail.CrossReferences[1]
	require.EqualValues(t, "supersedes", supersedes.ReferenceType)
	require.Equal(t, DirectionIncoming, supersedes.References[0].Direction)
	require.Equal(t, "C.2", supersedes.References[0].FullCode)

	_, err = h.rules.Delete(h.ctx, mod, b.ID)
	require.NoError(t, err)

	groups, err := h.refs.ListEdges(h.ctx, mod, a.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.EqualValues(t, "supersedes", groups[0].ReferenceType)

	edges, err := h.refRepo.ListForRule(h.dbc(), a.ID)
	require.NoError(t, err)
	require.Len(t, edges, 2, "edges to inactive rules stay stored")
}

func TestRuleTransitionsNotifyOncePerCommit(t *testing.T) {
	h := newSvcHarness(t)
	cat := h.category(t, "C")
	mod := repotest.Moderator()
	editor := repotest.Editor()

	r, err := h.rules.Create(h.ctx, editor, CreateRuleRequest{CategoryID: cat.ID, Content: "draft body"})
	require.NoError(t, err)

	_, err = h.rules.Reject(h.ctx, mod, r.ID, ReviewRequest{})
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation))

	_, err = h.rules.Reject(h.ctx, mod, r.ID, ReviewRequest{Notes: "too vague"})
	require.NoError(t, err)
	_, err = h.rules.Update(h.ctx, editor, r.ID, UpdateRuleRequest{Content: strPtr("clearer body")})
	require.NoError(t, err)
	approved, err := h.rules.Approve(h.ctx, mod, r.ID, ReviewRequest{})
	require.NoError(t, err)
	require.True(t, approved.IsActive)
	require.Equal(t, "C.1", approved.FullCode)

	_, err = h.rules.Approve(h.ctx, mod, r.ID, ReviewRequest{})
	require.True(t, domainagg.IsCode(err, domainagg.CodeInvalidState))

	_, err = h.rules.Delete(h.ctx, mod, r.ID)
	require.NoError(t, err)
	restored, err := h.rules.Restore(h.ctx, mod, r.ID)
	require.NoError(t, err)
	require.Equal(t, "C.1", restored.FullCode)

	require.Equal(t, []string{
		realtime.ActionCreate,
		realtime.ActionReject,
		realtime.ActionUpdate,
		realtime.ActionApprove,
		realtime.ActionDelete,
		realtime.ActionUpdate,
	}, h.notifier.Actions(realtime.EntityRule))

	events := h.notifier.Events()
	require.Equal(t, "C.1", events[0].FullCode)
	require.Equal(t, editor.ID, events[0].ActorID)
}

func TestRuleSearchIsVisibilityScopedAndAudited(t *testing.T) {
	h := newSvcHarness(t)
	cat := h.category(t, "C")
	mod := repotest.Moderator()
	editor := repotest.Editor()

	_, err := h.rules.Create(h.ctx, mod, CreateRuleRequest{CategoryID: cat.ID, Title: "No RDM", Content: "Random deathmatch is banned"})
	require.NoError(t, err)
	_, err = h.rules.Create(h.ctx, repotest.Editor(), CreateRuleRequest{CategoryID: cat.ID, Title: "Pending", Content: "random pending change"})
	require.NoError(t, err)

	ctx := ctxutil.WithRequestData(h.ctx, &ctxutil.RequestData{StaffID: editor.ID, Role: "editor", IPAddress: "10.0.0.1"})
	found, err := h.rules.Search(ctx, editor, SearchRulesRequest{Query: "  RANDOM "})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "C.1", found[0].FullCode)

	byMod, err := h.rules.Search(h.ctx, mod, SearchRulesRequest{Query: "random"})
	require.NoError(t, err)
	require.Len(t, byMod, 2)

	entries := h.audit.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, audit.ActionSearch, entries[0].ActionType)
	require.Equal(t, audit.ResourceRule, entries[0].ResourceType)
	require.Equal(t, editor.ID, entries[0].StaffUserID)
	require.Equal(t, "10.0.0.1", entries[0].IPAddress)
	require.True(t, entries[0].Success)
	require.JSONEq(t, `{"query":"RANDOM","limit":25}`, string(entries[0].ActionDetails))

	_, err = h.rules.Search(h.ctx, mod, SearchRulesRequest{Query: "x"})
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
	agg, _ := domainagg.AsError(err)
	require.Equal(t, "q", agg.Field)
}

func TestRuleCreateRejectsMissingCategoryAndParent(t *testing.T) {
	h := newSvcHarness(t)
	_, err := h.rules.Create(h.ctx, repotest.Moderator(), CreateRuleRequest{Content: "orphan"})
	agg, ok := domainagg.AsError(err)
	require.True(t, ok, "got %v", err)
	require.Equal(t, domainagg.CodeValidation, agg.Code)
	require.Equal(t, "category_id", agg.Field)
	require.Empty(t, h.notifier.Events())
}
