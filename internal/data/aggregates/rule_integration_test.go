package aggregates_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/aggregates"
	aggtest "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/aggregates/testutil"
	repotest "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos/testutil"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
)

func TestRuleLifecycleAcrossCategories(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")
	d := h.category(t, "D")
	mod := repotest.Moderator()
	editor := repotest.Editor()

	first, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{
		Actor:      mod,
		CategoryID: c.ID,
		Title:      "No RDM",
		Content:    "Do not kill without a roleplay reason.",
	})
	require.NoError(t, err)
	require.Equal(t, "C.1", first.FullCode)
	require.Equal(t, workflow.StatusApproved, first.Rule.Status)
	require.True(t, first.Rule.IsActive)
	require.NotNil(t, first.Rule.ReviewedBy)
	require.Equal(t, mod.ID, *first.Rule.ReviewedBy)

	sub, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{
		Actor:      editor,
		CategoryID: d.ID,
		Content:    "Contraband must be hidden.",
	})
	require.NoError(t, err)
	require.Equal(t, "D.1", sub.FullCode)
	require.Equal(t, workflow.StatusPending, sub.Rule.Status)
	require.False(t, sub.Rule.IsActive)

	rejected, err := h.rules.Reject(h.ctx, domainagg.ReviewInput{Actor: mod, ID: sub.Rule.ID, Notes: "needs rework"})
	require.NoError(t, err)
	require.Equal(t, workflow.StatusRejected, rejected.Rule.Status)
	require.False(t, rejected.Rule.IsActive)
	require.Equal(t, "needs rework", rejected.Rule.ReviewNotes)

	body := "Contraband must be hidden in a container."
	resubmitted, err := h.rules.Update(h.ctx, domainagg.UpdateRuleInput{
		Actor:   editor,
		RuleID:  sub.Rule.ID,
		Content: &body,
	})
	require.NoError(t, err)
	require.Equal(t, workflow.StatusPending, resubmitted.Rule.Status)
	require.False(t, resubmitted.Rule.IsActive)
	require.Equal(t, "D.1", resubmitted.FullCode)

	stored, err := h.ruleRepo.GetByID(h.dbc(), sub.Rule.ID)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusPending, stored.Status)
	require.Empty(t, stored.ReviewNotes)
	require.Nil(t, stored.ReviewedBy)
}

func TestEditorSubmissionIsNeverActive(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")
	editor := repotest.Editor()

	for _, requested := range []workflow.Status{"", workflow.StatusDraft, workflow.StatusPending, workflow.StatusApproved} {
		res, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{
			Actor:           editor,
			CategoryID:      c.ID,
			Content:         "body",
			RequestedStatus: requested,
		})
		require.NoError(t, err)
		require.False(t, res.Rule.IsActive, "requested=%q", requested)
		if requested == workflow.StatusDraft {
			require.Equal(t, workflow.StatusDraft, res.Rule.Status)
		} else {
			require.Equal(t, workflow.StatusPending, res.Rule.Status)
		}
	}
}

func TestModeratorExplicitDraftIsHonoured(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")

	res, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{
		Actor:           repotest.Admin(),
		CategoryID:      c.ID,
		Content:         "body",
		RequestedStatus: workflow.StatusDraft,
	})
	require.NoError(t, err)
	require.Equal(t, workflow.StatusDraft, res.Rule.Status)
	require.False(t, res.Rule.IsActive)
	require.Nil(t, res.Rule.ReviewedBy)
}

func TestRejectWithoutNotesLeavesRulePending(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")
	res, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: repotest.Editor(), CategoryID: c.ID, Content: "body"})
	require.NoError(t, err)

	_, err = h.rules.Reject(h.ctx, domainagg.ReviewInput{Actor: repotest.Moderator(), ID: res.Rule.ID, Notes: "   "})
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
	ae, _ := domainagg.AsError(err)
	require.Equal(t, "review_notes", ae.Field)

	stored, err := h.ruleRepo.GetByID(h.dbc(), res.Rule.ID)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusPending, stored.Status)
}

func TestApproveRequiresPending(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")
	mod := repotest.Moderator()
	res, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, CategoryID: c.ID, Content: "body"})
	require.NoError(t, err)

	_, err = h.rules.Approve(h.ctx, domainagg.ReviewInput{Actor: mod, ID: res.Rule.ID})
	require.True(t, domainagg.IsCode(err, domainagg.CodeInvalidState), "got %v", err)
	ae, _ := domainagg.AsError(err)
	require.Equal(t, "approved", ae.Current)
	require.Equal(t, []string{"invalid_state"}, h.hooks.Statuses("Content.Rule.Approve"))
}

func TestApprovePublishesPendingRule(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")
	res, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: repotest.Editor(), CategoryID: c.ID, Content: "body"})
	require.NoError(t, err)

	mod := repotest.Moderator()
	approved, err := h.rules.Approve(h.ctx, domainagg.ReviewInput{Actor: mod, ID: res.Rule.ID, Notes: "ok"})
	require.NoError(t, err)
	require.Equal(t, workflow.StatusApproved, approved.Rule.Status)
	require.True(t, approved.Rule.IsActive)
	require.Equal(t, "C.1", approved.FullCode)
	require.Equal(t, mod.ID, *approved.Rule.ReviewedBy)
}

func TestReviewRequiresModerator(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")
	editor := repotest.Editor()
	res, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: editor, CategoryID: c.ID, Content: "body"})
	require.NoError(t, err)

	_, err = h.rules.Approve(h.ctx, domainagg.ReviewInput{Actor: editor, ID: res.Rule.ID})
	require.True(t, domainagg.IsCode(err, domainagg.CodePermission), "got %v", err)
}

func TestConcurrentCreatesAllocateDistinctNumbers(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")
	mod := repotest.Moderator()

	const n = 12
	var wg sync.WaitGroup
	codes := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, CategoryID: c.ID, Content: "body"})
			errs[i] = err
			codes[i] = res.FullCode
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.False(t, seen[codes[i]], "duplicate code %s", codes[i])
		seen[codes[i]] = true
	}
	maxNum, err := h.ruleRepo.GetMaxRuleNumber(h.dbc(), c.ID)
	require.NoError(t, err)
	require.Equal(t, n, maxNum)
}

func TestSubRulesNumberUnderTheirParent(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")
	mod := repotest.Moderator()

	parent, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, CategoryID: c.ID, Content: "parent"})
	require.NoError(t, err)
	_, err = h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, CategoryID: c.ID, Content: "second"})
	require.NoError(t, err)

	for want := 1; want <= 2; want++ {
		child, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, ParentRuleID: &parent.Rule.ID, Content: "child"})
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("C.1.%d", want), child.FullCode)
		require.Equal(t, c.ID, child.Rule.CategoryID)
	}

	_, err = h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, ParentRuleID: &parent.Rule.ID, CategoryID: uuid.New(), Content: "x"})
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
}

func TestDeleteCascadesAndRestoreReproducesCodes(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")
	mod := repotest.Moderator()

	parent, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, CategoryID: c.ID, Title: "Parent", Content: "parent"})
	require.NoError(t, err)
	child, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, ParentRuleID: &parent.Rule.ID, Content: "child"})
	require.NoError(t, err)
	require.Equal(t, "C.1.1", child.FullCode)

	del, err := h.rules.Delete(h.ctx, domainagg.DeleteInput{Actor: mod, ID: parent.Rule.ID})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{child.Rule.ID}, del.Cascaded)

	code, err := h.codeRepo.GetByFullCode(h.dbc(), "C.1")
	require.NoError(t, err)
	require.Nil(t, code)
	gone, err := h.ruleRepo.GetByID(h.dbc(), child.Rule.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
	kept, err := h.ruleRepo.GetByIDUnscoped(h.dbc(), child.Rule.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)

	// Deleted numbers are never handed out again.
	next, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, CategoryID: c.ID, Content: "next"})
	require.NoError(t, err)
	require.Equal(t, "C.2", next.FullCode)

	restored, err := h.rules.Restore(h.ctx, domainagg.RestoreInput{Actor: mod, ID: parent.Rule.ID})
	require.NoError(t, err)
	require.Equal(t, "C.1", restored.FullCode)
	require.Equal(t, []uuid.UUID{child.Rule.ID}, restored.Restored)
	require.True(t, restored.Rule.IsActive)

	childCode, err := h.codeRepo.GetByRuleID(h.dbc(), child.Rule.ID)
	require.NoError(t, err)
	require.Equal(t, "C.1.1", childCode.FullCode)
}

func TestRestoreSubRuleOfDeletedParentIsInvalid(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")
	mod := repotest.Moderator()

	parent, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, CategoryID: c.ID, Content: "parent"})
	require.NoError(t, err)
	child, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, ParentRuleID: &parent.Rule.ID, Content: "child"})
	require.NoError(t, err)
	_, err = h.rules.Delete(h.ctx, domainagg.DeleteInput{Actor: mod, ID: parent.Rule.ID})
	require.NoError(t, err)

	_, err = h.rules.Restore(h.ctx, domainagg.RestoreInput{Actor: mod, ID: child.Rule.ID})
	require.True(t, domainagg.IsCode(err, domainagg.CodeInvalidState), "got %v", err)
}

func TestRevisionLetterChangesCode(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")
	mod := repotest.Moderator()
	res, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, CategoryID: c.ID, Content: strings.Repeat("long text ", 20)})
	require.NoError(t, err)

	rev := "b"
	upd, err := h.rules.Update(h.ctx, domainagg.UpdateRuleInput{Actor: mod, RuleID: res.Rule.ID, RevisionLetter: &rev})
	require.NoError(t, err)
	require.Equal(t, "C.1b", upd.FullCode)

	old, err := h.codeRepo.GetByFullCode(h.dbc(), "C.1")
	require.NoError(t, err)
	require.Nil(t, old)
	code, err := h.codeRepo.GetByRuleID(h.dbc(), res.Rule.ID)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(code.TruncatedDescription, "..."))
}

func TestAllocateRefusesCodeHeldByLiveRule(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")
	holder := repotest.SeedRule(t, h.ctx, h.db, c, 1, workflow.StatusApproved, true, nil)

	// A second row numbered like the holder can only come from broken numbering.
	dup := &types.Rule{ID: uuid.New(), CategoryID: c.ID, RuleNumber: 1, RevisionLetter: "a", Content: "dup"}
	err := h.tx.InTx(h.ctx, func(dbc dbctx.Context) error {
		_, err := aggregates.NewCodeAllocator(h.ruleRepo, h.codeRepo).Allocate(dbc, dup, c.LetterCode)
		return err
	})
	require.Error(t, err)

	code, err := h.codeRepo.GetByFullCode(h.dbc(), "C.1")
	require.NoError(t, err)
	require.Equal(t, holder.ID, code.RuleID)
}

func TestFailedCreateRollsBackNumbering(t *testing.T) {
	h := newHarness(t)
	c := h.category(t, "C")
	mod := repotest.Moderator()

	h.tx.FailAfterBody = aggtest.ErrInjected
	_, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, CategoryID: c.ID, Content: "body"})
	require.Error(t, err)
	h.tx.FailAfterBody = nil

	code, err := h.codeRepo.GetByFullCode(h.dbc(), "C.1")
	require.NoError(t, err)
	require.Nil(t, code)

	res, err := h.rules.Create(h.ctx, domainagg.CreateRuleInput{Actor: mod, CategoryID: c.ID, Content: "body"})
	require.NoError(t, err)
	require.Equal(t, "C.1", res.FullCode)
}
