package dto

// ── 统计模块 DTO ──

// StageStatusRow 阶段 × 状态分布行
type StageStatusRow struct {
	StageName string `json:"stage_name"`
	Status    string `json:"status"`
	Count     int64  `json:"count"`
}

// AssigneeWorkloadRow 负责人在办工作量行（pending / in_progress 卡片数）
type AssigneeWorkloadRow struct {
	Assignee string `json:"assignee"`
	Count    int64  `json:"count"`
}

// WorkflowStatisticsResponse 工作流看板统计响应
type WorkflowStatisticsResponse struct {
	WorkflowsByStatus    map[string]int64      `json:"workflows_by_status"`
	CardsByStatus        map[string]int64      `json:"cards_by_status"`
	OverdueActive        int64                 `json:"overdue_active"`
	PriorityHistogram    map[string]int64      `json:"priority_histogram"`
	AvgCompletionDays    float64               `json:"avg_completion_days"` // 保留一位小数，无已完成工作流时为 0
	CreatedLast7Days     int64                 `json:"created_last_7_days"`
	StageStatusBreakdown []StageStatusRow      `json:"stage_status_breakdown"`
	AssigneeWorkload     []AssigneeWorkloadRow `json:"assignee_workload"`
	CompletionRate       float64               `json:"completion_rate"` // 百分比，保留一位小数，无工作流时为 0
}
