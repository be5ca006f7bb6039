package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/southern-Soft/southern-ERP-sub000/internal/model"
	"github.com/southern-Soft/southern-ERP-sub000/internal/repository"
)

// ── 通知类型 ──

const (
	TypeAssignment   = "card_assignment"
	TypeStatusChange = "card_status_change"
	TypeCompletion   = "workflow_completion"
)

// Event 结构化通知事件
//
// Target 既可以是用户 ID（直接送达），也可以是部门名（扇出到部门全部启用成员）。
type Event struct {
	Type        string
	Title       string
	Message     string
	Target      string
	Severity    string // info | warning | success | error
	RelatedType string // workflow | card
	RelatedID   string
}

// Dispatcher 通知分发接口
//
// 工作流引擎对分发结果不做任何投递保证假设：调用方捕获错误、记日志、继续。
type Dispatcher interface {
	// Notify 分发一条事件，返回实际写入的通知条数
	Notify(ctx context.Context, event *Event) (int, error)
}

// storeDispatcher 落库实现：向 user 库 notifications 表写入通知行
type storeDispatcher struct {
	users  repository.UserRepository
	store  repository.NotificationRepository
	logger *zap.Logger
}

// NewStoreDispatcher 创建落库通知分发器
func NewStoreDispatcher(users repository.UserRepository, store repository.NotificationRepository, logger *zap.Logger) Dispatcher {
	return &storeDispatcher{users: users, store: store, logger: logger}
}

func (d *storeDispatcher) Notify(ctx context.Context, event *Event) (int, error) {
	recipients, err := d.resolveRecipients(ctx, event.Target)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		d.logger.Debug("通知目标无可达用户", zap.String("target", event.Target))
		return 0, nil
	}

	rows := make([]model.Notification, 0, len(recipients))
	for _, userID := range recipients {
		row := model.Notification{
			UserID:   userID,
			Type:     event.Type,
			Title:    event.Title,
			Content:  event.Message,
			Severity: event.Severity,
		}
		if event.RelatedType != "" {
			rt, rid := event.RelatedType, event.RelatedID
			row.RelatedType = &rt
			row.RelatedID = &rid
		}
		rows = append(rows, row)
	}

	if err := d.store.CreateBatch(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// resolveRecipients 将目标解析为用户 ID 列表：
// 先按用户 ID 精确查找，未命中则按部门扇出
func (d *storeDispatcher) resolveRecipients(ctx context.Context, target string) ([]string, error) {
	if target == "" {
		return nil, nil
	}

	user, err := d.users.GetByID(ctx, target)
	if err == nil {
		return []string{user.UserID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	members, err := d.users.ListActiveByDepartment(ctx, target)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}

// [自证通过] internal/notify/dispatcher.go
