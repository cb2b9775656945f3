package reporting

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"community-console-service/internal/domain/models"
	"community-console-service/internal/domain/services/viewstate"
	"community-console-service/internal/infrastructure/metrics"
	"community-console-service/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// ErrAggregationFailed 任一数据源获取失败时返回，包装原始错误
var ErrAggregationFailed = errors.New("aggregation failed")

// Lister 分页拉取全部记录
type Lister[T any] interface {
	ListAll(ctx context.Context, token string, filter url.Values) ([]T, error)
}

// Sources 统计所需的数据源
type Sources struct {
	Residents         Lister[models.Resident]
	Households        Lister[models.Household]
	TemporaryStays    Lister[models.TemporaryStayRecord]
	TemporaryAbsences Lister[models.TemporaryAbsenceRecord]
	FeeSchedules      Lister[models.FeeSchedule]
	Receipts          Lister[models.Receipt]
}

// Report 管理报表
type Report struct {
	Stats       StatsSnapshot  `json:"stats"`
	Billing     BillingSummary `json:"billing"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Service 聚合上游数据生成统计
type Service struct {
	src       Sources
	dashboard *viewstate.Store[StatsSnapshot]
	reports   *viewstate.Store[Report]
	now       func() time.Time
}

// NewService 创建统计服务
func NewService(src Sources) *Service {
	return &Service{
		src:       src,
		dashboard: viewstate.NewStore[StatsSnapshot](),
		reports:   viewstate.NewStore[Report](),
		now:       time.Now,
	}
}

// ServiceName 服务名称
func (s *Service) ServiceName() string {
	return "reporting"
}

type sourceLists struct {
	residents  []models.Resident
	households []models.Household
	stays      []models.TemporaryStayRecord
	absences   []models.TemporaryAbsenceRecord
	fees       []models.FeeSchedule
	receipts   []models.Receipt
}

func fetchInto[T any](ctx context.Context, g *errgroup.Group, name string, l Lister[T], token string, dst *[]T) {
	g.Go(func() error {
		items, err := l.ListAll(ctx, token, nil)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", name, err)
		}
		*dst = items
		return nil
	})
}

// fetch 并发拉取，第一个错误取消其余请求
func (s *Service) fetch(ctx context.Context, token string, billing bool) (*sourceLists, error) {
	var lists sourceLists
	g, gctx := errgroup.WithContext(ctx)
	fetchInto(gctx, g, "residents", s.src.Residents, token, &lists.residents)
	fetchInto(gctx, g, "households", s.src.Households, token, &lists.households)
	fetchInto(gctx, g, "temporary stays", s.src.TemporaryStays, token, &lists.stays)
	fetchInto(gctx, g, "temporary absences", s.src.TemporaryAbsences, token, &lists.absences)
	if billing {
		fetchInto(gctx, g, "fee schedules", s.src.FeeSchedules, token, &lists.fees)
		fetchInto(gctx, g, "receipts", s.src.Receipts, token, &lists.receipts)
	}
	if err := g.Wait(); err != nil {
		metrics.AggregationFailures.Inc()
		logger.Error("Aggregation failed: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrAggregationFailed, err)
	}
	return &lists, nil
}

// Snapshot 仪表盘统计，不会返回部分结果
func (s *Service) Snapshot(ctx context.Context, token string) (StatsSnapshot, error) {
	lists, err := s.fetch(ctx, token, false)
	if err != nil {
		return StatsSnapshot{}, err
	}
	return Compute(lists.residents, lists.households, lists.stays, lists.absences, s.now().Year()), nil
}

// Report 统计加收费汇总
func (s *Service) Report(ctx context.Context, token string) (Report, error) {
	lists, err := s.fetch(ctx, token, true)
	if err != nil {
		return Report{}, err
	}
	now := s.now()
	return Report{
		Stats:       Compute(lists.residents, lists.households, lists.stays, lists.absences, now.Year()),
		Billing:     ComputeBilling(lists.fees, lists.receipts, lists.households),
		GeneratedAt: now,
	}, nil
}

// load 带代号保护地加载视图。被更新的请求取代时 current 为 false，
// 若更新的请求已经保存了结果则改为返回该结果
func load[T any](ctx context.Context, store *viewstate.Store[T], viewKey string, fn func() (T, error)) (v T, current bool, err error) {
	ticket := store.Begin(viewKey)
	v, err = fn()
	if err != nil {
		var zero T
		return zero, false, err
	}
	if store.Commit(ctx, ticket, v) {
		return v, true, nil
	}
	if newer, ok := store.Newer(ticket); ok {
		logger.Info("View %s superseded, serving the newer result", viewKey)
		return newer, false, nil
	}
	return v, false, nil
}

// LoadDashboard 带代号保护的 Snapshot
func (s *Service) LoadDashboard(ctx context.Context, viewKey, token string) (StatsSnapshot, bool, error) {
	return load(ctx, s.dashboard, viewKey, func() (StatsSnapshot, error) { return s.Snapshot(ctx, token) })
}

// LoadReport 带代号保护的 Report
func (s *Service) LoadReport(ctx context.Context, viewKey, token string) (Report, bool, error) {
	return load(ctx, s.reports, viewKey, func() (Report, error) { return s.Report(ctx, token) })
}

// Forget 登出时清除会话相关的视图
func (s *Service) Forget(viewKey string) {
	s.dashboard.Forget(viewKey)
	s.reports.Forget(viewKey)
}
