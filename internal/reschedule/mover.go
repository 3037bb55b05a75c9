// Package reschedule 实现拖拽改期的会话状态机。
//
// 一次拖拽会话的生命周期：
//
//	Idle → Dragging → Checking → Confirmed / Conflicted / Failed → Idle
//
// 每次落点检查持有单调递增的 attempt 令牌；检查期间不持锁，
// 检查返回后若令牌已过期（会话被新的拖拽或取消取代），结果直接丢弃，
// 不会回写任何状态。冲突或失败时展示位置回退到拖拽起点。
package reschedule

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/jae1jeong/meeting-resv-sub000/internal/civildate"
)

// State 拖拽会话状态
type State int

const (
	StateIdle State = iota
	StateDragging
	StateChecking
)

// String 状态名（日志用）
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateChecking:
		return "checking"
	default:
		return "unknown"
	}
}

// Outcome 一次落点的终态
type Outcome int

const (
	// OutcomeConfirmed 写入成功，展示位置为新时段
	OutcomeConfirmed Outcome = iota
	// OutcomeConflicted 目标时段被占用，展示位置回退到起点
	OutcomeConflicted
	// OutcomeFailed 检查或写入出错，展示位置回退到起点
	OutcomeFailed
	// OutcomeNoop 落点与起点相同，无需写入
	OutcomeNoop
	// OutcomeStale 令牌已过期，结果作废（不改变任何状态）
	OutcomeStale
)

// 会话操作在错误状态下调用时返回
var (
	ErrNotIdle     = errors.New("已有进行中的拖拽会话")
	ErrNotDragging = errors.New("当前没有进行中的拖拽会话")
)

// Slot 预订的时段位置：民用日期 + 起止时刻
type Slot struct {
	Date      civildate.Date
	StartTime string
	EndTime   string
}

// Checker 落点可用性检查（排除被拖拽的预订自身）
type Checker func(ctx context.Context, bookingID string, target Slot) (available bool, err error)

// Committer 落点写入（校验、冲突复查由下层完成）
// 返回 ErrConflict 语义的错误时按 Conflicted 处理
type Committer func(ctx context.Context, bookingID string, target Slot) error

// DropResult 一次落点的结果
type DropResult struct {
	Outcome Outcome
	// Display 客户端应展示的时段（Confirmed 为新时段，其余为起点）
	Display Slot
	Attempt uint64
}

// Mover 单个预订的拖拽会话
// 并发安全；同一时刻至多一个活动会话
type Mover struct {
	check      Checker
	commit     Committer
	isConflict func(error) bool
	logger     *zap.Logger

	mu        sync.Mutex
	state     State
	attempt   uint64
	bookingID string
	origin    Slot
	target    Slot
}

// NewMover 创建拖拽会话管理器
// isConflict 判定 Committer 返回的错误是否为冲突（竞态下写入被拦截）
func NewMover(check Checker, commit Committer, isConflict func(error) bool, logger *zap.Logger) *Mover {
	if isConflict == nil {
		isConflict = func(error) bool { return false }
	}
	return &Mover{
		check:      check,
		commit:     commit,
		isConflict: isConflict,
		logger:     logger,
	}
}

// State 当前会话状态
func (m *Mover) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Begin 开始拖拽（Idle → Dragging）
func (m *Mover) Begin(bookingID string, origin Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return ErrNotIdle
	}
	m.state = StateDragging
	m.bookingID = bookingID
	m.origin = origin
	m.target = origin
	return nil
}

// Drag 更新悬停目标（Dragging 状态下可多次调用）
func (m *Mover) Drag(target Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateDragging {
		return ErrNotDragging
	}
	m.target = target
	return nil
}

// Drop 落点：检查可用性并写入（Dragging → Checking → 终态 → Idle）
//
// 检查与写入期间不持锁；返回前会校验 attempt 令牌，
// 会话期间若被 Cancel 或新的 Begin 取代，结果按 Stale 丢弃。
func (m *Mover) Drop(ctx context.Context) (*DropResult, error) {
	m.mu.Lock()
	if m.state != StateDragging {
		m.mu.Unlock()
		return nil, ErrNotDragging
	}

	m.attempt++
	token := m.attempt
	bookingID := m.bookingID
	origin := m.origin
	target := m.target
	m.state = StateChecking

	// 原位落下：无需检查与写入
	if target == origin {
		m.reset()
		m.mu.Unlock()
		return &DropResult{Outcome: OutcomeNoop, Display: origin, Attempt: token}, nil
	}
	m.mu.Unlock()

	// ── 检查阶段（不持锁）──
	available, err := m.check(ctx, bookingID, target)

	m.mu.Lock()
	if m.attempt != token || m.state != StateChecking {
		// 会话已被取代，结果作废
		m.mu.Unlock()
		return &DropResult{Outcome: OutcomeStale, Display: origin, Attempt: token}, nil
	}
	if err != nil {
		m.reset()
		m.mu.Unlock()
		m.logger.Warn("落点检查失败，回退到起点",
			zap.String("booking_id", bookingID), zap.Error(err))
		return &DropResult{Outcome: OutcomeFailed, Display: origin, Attempt: token}, nil
	}
	if !available {
		m.reset()
		m.mu.Unlock()
		return &DropResult{Outcome: OutcomeConflicted, Display: origin, Attempt: token}, nil
	}
	m.mu.Unlock()

	// ── 写入阶段（不持锁）──
	commitErr := m.commit(ctx, bookingID, target)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempt != token || m.state != StateChecking {
		return &DropResult{Outcome: OutcomeStale, Display: origin, Attempt: token}, nil
	}
	m.reset()

	if commitErr != nil {
		// 检查与写入之间被并发预订抢占：按冲突回退
		if m.isConflict(commitErr) {
			return &DropResult{Outcome: OutcomeConflicted, Display: origin, Attempt: token}, nil
		}
		m.logger.Warn("落点写入失败，回退到起点",
			zap.String("booking_id", bookingID), zap.Error(commitErr))
		return &DropResult{Outcome: OutcomeFailed, Display: origin, Attempt: token}, nil
	}
	return &DropResult{Outcome: OutcomeConfirmed, Display: target, Attempt: token}, nil
}

// Cancel 取消当前会话（任意状态 → Idle）
// Checking 中的检查结果返回后将按 Stale 丢弃
func (m *Mover) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempt++ // 使在途检查的令牌过期
	m.reset()
}

// reset 回到 Idle；调用方必须持锁
func (m *Mover) reset() {
	m.state = StateIdle
	m.bookingID = ""
	m.origin = Slot{}
	m.target = Slot{}
}
