// Package civildate 提供固定民用时区（KST, UTC+9）下的日历日期模型。
//
// 预订只按 KST 的日历日调度，与服务进程、浏览器所在时区无关。
// 所有日期字符串的序列化必须经由本包的 String / Parse，
// 禁止从 time.Time 的通用 ISO 序列化中截取日期部分：
// 宿主时区与 KST 不一致时（如 UTC 机器上 KST 00:00–08:59 的时段），
// 那种写法得到的日历日会偏移一天。
package civildate

import (
	"errors"
	"fmt"
	"time"
)

// KST 固定民用时区 UTC+9（无夏令时）
// 使用 FixedZone 而非 LoadLocation，避免依赖宿主 tzdata
var KST = time.FixedZone("KST", 9*60*60)

// ErrInvalidDateFormat 日期解析失败
var ErrInvalidDateFormat = errors.New("日期格式无效，应为 YYYY-MM-DD")

// Date 民用日期：年/月/日，无时刻成分
// 两个 Date 相等当且仅当年、月、日全部相等（可直接用 == 比较）
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Parse 解析 YYYY-MM-DD 字符串为民用日期
// 非法格式或不存在的日历日（如 2025-02-30）返回 ErrInvalidDateFormat
func Parse(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", s, KST)
	if err != nil {
		return Date{}, ErrInvalidDateFormat
	}
	return FromTime(t), nil
}

// FromTime 取 instant 在 KST 下的日历日
func FromTime(t time.Time) Date {
	y, m, d := t.In(KST).Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today 当前时刻在 KST 下的日历日
func Today() Date {
	return FromTime(time.Now())
}

// String 规范化 YYYY-MM-DD 字符串
// 直接由日历字段格式化，不经过 time.Time 的序列化路径
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// StartOfDay 当日 KST 零点对应的 instant
func (d Date) StartOfDay() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, KST)
}

// EndOfDay 当日 KST 23:59:59.999 对应的 instant（用于闭区间查询）
func (d Date) EndOfDay() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 999_000_000, KST)
}

// AddDays 平移 n 个日历日（n 可为负），跨月/跨年/闰年由日历规则归一化
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, KST)
	return FromTime(t)
}

// Weekday 当日星期（time.Sunday == 0）
func (d Date) Weekday() time.Weekday {
	return d.StartOfDay().Weekday()
}

// Before 按日历序比较
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After 按日历序比较
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// ── 周窗口计算 ──

// WeekStart 所在周的周日（d 本身为周日时返回 d）
func WeekStart(d Date) Date {
	return d.AddDays(-int(d.Weekday()))
}

// WeekRange 所在周的 [周日, 周六] 区间
func WeekRange(d Date) (start, end Date) {
	start = WeekStart(d)
	return start, start.AddDays(6)
}

// WeekDates 所在周的周日→周六 7 天序列
func WeekDates(d Date) [7]Date {
	var week [7]Date
	start := WeekStart(d)
	for i := 0; i < 7; i++ {
		week[i] = start.AddDays(i)
	}
	return week
}
