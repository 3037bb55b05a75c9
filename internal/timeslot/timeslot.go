// Package timeslot 校验预订的 HH:mm 时刻边界。
// 预订边界必须落在 30 分钟刻度上，最短时长即一格（30 分钟）。
package timeslot

import "errors"

// SlotMinutes 预订时刻网格粒度
const SlotMinutes = 30

// 校验失败原因按类别区分，调用方可据此给出可操作的提示
var (
	ErrBadTimeFormat       = errors.New("时间格式无效，应为 HH:mm")
	ErrOffGrid             = errors.New("时间必须落在 30 分钟刻度上")
	ErrNonPositiveDuration = errors.New("结束时间必须晚于开始时间")
)

// ParseMinutes 将 HH:mm 解析为自零点起的分钟数
// 严格两位数字：HH ∈ [00,23]，mm ∈ [00,59]
func ParseMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrBadTimeFormat
	}
	for _, i := range [4]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrBadTimeFormat
		}
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	if hh > 23 || mm > 59 {
		return 0, ErrBadTimeFormat
	}
	return hh*60 + mm, nil
}

// Format 将分钟数格式化为 HH:mm
func Format(min int) string {
	if min < 0 {
		min = 0
	}
	if min >= 24*60 {
		min = 24*60 - 1
	}
	hh := min / 60
	mm := min % 60
	return string([]byte{
		byte('0' + hh/10), byte('0' + hh%10), ':',
		byte('0' + mm/10), byte('0' + mm%10),
	})
}

// Validate 校验一对预订边界：格式合法、落在刻度上、start < end
func Validate(start, end string) error {
	s, err := ParseMinutes(start)
	if err != nil {
		return err
	}
	e, err := ParseMinutes(end)
	if err != nil {
		return err
	}
	if s%SlotMinutes != 0 || e%SlotMinutes != 0 {
		return ErrOffGrid
	}
	if s >= e {
		return ErrNonPositiveDuration
	}
	return nil
}

// Overlaps 半开区间重叠判定：[a,b) 与 [c,d) 重叠当且仅当 a < d 且 c < b
// 恰好首尾相接（b == c）不算冲突
func Overlaps(aStart, aEnd, cStart, cEnd int) bool {
	return aStart < cEnd && cStart < aEnd
}
