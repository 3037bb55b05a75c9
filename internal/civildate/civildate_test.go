package civildate

import (
	"testing"
	"time"
)

// ── Parse / String ──

func TestParse_RoundTrip(t *testing.T) {
	cases := []string{
		"2025-09-12",
		"2025-01-01",
		"2025-12-31",
		"2024-02-29", // 闰日
		"2000-02-29", // 世纪闰年
	}
	for _, s := range cases {
		d, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) 失败: %v", s, err)
		}
		if got := d.String(); got != s {
			t.Errorf("往返失败: Parse→String(%q) = %q", s, got)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []string{
		"",
		"2025/09/12",
		"2025-9-12",
		"12-09-2025",
		"2025-02-30", // 不存在的日历日
		"2025-13-01",
		"2025-00-10",
		"2023-02-29", // 非闰年
		"2025-09-12T00:00:00Z",
		"not-a-date",
	}
	for _, s := range cases {
		if _, err := Parse(s); err != ErrInvalidDateFormat {
			t.Errorf("Parse(%q) 期望 ErrInvalidDateFormat，实际: %v", s, err)
		}
	}
}

func TestParse_NormalizeIdempotent(t *testing.T) {
	d1, err := Parse("2025-09-12")
	if err != nil {
		t.Fatal(err)
	}
	d2, err := Parse(d1.String())
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Errorf("normalize 不幂等: %v != %v", d1, d2)
	}
}

// ── 宿主时区无关性 ──

func TestFromTime_HostTimezoneIndependent(t *testing.T) {
	// KST 2025-09-12 00:30 == UTC 2025-09-11 15:30
	// 无论 instant 携带什么时区，民用日期都必须是 2025-09-12
	instant := time.Date(2025, 9, 11, 15, 30, 0, 0, time.UTC)

	zones := []*time.Location{
		time.UTC,
		time.FixedZone("UTC-8", -8*3600),
		time.FixedZone("UTC+14", 14*3600),
		KST,
	}
	for _, loc := range zones {
		d := FromTime(instant.In(loc))
		if d.String() != "2025-09-12" {
			t.Errorf("时区 %v 下民用日期错误: %s", loc, d)
		}
	}
}

func TestString_NotUTCDerived(t *testing.T) {
	// KST 凌晨（00:00–08:59）仍是前一个 UTC 日，
	// 经 UTC 序列化截取日期会少一天——String 必须不受影响
	d := FromTime(time.Date(2026, 1, 1, 2, 0, 0, 0, KST))
	if d.String() != "2026-01-01" {
		t.Errorf("KST 凌晨日期序列化错误: %s", d)
	}
}

// ── StartOfDay / EndOfDay ──

func TestStartOfDay_Idempotent(t *testing.T) {
	d, _ := Parse("2025-09-12")
	once := d.StartOfDay()
	twice := FromTime(once).StartOfDay()
	if !once.Equal(twice) {
		t.Errorf("startOfDay 二次应用发生漂移: %v != %v", once, twice)
	}
	if once.Hour() != 0 || once.Minute() != 0 || once.Second() != 0 {
		t.Errorf("startOfDay 非零点: %v", once)
	}
}

func TestEndOfDay(t *testing.T) {
	d, _ := Parse("2025-09-12")
	end := d.EndOfDay()
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("endOfDay 错误: %v", end)
	}
	if !end.After(d.StartOfDay()) {
		t.Error("endOfDay 应晚于 startOfDay")
	}
	if FromTime(end) != d {
		t.Error("endOfDay 仍应属于当日")
	}
}

// ── AddDays ──

func TestAddDays(t *testing.T) {
	cases := []struct {
		from string
		n    int
		want string
	}{
		{"2025-09-30", 1, "2025-10-01"},  // 跨月
		{"2025-12-31", 1, "2026-01-01"},  // 跨年
		{"2024-02-28", 1, "2024-02-29"},  // 闰日
		{"2025-02-28", 1, "2025-03-01"},  // 非闰年
		{"2025-01-01", -1, "2024-12-31"}, // 负向跨年
		{"2025-09-12", 0, "2025-09-12"},
	}
	for _, tc := range cases {
		d, _ := Parse(tc.from)
		if got := d.AddDays(tc.n).String(); got != tc.want {
			t.Errorf("AddDays(%s, %d) = %s，期望 %s", tc.from, tc.n, got, tc.want)
		}
	}
}

// ── 周窗口 ──

func TestWeekDates_Properties(t *testing.T) {
	d, _ := Parse("2025-09-12")
	week := WeekDates(d)

	if week[0].Weekday() != time.Sunday {
		t.Errorf("周首应为周日，实际: %v", week[0].Weekday())
	}
	if week[6].Weekday() != time.Saturday {
		t.Errorf("周末应为周六，实际: %v", week[6].Weekday())
	}

	contained := false
	for i := 0; i < 7; i++ {
		if i > 0 && week[i] != week[i-1].AddDays(1) {
			t.Errorf("第 %d 天不是前一天 +1: %v / %v", i, week[i-1], week[i])
		}
		if week[i] == d {
			contained = true
		}
	}
	if !contained {
		t.Errorf("输入日期 %v 不在其所在周中", d)
	}
}

func TestWeekDates_MonthRollover(t *testing.T) {
	d, _ := Parse("2025-09-30")
	week := WeekDates(d)
	want := []string{
		"2025-09-28", "2025-09-29", "2025-09-30",
		"2025-10-01", "2025-10-02", "2025-10-03", "2025-10-04",
	}
	for i, w := range want {
		if week[i].String() != w {
			t.Errorf("跨月周第 %d 天期望 %s，实际 %s", i, w, week[i])
		}
	}
}

func TestWeekDates_YearRollover(t *testing.T) {
	d, _ := Parse("2025-12-31")
	week := WeekDates(d)
	if week[4].String() != "2026-01-01" {
		t.Errorf("跨年周 index 4 期望 2026-01-01，实际 %s", week[4])
	}
	if week[5].String() != "2026-01-02" {
		t.Errorf("跨年周 index 5 期望 2026-01-02，实际 %s", week[5])
	}
}

func TestWeekDates_LeapYear(t *testing.T) {
	d, _ := Parse("2024-02-28")
	week := WeekDates(d)
	if week[4].String() != "2024-02-29" {
		t.Errorf("闰年周 index 4 期望 2024-02-29，实际 %s", week[4])
	}

	d2, _ := Parse("2025-02-28")
	week2 := WeekDates(d2)
	for _, day := range week2 {
		if day.Month == time.February && day.Day == 29 {
			t.Error("非闰年不应出现 02-29")
		}
	}
	// 2025-02-28 是周五，次日直接进入 3 月
	if week2[6].String() != "2025-03-01" {
		t.Errorf("非闰年周六期望 2025-03-01，实际 %s", week2[6])
	}
}

func TestWeekRange(t *testing.T) {
	d, _ := Parse("2025-09-12") // 周五
	start, end := WeekRange(d)
	if start.String() != "2025-09-07" || end.String() != "2025-09-13" {
		t.Errorf("WeekRange 期望 [2025-09-07, 2025-09-13]，实际 [%s, %s]", start, end)
	}

	// 周日输入时 start 即自身
	sun, _ := Parse("2025-09-07")
	if WeekStart(sun) != sun {
		t.Errorf("周日的 WeekStart 应为自身，实际 %s", WeekStart(sun))
	}
}

// ── 比较 ──

func TestBeforeAfter(t *testing.T) {
	a, _ := Parse("2025-09-10")
	b, _ := Parse("2025-09-12")
	if !a.Before(b) || b.Before(a) {
		t.Error("Before 比较错误")
	}
	if !b.After(a) || a.After(b) {
		t.Error("After 比较错误")
	}
	if a.Before(a) || a.After(a) {
		t.Error("相等日期不应有先后")
	}
}
